package signal

import (
	"fmt"
	"math"
	"strings"
)

// FreqEffect returns the raw instantaneous frequency at time t of a waveform
// of the given duration and base frequency.
type FreqEffect interface {
	Freq(t, duration, freq0 float64) float64
}

// FreqFunc adapts a function to a FreqEffect.
type FreqFunc func(t, duration, freq0 float64) float64

// Freq calls f.
func (f FreqFunc) Freq(t, duration, freq0 float64) float64 { return f(t, duration, freq0) }

// AmplEffect returns the raw amplitude at time t.
type AmplEffect interface {
	Ampl(t, duration, freq0 float64) float64
}

// AmplFunc adapts a function to an AmplEffect.
type AmplFunc func(t, duration, freq0 float64) float64

// Ampl calls f.
func (f AmplFunc) Ampl(t, duration, freq0 float64) float64 { return f(t, duration, freq0) }

// PhaseEffect returns a phase offset in radians at time t.
type PhaseEffect interface {
	Phase(t, duration, freq0 float64) float64
}

// PhaseFunc adapts a function to a PhaseEffect.
type PhaseFunc func(t, duration, freq0 float64) float64

// Phase calls f.
func (f PhaseFunc) Phase(t, duration, freq0 float64) float64 { return f(t, duration, freq0) }

// FreqType enumerates the built-in frequency effects.
type FreqType int

const (
	FreqConstant FreqType = iota
	// FreqChirpUp rises linearly to twice the base frequency.
	FreqChirpUp
	// FreqChirpDown falls linearly to half the base frequency.
	FreqChirpDown
	// FreqWobble swings ±2% around the base frequency at 6 Hz.
	FreqWobble
	// FreqOctaveJump plays the first half an octave above the base.
	FreqOctaveJump
)

// Freq implements FreqEffect.
func (f FreqType) Freq(t, duration, freq0 float64) float64 {
	x := progress(t, duration)
	switch f {
	case FreqChirpUp:
		return freq0 * (1 + x)
	case FreqChirpDown:
		return freq0 * (1 - 0.5*x)
	case FreqWobble:
		return freq0 * (1 + 0.02*math.Sin(2*math.Pi*6*t))
	case FreqOctaveJump:
		if x < 0.5 {
			return 2 * freq0
		}
		return freq0
	default:
		return freq0
	}
}

// AmplType enumerates the built-in amplitude effects.
type AmplType int

const (
	AmplConstant AmplType = iota
	// AmplLinearDecay falls linearly from 1 to 0.
	AmplLinearDecay
	// AmplExpDecay falls as exp(-5x) over the duration.
	AmplExpDecay
	// AmplTremolo swings between 0.6 and 1 at 8 Hz.
	AmplTremolo
	// AmplSwell rises linearly from 0 to 1.
	AmplSwell
)

// Ampl implements AmplEffect.
func (a AmplType) Ampl(t, duration, _ float64) float64 {
	x := progress(t, duration)
	switch a {
	case AmplLinearDecay:
		return 1 - x
	case AmplExpDecay:
		return math.Exp(-5 * x)
	case AmplTremolo:
		return 0.8 + 0.2*math.Sin(2*math.Pi*8*t)
	case AmplSwell:
		return x
	default:
		return 1
	}
}

// PhaseType enumerates the built-in phase effects.
type PhaseType int

const (
	PhaseZero PhaseType = iota
	// PhaseQuarter offsets by pi/2 (sine becomes cosine).
	PhaseQuarter
	// PhaseHalf inverts the waveform.
	PhaseHalf
	// PhaseWobble modulates the phase by 0.5 rad at 5 Hz.
	PhaseWobble
)

// Phase implements PhaseEffect.
func (p PhaseType) Phase(t, _, _ float64) float64 {
	switch p {
	case PhaseQuarter:
		return math.Pi / 2
	case PhaseHalf:
		return math.Pi
	case PhaseWobble:
		return 0.5 * math.Sin(2*math.Pi*5*t)
	default:
		return 0
	}
}

// PhaseConstant returns a PhaseEffect with a fixed offset.
func PhaseConstant(offset float64) PhaseEffect {
	return PhaseFunc(func(_, _, _ float64) float64 { return offset })
}

func progress(t, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return math.Min(1, t/duration)
}

var (
	freqNames  = map[string]FreqType{"CONSTANT": FreqConstant, "CHIRP_UP": FreqChirpUp, "CHIRP_DOWN": FreqChirpDown, "WOBBLE": FreqWobble, "OCTAVE_JUMP": FreqOctaveJump}
	amplNames  = map[string]AmplType{"CONSTANT": AmplConstant, "LINEAR_DECAY": AmplLinearDecay, "EXP_DECAY": AmplExpDecay, "TREMOLO": AmplTremolo, "SWELL": AmplSwell}
	phaseNames = map[string]PhaseType{"ZERO": PhaseZero, "QUARTER": PhaseQuarter, "HALF": PhaseHalf, "WOBBLE": PhaseWobble}
)

// ParseFreqEffect maps a script token to a built-in frequency effect.
func ParseFreqEffect(s string) (FreqType, error) {
	if f, ok := freqNames[strings.ToUpper(s)]; ok {
		return f, nil
	}
	return FreqConstant, fmt.Errorf("signal: unknown frequency effect %q", s)
}

// ParseAmplEffect maps a script token to a built-in amplitude effect.
func ParseAmplEffect(s string) (AmplType, error) {
	if a, ok := amplNames[strings.ToUpper(s)]; ok {
		return a, nil
	}
	return AmplConstant, fmt.Errorf("signal: unknown amplitude effect %q", s)
}

// ParsePhaseEffect maps a script token to a built-in phase effect.
func ParsePhaseEffect(s string) (PhaseType, error) {
	if p, ok := phaseNames[strings.ToUpper(s)]; ok {
		return p, nil
	}
	return PhaseZero, fmt.Errorf("signal: unknown phase effect %q", s)
}

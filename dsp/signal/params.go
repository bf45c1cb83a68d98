package signal

import (
	"math"
	"slices"
)

// ArpeggioStep multiplies the frequency by Factor from time At (seconds) on.
type ArpeggioStep struct {
	At     float64
	Factor float64
}

// Params configures the optional effects of [Generator.Generate]. A zero
// field leaves its effect inactive.
type Params struct {
	// DutyCycle is the pulse width for PWM in (0, 1]; 0 means 0.5.
	DutyCycle float64
	// DutyCycleSweep is added to DutyCycle linearly over the whole duration.
	DutyCycleSweep float64

	// MinFreq and MaxFreq bound the instantaneous frequency when positive.
	MinFreq float64
	MaxFreq float64

	// SlideVel (octaves/s) and SlideAcc (octaves/s²) bend the frequency by
	// 2^(vel*t + acc*t²/2).
	SlideVel float64
	SlideAcc float64

	// VibratoDepth in [0, 1] enables amplitude vibrato
	// (1-depth) + depth*sin(2π*VibratoFreq*t + min(VibratoVel + VibratoAcc*t, VibratoMaxVel)*t).
	// VibratoMaxVel of 0 leaves the chirp term unbounded.
	VibratoDepth  float64
	VibratoFreq   float64
	VibratoVel    float64
	VibratoAcc    float64
	VibratoMaxVel float64

	// Arpeggio steps apply cumulatively once their onset has passed.
	Arpeggio []ArpeggioStep

	// NoiseHold repeats each noise value for this many samples.
	NoiseHold int
	// NoiseSmoothing in [0, 1) applies a one-pole lowpass to noise.
	NoiseSmoothing float64

	// SampleMin and SampleMax clamp every output sample when SampleMin < SampleMax.
	SampleMin float64
	SampleMax float64
}

// sortedArpeggio returns the arpeggio steps ordered by onset.
func (p Params) sortedArpeggio() []ArpeggioStep {
	if len(p.Arpeggio) == 0 {
		return nil
	}
	steps := slices.Clone(p.Arpeggio)
	slices.SortStableFunc(steps, func(a, b ArpeggioStep) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return steps
}

func (p Params) duty(t, duration float64) float64 {
	d := p.DutyCycle
	if d <= 0 {
		d = 0.5
	}
	if p.DutyCycleSweep != 0 {
		d += p.DutyCycleSweep * progress(t, duration)
	}
	return math.Max(0, math.Min(1, d))
}

func (p Params) slide(t float64) float64 {
	if p.SlideVel == 0 && p.SlideAcc == 0 {
		return 1
	}
	return math.Exp2(p.SlideVel*t + 0.5*p.SlideAcc*t*t)
}

func (p Params) limitFreq(f float64) float64 {
	if p.MinFreq > 0 && f < p.MinFreq {
		f = p.MinFreq
	}
	if p.MaxFreq > 0 && f > p.MaxFreq {
		f = p.MaxFreq
	}
	return f
}

func (p Params) vibrato(t float64) float64 {
	if p.VibratoDepth == 0 {
		return 1
	}
	chirp := p.VibratoVel + p.VibratoAcc*t
	if p.VibratoMaxVel > 0 {
		chirp = math.Min(chirp, p.VibratoMaxVel)
	}
	return (1 - p.VibratoDepth) + p.VibratoDepth*math.Sin(2*math.Pi*p.VibratoFreq*t+chirp*t)
}

func (p Params) clampSample(v float64) float64 {
	if p.SampleMin < p.SampleMax {
		return math.Max(p.SampleMin, math.Min(p.SampleMax, v))
	}
	return v
}

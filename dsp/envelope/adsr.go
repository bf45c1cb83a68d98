package envelope

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Mode selects the curve family of a segment.
type Mode int

const (
	Lin Mode = iota
	Exp
	Log
)

var modeNames = [...]string{Lin: "LIN", Exp: "EXP", Log: "LOG"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps LIN, EXP or LOG (any case) to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(name, s) {
			return Mode(i), nil
		}
	}
	return Lin, fmt.Errorf("envelope: unknown mode %q", s)
}

// Level is an optional envelope level in [0, 1].
type Level struct {
	Value float64
	Set   bool
}

// At returns a set Level clamped to [0, 1].
func At(v float64) Level {
	return Level{Value: core.Clamp(v, 0, 1), Set: true}
}

func (l Level) or(fallback float64) float64 {
	if l.Set {
		return l.Value
	}
	return fallback
}

// Segment is one timed stage of the envelope.
type Segment struct {
	Mode  Mode
	Time  float64 // seconds
	Start Level
	End   Level
}

// Sustain holds a level until the release begins. MaxTime > 0 ends the
// sustain early; the release then starts at that point.
type Sustain struct {
	Level   float64
	MaxTime float64 // seconds
}

// ADSR describes an attack-decay-sustain-release envelope.
type ADSR struct {
	Attack  Segment
	Decay   Segment
	Sustain Sustain
	Release Segment
}

// New builds a linear envelope from stage times in seconds and a sustain level.
func New(attack, decay, sustain, release float64) ADSR {
	return ADSR{
		Attack:  Segment{Mode: Lin, Time: attack},
		Decay:   Segment{Mode: Lin, Time: decay},
		Sustain: Sustain{Level: sustain},
		Release: Segment{Mode: Lin, Time: release},
	}
}

// Levels are the resolved absolute segment endpoints.
type Levels struct {
	A0, A1 float64
	D0, D1 float64
	S      float64
	R0, R1 float64
}

// Levels resolves unset overrides through the fallback chain.
func (e ADSR) Levels() Levels {
	s := core.Clamp(e.Sustain.Level, 0, 1)
	var l Levels
	l.S = s
	l.A0 = e.Attack.Start.or(0)
	l.A1 = e.Attack.End.or(e.Decay.Start.or(1))
	l.D0 = e.Decay.Start.or(l.A1)
	l.D1 = e.Decay.End.or(s)
	l.R0 = e.Release.Start.or(s)
	l.R1 = e.Release.End.or(0)
	return l
}

// Times are segment boundaries in seconds from the note start.
type Times struct {
	AttackEnd  float64
	DecayEnd   float64
	SustainEnd float64
	ReleaseEnd float64
}

// Times computes the boundaries for a gate of the given length. The order of
// the min/max clamps keeps the boundaries non-decreasing for any stage
// lengths, including ones longer than the gate.
func (e ADSR) Times(gate float64) Times {
	gate = math.Max(gate, 0)
	releaseStart := math.Max(0, gate-math.Max(e.Release.Time, 0))
	attack := math.Max(e.Attack.Time, 0)
	decay := math.Max(e.Decay.Time, 0)

	t := Times{ReleaseEnd: gate}
	t.AttackEnd = math.Min(releaseStart, attack)
	t.DecayEnd = math.Min(releaseStart, attack+decay)
	t.SustainEnd = math.Max(t.DecayEnd, releaseStart)
	if e.Sustain.MaxTime > 0 {
		t.SustainEnd = math.Min(t.SustainEnd, t.DecayEnd+e.Sustain.MaxTime)
	}
	return t
}

// Value returns the envelope gain at time t for the given gate length.
func (e ADSR) Value(t, gate float64) float64 {
	return e.valueAt(t, e.Times(gate), e.Levels())
}

func (e ADSR) valueAt(t float64, tm Times, l Levels) float64 {
	switch {
	case t <= tm.AttackEnd:
		return curve(e.Attack.Mode, true, t/tm.AttackEnd, l.A0, l.A1)
	case t <= tm.DecayEnd:
		return curve(e.Decay.Mode, false, (t-tm.AttackEnd)/(tm.DecayEnd-tm.AttackEnd), l.D0, l.D1)
	case t <= tm.SustainEnd:
		return l.S
	default:
		// The release keeps its own length even when an early sustain
		// cut leaves more room; the end level holds afterwards.
		dur := math.Max(e.Release.Time, 0)
		dur = math.Min(dur, tm.ReleaseEnd-tm.SustainEnd)
		return curve(e.Release.Mode, false, (t-tm.SustainEnd)/dur, l.R0, l.R1)
	}
}

// curve maps progress x through a segment onto [from, to]. Rising segments
// and falling segments use mirrored exponential and logarithmic shapes.
func curve(m Mode, rising bool, x, from, to float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		// Zero-length segment.
		x = 1
	}
	x = core.Clamp(x, 0, 1)
	var p float64
	switch m {
	case Exp:
		if rising {
			p = math.Exp(math.Ln2*x) - 1
		} else {
			p = 2 - math.Exp(math.Ln2*(1-x))
		}
	case Log:
		if rising {
			p = math.Log2(1 + x)
		} else {
			p = 1 - math.Log2(2-x)
		}
	default:
		p = x
	}
	return from + (to-from)*p
}

// Apply returns a copy of w multiplied by the envelope. The gate length is
// the waveform duration.
func Apply(w waveform.Waveform, e ADSR) waveform.Waveform {
	out := w.Clone()
	if len(out.Buffer) == 0 || out.SampleRate <= 0 {
		return out
	}
	gate := float64(len(out.Buffer)) / float64(out.SampleRate)
	tm := e.Times(gate)
	l := e.Levels()
	fs := float64(out.SampleRate)
	for i, v := range out.Buffer {
		out.Buffer[i] = float32(float64(v) * e.valueAt(float64(i)/fs, tm, l))
	}
	return out
}

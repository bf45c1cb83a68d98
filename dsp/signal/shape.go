package signal

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Shape evaluates a periodic waveform at phase (radians). duty is the current
// duty cycle in (0, 1]; shapes without a duty cycle ignore it.
type Shape interface {
	Sample(phase, duty float64) float64
}

// ShapeFunc adapts a function to a Shape.
type ShapeFunc func(phase, duty float64) float64

// Sample calls f.
func (f ShapeFunc) Sample(phase, duty float64) float64 { return f(phase, duty) }

// Waveshape enumerates the built-in shapes.
type Waveshape int

const (
	Sine Waveshape = iota
	Square
	Triangle
	Sawtooth
	Noise
	PWM
)

var waveshapeNames = [...]string{
	Sine:     "SINE",
	Square:   "SQUARE",
	Triangle: "TRIANGLE",
	Sawtooth: "SAW",
	Noise:    "NOISE",
	PWM:      "PWM",
}

func (w Waveshape) String() string {
	if w >= 0 && int(w) < len(waveshapeNames) {
		return waveshapeNames[w]
	}
	return fmt.Sprintf("Waveshape(%d)", int(w))
}

// ParseWaveshape maps a script token to a built-in shape, ignoring case.
// "SAWTOOTH" is accepted as an alias of "SAW".
func ParseWaveshape(s string) (Waveshape, error) {
	if strings.EqualFold(s, "sawtooth") {
		return Sawtooth, nil
	}
	for i, name := range waveshapeNames {
		if strings.EqualFold(name, s) {
			return Waveshape(i), nil
		}
	}
	return Sine, fmt.Errorf("signal: unknown waveform %q", s)
}

// Sample evaluates the built-in shape. Noise drawn through this method uses
// the global random source; [Generator.Generate] substitutes its seeded one.
func (w Waveshape) Sample(phase, duty float64) float64 {
	switch w {
	case Sine:
		return math.Sin(phase)
	case Square:
		if cyclePosition(phase) < 0.5 {
			return 1
		}
		return -1
	case Triangle:
		p := cyclePosition(phase)
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	case Sawtooth:
		return 2*cyclePosition(phase) - 1
	case Noise:
		return 2*rand.Float64() - 1
	case PWM:
		return pulse(cyclePosition(phase), duty)
	default:
		return 0
	}
}

// cyclePosition maps phase to [0, 1).
func cyclePosition(phase float64) float64 {
	p := math.Mod(phase, 2*math.Pi) / (2 * math.Pi)
	if p < 0 {
		p++
	}
	return p
}

// pulse is a square wave gated by duty: each half cycle is +1 (or -1) for the
// first duty fraction of its length and 0 for the remainder.
func pulse(p, duty float64) float64 {
	half := 1.0
	if p >= 0.5 {
		half = -1
		p -= 0.5
	}
	if p < duty*0.5 {
		return half
	}
	return 0
}

// noiseShape draws from a seeded source and optionally holds or smooths it.
type noiseShape struct {
	rng       *rand.Rand
	hold      int
	smoothing float64

	count int
	value float64
	prev  float64
}

func (n *noiseShape) Sample(_, _ float64) float64 {
	if n.count <= 0 {
		n.value = 2*n.rng.Float64() - 1
		n.count = max(n.hold, 1)
	}
	n.count--
	n.prev += (1 - n.smoothing) * (n.value - n.prev)
	return n.prev
}

// Package sfx renders one-shot sound effects from hand-tuned recipes.
//
// Each recipe exposes a fixed number of variation slots. Slot i scales its
// recipe constant by 1 + variation*vp[i], so a nil vector or a zero variation
// yields the canonical sound.
package sfx

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/effects"
	"github.com/cwbudde/algo-chiptune/dsp/effects/modulation"
	"github.com/cwbudde/algo-chiptune/dsp/envelope"
	"github.com/cwbudde/algo-chiptune/dsp/signal"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Type selects a sound effect recipe.
type Type int

const (
	Coin Type = iota
	Laser
	Explosion
)

var typeNames = [...]string{Coin: "COIN", Laser: "LASER", Explosion: "EXPLOSION"}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps COIN, LASER or EXPLOSION (any case) to a Type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(name, s) {
			return Type(i), nil
		}
	}
	return Coin, fmt.Errorf("sfx: unknown effect %q", s)
}

// NumVariations returns how many variation slots a recipe reads.
func NumVariations(t Type) int {
	switch t {
	case Coin:
		return 5
	case Laser:
		return 6
	case Explosion:
		return 7
	}
	return 0
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for recipe warnings.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithProcessorOptions forwards sample rate and seed to the oscillator.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(g *Generator) {
		g.procOpts = append(g.procOpts, opts...)
	}
}

// Generator renders sound effects.
type Generator struct {
	log      *slog.Logger
	procOpts []core.ProcessorOption
	gen      *signal.Generator
}

// New creates a sound effect generator.
func New(opts ...Option) *Generator {
	g := &Generator{log: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	g.gen = signal.NewGenerator(g.procOpts...)
	return g
}

// variations turns a variation vector into per-slot multipliers.
type variations struct {
	amount float64
	vp     []float64
}

func (v variations) f(i int) float64 {
	if i >= len(v.vp) {
		return 1
	}
	return 1 + v.amount*v.vp[i]
}

// Generate renders effect t. vp holds one perturbation per variation slot;
// values beyond [NumVariations] are ignored with a warning.
func (g *Generator) Generate(t Type, variation float64, vp ...float64) (waveform.Waveform, error) {
	n := NumVariations(t)
	if n == 0 {
		return waveform.Waveform{}, fmt.Errorf("sfx: unknown effect %v", t)
	}
	if len(vp) > n {
		g.log.Warn("sfx: ignoring extra variation parameters",
			"effect", t.String(), "used", n, "given", len(vp))
		vp = vp[:n]
	}
	v := variations{amount: variation, vp: vp}

	var (
		w   waveform.Waveform
		err error
	)
	switch t {
	case Coin:
		w = g.coin(v)
	case Laser:
		w, err = g.laser(v)
	case Explosion:
		w, err = g.explosion(v)
	}
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("sfx: %v: %w", t, err)
	}
	waveform.Normalize(&w)
	return w, nil
}

// coin is a two-note square blip: B5 jumping up a fourth.
func (g *Generator) coin(v variations) waveform.Waveform {
	p := signal.Params{
		Arpeggio: []signal.ArpeggioStep{{At: 0.06 * v.f(2), Factor: 4.0 / 3.0}},
	}
	w := g.gen.Generate(signal.Square, 0.25*v.f(0), 987.77*v.f(1), p, nil, nil, nil)
	return envelope.Apply(w, envelope.ADSR{
		Attack:  envelope.Segment{Mode: envelope.Lin, Time: 0.002},
		Decay:   envelope.Segment{Mode: envelope.Exp, Time: 0.05 * v.f(3)},
		Sustain: envelope.Sustain{Level: 0.6},
		Release: envelope.Segment{Mode: envelope.Log, Time: 0.1 * v.f(4)},
	})
}

// laser is a falling pulse with a sweeping duty cycle.
func (g *Generator) laser(v variations) (waveform.Waveform, error) {
	p := signal.Params{
		SlideVel:       -4 * v.f(2),
		DutyCycle:      0.3,
		DutyCycleSweep: 0.4 * v.f(3),
		MinFreq:        100,
	}
	w := g.gen.Generate(signal.PWM, 0.3*v.f(0), 1200*v.f(1), p, nil, nil, nil)
	w = envelope.Apply(w, envelope.ADSR{
		Attack:  envelope.Segment{Mode: envelope.Lin, Time: 0.001},
		Decay:   envelope.Segment{Mode: envelope.Exp, Time: 0.1 * v.f(4)},
		Sustain: envelope.Sustain{Level: 0.3},
		Release: envelope.Segment{Mode: envelope.Lin, Time: 0.15 * v.f(5)},
	})
	return modulation.ApplyFlanger(w,
		modulation.WithFlangerRateHz(0.5),
		modulation.WithFlangerDepthSeconds(0.002),
		modulation.WithFlangerMix(0.5))
}

// explosion is held, smoothed noise with a downward slide and a rumble,
// crushed to six bits.
func (g *Generator) explosion(v variations) (waveform.Waveform, error) {
	p := signal.Params{
		NoiseHold:      max(1, int(8*v.f(2)+0.5)),
		NoiseSmoothing: 0.3,
		SlideVel:       -1 * v.f(3),
		VibratoDepth:   core.Clamp(0.3*v.f(4), 0, 1),
		VibratoFreq:    7,
	}
	w := g.gen.Generate(signal.Noise, 0.9*v.f(0), 60*v.f(1), p, nil, nil, nil)
	w = envelope.Apply(w, envelope.ADSR{
		Attack:  envelope.Segment{Mode: envelope.Lin, Time: 0.005},
		Decay:   envelope.Segment{Mode: envelope.Log, Time: 0.3 * v.f(5)},
		Sustain: envelope.Sustain{Level: 0.4},
		Release: envelope.Segment{Mode: envelope.Exp, Time: 0.5 * v.f(6)},
	})
	w, err := effects.ApplyBitCrusher(w, effects.WithCrushBits(6), effects.WithCrushDownsample(2))
	if err != nil {
		return waveform.Waveform{}, err
	}
	return modulation.ApplyFlanger(w,
		modulation.WithFlangerRateHz(0.3),
		modulation.WithFlangerDepthSeconds(0.004),
		modulation.WithFlangerFeedback(0.5),
		modulation.WithFlangerMix(0.6))
}

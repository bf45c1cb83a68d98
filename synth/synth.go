package synth

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-chiptune/dsp/combine"
	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/effects/modulation"
	"github.com/cwbudde/algo-chiptune/dsp/envelope"
	"github.com/cwbudde/algo-chiptune/dsp/filter"
	"github.com/cwbudde/algo-chiptune/dsp/signal"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// ErrUnknownInstrument is returned for instrument ids outside the table.
var ErrUnknownInstrument = errors.New("synth: unknown instrument")

// maxCutoffRatio caps relative filter cutoffs below Nyquist so that high
// notes still get a valid design.
const maxCutoffRatio = 0.45

// Synthesizer renders library instruments. It shares one signal generator, so
// noise layers advance a single seeded stream and renders are reproducible
// for a fixed call order.
type Synthesizer struct {
	gen *signal.Generator
}

// New creates a synthesizer.
func New(opts ...core.ProcessorOption) *Synthesizer {
	return &Synthesizer{gen: signal.NewGenerator(opts...)}
}

// SampleRate returns the output rate in Hz.
func (s *Synthesizer) SampleRate() int { return s.gen.SampleRate() }

// Generator exposes the underlying oscillator source.
func (s *Synthesizer) Generator() *signal.Generator { return s.gen }

// Synthesize renders instrument inst at freq for durationS seconds. The
// generation parameters and effects apply to every oscillator layer.
func (s *Synthesizer) Synthesize(inst Instrument, p signal.Params, durationS, freq float64, fx signal.FreqEffect, ax signal.AmplEffect, px signal.PhaseEffect) (waveform.Waveform, error) {
	r, ok := RecipeOf(inst)
	if !ok {
		return waveform.Waveform{}, fmt.Errorf("%w: %v", ErrUnknownInstrument, inst)
	}
	w, err := s.Render(r, p, durationS, freq, fx, ax, px)
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("synth: %v: %w", inst, err)
	}
	return w, nil
}

// Render runs an arbitrary recipe: mix, envelope, lowpass, chorus, normalize.
func (s *Synthesizer) Render(r Recipe, p signal.Params, durationS, freq float64, fx signal.FreqEffect, ax signal.AmplEffect, px signal.PhaseEffect) (waveform.Waveform, error) {
	if len(r.Layers) == 0 {
		return waveform.New(waveform.NumSamples(durationS, s.SampleRate()), s.SampleRate(), freq), nil
	}

	parts := make([]combine.Weighted, 0, len(r.Layers))
	for i, l := range r.Layers {
		w, err := s.layer(l, p, durationS, freq, fx, ax, px)
		if err != nil {
			return waveform.Waveform{}, fmt.Errorf("layer %d: %w", i, err)
		}
		parts = append(parts, combine.Weighted{Weight: l.Weight, Wave: w})
	}

	out, err := combine.Mix(parts...)
	if err != nil {
		return waveform.Waveform{}, err
	}
	out.Frequency = freq

	if r.Envelope != "" {
		e, err := envelope.Preset(r.Envelope)
		if err != nil {
			return waveform.Waveform{}, err
		}
		out = envelope.Apply(out, e)
	}
	if r.LowPass.Active() {
		if out, err = FilterRelative(out, r.LowPass); err != nil {
			return waveform.Waveform{}, err
		}
	}
	if r.Chorus {
		if out, err = modulation.ApplyChorus(out,
			modulation.WithChorusMix(0.3),
			modulation.WithChorusStages(2)); err != nil {
			return waveform.Waveform{}, err
		}
	}
	if r.Normalize {
		waveform.Normalize(&out)
	}
	return out, nil
}

func (s *Synthesizer) layer(l Layer, p signal.Params, durationS, freq float64, fx signal.FreqEffect, ax signal.AmplEffect, px signal.PhaseEffect) (waveform.Waveform, error) {
	h := l.Harmonic
	if h == 0 {
		h = 1
	}
	f := freq * h

	var w waveform.Waveform
	if l.Pluck {
		w = s.gen.KarplusStrong(durationS, f)
	} else {
		w = s.gen.Generate(l.Shape, durationS, f, p, fx, ax, px)
	}

	if l.RingHarmonic > 0 {
		carrier := s.gen.Generate(l.RingShape, durationS, freq*l.RingHarmonic, p, fx, ax, px)
		rm, err := combine.RingModulation(w, carrier)
		if err != nil {
			return waveform.Waveform{}, err
		}
		rm.Frequency = f
		w = rm
	}

	if l.Filter.Active() {
		return FilterRelative(w, l.Filter)
	}
	return w, nil
}

// FilterRelative applies a filter whose cutoff is relative to w.Frequency,
// capping the cutoff below Nyquist. A waveform without a nominal frequency is
// returned unfiltered.
func FilterRelative(w waveform.Waveform, a filter.Args) (waveform.Waveform, error) {
	cutoff := w.Frequency * a.CutoffMult
	if cutoff <= 0 || w.SampleRate <= 0 {
		return w, nil
	}
	cutoff = min(cutoff, maxCutoffRatio*float64(w.SampleRate))
	return filter.ApplyAt(w, a, cutoff, w.Frequency*a.BandwidthMult)
}

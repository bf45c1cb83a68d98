package chiptune

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cwbudde/algo-chiptune/dsp/combine"
	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/envelope"
	"github.com/cwbudde/algo-chiptune/dsp/signal"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/synth"
)

// Build synthesizes the waveform of every sounding note in t. Instrument
// references are checked for cycles first; a cycle fails the build with
// ErrInstrumentCycle. Dangling references and table indices are returned as
// diagnostics and leave the affected notes silent.
func Build(t *Tune, syn *synth.Synthesizer) ([]*ParseError, error) {
	if _, err := InstrumentOrder(t); err != nil {
		return nil, err
	}

	b := &builder{
		t:     t,
		syn:   syn,
		raw:   make(map[waveKey]waveform.Waveform),
		full:  make(map[waveKey]waveform.Waveform),
		notes: make(map[noteKey]waveform.Waveform),
		seen:  make(map[string]bool),
	}
	for v := range t.Voices {
		notes := t.Voices[v].Notes
		for i := range notes {
			n := &notes[i]
			if n.Kind != NoteSound {
				continue
			}
			w, err := b.note(n)
			if err != nil {
				b.report(n.Line, n.Instrument, err)
				n.Wave = waveform.Waveform{}
				continue
			}
			n.Wave = w
		}
	}
	t.built = true
	return b.diags, nil
}

// InstrumentOrder returns the instruments sorted so that every instrument
// follows the ones it references. References to undefined instruments are
// ignored here. A cycle returns ErrInstrumentCycle naming its members.
func InstrumentOrder(t *Tune) ([]string, error) {
	indeg := make(map[string]int, len(t.Instruments))
	users := make(map[string][]string)
	for _, name := range t.InstrumentOrder {
		in := t.Instruments[name]
		for _, ref := range in.References() {
			if _, ok := t.Instruments[ref]; !ok {
				continue
			}
			indeg[name]++
			users[ref] = append(users[ref], name)
		}
	}

	queue := make([]string, 0, len(t.InstrumentOrder))
	for _, name := range t.InstrumentOrder {
		if indeg[name] == 0 {
			queue = append(queue, name)
		}
	}
	order := make([]string, 0, len(t.InstrumentOrder))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, u := range users[name] {
			if indeg[u]--; indeg[u] == 0 {
				queue = append(queue, u)
			}
		}
	}

	if len(order) < len(t.InstrumentOrder) {
		var cyc []string
		for _, name := range t.InstrumentOrder {
			if indeg[name] > 0 {
				cyc = append(cyc, name)
			}
		}
		slices.Sort(cyc)
		return nil, fmt.Errorf("%w: %s", ErrInstrumentCycle, strings.Join(cyc, ", "))
	}
	return order, nil
}

type waveKey struct {
	name string
	freq float64
	dur  float64
}

type noteKey struct {
	waveKey
	adsr, filter int
}

type builder struct {
	t   *Tune
	syn *synth.Synthesizer

	// raw holds oscillator or composition output, full adds the
	// instrument's own envelope and filter.
	raw   map[waveKey]waveform.Waveform
	full  map[waveKey]waveform.Waveform
	notes map[noteKey]waveform.Waveform

	diags []*ParseError
	seen  map[string]bool
}

// report records one diagnostic per distinct message.
func (b *builder) report(line int, text string, err error) {
	key := fmt.Sprintf("%d|%s|%v", line, text, err)
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.diags = append(b.diags, &ParseError{Line: line, Text: text, Err: err})
}

func (b *builder) note(n *Note) (waveform.Waveform, error) {
	key := noteKey{
		waveKey: waveKey{n.Instrument, n.Frequency, core.SecondsFromMillis(n.DurationMS)},
		adsr:    n.ADSR,
		filter:  n.Filter,
	}
	if w, ok := b.notes[key]; ok {
		return w, nil
	}
	in, ok := b.t.Instruments[n.Instrument]
	if !ok {
		return waveform.Waveform{}, fmt.Errorf("%w: instrument %q", ErrUnknownRef, n.Instrument)
	}

	w, err := b.rawWave(in, key.freq, key.dur, n.Line)
	if err != nil {
		return waveform.Waveform{}, err
	}
	adsr := in.ADSR
	if n.ADSR >= 0 {
		adsr = n.ADSR
	}
	if w, err = b.effects(w, adsr, in.Filter, n.Line); err != nil {
		return waveform.Waveform{}, err
	}
	if n.Filter >= 0 {
		if w, err = b.effects(w, -1, n.Filter, n.Line); err != nil {
			return waveform.Waveform{}, err
		}
	}
	b.notes[key] = w
	return w, nil
}

// instrument renders a referenced instrument including its own envelope,
// filter and gain.
func (b *builder) instrument(name string, freq, dur float64, line int) (waveform.Waveform, error) {
	key := waveKey{name, freq, dur}
	if w, ok := b.full[key]; ok {
		return w, nil
	}
	in, ok := b.t.Instruments[name]
	if !ok {
		return waveform.Waveform{}, fmt.Errorf("%w: instrument %q", ErrUnknownRef, name)
	}
	w, err := b.rawWave(in, freq, dur, line)
	if err != nil {
		return waveform.Waveform{}, err
	}
	if w, err = b.effects(w, in.ADSR, in.Filter, line); err != nil {
		return waveform.Waveform{}, err
	}
	if in.Gain != 1 {
		w = w.Clone()
		w.Scale(in.Gain)
	}
	b.full[key] = w
	return w, nil
}

func (b *builder) rawWave(in *Instrument, freq, dur float64, line int) (waveform.Waveform, error) {
	key := waveKey{in.Name, freq, dur}
	if w, ok := b.raw[key]; ok {
		return w, nil
	}

	var (
		w   waveform.Waveform
		err error
	)
	switch in.Kind {
	case KindBasic:
		w = b.syn.Generator().Generate(in.Shape, dur, freq, b.params(in, line), in.Freq, in.Ampl, in.Phase)
	case KindLibrary:
		w, err = b.syn.Synthesize(in.Library, b.params(in, line), dur, freq, in.Freq, in.Ampl, in.Phase)
	case KindRingMod, KindConv:
		w, err = b.pair(in, freq, dur, line)
	case KindWeighted:
		w, err = b.weighted(in, freq, dur, line)
	default:
		err = fmt.Errorf("%w: instrument kind %v", ErrBadValue, in.Kind)
	}
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("instrument %q: %w", in.Name, err)
	}
	b.raw[key] = w
	return w, nil
}

func (b *builder) pair(in *Instrument, freq, dur float64, line int) (waveform.Waveform, error) {
	a, err := b.instrument(in.A, freq, dur, line)
	if err != nil {
		return waveform.Waveform{}, err
	}
	c, err := b.instrument(in.B, freq, dur, line)
	if err != nil {
		return waveform.Waveform{}, err
	}
	if a.Len() == 0 || c.Len() == 0 {
		return waveform.New(0, b.syn.SampleRate(), freq), nil
	}
	if in.Kind == KindRingMod {
		return combine.RingModulation(a, c)
	}
	return combine.ReverbFast(a, c)
}

func (b *builder) weighted(in *Instrument, freq, dur float64, line int) (waveform.Waveform, error) {
	parts := make([]combine.Weighted, 0, len(in.Parts))
	for _, p := range in.Parts {
		w, err := b.instrument(p.Name, freq, dur, line)
		if err != nil {
			return waveform.Waveform{}, err
		}
		parts = append(parts, combine.Weighted{Weight: p.Weight, Wave: w})
	}
	w, err := combine.Mix(parts...)
	if errors.Is(err, combine.ErrZeroWeight) {
		return waveform.New(0, b.syn.SampleRate(), freq), nil
	}
	return w, err
}

func (b *builder) params(in *Instrument, line int) signal.Params {
	if in.Params < 0 {
		return signal.Params{}
	}
	p, ok := b.t.Params[in.Params]
	if !ok {
		b.report(line, in.Name, fmt.Errorf("%w: params %d", ErrUnknownRef, in.Params))
	}
	return p
}

// effects applies envelope adsr and filter flt; -1 skips either.
func (b *builder) effects(w waveform.Waveform, adsr, flt, line int) (waveform.Waveform, error) {
	if adsr >= 0 {
		e, ok := b.t.ADSRs[adsr]
		if ok {
			w = envelope.Apply(w, e)
		} else {
			b.report(line, "adsr", fmt.Errorf("%w: adsr %d", ErrUnknownRef, adsr))
		}
	}
	if flt >= 0 {
		a, ok := b.t.Filters[flt]
		if !ok {
			b.report(line, "flt", fmt.Errorf("%w: filter %d", ErrUnknownRef, flt))
			return w, nil
		}
		out, err := synth.FilterRelative(w, a)
		if err != nil {
			return waveform.Waveform{}, fmt.Errorf("filter %d: %w", flt, err)
		}
		w = out
	}
	return w, nil
}

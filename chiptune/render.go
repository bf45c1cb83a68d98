package chiptune

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-chiptune/dsp/combine"
	"github.com/cwbudde/algo-chiptune/dsp/conv"
	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/resample"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/dsp/window"
)

// DefaultMaxRender bounds offline renders of tunes that loop forever.
const DefaultMaxRender = 10 * time.Minute

// irFadeMS is the taper applied to the tail of a reverb impulse response.
const irFadeMS = 10

// RenderOptions controls Render.
type RenderOptions struct {
	// Interrupt cuts a voice's sounding note when its next note starts.
	// Without it the new note is dropped while the voice is busy, as in
	// Engine playback.
	Interrupt bool
	// MaxDuration stops the render; zero means DefaultMaxRender.
	MaxDuration time.Duration
	// IR, when non-empty, is convolved with every note.
	IR waveform.Waveform
}

// Render mixes a built tune into one waveform by walking its control flow
// without an audio device. Every note is scaled by script, instrument and
// note gain; the result is normalized to a peak of at most 1.
func Render(t *Tune, opts RenderOptions) (waveform.Waveform, error) {
	if t == nil || !t.Built() {
		return waveform.Waveform{}, fmt.Errorf("%w: tune not built", ErrNoTune)
	}
	maxDur := opts.MaxDuration
	if maxDur <= 0 {
		maxDur = DefaultMaxRender
	}
	rate := renderRate(t)
	limit := waveform.NumSamples(maxDur.Seconds(), rate)

	var oa *conv.OverlapAdd
	if opts.IR.Len() > 0 {
		var err error
		if oa, err = prepareIR(opts.IR, rate); err != nil {
			return waveform.Waveform{}, err
		}
	}

	type track struct {
		start, end int
		gain       float64
		w          waveform.Waveform
	}
	tracks := make([]track, len(t.Voices))
	var out []float64

	cur := NewCursor(t.Program)
	now := 0.0
	for {
		at := int(now * float64(rate))
		if at >= limit {
			break
		}
		pos, ok := cur.Next()
		if !ok {
			break
		}
		for v := range t.Voices {
			note := &t.Voices[v].Notes[pos.Index]
			if note.Kind != NoteSound || note.Wave.Len() == 0 {
				continue
			}
			if !opts.Interrupt && tracks[v].end > at {
				continue
			}
			w := note.Wave
			if w.SampleRate != rate {
				rw, err := resample.Resample(w, rate)
				if err != nil {
					return waveform.Waveform{}, fmt.Errorf("chiptune: render line %d: %w", note.Line, err)
				}
				w = rw
			}
			if oa != nil {
				rw, err := combine.ReverbWith(w, oa)
				if err != nil {
					return waveform.Waveform{}, fmt.Errorf("chiptune: render line %d: %w", note.Line, err)
				}
				w = rw
			}

			// A new note on a busy voice cuts the old one.
			if old := tracks[v]; opts.Interrupt && old.end > at {
				for i := at; i < old.end; i++ {
					out[i] -= old.gain * float64(old.w.Buffer[i-old.start])
				}
			}

			gain := pos.Gain * note.Gain
			if in, ok := t.Instruments[note.Instrument]; ok {
				gain *= in.Gain
			}
			end := min(at+w.Len(), limit)
			if end > len(out) {
				out = append(out, make([]float64, end-len(out))...)
			}
			for i := at; i < end; i++ {
				out[i] += gain * float64(w.Buffer[i-at])
			}
			tracks[v] = track{start: at, end: end, gain: gain, w: w}
		}
		if !pos.Separator {
			now += core.SecondsFromMillis(pos.TempoMS)
		}
	}

	res := waveform.FromFloat64(out, rate, 0)
	waveform.NormalizeOver(&res, 1)
	return res, nil
}

func renderRate(t *Tune) int {
	for _, v := range t.Voices {
		for _, n := range v.Notes {
			if n.Wave.SampleRate > 0 {
				return n.Wave.SampleRate
			}
		}
	}
	return core.DefaultSampleRate
}

// prepareIR resamples ir to rate, fades its tail and returns a convolver
// for it.
func prepareIR(ir waveform.Waveform, rate int) (*conv.OverlapAdd, error) {
	if ir.Len() == 0 {
		return nil, waveform.ErrEmpty
	}
	k := ir.Clone()
	if k.SampleRate != rate {
		var err error
		if k, err = resample.Resample(ir, rate); err != nil {
			return nil, fmt.Errorf("chiptune: reverb ir: %w", err)
		}
	}
	window.FadeOut(&k, min(k.Len()/4, rate*irFadeMS/1000))
	oa, err := conv.NewOverlapAdd(k.Float64(), 0)
	if err != nil {
		return nil, fmt.Errorf("chiptune: reverb ir: %w", err)
	}
	return oa, nil
}

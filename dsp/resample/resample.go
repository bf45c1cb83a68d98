package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/filter"
	"github.com/cwbudde/algo-chiptune/dsp/interp"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// ErrInvalidRate indicates an invalid input or output sample rate.
var ErrInvalidRate = errors.New("resample: invalid sample rate")

type config struct {
	order       int
	cutoffScale float64
	filter      bool
}

// Option configures the resampler.
type Option func(*config)

// WithOrder overrides the anti-aliasing lowpass order.
func WithOrder(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.order = n
		}
	}
}

// WithCutoffScale overrides the lowpass cutoff as a fraction of the lower
// Nyquist frequency, in range (0, 1).
func WithCutoffScale(v float64) Option {
	return func(cfg *config) {
		if v > 0 && v < 1 {
			cfg.cutoffScale = v
		}
	}
}

// WithoutFilter disables the lowpass stage, leaving plain interpolation.
func WithoutFilter() Option {
	return func(cfg *config) { cfg.filter = false }
}

func defaultConfig() config {
	return config{order: 4, cutoffScale: 0.9, filter: true}
}

// OutputLen returns the number of samples Resample produces for n input
// samples converted from inRate to outRate.
func OutputLen(n, inRate, outRate int) int {
	if n <= 0 || inRate <= 0 || outRate <= 0 {
		return 0
	}
	return int(math.Round(float64(n) * float64(outRate) / float64(inRate)))
}

// Resample converts w to newRate. The nominal frequency is preserved and the
// duration is recomputed from the new length.
func Resample(w waveform.Waveform, newRate int, opts ...Option) (waveform.Waveform, error) {
	if w.SampleRate <= 0 || newRate <= 0 {
		return waveform.Waveform{}, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, w.SampleRate, newRate)
	}
	if w.SampleRate == newRate {
		return w.Clone(), nil
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	out := waveform.New(OutputLen(len(w.Buffer), w.SampleRate, newRate), newRate, w.Frequency)
	interpolate(out.Buffer, w.Buffer, float64(w.SampleRate)/float64(newRate))

	if !cfg.filter || len(out.Buffer) == 0 {
		return out, nil
	}

	cutoff := cfg.cutoffScale * float64(min(w.SampleRate, newRate)) / 2
	args := filter.Args{Type: filter.TypeButterworth, Op: filter.OpLowPass, Order: cfg.order}
	filtered, err := filter.ApplyAt(out, args, cutoff, 0)
	if err != nil {
		return out, fmt.Errorf("resample: anti-aliasing filter: %w", err)
	}
	return filtered, nil
}

// interpolate fills dst by reading src at positions i*step.
func interpolate(dst, src []float32, step float64) {
	last := len(src) - 1
	for i := range dst {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			dst[i] = src[last]
			continue
		}
		dst[i] = float32(interp.Linear2(pos-float64(j), float64(src[j]), float64(src[j+1])))
	}
}

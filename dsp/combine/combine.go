package combine

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-chiptune/dsp/conv"
	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/resample"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Errors returned by combine operations.
var (
	ErrNoInputs   = errors.New("combine: no inputs")
	ErrZeroWeight = errors.New("combine: weights sum to zero")
)

// gcdTolerance is the frequency resolution, in Hz, used when deriving the
// fundamental of a ring-modulated pair.
const gcdTolerance = 1e-2

// Weighted pairs a waveform with its mix weight.
type Weighted struct {
	Weight float64
	Wave   waveform.Waveform
}

// commonRate returns the highest sample rate among waves.
func commonRate(waves ...waveform.Waveform) int {
	rate := 0
	for _, w := range waves {
		rate = max(rate, w.SampleRate)
	}
	return rate
}

func toRate(w waveform.Waveform, rate int) (waveform.Waveform, error) {
	if w.SampleRate == rate {
		return w, nil
	}
	return resample.Resample(w, rate)
}

// Mix resamples every input to the highest sample rate among them, truncates
// to the shortest result and returns the weighted average. The nominal
// frequency is the arithmetic mean of the inputs' frequencies.
func Mix(inputs ...Weighted) (waveform.Waveform, error) {
	if len(inputs) == 0 {
		return waveform.Waveform{}, ErrNoInputs
	}

	waves := make([]waveform.Waveform, len(inputs))
	for i, in := range inputs {
		waves[i] = in.Wave
	}
	rate := commonRate(waves...)

	n := -1
	totalWeight, freqSum := 0.0, 0.0
	for i := range waves {
		w, err := toRate(waves[i], rate)
		if err != nil {
			return waveform.Waveform{}, fmt.Errorf("combine: mix input %d: %w", i, err)
		}
		waves[i] = w
		if n < 0 || w.Len() < n {
			n = w.Len()
		}
		totalWeight += inputs[i].Weight
		freqSum += w.Frequency
	}
	if totalWeight == 0 {
		return waveform.Waveform{}, ErrZeroWeight
	}

	acc := make([]float64, n)
	for i, w := range waves {
		g := inputs[i].Weight
		for j, v := range w.Buffer[:n] {
			acc[j] += g * float64(v)
		}
	}
	for j := range acc {
		acc[j] /= totalWeight
	}

	return waveform.FromFloat64(acc, rate, freqSum/float64(len(waves))), nil
}

// RingModulation multiplies a and b sample by sample over their overlapping
// length after resampling both to the higher rate. The nominal frequency of
// the product is the greatest common divisor of the input frequencies.
// The operation is commutative.
func RingModulation(a, b waveform.Waveform) (waveform.Waveform, error) {
	rate := commonRate(a, b)
	ra, err := toRate(a, rate)
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("combine: ring modulation: %w", err)
	}
	rb, err := toRate(b, rate)
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("combine: ring modulation: %w", err)
	}

	n := min(ra.Len(), rb.Len())
	x := ra.Float64()[:n]
	y := rb.Float64()[:n]
	out := make([]float64, n)
	vecmath.MulBlock(out, x, y)

	return waveform.FromFloat64(out, rate, core.GCD(a.Frequency, b.Frequency, gcdTolerance)), nil
}

// Reverb convolves w with the impulse response ir in the time domain. The
// result has len(w)+len(ir)-1 samples and a peak of at most 1.
func Reverb(w, ir waveform.Waveform) (waveform.Waveform, error) {
	return reverb(w, ir, conv.Direct)
}

// ReverbFast computes the same convolution as [Reverb] through one
// zero-padded power-of-two FFT.
func ReverbFast(w, ir waveform.Waveform) (waveform.Waveform, error) {
	return reverb(w, ir, conv.FFT)
}

// ReverbWith applies a prepared overlap-add convolver, for callers that
// convolve many waveforms with the same impulse response. The convolver's
// kernel must already be at w's sample rate.
func ReverbWith(w waveform.Waveform, oa *conv.OverlapAdd) (waveform.Waveform, error) {
	if len(w.Buffer) == 0 {
		return waveform.Waveform{}, waveform.ErrEmpty
	}
	out, err := oa.Process(w.Float64())
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("combine: reverb: %w", err)
	}
	res := waveform.FromFloat64(out, w.SampleRate, w.Frequency)
	waveform.NormalizeOver(&res, 1)
	return res, nil
}

type convolver func(a, b []float64) ([]float64, error)

func reverb(w, ir waveform.Waveform, fn convolver) (waveform.Waveform, error) {
	if len(w.Buffer) == 0 || len(ir.Buffer) == 0 {
		return waveform.Waveform{}, waveform.ErrEmpty
	}
	kernel, err := toRate(ir, w.SampleRate)
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("combine: reverb kernel: %w", err)
	}

	out, err := fn(w.Float64(), kernel.Float64())
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("combine: reverb: %w", err)
	}

	res := waveform.FromFloat64(out, w.SampleRate, w.Frequency)
	waveform.NormalizeOver(&res, 1)
	return res, nil
}

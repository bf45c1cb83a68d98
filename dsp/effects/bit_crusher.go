package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

const (
	minCrushBits       = 1.0
	maxCrushBits       = 24.0
	maxCrushDownsample = 64
)

// BitCrusherOption mutates bit crusher parameters.
type BitCrusherOption func(*BitCrusher) error

// WithCrushBits sets the quantization depth. Fractional depths are allowed
// so the effect can be swept smoothly. Range: [1, 24].
func WithCrushBits(bits float64) BitCrusherOption {
	return func(bc *BitCrusher) error {
		if bits < minCrushBits || bits > maxCrushBits || math.IsNaN(bits) {
			return fmt.Errorf("bit crusher depth must be in [%g, %g]: %f", minCrushBits, maxCrushBits, bits)
		}
		bc.bits = bits
		return nil
	}
}

// WithCrushDownsample holds every input sample for factor output samples.
func WithCrushDownsample(factor int) BitCrusherOption {
	return func(bc *BitCrusher) error {
		if factor < 1 || factor > maxCrushDownsample {
			return fmt.Errorf("bit crusher downsample must be in [1, %d]: %d", maxCrushDownsample, factor)
		}
		bc.hold = factor
		return nil
	}
}

// WithCrushMix sets the wet amount in [0, 1].
func WithCrushMix(mix float64) BitCrusherOption {
	return func(bc *BitCrusher) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("bit crusher mix must be in [0, 1]: %f", mix)
		}
		bc.mix = mix
		return nil
	}
}

// BitCrusher mimics a cheap DAC: samples are snapped to a grid of
// 2^(bits-1) steps per unit and then held for a number of samples.
type BitCrusher struct {
	bits  float64
	hold  int
	mix   float64
	steps float64

	count int
	held  float64
}

// NewBitCrusher returns an 8-bit crusher without downsampling at full mix.
func NewBitCrusher(opts ...BitCrusherOption) (*BitCrusher, error) {
	bc := &BitCrusher{bits: 8, hold: 1, mix: 1}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(bc); err != nil {
			return nil, err
		}
	}
	bc.steps = math.Exp2(bc.bits - 1)
	return bc, nil
}

// Reset clears the hold state.
func (bc *BitCrusher) Reset() {
	bc.count = 0
	bc.held = 0
}

// ProcessSample crushes one sample. The first sample of every hold period
// is latched, so the output starts on the input rather than on silence.
func (bc *BitCrusher) ProcessSample(x float64) float64 {
	if bc.count == 0 {
		bc.held = math.Round(x*bc.steps) / bc.steps
	}
	bc.count++
	if bc.count >= bc.hold {
		bc.count = 0
	}
	return x*(1-bc.mix) + bc.held*bc.mix
}

// ProcessInPlace crushes buf in place.
func (bc *BitCrusher) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = bc.ProcessSample(buf[i])
	}
}

// Bits returns the quantization depth.
func (bc *BitCrusher) Bits() float64 { return bc.bits }

// Downsample returns the hold factor.
func (bc *BitCrusher) Downsample() int { return bc.hold }

// ApplyBitCrusher returns a crushed copy of w, clamped to [-1, 1].
func ApplyBitCrusher(w waveform.Waveform, opts ...BitCrusherOption) (waveform.Waveform, error) {
	bc, err := NewBitCrusher(opts...)
	if err != nil {
		return waveform.Waveform{}, err
	}
	out := w.Clone()
	samples := out.Float64()
	bc.ProcessInPlace(samples)
	out.SetFloat64(samples)
	out.Clamp(-1, 1)
	return out, nil
}

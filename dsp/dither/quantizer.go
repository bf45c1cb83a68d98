package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	minBitDepth = 2
	maxBitDepth = 32
)

type config struct {
	bitDepth  int
	typ       DitherType
	amplitude float64
	seed      uint64
}

// Option configures a [Quantizer].
type Option func(*config) error

// WithBitDepth sets the target bit depth in [2, 32]. Default 16.
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}
		cfg.bitDepth = bits
		return nil
	}
}

// WithDitherType sets the noise distribution. Default [DitherTriangular].
func WithDitherType(dt DitherType) Option {
	return func(cfg *config) error {
		if !dt.Valid() {
			return fmt.Errorf("dither: invalid dither type: %d", dt)
		}
		cfg.typ = dt
		return nil
	}
}

// WithDitherAmplitude scales the noise, in steps. Default 1.
func WithDitherAmplitude(amp float64) Option {
	return func(cfg *config) error {
		if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
			return fmt.Errorf("dither: amplitude must be >= 0 and finite: %f", amp)
		}
		cfg.amplitude = amp
		return nil
	}
}

// WithSeed seeds the noise generator. Default 1.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// Quantizer maps samples in [-1, 1] onto the symmetric integer range
// [-(2^(bits-1)-1), 2^(bits-1)-1], clipping anything outside.
type Quantizer struct {
	bitDepth  int
	typ       DitherType
	amplitude float64
	rng       *rand.Rand
	scale     float64
	limit     int
}

// NewQuantizer returns a 16-bit triangular-dither quantizer unless options
// say otherwise.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := config{bitDepth: 16, typ: DitherTriangular, amplitude: 1, seed: 1}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	scale := math.Exp2(float64(cfg.bitDepth-1)) - 1
	return &Quantizer{
		bitDepth:  cfg.bitDepth,
		typ:       cfg.typ,
		amplitude: cfg.amplitude,
		rng:       rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)),
		scale:     scale,
		limit:     int(scale),
	}, nil
}

// ProcessInteger quantizes one sample.
func (q *Quantizer) ProcessInteger(x float64) int {
	v := math.Round(x*q.scale + q.noise())
	return max(-q.limit, min(q.limit, int(v)))
}

// ProcessSample quantizes one sample and scales it back to [-1, 1].
func (q *Quantizer) ProcessSample(x float64) float64 {
	return float64(q.ProcessInteger(x)) / q.scale
}

// ProcessInPlace quantizes buf in place.
func (q *Quantizer) ProcessInPlace(buf []float64) {
	for i, v := range buf {
		buf[i] = q.ProcessSample(v)
	}
}

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case DitherRectangular:
		return q.amplitude * (q.rng.Float64() - 0.5)
	case DitherTriangular:
		return q.amplitude * (q.rng.Float64() - q.rng.Float64())
	case DitherGaussian:
		return q.amplitude * 0.5 * q.rng.NormFloat64()
	default:
		return 0
	}
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// DitherType returns the noise distribution.
func (q *Quantizer) DitherType() DitherType { return q.typ }

package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/delay"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

const (
	defaultChorusSpeedHz      = 0.35
	defaultChorusDepthSeconds = 0.003
	defaultChorusBaseSeconds  = 0.018
	defaultChorusMix          = 0.18
	defaultChorusStages       = 3
	minChorusDelaySeconds     = 0.001
)

// ChorusOption mutates chorus construction parameters.
type ChorusOption func(*chorusConfig) error

type chorusConfig struct {
	speedHz   float64
	depth     float64
	baseDelay float64
	mix       float64
	stages    int
}

// WithChorusSpeedHz sets the LFO rate.
func WithChorusSpeedHz(speedHz float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if speedHz <= 0 || !finite(speedHz) {
			return fmt.Errorf("chorus speed must be > 0: %f", speedHz)
		}
		cfg.speedHz = speedHz
		return nil
	}
}

// WithChorusDepthSeconds sets the modulation depth.
func WithChorusDepthSeconds(depth float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if depth < 0 || !finite(depth) {
			return fmt.Errorf("chorus depth must be >= 0 and finite: %f", depth)
		}
		cfg.depth = depth
		return nil
	}
}

// WithChorusBaseDelaySeconds sets the base delay.
func WithChorusBaseDelaySeconds(baseDelay float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if baseDelay < minChorusDelaySeconds || !finite(baseDelay) {
			return fmt.Errorf("chorus base delay must be >= %f: %f", minChorusDelaySeconds, baseDelay)
		}
		cfg.baseDelay = baseDelay
		return nil
	}
}

// WithChorusMix sets the wet amount in [0, 1].
func WithChorusMix(mix float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if mix < 0 || mix > 1 || !finite(mix) {
			return fmt.Errorf("chorus mix must be in [0,1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// WithChorusStages sets the number of taps.
func WithChorusStages(stages int) ChorusOption {
	return func(cfg *chorusConfig) error {
		if stages <= 0 {
			return fmt.Errorf("chorus stages must be > 0: %d", stages)
		}
		cfg.stages = stages
		return nil
	}
}

// Chorus sums equally weighted delay taps. Tap i follows
//
//	d_i(t) = baseDelay + depth * 0.5 * (1 + sin(phase + 2*pi*i/stages))
type Chorus struct {
	sampleRate float64
	cfg        chorusConfig

	lfoPhase float64
	line     *delay.Line
}

// NewChorus creates a chorus effect with tuned musical defaults.
func NewChorus(sampleRate float64, opts ...ChorusOption) (*Chorus, error) {
	if sampleRate <= 0 || !finite(sampleRate) {
		return nil, fmt.Errorf("chorus sample rate must be > 0: %f", sampleRate)
	}
	cfg := chorusConfig{
		speedHz:   defaultChorusSpeedHz,
		depth:     defaultChorusDepthSeconds,
		baseDelay: defaultChorusBaseSeconds,
		mix:       defaultChorusMix,
		stages:    defaultChorusStages,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	line, err := delay.New(max(int(math.Ceil((cfg.baseDelay+cfg.depth)*sampleRate))+3, 4))
	if err != nil {
		return nil, err
	}
	return &Chorus{sampleRate: sampleRate, cfg: cfg, line: line}, nil
}

// Reset clears delay state and modulation phase.
func (c *Chorus) Reset() {
	c.line.Reset()
	c.lfoPhase = 0
}

// ProcessSample processes one sample.
func (c *Chorus) ProcessSample(input float64) float64 {
	c.line.Write(input)

	base := c.cfg.baseDelay * c.sampleRate
	depth := c.cfg.depth * c.sampleRate
	stages := float64(c.cfg.stages)

	wet := 0.0
	for i := range c.cfg.stages {
		offset := 2 * math.Pi * float64(i) / stages
		mod := 0.5 * (1 + math.Sin(c.lfoPhase+offset))
		wet += c.line.ReadFractional(base + depth*mod)
	}
	wet /= stages

	c.lfoPhase += 2 * math.Pi * c.cfg.speedHz / c.sampleRate
	if c.lfoPhase >= 2*math.Pi {
		c.lfoPhase -= 2 * math.Pi
	}

	return input*(1-c.cfg.mix) + wet*c.cfg.mix
}

// ProcessInPlace applies chorus to buf in place.
func (c *Chorus) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// Stages returns number of chorus taps.
func (c *Chorus) Stages() int { return c.cfg.stages }

// Mix returns wet mix amount in [0, 1].
func (c *Chorus) Mix() float64 { return c.cfg.mix }

// ApplyChorus returns a chorused copy of w, clamped to [-1, 1].
func ApplyChorus(w waveform.Waveform, opts ...ChorusOption) (waveform.Waveform, error) {
	c, err := NewChorus(float64(w.SampleRate), opts...)
	if err != nil {
		return waveform.Waveform{}, err
	}
	out := w.Clone()
	samples := out.Float64()
	c.ProcessInPlace(samples)
	out.SetFloat64(samples)
	out.Clamp(-1, 1)
	return out, nil
}

package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/delay"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

const (
	defaultFlangerRateHz           = 0.25
	defaultFlangerDepthSeconds     = 0.0015
	defaultFlangerBaseDelaySeconds = 0.001
	defaultFlangerFeedback         = 0.25
	defaultFlangerMix              = 0.5

	minFlangerDelaySeconds = 0.0001 // 0.1 ms
	maxFlangerDelaySeconds = 0.0200 // 20 ms
)

// FlangerOption mutates flanger construction parameters.
type FlangerOption func(*flangerConfig) error

type flangerConfig struct {
	rateHz       float64
	depthSeconds float64
	baseDelay    float64
	feedback     float64
	mix          float64
}

func defaultFlangerConfig() flangerConfig {
	return flangerConfig{
		rateHz:       defaultFlangerRateHz,
		depthSeconds: defaultFlangerDepthSeconds,
		baseDelay:    defaultFlangerBaseDelaySeconds,
		feedback:     defaultFlangerFeedback,
		mix:          defaultFlangerMix,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// WithFlangerRateHz sets modulation speed in Hz.
func WithFlangerRateHz(rateHz float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if rateHz <= 0 || !finite(rateHz) {
			return fmt.Errorf("flanger rate must be > 0 and finite: %f", rateHz)
		}
		cfg.rateHz = rateHz
		return nil
	}
}

// WithFlangerDepthSeconds sets modulation depth in seconds.
func WithFlangerDepthSeconds(depth float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if depth < 0 || !finite(depth) {
			return fmt.Errorf("flanger depth must be >= 0 and finite: %f", depth)
		}
		cfg.depthSeconds = depth
		return nil
	}
}

// WithFlangerBaseDelaySeconds sets base delay in seconds.
func WithFlangerBaseDelaySeconds(baseDelay float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if baseDelay < minFlangerDelaySeconds || baseDelay > maxFlangerDelaySeconds || !finite(baseDelay) {
			return fmt.Errorf("flanger base delay must be in [%f, %f]: %f",
				minFlangerDelaySeconds, maxFlangerDelaySeconds, baseDelay)
		}
		cfg.baseDelay = baseDelay
		return nil
	}
}

// WithFlangerFeedback sets feedback amount in [-0.99, 0.99].
func WithFlangerFeedback(feedback float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if feedback < -0.99 || feedback > 0.99 || !finite(feedback) {
			return fmt.Errorf("flanger feedback must be in [-0.99, 0.99]: %f", feedback)
		}
		cfg.feedback = feedback
		return nil
	}
}

// WithFlangerMix sets wet amount in [0, 1].
func WithFlangerMix(mix float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if mix < 0 || mix > 1 || !finite(mix) {
			return fmt.Errorf("flanger mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// Flanger is a short modulated-delay effect with feedback and wet/dry mix.
type Flanger struct {
	sampleRate float64
	cfg        flangerConfig

	lfoPhase float64
	line     *delay.Line
}

// NewFlanger creates a flanger with practical defaults and optional overrides.
func NewFlanger(sampleRate float64, opts ...FlangerOption) (*Flanger, error) {
	if sampleRate <= 0 || !finite(sampleRate) {
		return nil, fmt.Errorf("flanger sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultFlangerConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.baseDelay+cfg.depthSeconds > maxFlangerDelaySeconds {
		return nil, fmt.Errorf("flanger max delay exceeds %f seconds: base=%f depth=%f",
			maxFlangerDelaySeconds, cfg.baseDelay, cfg.depthSeconds)
	}

	line, err := delay.New(max(int(math.Ceil((cfg.baseDelay+cfg.depthSeconds)*sampleRate))+3, 4))
	if err != nil {
		return nil, err
	}

	return &Flanger{sampleRate: sampleRate, cfg: cfg, line: line}, nil
}

// Reset clears delay and LFO state.
func (f *Flanger) Reset() {
	f.line.Reset()
	f.lfoPhase = 0
}

// ProcessSample processes one sample.
func (f *Flanger) ProcessSample(sample float64) float64 {
	mod := 0.5 * (1 + math.Sin(f.lfoPhase))
	delaySamples := math.Max(1, (f.cfg.baseDelay+f.cfg.depthSeconds*mod)*f.sampleRate)

	delayed := f.line.ReadFractional(delaySamples)
	f.line.Write(sample + delayed*f.cfg.feedback)

	f.lfoPhase += 2 * math.Pi * f.cfg.rateHz / f.sampleRate
	if f.lfoPhase >= 2*math.Pi {
		f.lfoPhase -= 2 * math.Pi
	}

	return sample*(1-f.cfg.mix) + delayed*f.cfg.mix
}

// ProcessInPlace applies flanging to buf in place.
func (f *Flanger) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// SampleRate returns sample rate in Hz.
func (f *Flanger) SampleRate() float64 { return f.sampleRate }

// RateHz returns LFO speed in Hz.
func (f *Flanger) RateHz() float64 { return f.cfg.rateHz }

// DepthSeconds returns modulation depth in seconds.
func (f *Flanger) DepthSeconds() float64 { return f.cfg.depthSeconds }

// BaseDelaySeconds returns base delay in seconds.
func (f *Flanger) BaseDelaySeconds() float64 { return f.cfg.baseDelay }

// Feedback returns feedback amount in [-0.99, 0.99].
func (f *Flanger) Feedback() float64 { return f.cfg.feedback }

// Mix returns wet amount in [0, 1].
func (f *Flanger) Mix() float64 { return f.cfg.mix }

// ApplyFlanger returns a flanged copy of w, clamped to [-1, 1].
func ApplyFlanger(w waveform.Waveform, opts ...FlangerOption) (waveform.Waveform, error) {
	f, err := NewFlanger(float64(w.SampleRate), opts...)
	if err != nil {
		return waveform.Waveform{}, err
	}
	out := w.Clone()
	samples := out.Float64()
	f.ProcessInPlace(samples)
	out.SetFloat64(samples)
	out.Clamp(-1, 1)
	return out, nil
}

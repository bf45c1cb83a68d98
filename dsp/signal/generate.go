package signal

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Generator creates waveforms from a shared configuration. It is not safe for
// concurrent use because noise shapes advance its random source.
type Generator struct {
	cfg core.ProcessorConfig
	rng *rand.Rand
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	cfg := core.ApplyProcessorOptions(opts...)
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// SampleRate returns the output sample rate in Hz.
func (g *Generator) SampleRate() int {
	return g.cfg.SampleRate
}

// Generate synthesizes round(durationS*SampleRate) samples of shape at base
// frequency freq. Nil effects mean constant frequency, unit amplitude and zero
// phase. A non-positive duration yields an empty waveform.
func (g *Generator) Generate(shape Shape, durationS, freq float64, p Params, fx FreqEffect, ax AmplEffect, px PhaseEffect) waveform.Waveform {
	rate := g.cfg.SampleRate
	out := waveform.New(waveform.NumSamples(durationS, rate), rate, freq)
	if len(out.Buffer) == 0 {
		return out
	}

	if fx == nil {
		fx = FreqConstant
	}
	if ax == nil {
		ax = AmplConstant
	}
	if px == nil {
		px = PhaseZero
	}
	if shape == nil {
		shape = Sine
	}
	if shape == Noise {
		shape = &noiseShape{rng: g.rng, hold: p.NoiseHold, smoothing: math.Max(0, math.Min(p.NoiseSmoothing, 0.999))}
	}

	arp := p.sortedArpeggio()
	fs := float64(rate)
	accumulated := 0.0

	for i := range out.Buffer {
		t := float64(i) / fs

		f := fx.Freq(t, durationS, freq) * p.slide(t)
		for _, step := range arp {
			if step.At > t {
				break
			}
			f *= step.Factor
		}
		f = p.limitFreq(f)

		a := ax.Ampl(t, durationS, freq) * p.vibrato(t)

		accumulated += f
		phase := 2*math.Pi*accumulated/fs + px.Phase(t, durationS, freq)

		v := a * shape.Sample(phase, p.duty(t, durationS))
		out.Buffer[i] = float32(p.clampSample(v))
	}
	return out
}

// Tone is Generate without parameters or effects.
func (g *Generator) Tone(shape Shape, durationS, freq float64) waveform.Waveform {
	return g.Generate(shape, durationS, freq, Params{}, nil, nil, nil)
}

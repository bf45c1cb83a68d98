package core

// DefaultSampleRate is the rate used for synthesis when nothing else is configured.
const DefaultSampleRate = 44100

// ProcessorConfig defines common synthesis settings.
type ProcessorConfig struct {
	SampleRate int
	// Seed drives every pseudo-random source (noise shapes, Karplus-Strong bursts).
	Seed int64
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the defaults used by the synthesizer and the tune engine.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: DefaultSampleRate,
		Seed:       1,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithSeed sets the seed for deterministic noise.
func WithSeed(seed int64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		cfg.Seed = seed
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

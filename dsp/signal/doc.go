// Package signal generates oscillator waveforms.
//
// [Generator.Generate] evaluates one [Shape] per sample at an accumulated
// phase. The instantaneous frequency comes from a [FreqEffect] shaped by the
// slide, arpeggio and limit settings of [Params]; the amplitude comes from an
// [AmplEffect] with optional vibrato; a [PhaseEffect] adds a phase offset.
//
// Every selector is an interface with one enumerated built-in type and one
// function adapter, so scripts pick built-ins by name and Go callers can pass
// closures:
//
//	g := signal.NewGenerator(core.WithSampleRate(44100))
//	w := g.Generate(signal.Square, 0.5, 440, signal.Params{}, nil, signal.AmplExpDecay, nil)
//
// Noise is drawn from a generator-owned source seeded by
// [core.ProcessorConfig.Seed], so equal seeds give equal output.
package signal

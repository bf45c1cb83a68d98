package waveform

// Spectrum is the complex FFT of a Waveform. Bins are centred so that bin 0
// sits at FreqStart; FreqStart and FreqEnd describe the axis [-Fs/2, +Fs/2).
type Spectrum struct {
	Bins       []complex128
	FreqStart  float64
	FreqEnd    float64
	SampleRate int
	// Frequency carries the nominal fundamental of the source waveform so an
	// inverse transform can restore it.
	Frequency float64
	// SourceLen is the length of the waveform before zero-padding.
	SourceLen int
}

// Resolution returns the bin spacing in Hz.
func (s *Spectrum) Resolution() float64 {
	if len(s.Bins) == 0 {
		return 0
	}
	return (s.FreqEnd - s.FreqStart) / float64(len(s.Bins))
}

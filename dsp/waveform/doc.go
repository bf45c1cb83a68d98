// Package waveform defines the sampled signal type shared by every synthesis
// and transformation package, plus the peak normalization helpers.
//
// A [Waveform] owns mono float32 samples in the nominal range [-1, 1] together
// with its sample rate and nominal fundamental frequency. Duration is derived
// from the buffer length and must be refreshed with [Waveform.UpdateDuration]
// after a mutation that changes the length.
package waveform

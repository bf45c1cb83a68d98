// Package spectrum converts waveforms to and from the frequency domain.
//
// [FFT] zero-pads a waveform to the next power of two and returns a
// [waveform.Spectrum] whose bins are ordered along the axis [-Fs/2, +Fs/2).
// [IFFT] reverses the transform; the first N samples match the source.
// Magnitude and power helpers use the SIMD kernels of algo-vecmath, and
// [ToneLevel] measures a single frequency with the Goertzel recurrence.
package spectrum

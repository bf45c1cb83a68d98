// Package resample converts waveforms between sample rates.
//
// Conversion is linear interpolation followed by a Butterworth lowpass at
// the lower of the two Nyquist frequencies, which removes the images and
// aliases interpolation introduces. Waveforms already at the target rate are
// returned unchanged.
//
// Options:
//   - WithOrder(n): lowpass order (default 4)
//   - WithCutoffScale(v): cutoff as a fraction of the lower Nyquist (default 0.9)
//   - WithoutFilter(): skip the lowpass stage
package resample

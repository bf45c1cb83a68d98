// Package filter applies the recursive lowpass, highpass, bandpass and
// bandstop filters that instruments and tune scripts refer to.
//
// Cutoff and bandwidth are expressed as multiples of the waveform's nominal
// frequency ([Args.CutoffMult], [Args.BandwidthMult]), so one filter
// definition follows every note it is applied to. [ApplyAt] takes absolute
// frequencies for callers such as the resampler that filter at a fixed rate.
//
// Filtered output is clamped to [-1, 1]; with [Args.Normalize] the result is
// first rescaled to a peak of 1.
package filter

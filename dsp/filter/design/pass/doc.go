// Package pass designs lowpass and highpass cascades for the filter families
// used by tune scripts: Butterworth, Chebyshev Type I and Chebyshev Type II.
//
// Every designer returns one [biquad.Coefficients] per second-order section,
// plus a trailing first-order section for odd orders. Unrealizable parameters
// (non-positive order, cutoff outside (0, Nyquist)) yield nil.
package pass

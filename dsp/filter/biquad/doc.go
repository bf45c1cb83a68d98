// Package biquad provides second-order IIR sections and their cascades.
//
// A [Section] implements Direct Form II Transposed processing for one section
// defined by [Coefficients]. Higher-order Butterworth and Chebyshev filters are
// built as a [Chain] of sections; coefficient design lives in
// dsp/filter/design/pass.
package biquad

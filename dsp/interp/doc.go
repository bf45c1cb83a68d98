// Package interp provides interpolation primitives used by the delay line
// and the resampler.
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite
package interp

// Package conv provides linear convolution of sample slices.
//
// Three strategies are offered:
//
//   - [Direct]: O(N*M) time-domain convolution
//   - [FFT]: one-shot convolution through a single zero-padded power-of-two transform
//   - [OverlapAdd]: block convolution that reuses the kernel transform across calls
//
// All of them return the full result of length len(a)+len(b)-1.
//
// # Usage
//
//	result, err := conv.Direct(signal, kernel)
//	result, err := conv.FFT(signal, kernel)
//
// For repeated convolution with the same kernel, such as a reverb impulse
// response applied to many notes, create a reusable convolver:
//
//	oa, err := conv.NewOverlapAdd(kernel, 0)
//	result, err := oa.Process(signal)
package conv

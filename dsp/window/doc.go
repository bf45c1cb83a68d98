// Package window generates window functions and applies them to waveforms.
//
// Windows taper a signal before spectral analysis and shape short fades at
// the edges of a note. Coefficients are computed over the normalized
// position x in [0, 1]; [WithSlope] restricts tapering to one edge so the
// other half stays at unity gain.
package window

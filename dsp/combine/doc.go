// Package combine builds new waveforms out of existing ones: weighted mixing,
// ring modulation, and convolution reverb.
//
// Inputs at different sample rates are first resampled to the highest rate
// among them. Reverb output keeps the full convolution length and is scaled
// down, never up, when it would exceed full scale.
package combine

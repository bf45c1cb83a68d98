// Package modulation provides modulated-delay effects.
//
// Included processors:
//   - Flanger: short swept delay with feedback.
//   - Chorus: fixed-gain taps whose delays follow phase-offset LFOs.
//
// Both keep their history in a circular [delay.Line]. Processors work sample by
// sample; [ApplyFlanger] and [ApplyChorus] run a fresh processor over a whole
// waveform.
package modulation

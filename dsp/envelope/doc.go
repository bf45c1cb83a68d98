// Package envelope shapes waveforms with four-stage ADSR envelopes.
//
// Each stage except sustain has its own curve family (linear, exponential or
// logarithmic). Stage levels may be overridden individually; unset levels
// fall back along the chain attack start -> attack end -> decay start ->
// decay end -> sustain -> release start -> release end. Boundary times are
// derived from the gate length of the waveform being shaped, so the release
// always occupies the tail of the note.
package envelope

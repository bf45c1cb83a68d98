// Package synth renders the built-in library instruments.
//
// Every instrument is a [Recipe]: a list of weighted oscillator layers mixed
// together, shaped by a named envelope preset, optionally lowpass filtered and
// normalized. Recipes are plain data in a table keyed by [Instrument].
package synth

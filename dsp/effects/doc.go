// Package effects holds whole-waveform effects that colour a sound rather
// than filter it.
//
// [BitCrusher] reduces amplitude resolution and effective sample rate, the
// two artefacts of early sound chips. Modulated delays live in the
// modulation subpackage.
package effects

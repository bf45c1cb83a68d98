package synth

import (
	"github.com/cwbudde/algo-chiptune/dsp/filter"
	"github.com/cwbudde/algo-chiptune/dsp/signal"
)

// Layer is one weighted oscillator in a recipe.
type Layer struct {
	Weight float64
	Shape  signal.Waveshape
	// Harmonic multiplies the note frequency; 0 means 1.
	Harmonic float64
	// Pluck replaces the oscillator by a Karplus-Strong string.
	Pluck bool
	// Filter shapes this layer before mixing, relative to its own frequency.
	Filter filter.Args
	// RingShape and RingHarmonic, when RingHarmonic > 0, ring modulate the
	// layer with a second oscillator.
	RingShape    signal.Waveshape
	RingHarmonic float64
}

// Recipe is the complete description of a library instrument.
type Recipe struct {
	Layers    []Layer
	Envelope  string
	LowPass   filter.Args
	// Chorus thickens the mix with a short modulated delay.
	Chorus    bool
	Normalize bool
}

func lowpass(order int, mult float64) filter.Args {
	return filter.Args{Type: filter.TypeButterworth, Op: filter.OpLowPass, Order: order, CutoffMult: mult}
}

func highpass(order int, mult float64) filter.Args {
	return filter.Args{Type: filter.TypeButterworth, Op: filter.OpHighPass, Order: order, CutoffMult: mult}
}

func bandpass(order int, mult, width float64) filter.Args {
	return filter.Args{Type: filter.TypeButterworth, Op: filter.OpBandPass, Order: order, CutoffMult: mult, BandwidthMult: width}
}

func sineStack(weights ...float64) []Layer {
	out := make([]Layer, len(weights))
	for i, w := range weights {
		out[i] = Layer{Weight: w, Shape: signal.Sine, Harmonic: float64(i + 1)}
	}
	return out
}

var recipes = [...]Recipe{
	Piano: {
		Layers: []Layer{
			{Weight: 1, Shape: signal.Sine},
			{Weight: 0.15, Shape: signal.Square},
			{Weight: 0.4, Shape: signal.Triangle},
			{Weight: 0.1, Shape: signal.Sawtooth, Harmonic: 3},
		},
		Envelope:  "PIANO",
		LowPass:   lowpass(2, 6),
		Normalize: true,
	},
	Violin: {
		Layers: []Layer{
			{Weight: 1, Shape: signal.Sawtooth},
			{Weight: 0.3, Shape: signal.Sawtooth, Harmonic: 2},
			{Weight: 0.5, Shape: signal.Triangle},
		},
		Envelope:  "VIOLIN",
		LowPass:   lowpass(2, 4),
		Chorus:    true,
		Normalize: true,
	},
	Organ: {
		Layers: []Layer{
			{Weight: 1, Shape: signal.Sine},
			{Weight: 0.6, Shape: signal.Sine, Harmonic: 2},
			{Weight: 0.4, Shape: signal.Sine, Harmonic: 3},
			{Weight: 0.3, Shape: signal.Sine, Harmonic: 4},
			{Weight: 0.2, Shape: signal.Sine, Harmonic: 8},
		},
		Envelope:  "ORGAN",
		Normalize: true,
	},
	Trumpet: {
		Layers: []Layer{
			{Weight: 1, Shape: signal.Sawtooth},
			{Weight: 0.3, Shape: signal.Square},
			{Weight: 0.4, Shape: signal.Sine, Harmonic: 2},
		},
		Envelope:  "TRUMPET",
		LowPass:   lowpass(2, 5),
		Normalize: true,
	},
	Flute: {
		Layers: append(sineStack(1, 0.5, 0.25, 0.12, 0.06, 0.03),
			Layer{Weight: 0.05, Shape: signal.Noise, Filter: lowpass(2, 2)}),
		Envelope:  "FLUTE",
		Normalize: true,
	},
	Guitar: {
		Layers: []Layer{
			{Weight: 1, Pluck: true},
			{Weight: 0.2, Shape: signal.Triangle},
		},
		Envelope:  "GUITAR",
		LowPass:   lowpass(2, 8),
		Normalize: true,
	},
	KickDrum: {
		Layers: []Layer{
			{Weight: 1, Shape: signal.Sine},
			{Weight: 0.5, Shape: signal.Triangle, Harmonic: 0.5},
			{Weight: 0.3, Shape: signal.Noise, Filter: lowpass(2, 2)},
			{Weight: 0.3, Shape: signal.Sine, Harmonic: 2, RingShape: signal.Triangle, RingHarmonic: 3},
		},
		Envelope:  "KICKDRUM",
		LowPass:   lowpass(2, 4),
		Normalize: true,
	},
	SnareDrum: {
		Layers: []Layer{
			{Weight: 1, Shape: signal.Noise, Filter: bandpass(2, 8, 8)},
			{Weight: 0.4, Shape: signal.Triangle},
			{Weight: 0.2, Shape: signal.Sine, Harmonic: 2, RingShape: signal.Sine, RingHarmonic: 3},
		},
		Envelope:  "SNAREDRUM",
		Normalize: true,
	},
	HiHat: {
		Layers: []Layer{
			{Weight: 1, Shape: signal.Noise, Filter: highpass(2, 12)},
			{Weight: 0.3, Shape: signal.Square, Harmonic: 8, RingShape: signal.Square, RingHarmonic: 11},
		},
		Envelope:  "HIHAT",
		Normalize: true,
	},
	Anvil: {
		Layers: []Layer{
			{Weight: 1, Shape: signal.Sine},
			{Weight: 0.6, Shape: signal.Sine, Harmonic: 2.76},
			{Weight: 0.4, Shape: signal.Sine, Harmonic: 5.4},
			{Weight: 0.4, Shape: signal.Sine, Harmonic: 1, RingShape: signal.Sine, RingHarmonic: 4.2},
			{Weight: 0.1, Shape: signal.Noise, Filter: lowpass(2, 6)},
		},
		Envelope:  "ANVIL",
		Normalize: true,
	},
}

// RecipeOf returns the recipe of a built-in instrument.
func RecipeOf(i Instrument) (Recipe, bool) {
	if i < 0 || int(i) >= len(recipes) {
		return Recipe{}, false
	}
	return recipes[i], true
}

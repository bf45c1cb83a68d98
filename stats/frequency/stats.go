// Package frequency describes the spectral shape of a waveform.
package frequency

import (
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/spectrum"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// rolloffFraction of the spectral energy lies below the rolloff frequency.
const rolloffFraction = 0.85

// Stats holds spectral shape descriptors in Hz, except Flatness.
type Stats struct {
	Dominant float64 // strongest non-DC bin
	Centroid float64 // magnitude-weighted mean frequency
	Rolloff  float64
	// Flatness is the geometric over the arithmetic mean of the magnitudes:
	// near 0 for a tone, 1 for white noise.
	Flatness float64
}

// Calculate describes a one-sided magnitude spectrum whose bin k sits at
// k*resolution Hz.
func Calculate(magnitude []float64, resolution float64) Stats {
	var s Stats
	if len(magnitude) == 0 {
		return s
	}

	var sum, weighted, energy, logSum, best float64
	for k, m := range magnitude {
		f := float64(k) * resolution
		sum += m
		weighted += m * f
		energy += m * m
		logSum += math.Log(max(m, 1e-12))
		if k > 0 && m > best {
			best, s.Dominant = m, f
		}
	}
	if sum == 0 {
		return s
	}
	n := float64(len(magnitude))
	s.Centroid = weighted / sum
	s.Flatness = math.Exp(logSum/n) / (sum / n)

	var acc float64
	for k, m := range magnitude {
		acc += m * m
		if acc >= rolloffFraction*energy {
			s.Rolloff = float64(k) * resolution
			break
		}
	}
	return s
}

// Analyze transforms w and describes its non-negative half spectrum.
func Analyze(w waveform.Waveform) (Stats, error) {
	spec, err := spectrum.FFT(w)
	if err != nil {
		return Stats{}, err
	}
	mags := spectrum.Magnitude(spec.Bins)
	return Calculate(mags[len(mags)/2:], spec.Resolution()), nil
}

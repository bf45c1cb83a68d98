package pass

import (
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/filter/biquad"
)

// bilinearK computes the bilinear transform frequency warping factor tan(π*freq/sampleRate).
// Returns (k, true) on success, (0, false) if parameters are invalid.
func bilinearK(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return 0, false
	}

	return math.Tan(math.Pi * freq / sampleRate), true
}

// butterworthQ returns the quality factor for a Butterworth filter section.
// index ranges from 0 to (order/2 - 1) for the biquad sections.
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return 1 / math.Sqrt2
	}

	return 1 / (2 * s)
}

// lowpassRBJ is the cookbook second-order lowpass.
func lowpassRBJ(freq, q, sampleRate float64) biquad.Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return biquad.Coefficients{
		B0: (1 - cw) / 2 / a0,
		B1: (1 - cw) / a0,
		B2: (1 - cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

// highpassRBJ is the cookbook second-order highpass.
func highpassRBJ(freq, q, sampleRate float64) biquad.Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return biquad.Coefficients{
		B0: (1 + cw) / 2 / a0,
		B1: -(1 + cw) / a0,
		B2: (1 + cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

// butterworthFirstOrderLP designs a first-order lowpass section for odd orders.
func butterworthFirstOrderLP(freq, sampleRate float64) biquad.Coefficients {
	k, ok := bilinearK(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

// butterworthFirstOrderHP designs a first-order highpass section for odd orders.
func butterworthFirstOrderHP(freq, sampleRate float64) biquad.Coefficients {
	k, ok := bilinearK(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}
}

// cheby1Mu computes the Type I prototype parameter asinh(1/eps)/order from a
// passband ripple in dB. Non-positive ripple falls back to 1 dB.
func cheby1Mu(order int, rippleDB float64) float64 {
	if rippleDB <= 0 {
		rippleDB = 1
	}
	eps := math.Sqrt(math.Pow(10, rippleDB/10) - 1)

	return math.Asinh(1/eps) / float64(order)
}

// cheby2Mu computes the Type II prototype parameter from a stopband
// attenuation in dB. Non-positive attenuation falls back to 40 dB.
func cheby2Mu(order int, stopbandDB float64) float64 {
	if stopbandDB <= 0 {
		stopbandDB = 40
	}

	return math.Asinh(math.Pow(10, stopbandDB/20)) / float64(order)
}

// bilinearLowpass maps n/(s² + 2a·s + b) through s -> (z-1)/(z+1).
func bilinearLowpass(n, a, b float64) biquad.Coefficients {
	d0 := 1 + 2*a + b
	return biquad.Coefficients{
		B0: n / d0,
		B1: 2 * n / d0,
		B2: n / d0,
		A1: (2*b - 2) / d0,
		A2: (1 - 2*a + b) / d0,
	}
}

// bilinearHighpass maps s²/(s² + 2a·s + b) through s -> (z-1)/(z+1).
func bilinearHighpass(a, b float64) biquad.Coefficients {
	d0 := 1 + 2*a + b
	return biquad.Coefficients{
		B0: 1 / d0,
		B1: -2 / d0,
		B2: 1 / d0,
		A1: (2*b - 2) / d0,
		A2: (1 - 2*a + b) / d0,
	}
}

package pass

import (
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/filter/biquad"
)

// Chebyshev2LP designs a lowpass Chebyshev Type II (inverse Chebyshev) cascade.
//
// Poles are the reciprocals of the Type I prototype poles and zeros sit on the
// imaginary axis, so freq marks the start of the stopband. Each section is
// normalized to unity DC gain.
func Chebyshev2LP(freq float64, order int, stopbandDB, sampleRate float64) []biquad.Coefficients {
	if order <= 0 {
		return nil
	}
	wc, ok := bilinearK(freq, sampleRate)
	if !ok {
		return nil
	}
	mu := cheby2Mu(order, stopbandDB)
	sections := make([]biquad.Coefficients, 0, (order+1)/2)

	for i := range order / 2 {
		phi := math.Pi * float64(2*i+1) / float64(2*order)

		sigma1 := math.Sinh(mu) * math.Sin(phi)
		omega1 := math.Cosh(mu) * math.Cos(phi)

		poleMagSq := sigma1*sigma1 + omega1*omega1
		sigmaP := sigma1 / poleMagSq
		omegaP := omega1 / poleMagSq
		omegaZ := 1.0 / math.Cos(phi)

		wpr := wc * sigmaP
		wz := wc * omegaZ
		wp2 := wpr*wpr + (wc*omegaP)*(wc*omegaP)

		c := bilinearSection(wz*wz, wpr, wp2)

		dcGain := (c.B0 + c.B1 + c.B2) / (1 + c.A1 + c.A2)
		c.B0 /= dcGain
		c.B1 /= dcGain
		c.B2 /= dcGain
		sections = append(sections, c)
	}

	if order%2 != 0 {
		sp := wc / math.Sinh(mu)
		g := sp / (1 + sp)
		sections = append(sections, biquad.Coefficients{
			B0: g,
			B1: g,
			A1: (sp - 1) / (1 + sp),
		})
	}

	return sections
}

// Chebyshev2HP designs a highpass Chebyshev Type II cascade. Each section is
// normalized to unity gain at Nyquist.
func Chebyshev2HP(freq float64, order int, stopbandDB, sampleRate float64) []biquad.Coefficients {
	if order <= 0 {
		return nil
	}
	wc, ok := bilinearK(freq, sampleRate)
	if !ok {
		return nil
	}
	mu := cheby2Mu(order, stopbandDB)
	sections := make([]biquad.Coefficients, 0, (order+1)/2)

	for i := range order / 2 {
		phi := math.Pi * float64(2*i+1) / float64(2*order)

		hpSigma := wc * math.Sinh(mu) * math.Sin(phi)
		hpOmega := wc * math.Cosh(mu) * math.Cos(phi)
		hpWz := wc * math.Cos(phi)

		c := bilinearSection(hpWz*hpWz, hpSigma, hpSigma*hpSigma+hpOmega*hpOmega)

		nyqGain := (c.B0 - c.B1 + c.B2) / (1 - c.A1 + c.A2)
		c.B0 /= nyqGain
		c.B1 /= nyqGain
		c.B2 /= nyqGain
		sections = append(sections, c)
	}

	if order%2 != 0 {
		sp := wc * math.Sinh(mu)
		g := 1.0 / (1 + sp)
		sections = append(sections, biquad.Coefficients{
			B0: g,
			B1: -g,
			A1: (sp - 1) / (1 + sp),
		})
	}

	return sections
}

// bilinearSection maps the analog section (s² + wz2) / (s² + 2·sigma·s + p2)
// through s -> (z-1)/(z+1) and normalizes the leading denominator term.
func bilinearSection(wz2, sigma, p2 float64) biquad.Coefficients {
	ad0 := 1 + 2*sigma + p2
	return biquad.Coefficients{
		B0: (1 + wz2) / ad0,
		B1: (-2 + 2*wz2) / ad0,
		B2: (1 + wz2) / ad0,
		A1: (-2 + 2*p2) / ad0,
		A2: (1 - 2*sigma + p2) / ad0,
	}
}

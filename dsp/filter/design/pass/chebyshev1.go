package pass

import (
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/filter/biquad"
)

// Chebyshev1LP designs a lowpass Chebyshev Type I cascade with the given
// passband ripple in dB. Each section has unity DC gain, so the passband
// ripples between 0 dB and +rippleDB for even orders.
func Chebyshev1LP(freq float64, order int, rippleDB, sampleRate float64) []biquad.Coefficients {
	if order <= 0 {
		return nil
	}
	wc, ok := bilinearK(freq, sampleRate)
	if !ok {
		return nil
	}
	mu := cheby1Mu(order, rippleDB)
	sections := make([]biquad.Coefficients, 0, (order+1)/2)

	for i := range order / 2 {
		phi := math.Pi * float64(2*i+1) / float64(2*order)
		sigma := math.Sinh(mu) * math.Sin(phi)
		omega := math.Cosh(mu) * math.Cos(phi)
		p2 := wc * wc * (sigma*sigma + omega*omega)

		sections = append(sections, bilinearLowpass(p2, sigma*wc, p2))
	}
	if order%2 != 0 {
		c := math.Sinh(mu) * wc
		g := c / (1 + c)
		sections = append(sections, biquad.Coefficients{
			B0: g,
			B1: g,
			A1: (c - 1) / (1 + c),
		})
	}
	return sections
}

// Chebyshev1HP designs a highpass Chebyshev Type I cascade. The analog
// prototype goes through s -> wc/s before the bilinear transform; each
// section has unity gain at Nyquist.
func Chebyshev1HP(freq float64, order int, rippleDB, sampleRate float64) []biquad.Coefficients {
	if order <= 0 {
		return nil
	}
	wc, ok := bilinearK(freq, sampleRate)
	if !ok {
		return nil
	}
	mu := cheby1Mu(order, rippleDB)
	sections := make([]biquad.Coefficients, 0, (order+1)/2)

	for i := range order / 2 {
		phi := math.Pi * float64(2*i+1) / float64(2*order)
		sigma := math.Sinh(mu) * math.Sin(phi)
		omega := math.Cosh(mu) * math.Cos(phi)
		p2 := sigma*sigma + omega*omega

		sections = append(sections, bilinearHighpass(sigma*wc/p2, wc*wc/p2))
	}
	if order%2 != 0 {
		c := wc / math.Sinh(mu)
		g := 1 / (1 + c)
		sections = append(sections, biquad.Coefficients{
			B0: g,
			B1: -g,
			A1: (c - 1) / (1 + c),
		})
	}
	return sections
}

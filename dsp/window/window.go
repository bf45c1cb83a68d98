package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeTriangle
	TypeWelch
	TypeTukey
	TypeKaiser
)

var typeNames = [...]string{
	TypeRectangular: "rectangular",
	TypeHann:        "hann",
	TypeHamming:     "hamming",
	TypeBlackman:    "blackman",
	TypeTriangle:    "triangle",
	TypeWelch:       "welch",
	TypeTukey:       "tukey",
	TypeKaiser:      "kaiser",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a window name to its Type, ignoring case.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(name, s) {
			return Type(i), nil
		}
	}
	return TypeRectangular, fmt.Errorf("window: unknown type %q", s)
}

// Slope controls which edge(s) of the window are tapered.
type Slope int

const (
	SlopeSymmetric Slope = iota
	SlopeLeft
	SlopeRight
)

// Option configures window generation.
type Option func(*config)

type config struct {
	alpha    float64
	periodic bool
	slope    Slope
}

func defaultConfig() config {
	return config{alpha: 0.5, slope: SlopeSymmetric}
}

// WithAlpha sets the shape parameter: taper fraction for Tukey (default 0.5)
// and beta for Kaiser.
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.alpha = v
		}
	}
}

// WithPeriodic selects the periodic form used for FFT framing.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// WithSlope restricts tapering to one edge.
func WithSlope(s Slope) Option {
	return func(c *config) { c.slope = s }
}

var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

// Generate returns length window coefficients of type t.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = evalWindow(t, samplePosition(i, length, cfg.periodic), cfg)
	}
	return out
}

// Apply multiplies buf in place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}
	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// ApplyWave multiplies the samples of w in place by the selected window.
func ApplyWave(w *waveform.Waveform, t Type, opts ...Option) {
	if len(w.Buffer) == 0 {
		return
	}
	samples := w.Float64()
	Apply(t, samples, opts...)
	w.SetFloat64(samples)
}

// FadeOut tapers the last n samples of w to zero with a raised-cosine ramp.
func FadeOut(w *waveform.Waveform, n int) {
	fade(w, n, SlopeRight)
}

// FadeIn raises the first n samples of w from zero with a raised-cosine ramp.
func FadeIn(w *waveform.Waveform, n int) {
	fade(w, n, SlopeLeft)
}

func fade(w *waveform.Waveform, n int, slope Slope) {
	size := len(w.Buffer)
	if n <= 0 || size == 0 {
		return
	}
	n = min(n, size)
	// A Hann slope over 2n samples covers exactly n samples of taper.
	ramp := Generate(TypeHann, 2*n)
	for i := range n {
		if slope == SlopeLeft {
			w.Buffer[i] *= float32(ramp[i])
		} else {
			w.Buffer[size-n+i] *= float32(ramp[n+i])
		}
	}
}

func evalWindow(t Type, x float64, cfg config) float64 {
	switch cfg.slope {
	case SlopeLeft:
		if x >= 0.5 {
			return 1
		}
		x *= 2
	case SlopeRight:
		if x <= 0.5 {
			return 1
		}
		x = 2*x - 1
	}
	x = math.Max(0, math.Min(1, x))

	switch t {
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	case TypeTriangle:
		return 1 - math.Abs(2*x-1)
	case TypeWelch:
		d := x - 0.5
		return 1 - 4*d*d
	case TypeTukey:
		return tukeyAt(x, cfg.alpha)
	case TypeKaiser:
		return kaiserAt(x, cfg.alpha)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x
	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}
	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}
	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}
	return float64(n) / den
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}
	if alpha >= 1 {
		return cosineFromCoeffs(x, hannCoeffs)
	}
	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}

func kaiserAt(x, beta float64) float64 {
	if beta <= 0 {
		return 1
	}
	r := 2*x - 1
	term := math.Sqrt(math.Max(0, 1-r*r))
	return besselI0(beta*term) / besselI0(beta)
}

// besselI0 returns a numerical approximation of the modified Bessel function I0.
func besselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < 3.75 {
		y := x / 3.75
		y *= y
		return 1.0 + y*(3.5156229+y*(3.0899424+y*(1.2067492+y*(0.2659732+y*(0.0360768+y*0.0045813)))))
	}
	y := 3.75 / ax
	return (math.Exp(ax) / math.Sqrt(ax)) *
		(0.39894228 + y*(0.01328592+y*(0.00225319+y*(-0.00157565+y*(0.00916281+y*(-0.02057706+y*(0.02635537+y*(-0.01647633+y*0.00392377))))))))
}

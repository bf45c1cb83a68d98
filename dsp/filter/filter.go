package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-chiptune/dsp/filter/biquad"
	"github.com/cwbudde/algo-chiptune/dsp/filter/design/pass"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Errors returned by filter operations.
var (
	ErrInvalidCutoff = errors.New("filter: cutoff outside (0, nyquist)")
	ErrUnknownType   = errors.New("filter: unknown filter type")
	ErrUnknownOp     = errors.New("filter: unknown filter operation")
)

// Type selects the filter family.
type Type int

const (
	TypeNone Type = iota
	TypeButterworth
	TypeChebyshevI
	TypeChebyshevII
)

var typeNames = map[Type]string{
	TypeNone:        "None",
	TypeButterworth: "Butterworth",
	TypeChebyshevI:  "ChebyshevTypeI",
	TypeChebyshevII: "ChebyshevTypeII",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a script token to a Type. Matching ignores case and accepts
// the short forms "ChebyshevI"/"ChebyshevII".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "none":
		return TypeNone, nil
	case "butterworth":
		return TypeButterworth, nil
	case "chebyshevtypei", "chebyshevi", "chebyshev1":
		return TypeChebyshevI, nil
	case "chebyshevtypeii", "chebyshevii", "chebyshev2":
		return TypeChebyshevII, nil
	}
	return TypeNone, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Op selects the filter operation.
type Op int

const (
	OpNone Op = iota
	OpLowPass
	OpHighPass
	OpBandPass
	OpBandStop
)

var opNames = map[Op]string{
	OpNone:     "None",
	OpLowPass:  "LowPass",
	OpHighPass: "HighPass",
	OpBandPass: "BandPass",
	OpBandStop: "BandStop",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp maps a script token to an Op, ignoring case.
func ParseOp(s string) (Op, error) {
	for op, name := range opNames {
		if strings.EqualFold(name, s) {
			return op, nil
		}
	}
	return OpNone, fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// Args describes one filter pass.
type Args struct {
	Type  Type
	Op    Op
	Order int
	// CutoffMult is the cutoff (or band centre) as a multiple of the nominal frequency.
	CutoffMult float64
	// BandwidthMult is the band width for BandPass/BandStop as a multiple of the nominal frequency.
	BandwidthMult float64
	// Ripple is the passband ripple in dB for Chebyshev I and the stopband
	// attenuation in dB for Chebyshev II. Ignored for Butterworth.
	Ripple    float64
	Normalize bool
}

// DefaultArgs returns a second-order Butterworth lowpass at twice the nominal frequency.
func DefaultArgs() Args {
	return Args{
		Type:          TypeButterworth,
		Op:            OpLowPass,
		Order:         2,
		CutoffMult:    2,
		BandwidthMult: 1,
		Ripple:        1,
	}
}

// Active reports whether the arguments describe an actual filter pass.
func (a Args) Active() bool {
	return a.Type != TypeNone && a.Op != OpNone
}

// Apply filters w with cutoff and bandwidth relative to w.Frequency and
// returns a new waveform. Inactive arguments return an unmodified copy.
func Apply(w waveform.Waveform, a Args) (waveform.Waveform, error) {
	return ApplyAt(w, a, w.Frequency*a.CutoffMult, w.Frequency*a.BandwidthMult)
}

// ApplyAt filters w at an absolute cutoff (band centre) and bandwidth in Hz.
func ApplyAt(w waveform.Waveform, a Args, cutoffHz, bandwidthHz float64) (waveform.Waveform, error) {
	out := w.Clone()
	if !a.Active() || len(w.Buffer) == 0 {
		return out, nil
	}
	rate := float64(w.SampleRate)
	order := a.Order
	if order <= 0 {
		order = 2
	}

	samples := w.Float64()

	switch a.Op {
	case OpLowPass, OpHighPass:
		sections, err := design(a.Type, a.Op, cutoffHz, order, a.Ripple, rate)
		if err != nil {
			return out, err
		}
		biquad.NewChain(sections).ProcessBlock(samples)
	case OpBandPass:
		lo, hi := bandEdges(cutoffHz, bandwidthHz, rate)
		hp, err := design(a.Type, OpHighPass, lo, order, a.Ripple, rate)
		if err != nil {
			return out, err
		}
		lp, err := design(a.Type, OpLowPass, hi, order, a.Ripple, rate)
		if err != nil {
			return out, err
		}
		biquad.NewChain(append(hp, lp...)).ProcessBlock(samples)
	case OpBandStop:
		lo, hi := bandEdges(cutoffHz, bandwidthHz, rate)
		lp, err := design(a.Type, OpLowPass, lo, order, a.Ripple, rate)
		if err != nil {
			return out, err
		}
		hp, err := design(a.Type, OpHighPass, hi, order, a.Ripple, rate)
		if err != nil {
			return out, err
		}
		upper := append([]float64(nil), samples...)
		biquad.NewChain(lp).ProcessBlock(samples)
		biquad.NewChain(hp).ProcessBlock(upper)
		for i := range samples {
			samples[i] += upper[i]
		}
	default:
		return out, fmt.Errorf("%w: %v", ErrUnknownOp, a.Op)
	}

	out.SetFloat64(samples)
	if a.Normalize {
		waveform.Normalize(&out)
	}
	out.Clamp(-1, 1)
	return out, nil
}

func bandEdges(centre, width, rate float64) (float64, float64) {
	lo := centre - width/2
	hi := centre + width/2
	if lo <= 0 {
		lo = centre / 2
	}
	if nyq := rate / 2; hi >= nyq {
		hi = 0.99 * nyq
	}
	return lo, hi
}

func design(t Type, op Op, freq float64, order int, ripple, rate float64) ([]biquad.Coefficients, error) {
	var sections []biquad.Coefficients
	switch t {
	case TypeButterworth:
		if op == OpLowPass {
			sections = pass.ButterworthLP(freq, order, rate)
		} else {
			sections = pass.ButterworthHP(freq, order, rate)
		}
	case TypeChebyshevI:
		if op == OpLowPass {
			sections = pass.Chebyshev1LP(freq, order, ripple, rate)
		} else {
			sections = pass.Chebyshev1HP(freq, order, ripple, rate)
		}
	case TypeChebyshevII:
		if op == OpLowPass {
			sections = pass.Chebyshev2LP(freq, order, ripple, rate)
		} else {
			sections = pass.Chebyshev2HP(freq, order, ripple, rate)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}
	if sections == nil {
		return nil, fmt.Errorf("%w: %.2f Hz at %.0f Hz", ErrInvalidCutoff, freq, rate)
	}
	return sections, nil
}

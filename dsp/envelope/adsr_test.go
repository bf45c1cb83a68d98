package envelope

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/internal/testutil"
)

func TestTimesAreMonotonic(t *testing.T) {
	stages := []float64{0, 0.001, 0.05, 0.2, 0.5, 1, 3}
	for _, gate := range []float64{0, 0.1, 0.5, 2} {
		for _, a := range stages {
			for _, d := range stages {
				for _, r := range stages {
					tm := New(a, d, 0.5, r).Times(gate)
					ok := 0 <= tm.AttackEnd &&
						tm.AttackEnd <= tm.DecayEnd &&
						tm.DecayEnd <= tm.SustainEnd &&
						tm.SustainEnd <= tm.ReleaseEnd &&
						tm.ReleaseEnd == gate
					if !ok {
						t.Fatalf("gate=%v a=%v d=%v r=%v: %+v", gate, a, d, r, tm)
					}
				}
			}
		}
	}
}

func TestTimesClampOrder(t *testing.T) {
	tests := []struct {
		name string
		e    ADSR
		gate float64
		want Times
	}{
		{"fits", New(0.1, 0.2, 0.5, 0.3), 1, Times{0.1, 0.30000000000000004, 0.7, 1}},
		{"attack past release", New(0.9, 0.2, 0.5, 0.3), 1, Times{0.7, 0.7, 0.7, 1}},
		{"release longer than gate", New(0.1, 0.1, 0.5, 2), 1, Times{0, 0, 0, 1}},
		{"sustain cap", ADSR{Attack: Segment{Time: 0.1}, Sustain: Sustain{Level: 1, MaxTime: 0.2}, Release: Segment{Time: 0.1}}, 1, Times{0.1, 0.1, 0.30000000000000004, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.e.Times(tc.gate)
			if got != tc.want {
				t.Fatalf("Times = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestLevelsFallbackChain(t *testing.T) {
	l := New(0.1, 0.1, 0.6, 0.1).Levels()
	want := Levels{A0: 0, A1: 1, D0: 1, D1: 0.6, S: 0.6, R0: 0.6, R1: 0}
	if l != want {
		t.Fatalf("Levels = %+v, want %+v", l, want)
	}

	e := New(0.1, 0.1, 0.6, 0.1)
	e.Decay.Start = At(0.8)
	e.Release.End = At(0.1)
	l = e.Levels()
	if l.A1 != 0.8 || l.D0 != 0.8 || l.R1 != 0.1 {
		t.Fatalf("overridden Levels = %+v", l)
	}

	e.Attack.End = At(2)
	if got := e.Levels().A1; got != 1 {
		t.Fatalf("A1 = %v, want clamp to 1", got)
	}
}

func TestValueLinearShape(t *testing.T) {
	e := New(0.1, 0.1, 0.5, 0.2)
	tests := []struct {
		t, want float64
	}{
		{0, 0},
		{0.05, 0.5},
		{0.1, 1},
		{0.15, 0.75},
		{0.2, 0.5},
		{0.5, 0.5},
		{0.8, 0.5},
		{0.9, 0.25},
		{1, 0},
	}
	for _, tc := range tests {
		if got := e.Value(tc.t, 1); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Value(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestCurveFamilies(t *testing.T) {
	for _, m := range []Mode{Lin, Exp, Log} {
		for _, rising := range []bool{true, false} {
			if got := curve(m, rising, 0, 0.2, 0.9); math.Abs(got-0.2) > 1e-12 {
				t.Fatalf("%v rising=%v start = %v", m, rising, got)
			}
			if got := curve(m, rising, 1, 0.2, 0.9); math.Abs(got-0.9) > 1e-12 {
				t.Fatalf("%v rising=%v end = %v", m, rising, got)
			}
		}
	}
	// Exponential attack starts slow, logarithmic attack starts fast.
	if curve(Exp, true, 0.5, 0, 1) >= 0.5 || curve(Log, true, 0.5, 0, 1) <= 0.5 {
		t.Fatal("attack curvature inverted")
	}
	// Exponential decay drops fast first.
	if curve(Exp, false, 0.5, 1, 0) >= 0.5 {
		t.Fatal("exponential decay should fall below the midpoint early")
	}
	if got := curve(Lin, true, math.NaN(), 0, 0.7); got != 0.7 {
		t.Fatalf("zero-length segment = %v, want end level", got)
	}
}

func TestApply(t *testing.T) {
	w := waveform.FromFloat64(testutil.Ones(1000), 1000, 0)
	got := Apply(w, New(0.1, 0.1, 0.5, 0.2))
	if got.Len() != 1000 || got.SampleRate != 1000 {
		t.Fatalf("len=%d rate=%d", got.Len(), got.SampleRate)
	}
	if w.Buffer[0] != 1 {
		t.Fatal("Apply modified its input")
	}
	data := got.Float64()
	testutil.RequireFinite(t, data)
	if data[0] != 0 || math.Abs(data[100]-1) > 1e-6 || math.Abs(data[500]-0.5) > 1e-6 {
		t.Fatalf("samples = %v %v %v", data[0], data[100], data[500])
	}
	if data[999] > 0.01 {
		t.Fatalf("tail = %v, want near 0", data[999])
	}
	for i, v := range data {
		if v < 0 || v > 1 {
			t.Fatalf("sample %d = %v out of [0,1]", i, v)
		}
	}
}

func TestApplyEmpty(t *testing.T) {
	got := Apply(waveform.New(0, 44100, 0), New(0.1, 0.1, 0.5, 0.1))
	if got.Len() != 0 {
		t.Fatalf("len = %d", got.Len())
	}
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	if len(names) != 10 {
		t.Fatalf("presets = %v", names)
	}
	for _, name := range names {
		e, err := Preset(name)
		if err != nil {
			t.Fatalf("Preset(%s): %v", name, err)
		}
		tm := e.Times(0.5)
		if tm.AttackEnd > tm.DecayEnd || tm.SustainEnd > tm.ReleaseEnd {
			t.Fatalf("%s: bad times %+v", name, tm)
		}
	}
	if _, err := Preset("piano"); err != nil {
		t.Fatalf("lower-case lookup: %v", err)
	}
	if _, err := Preset("banjo"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"lin": Lin, "EXP": Exp, "Log": Log} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("cubic"); err == nil {
		t.Fatal("expected error")
	}
}

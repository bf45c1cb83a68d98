package effects

import (
	"testing"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/internal/testutil"
)

func TestBitCrusherQuantizes(t *testing.T) {
	bc, err := NewBitCrusher(WithCrushBits(2))
	if err != nil {
		t.Fatal(err)
	}
	// two bits give steps of 0.5
	tests := []struct{ in, want float64 }{
		{0.1, 0}, {0.3, 0.5}, {-0.7, -0.5}, {0.9, 1}, {0, 0},
	}
	for _, tt := range tests {
		if got := bc.ProcessSample(tt.in); got != tt.want {
			t.Errorf("crush(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBitCrusherHold(t *testing.T) {
	bc, err := NewBitCrusher(WithCrushBits(24), WithCrushDownsample(3))
	if err != nil {
		t.Fatal(err)
	}
	in := []float64{0.5, 0.1, 0.2, -0.25, 0.3, 0.4, 0.75}
	bc.ProcessInPlace(in)
	want := []float64{0.5, 0.5, 0.5, -0.25, -0.25, -0.25, 0.75}
	testutil.RequireSliceNearlyEqual(t, in, want, 1e-6)
}

func TestBitCrusherResetAndMix(t *testing.T) {
	bc, err := NewBitCrusher(WithCrushMix(0))
	if err != nil {
		t.Fatal(err)
	}
	in := testutil.DeterministicSine(440, 8000, 0.8, 64)
	out := append([]float64(nil), in...)
	bc.ProcessInPlace(out)
	testutil.RequireSliceNearlyEqual(t, out, in, 0)

	bc, _ = NewBitCrusher(WithCrushBits(3), WithCrushDownsample(4))
	first := append([]float64(nil), in...)
	bc.ProcessInPlace(first)
	bc.Reset()
	second := append([]float64(nil), in...)
	bc.ProcessInPlace(second)
	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}

func TestBitCrusherValidation(t *testing.T) {
	for _, opt := range []BitCrusherOption{
		WithCrushBits(0.5), WithCrushBits(25),
		WithCrushDownsample(0), WithCrushDownsample(65),
		WithCrushMix(-0.1), WithCrushMix(1.5),
	} {
		if _, err := NewBitCrusher(opt); err == nil {
			t.Error("expected validation error")
		}
	}
}

func TestApplyBitCrusherKeepsShape(t *testing.T) {
	w := waveform.FromFloat64(testutil.DeterministicNoise(3, 1, 1000), 8000, 100)
	out, err := ApplyBitCrusher(w, WithCrushBits(4), WithCrushDownsample(2))
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != w.Len() || out.SampleRate != 8000 || out.Frequency != 100 {
		t.Fatalf("len=%d rate=%d freq=%v", out.Len(), out.SampleRate, out.Frequency)
	}
	data := out.Float64()
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] != data[i+1] {
			t.Fatalf("samples %d and %d differ under a hold of 2", i, i+1)
		}
		if q := data[i] * 8; q != float64(int(q)) {
			t.Fatalf("sample %d = %v is off the 4-bit grid", i, data[i])
		}
	}
}

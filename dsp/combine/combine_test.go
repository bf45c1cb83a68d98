package combine

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/internal/testutil"
)

func wave(seed int64, n, rate int, freq float64) waveform.Waveform {
	return waveform.FromFloat64(testutil.DeterministicNoise(seed, 0.8, n), rate, freq)
}

func TestMixSingleInputIsIdentity(t *testing.T) {
	a := wave(1, 1000, 44100, 440)
	got, err := Mix(Weighted{Weight: 1, Wave: a})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got.Float64(), a.Float64(), 0)
	if got.Frequency != 440 || got.SampleRate != 44100 || got.Duration != a.Duration {
		t.Fatalf("metadata = %+v", got)
	}
}

func TestMixWeightedAverage(t *testing.T) {
	a := waveform.FromFloat64(testutil.DC(1, 10), 8000, 100)
	b := waveform.FromFloat64(testutil.DC(-1, 6), 8000, 300)
	got, err := Mix(Weighted{3, a}, Weighted{1, b})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got.Float64(), testutil.DC(0.5, 6), 1e-7)
	if got.Frequency != 200 {
		t.Fatalf("frequency = %v, want 200", got.Frequency)
	}
}

func TestMixResamplesToHighestRate(t *testing.T) {
	a := wave(2, 2205, 22050, 100)
	b := wave(3, 4410, 44100, 100)
	got, err := Mix(Weighted{1, a}, Weighted{1, b})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if got.SampleRate != 44100 || got.Len() != 4410 {
		t.Fatalf("rate=%d len=%d", got.SampleRate, got.Len())
	}
}

func TestMixErrors(t *testing.T) {
	if _, err := Mix(); !errors.Is(err, ErrNoInputs) {
		t.Fatalf("err = %v, want ErrNoInputs", err)
	}
	if _, err := Mix(Weighted{0, wave(1, 4, 8000, 1)}); !errors.Is(err, ErrZeroWeight) {
		t.Fatalf("err = %v, want ErrZeroWeight", err)
	}
}

func TestRingModulationCommutative(t *testing.T) {
	a := wave(4, 3000, 44100, 440)
	b := wave(5, 2000, 22050, 660)

	ab, err := RingModulation(a, b)
	if err != nil {
		t.Fatalf("RingModulation: %v", err)
	}
	ba, err := RingModulation(b, a)
	if err != nil {
		t.Fatalf("RingModulation: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, ab.Float64(), ba.Float64(), 0)
	if ab.Frequency != 220 || ba.Frequency != 220 {
		t.Fatalf("frequency = %v / %v, want 220", ab.Frequency, ba.Frequency)
	}
	if ab.Len() != 3000 {
		t.Fatalf("len = %d, want overlap 3000", ab.Len())
	}
}

func TestReverbLengthsAgree(t *testing.T) {
	w := wave(6, 700, 8000, 200)
	ir := wave(7, 130, 8000, 0)

	slow, err := Reverb(w, ir)
	if err != nil {
		t.Fatalf("Reverb: %v", err)
	}
	fast, err := ReverbFast(w, ir)
	if err != nil {
		t.Fatalf("ReverbFast: %v", err)
	}
	if slow.Len() != 829 || fast.Len() != 829 {
		t.Fatalf("lengths = %d, %d, want 829", slow.Len(), fast.Len())
	}
	testutil.RequireSliceNearlyEqual(t, fast.Float64(), slow.Float64(), 1e-5)
	if p := slow.Peak(); math.Abs(p-1) > 1e-6 {
		t.Fatalf("overshooting reverb not normalized: peak %v", p)
	}
}

func TestReverbNeverAmplifies(t *testing.T) {
	w := waveform.FromFloat64(testutil.Impulse(50, 0), 8000, 0)
	w.Scale(0.25)
	ir := waveform.FromFloat64([]float64{1, 0.5, 0.25}, 8000, 0)

	got, err := ReverbFast(w, ir)
	if err != nil {
		t.Fatalf("ReverbFast: %v", err)
	}
	if p := got.Peak(); math.Abs(p-0.25) > 1e-6 {
		t.Fatalf("peak = %v, want 0.25", p)
	}
}

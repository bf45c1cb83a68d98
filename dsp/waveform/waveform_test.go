package waveform

import (
	"math"
	"testing"
)

func TestNumSamples(t *testing.T) {
	tests := []struct {
		dur  float64
		rate int
		want int
	}{
		{0.2, 44100, 8820},
		{0, 44100, 0},
		{1.0 / 3, 3, 1},
		{-1, 44100, 0},
	}
	for _, tt := range tests {
		if got := NumSamples(tt.dur, tt.rate); got != tt.want {
			t.Errorf("NumSamples(%v, %d) = %d, want %d", tt.dur, tt.rate, got, tt.want)
		}
	}
}

func TestDurationFollowsBuffer(t *testing.T) {
	w := New(4410, 44100, 440)
	if math.Abs(w.Duration-0.1) > 1e-12 {
		t.Fatalf("duration = %v, want 0.1", w.Duration)
	}
	w.Truncate(2205)
	if math.Abs(w.Duration-0.05) > 1e-12 {
		t.Fatalf("duration after truncate = %v, want 0.05", w.Duration)
	}
	w.SetFloat64(make([]float64, 441))
	if math.Abs(w.Duration-0.01) > 1e-12 {
		t.Fatalf("duration after SetFloat64 = %v, want 0.01", w.Duration)
	}
}

func TestCloneIsDeep(t *testing.T) {
	w := FromFloat64([]float64{0.1, 0.2}, 8000, 100)
	c := w.Clone()
	c.Buffer[0] = 1
	if w.Buffer[0] == 1 {
		t.Fatal("clone shares buffer with source")
	}
}

func TestNormalizeOver(t *testing.T) {
	t.Run("below limit unchanged", func(t *testing.T) {
		w := FromFloat64([]float64{0.2, -0.4, 0.1}, 8000, 0)
		before := w.Clone()
		NormalizeOver(&w, 0.5)
		for i := range w.Buffer {
			if w.Buffer[i] != before.Buffer[i] {
				t.Fatalf("sample %d changed: %v -> %v", i, before.Buffer[i], w.Buffer[i])
			}
		}
	})
	t.Run("above limit scaled to limit", func(t *testing.T) {
		w := FromFloat64([]float64{0.2, -1.6, 0.8}, 8000, 0)
		NormalizeOver(&w, 0.8)
		if math.Abs(w.Peak()-0.8) > 1e-6 {
			t.Fatalf("peak = %v, want 0.8", w.Peak())
		}
	})
}

func TestNormalizeAndScale(t *testing.T) {
	w := FromFloat64([]float64{0.25, -0.5}, 8000, 0)
	Normalize(&w)
	if math.Abs(w.Peak()-1) > 1e-6 {
		t.Fatalf("peak = %v, want 1", w.Peak())
	}
	NormalizeScale(&w, 0.3)
	if math.Abs(w.Peak()-0.3) > 1e-6 {
		t.Fatalf("peak = %v, want 0.3", w.Peak())
	}

	silent := New(10, 8000, 0)
	Normalize(&silent)
	if silent.Peak() != 0 {
		t.Fatal("silent waveform must stay silent")
	}
}

func TestClamp(t *testing.T) {
	w := FromFloat64([]float64{-2, -0.5, 0.5, 2}, 8000, 0)
	w.Clamp(-1, 1)
	want := []float32{-1, -0.5, 0.5, 1}
	for i := range want {
		if w.Buffer[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, w.Buffer[i], want[i])
		}
	}
}

package time

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/internal/testutil"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestCalculateSine(t *testing.T) {
	// 100 Hz at 8 kHz, 50 whole periods
	s := Calculate(testutil.DeterministicSine(100, 8000, 0.5, 4000))
	if s.Length != 4000 {
		t.Fatalf("Length = %d", s.Length)
	}
	if !almostEqual(s.RMS, 0.5/math.Sqrt2, 1e-3) {
		t.Errorf("RMS = %v", s.RMS)
	}
	if !almostEqual(s.Peak, 0.5, 1e-3) || !almostEqual(s.CrestFactor, math.Sqrt2, 1e-2) {
		t.Errorf("peak=%v crest=%v", s.Peak, s.CrestFactor)
	}
	if !almostEqual(s.DC, 0, 1e-6) {
		t.Errorf("DC = %v", s.DC)
	}
	if s.ZeroCrossings < 98 || s.ZeroCrossings > 100 {
		t.Errorf("ZeroCrossings = %d", s.ZeroCrossings)
	}
	if s.AudibleLen != 4000 {
		t.Errorf("AudibleLen = %d", s.AudibleLen)
	}
}

func TestCalculatePositions(t *testing.T) {
	s := Calculate([]float64{0, 0.1, 0.5, 0.95, -1, 0.2, 0.0005, 0})
	if s.PeakPos != 4 || s.Peak != 1 {
		t.Errorf("peak %v at %d", s.Peak, s.PeakPos)
	}
	if s.AttackPos != 3 {
		t.Errorf("AttackPos = %d, want 3", s.AttackPos)
	}
	if s.AudibleLen != 6 {
		t.Errorf("AudibleLen = %d, want 6", s.AudibleLen)
	}
	if s.Peak_dB != 0 {
		t.Errorf("Peak_dB = %v", s.Peak_dB)
	}
}

func TestCalculateSilenceAndEmpty(t *testing.T) {
	for _, in := range [][]float64{nil, make([]float64, 16)} {
		s := Calculate(in)
		if s.Peak != 0 || s.CrestFactor != 0 || s.AudibleLen != 0 {
			t.Fatalf("stats = %+v", s)
		}
		if !math.IsInf(s.RMS_dB, -1) || !math.IsInf(s.Peak_dB, -1) {
			t.Fatalf("dB = %v %v", s.RMS_dB, s.Peak_dB)
		}
	}
}

func TestAnalyzeSeconds(t *testing.T) {
	samples := testutil.DeterministicSine(200, 8000, 1, 8000)
	for i := 4000; i < len(samples); i++ {
		samples[i] = 0
	}
	sum := Analyze(waveform.FromFloat64(samples, 8000, 200))
	if !almostEqual(sum.Duration, 1, 1e-9) {
		t.Errorf("Duration = %v", sum.Duration)
	}
	if !almostEqual(sum.Audible, 0.5, 0.01) {
		t.Errorf("Audible = %v", sum.Audible)
	}
	if sum.Attack > 0.002 {
		t.Errorf("Attack = %v", sum.Attack)
	}
	// a silent second half halves the crossing rate
	if !almostEqual(sum.Pitch, 100, 2) {
		t.Errorf("Pitch = %v", sum.Pitch)
	}
}

// Package time summarizes a waveform in the time domain: level, shape and
// how long it stays audible.
package time

import (
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

const (
	// attackFraction of the peak marks the end of the attack.
	attackFraction = 0.9
	// audibleFloor is -60 dB relative to the peak.
	audibleFloor = 0.001
)

// Stats holds time-domain statistics of a sample slice.
//
//nolint:revive
type Stats struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	RMS_dB        float64
	Peak          float64 // max |x|
	PeakPos       int
	Peak_dB       float64
	CrestFactor   float64 // peak / RMS
	ZeroCrossings int
	// AttackPos is the first sample reaching 90% of the peak.
	AttackPos int
	// AudibleLen counts samples up to the last one above -60 dB re peak.
	AudibleLen int
}

func ampTodB(v float64) float64 {
	if v == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(math.Abs(v))
}

// Calculate computes all statistics in two passes: one for the aggregates
// and one for the peak-relative positions.
func Calculate(samples []float64) Stats {
	s := Stats{Length: len(samples), RMS_dB: math.Inf(-1), Peak_dB: math.Inf(-1)}
	if len(samples) == 0 {
		return s
	}

	var sum, sumSq float64
	for i, v := range samples {
		sum += v
		sumSq += v * v
		if a := math.Abs(v); a > s.Peak {
			s.Peak, s.PeakPos = a, i
		}
		if i > 0 && (samples[i-1] < 0) != (v < 0) {
			s.ZeroCrossings++
		}
	}
	n := float64(len(samples))
	s.DC = sum / n
	s.RMS = math.Sqrt(sumSq / n)
	s.RMS_dB = ampTodB(s.RMS)
	s.Peak_dB = ampTodB(s.Peak)
	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
	}
	if s.Peak == 0 {
		return s
	}

	for i, v := range samples {
		if math.Abs(v) >= attackFraction*s.Peak {
			s.AttackPos = i
			break
		}
	}
	for i := len(samples) - 1; i >= 0; i-- {
		if math.Abs(samples[i]) > audibleFloor*s.Peak {
			s.AudibleLen = i + 1
			break
		}
	}
	return s
}

// Summary is Stats with positions converted to seconds.
type Summary struct {
	Stats
	Duration float64
	Attack   float64
	Audible  float64
	// Pitch is the zero-crossing estimate of the fundamental in Hz.
	Pitch float64
}

// Analyze summarizes w. Positions are reported in seconds at w's rate.
func Analyze(w waveform.Waveform) Summary {
	st := Calculate(w.Float64())
	sum := Summary{Stats: st, Duration: w.Duration}
	if w.SampleRate <= 0 || st.Length == 0 {
		return sum
	}
	rate := float64(w.SampleRate)
	sum.Attack = float64(st.AttackPos) / rate
	sum.Audible = float64(st.AudibleLen) / rate
	sum.Pitch = float64(st.ZeroCrossings) / 2 / (float64(st.Length) / rate)
	return sum
}

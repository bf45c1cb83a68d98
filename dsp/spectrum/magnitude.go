package spectrum

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func split(in []complex128) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * len(in)
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	re, im = buf.data[:len(in)], buf.data[len(in):need]
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	return re, im, buf
}

// Magnitude returns |X[k]| for each bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]float64, len(in))
	re, im, buf := split(in)
	vecmath.Magnitude(out, re, im)
	scratchPool.Put(buf)
	return out
}

// Power returns |X[k]|^2 for each bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]float64, len(in))
	re, im, buf := split(in)
	vecmath.Power(out, re, im)
	scratchPool.Put(buf)
	return out
}

// Peak returns the non-negative frequency with the largest magnitude in s.
// DC is ignored unless every other bin is zero.
func Peak(s waveform.Spectrum) float64 {
	mag := Magnitude(s.Bins)
	res := s.Resolution()
	best, bestMag := 0.0, 0.0
	for k, m := range mag {
		f := s.FreqStart + float64(k)*res
		if f <= 0 {
			continue
		}
		if m > bestMag {
			best, bestMag = f, m
		}
	}
	return best
}

// DominantFrequency returns the strongest frequency of w, or 0 for silence.
func DominantFrequency(w waveform.Waveform) (float64, error) {
	s, err := FFT(w)
	if err != nil {
		return 0, err
	}
	return Peak(s), nil
}

// ToneLevel estimates the amplitude of the sinusoidal component of w at freq
// using the Goertzel recurrence. A full-scale sine at an exact bin returns 1.
func ToneLevel(w waveform.Waveform, freq float64) float64 {
	n := len(w.Buffer)
	if n == 0 || w.SampleRate <= 0 || freq < 0 || freq > float64(w.SampleRate)/2 {
		return 0
	}
	coeff := 2 * math.Cos(2*math.Pi*freq/float64(w.SampleRate))
	var s0, s1 float64
	for _, v := range w.Buffer {
		s := float64(v) + coeff*s0 - s1
		s1 = s0
		s0 = s
	}
	p := s0*s0 + s1*s1 - coeff*s0*s1
	if p <= 0 {
		return 0
	}
	return 2 * math.Sqrt(p) / float64(n)
}

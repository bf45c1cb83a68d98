package waveform

import (
	"errors"
	"math"
)

// Errors returned by waveform helpers.
var (
	ErrEmpty       = errors.New("waveform: empty buffer")
	ErrInvalidRate = errors.New("waveform: invalid sample rate")
)

// Waveform is a sampled mono signal.
type Waveform struct {
	Buffer     []float32
	Frequency  float64 // nominal fundamental in Hz
	SampleRate int     // Hz
	Duration   float64 // seconds, len(Buffer)/SampleRate
}

// New allocates a silent waveform of n samples.
func New(n, sampleRate int, frequency float64) Waveform {
	if n < 0 {
		n = 0
	}
	w := Waveform{
		Buffer:     make([]float32, n),
		Frequency:  frequency,
		SampleRate: sampleRate,
	}
	w.UpdateDuration()
	return w
}

// FromFloat64 builds a waveform from float64 samples.
func FromFloat64(samples []float64, sampleRate int, frequency float64) Waveform {
	w := Waveform{
		Buffer:     make([]float32, len(samples)),
		Frequency:  frequency,
		SampleRate: sampleRate,
	}
	for i, v := range samples {
		w.Buffer[i] = float32(v)
	}
	w.UpdateDuration()
	return w
}

// NumSamples returns round(duration*sampleRate), the length produced by generators.
func NumSamples(durationS float64, sampleRate int) int {
	if durationS <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(math.Round(durationS * float64(sampleRate)))
}

// Len returns the sample count.
func (w *Waveform) Len() int { return len(w.Buffer) }

// UpdateDuration recomputes Duration from the buffer length and sample rate.
func (w *Waveform) UpdateDuration() {
	if w.SampleRate <= 0 {
		w.Duration = 0
		return
	}
	w.Duration = float64(len(w.Buffer)) / float64(w.SampleRate)
}

// Clone returns a deep copy.
func (w Waveform) Clone() Waveform {
	out := w
	out.Buffer = make([]float32, len(w.Buffer))
	copy(out.Buffer, w.Buffer)
	return out
}

// Float64 returns the samples widened to float64.
func (w *Waveform) Float64() []float64 {
	out := make([]float64, len(w.Buffer))
	for i, v := range w.Buffer {
		out[i] = float64(v)
	}
	return out
}

// SetFloat64 replaces the buffer with narrowed samples and refreshes the duration.
func (w *Waveform) SetFloat64(samples []float64) {
	if cap(w.Buffer) >= len(samples) {
		w.Buffer = w.Buffer[:len(samples)]
	} else {
		w.Buffer = make([]float32, len(samples))
	}
	for i, v := range samples {
		w.Buffer[i] = float32(v)
	}
	w.UpdateDuration()
}

// Peak returns max |x| over the buffer.
func (w *Waveform) Peak() float64 {
	peak := 0.0
	for _, v := range w.Buffer {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	return peak
}

// Scale multiplies every sample by g.
func (w *Waveform) Scale(g float64) {
	for i, v := range w.Buffer {
		w.Buffer[i] = float32(float64(v) * g)
	}
}

// Clamp limits every sample to [lo, hi].
func (w *Waveform) Clamp(lo, hi float32) {
	for i, v := range w.Buffer {
		switch {
		case v < lo:
			w.Buffer[i] = lo
		case v > hi:
			w.Buffer[i] = hi
		}
	}
}

// Truncate shortens the buffer to n samples if it is longer.
func (w *Waveform) Truncate(n int) {
	if n >= 0 && n < len(w.Buffer) {
		w.Buffer = w.Buffer[:n]
		w.UpdateDuration()
	}
}

// Time returns the time in seconds of sample i.
func (w *Waveform) Time(i int) float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(i) / float64(w.SampleRate)
}

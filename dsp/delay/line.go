package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chiptune/dsp/interp"
)

// Line is a circular delay line. Reads are relative to the write head:
// Read(1) returns the most recently written sample.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Delays wrap modulo the line size.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	readPos := ((d.writePos-delay)%size + size) % size
	return d.buffer[readPos]
}

// ReadFractional reads with cubic Hermite interpolation. The delay is clamped
// to [1, Len()-2] so every tap stays inside written history.
func (d *Line) ReadFractional(delay float64) float64 {
	size := len(d.buffer)
	if size < 4 {
		return d.Read(max(1, int(math.Round(delay))))
	}
	delay = math.Max(1, math.Min(delay, float64(size-2)))

	p := int(math.Floor(delay))
	t := delay - float64(p)

	return interp.Hermite4(t, d.Read(p-1), d.Read(p), d.Read(p+1), d.Read(p+2))
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

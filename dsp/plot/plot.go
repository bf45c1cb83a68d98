// Package plot renders waveforms as ASCII graphs for terminals and logs.
package plot

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Thickness selects how each column of the graph is drawn.
type Thickness int

const (
	// Thin marks one cell per column.
	Thin Thickness = iota
	// FilledToAxis fills from the zero line to the sample.
	FilledToAxis
	// FilledFromBottom fills from the bottom row up to the sample.
	FilledFromBottom
	// Thick widens the trace in proportion to the local slope so steep
	// edges stay connected.
	Thick
)

// Options controls the size and style of a graph.
type Options struct {
	Width     int
	Height    int
	Thickness Thickness
	Mark      byte
}

// DefaultOptions returns an 80x16 thin graph drawn with '*'.
func DefaultOptions() Options {
	return Options{Width: 80, Height: 16, Thickness: Thin, Mark: '*'}
}

// Render writes an ASCII graph of w. Time runs left to right across Width
// columns; each column shows the sample with the largest magnitude in its
// span. Amplitude [-1, 1] maps to Height rows, with the zero line drawn as '-'.
func Render(out io.Writer, w waveform.Waveform, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 1 {
		return fmt.Errorf("plot: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Mark == 0 {
		opts.Mark = '*'
	}

	cols := columns(w.Buffer, opts.Width)
	grid := make([][]byte, opts.Height)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(" ", len(cols)))
	}

	axis := row(0, opts.Height)
	for c := range cols {
		grid[axis][c] = '-'
	}

	for c, v := range cols {
		r := row(v, opts.Height)
		lo, hi := r, r
		switch opts.Thickness {
		case FilledToAxis:
			lo, hi = min(r, axis), max(r, axis)
		case FilledFromBottom:
			hi = opts.Height - 1
		case Thick:
			prev, next := v, v
			if c > 0 {
				prev = cols[c-1]
			}
			if c+1 < len(cols) {
				next = cols[c+1]
			}
			for _, n := range []float64{prev, next} {
				mid := row((v+n)/2, opts.Height)
				lo, hi = min(lo, mid), max(hi, mid)
			}
		}
		for y := lo; y <= hi; y++ {
			grid[y][c] = opts.Mark
		}
	}

	bw := bufio.NewWriter(out)
	fmt.Fprintf(bw, "%.1f Hz, %d samples @ %d Hz, %.3f s\n", w.Frequency, len(w.Buffer), w.SampleRate, w.Duration)
	for _, line := range grid {
		bw.Write(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// columns reduces samples to at most width peak values.
func columns(samples []float32, width int) []float64 {
	if len(samples) == 0 {
		return nil
	}
	n := min(width, len(samples))
	out := make([]float64, n)
	for c := range out {
		start := c * len(samples) / n
		end := max((c+1)*len(samples)/n, start+1)
		peak := 0.0
		for _, v := range samples[start:end] {
			if math.Abs(float64(v)) > math.Abs(peak) {
				peak = float64(v)
			}
		}
		out[c] = peak
	}
	return out
}

// row maps an amplitude in [-1, 1] to a grid row, top row = +1.
func row(v float64, height int) int {
	v = math.Max(-1, math.Min(1, v))
	r := int(math.Round((1 - v) / 2 * float64(height-1)))
	return r
}

package spectrum

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// ErrEmptySpectrum is returned by IFFT for a spectrum without bins.
var ErrEmptySpectrum = errors.New("spectrum: empty spectrum")

// FFT transforms w into a centred spectrum. The input is zero-padded to the
// next power of two; bin k of the result sits at FreqStart + k*Resolution.
func FFT(w waveform.Waveform) (waveform.Spectrum, error) {
	if len(w.Buffer) == 0 {
		return waveform.Spectrum{}, waveform.ErrEmpty
	}
	if w.SampleRate <= 0 {
		return waveform.Spectrum{}, waveform.ErrInvalidRate
	}

	n := core.NextPowerOf2(len(w.Buffer))
	buf := make([]complex128, n)
	for i, v := range w.Buffer {
		buf[i] = complex(float64(v), 0)
	}

	if err := forward(buf); err != nil {
		return waveform.Spectrum{}, err
	}

	nyquist := float64(w.SampleRate) / 2
	return waveform.Spectrum{
		Bins:       shift(buf),
		FreqStart:  -nyquist,
		FreqEnd:    nyquist,
		SampleRate: w.SampleRate,
		Frequency:  w.Frequency,
		SourceLen:  len(w.Buffer),
	}, nil
}

// IFFT transforms s back to the time domain. The result has len(s.Bins)
// samples, the padded length; callers wanting the original length truncate
// to s.SourceLen.
func IFFT(s waveform.Spectrum) (waveform.Waveform, error) {
	if len(s.Bins) == 0 {
		return waveform.Waveform{}, ErrEmptySpectrum
	}

	buf := unshift(s.Bins)
	if err := inverse(buf); err != nil {
		return waveform.Waveform{}, err
	}

	out := waveform.New(len(buf), s.SampleRate, s.Frequency)
	for i, c := range buf {
		out.Buffer[i] = float32(real(c))
	}
	return out, nil
}

// Transform runs an in-place forward FFT over a power-of-two buffer.
func Transform(buf []complex128) error { return forward(buf) }

// InverseTransform runs an in-place normalized inverse FFT over a power-of-two buffer.
func InverseTransform(buf []complex128) error { return inverse(buf) }

func forward(buf []complex128) error {
	if len(buf) < 2 {
		return nil
	}
	plan, err := algofft.NewPlan64(len(buf))
	if err != nil {
		return fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}
	if err := plan.Forward(buf, buf); err != nil {
		return fmt.Errorf("spectrum: forward FFT failed: %w", err)
	}
	return nil
}

func inverse(buf []complex128) error {
	if len(buf) < 2 {
		return nil
	}
	plan, err := algofft.NewPlan64(len(buf))
	if err != nil {
		return fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}
	if err := plan.Inverse(buf, buf); err != nil {
		return fmt.Errorf("spectrum: inverse FFT failed: %w", err)
	}
	return nil
}

// shift moves the negative-frequency half in front of DC.
func shift(bins []complex128) []complex128 {
	n := len(bins)
	h := n / 2
	out := make([]complex128, n)
	copy(out, bins[n-h:])
	copy(out[h:], bins[:n-h])
	return out
}

func unshift(bins []complex128) []complex128 {
	n := len(bins)
	h := n / 2
	out := make([]complex128, n)
	copy(out, bins[h:])
	copy(out[n-h:], bins[:h])
	return out
}

package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/internal/testutil"
)

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{1, 3, 64, 100, 1000, 4096} {
		src := waveform.FromFloat64(testutil.DeterministicNoise(int64(n), 0.9, n), 8000, 440)

		s, err := FFT(src)
		if err != nil {
			t.Fatalf("n=%d: FFT: %v", n, err)
		}
		if len(s.Bins)&(len(s.Bins)-1) != 0 || len(s.Bins) < n {
			t.Fatalf("n=%d: %d bins is not a padded power of two", n, len(s.Bins))
		}

		back, err := IFFT(s)
		if err != nil {
			t.Fatalf("n=%d: IFFT: %v", n, err)
		}
		back.Truncate(s.SourceLen)
		testutil.RequireSliceNearlyEqual(t, back.Float64(), src.Float64(), 1e-5)
		if back.Frequency != 440 || back.SampleRate != 8000 {
			t.Fatalf("metadata lost: %+v", back)
		}
	}
}

func TestAxis(t *testing.T) {
	w := waveform.FromFloat64(testutil.DeterministicSine(1000, 8000, 1, 256), 8000, 1000)
	s, err := FFT(w)
	if err != nil {
		t.Fatalf("FFT: %v", err)
	}
	if s.FreqStart != -4000 || s.FreqEnd != 4000 {
		t.Fatalf("axis = [%v, %v)", s.FreqStart, s.FreqEnd)
	}
	if got := Peak(s); got != 1000 {
		t.Fatalf("Peak = %v, want 1000", got)
	}
	// Real input gives a mirrored peak at -1000 Hz.
	mag := Magnitude(s.Bins)
	neg := int((-1000 - s.FreqStart) / s.Resolution())
	pos := int((1000 - s.FreqStart) / s.Resolution())
	if math.Abs(mag[neg]-mag[pos]) > 1e-9 {
		t.Fatalf("asymmetric spectrum: %v vs %v", mag[neg], mag[pos])
	}
}

func TestMagnitudeAndPower(t *testing.T) {
	in := []complex128{3 + 4i, -1, 0}
	testutil.RequireSliceNearlyEqual(t, Magnitude(in), []float64{5, 1, 0}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, Power(in), []float64{25, 1, 0}, 1e-12)
	if Magnitude(nil) != nil || Power(nil) != nil {
		t.Fatal("empty input must return nil")
	}
}

func TestToneLevel(t *testing.T) {
	w := waveform.FromFloat64(testutil.DeterministicSine(441, 44100, 0.5, 4400), 44100, 441)
	if got := ToneLevel(w, 441); math.Abs(got-0.5) > 1e-3 {
		t.Fatalf("ToneLevel(441) = %v, want 0.5", got)
	}
	if got := ToneLevel(w, 4410); got > 1e-3 {
		t.Fatalf("ToneLevel(4410) = %v, want ~0", got)
	}
}

func TestErrors(t *testing.T) {
	if _, err := FFT(waveform.Waveform{SampleRate: 8000}); !errors.Is(err, waveform.ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
	if _, err := IFFT(waveform.Spectrum{}); !errors.Is(err, ErrEmptySpectrum) {
		t.Fatalf("err = %v, want ErrEmptySpectrum", err)
	}
}

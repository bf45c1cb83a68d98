package signal

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/internal/testutil"
)

func TestGenerateLength(t *testing.T) {
	g := NewGenerator()
	tests := []struct {
		dur  float64
		want int
	}{
		{0.5, 22050},
		{1, 44100},
		{0.00001, 0},
		{0, 0},
		{-1, 0},
	}
	for _, tc := range tests {
		w := g.Tone(Sine, tc.dur, 440)
		if w.Len() != tc.want {
			t.Fatalf("duration %v: len = %d, want %d", tc.dur, w.Len(), tc.want)
		}
		if w.SampleRate != 44100 || w.Frequency != 440 {
			t.Fatalf("metadata = %d Hz / %v", w.SampleRate, w.Frequency)
		}
	}
}

func TestGenerateShapesStayInRange(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8000))
	for _, shape := range []Waveshape{Sine, Square, Triangle, Sawtooth, Noise, PWM} {
		w := g.Tone(shape, 0.25, 333)
		data := w.Float64()
		testutil.RequireFinite(t, data)
		for i, v := range data {
			if v < -1 || v > 1 {
				t.Fatalf("%v: sample %d = %v out of range", shape, i, v)
			}
		}
		if testutil.RMS(data) == 0 {
			t.Fatalf("%v: silent output", shape)
		}
	}
}

func TestGenerateZeroFrequencyIsConstantPhase(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(1000))
	w := g.Generate(Sine, 0.1, 0, Params{}, nil, nil, PhaseQuarter)
	testutil.RequireSliceNearlyEqual(t, w.Float64(), testutil.Ones(100), 1e-7)

	w = g.Generate(Sine, 0.1, 0, Params{}, nil, nil, PhaseConstant(math.Pi/6))
	testutil.RequireSliceNearlyEqual(t, w.Float64(), testutil.DC(0.5, 100), 1e-6)
}

func TestGenerateMatchesReferenceSine(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(48000))
	w := g.Tone(Sine, 0.01, 1000)
	// The phase accumulator advances before each sample is drawn.
	want := testutil.DeterministicSine(1000, 48000, 1, 481)[1:]
	testutil.RequireSliceNearlyEqual(t, w.Float64(), want, 1e-5)
}

func TestGenerateFirstSampleAdvancesPhase(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(1000))
	w := g.Tone(Sine, 0.01, 50)
	if got, want := w.Float64()[0], math.Sin(2*math.Pi*50/1000); math.Abs(got-want) > 1e-6 {
		t.Fatalf("first sample = %v, want %v", got, want)
	}
}

func TestGenerateSquareAndSaw(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8))
	sq := g.Tone(Square, 1, 1)
	testutil.RequireSliceNearlyEqual(t, sq.Float64(), []float64{1, 1, 1, -1, -1, -1, -1, 1}, 0)

	saw := g.Tone(Sawtooth, 1, 1)
	testutil.RequireSliceNearlyEqual(t, saw.Float64(), []float64{-0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, -1}, 1e-7)

	tri := g.Tone(Triangle, 1, 1)
	testutil.RequireSliceNearlyEqual(t, tri.Float64(), []float64{-0.5, 0, 0.5, 1, 0.5, 0, -0.5, -1}, 1e-7)
}

func TestGeneratePWMDutyCycle(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8000))
	w := g.Generate(PWM, 1, 100, Params{DutyCycle: 0.25}, nil, nil, nil)
	zeros := 0
	for _, v := range w.Buffer {
		if v == 0 {
			zeros++
		}
	}
	// 10 of every 40 samples per half cycle are non-zero.
	if zeros < 5900 || zeros > 6100 {
		t.Fatalf("zero samples = %d, want about 6000", zeros)
	}
}

func TestGenerateArpeggioMultipliesFrequency(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8000))
	arp := g.Generate(Sine, 0.1, 100, Params{Arpeggio: []ArpeggioStep{{At: 0, Factor: 2}}}, nil, nil, nil)
	plain := g.Tone(Sine, 0.1, 200)
	testutil.RequireSliceNearlyEqual(t, arp.Float64(), plain.Float64(), 0)

	late := g.Generate(Sine, 0.1, 100, Params{Arpeggio: []ArpeggioStep{{At: 0.05, Factor: 2}}}, nil, nil, nil)
	base := g.Tone(Sine, 0.1, 100)
	testutil.RequireSliceNearlyEqual(t, late.Float64()[:400], base.Float64()[:400], 0)
	if d, _ := testutil.MaxAbsDiff(late.Float64()[400:], base.Float64()[400:]); d < 0.1 {
		t.Fatalf("arpeggio step had no effect after onset (diff %v)", d)
	}
}

func TestGenerateSlideMatchesExponentialSweep(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8000))
	slide := g.Generate(Sine, 0.5, 100, Params{SlideVel: 1}, nil, nil, nil)
	sweep := g.Generate(Sine, 0.5, 100, Params{}, FreqFunc(func(t, _, f float64) float64 {
		return f * math.Exp2(t)
	}), nil, nil)
	testutil.RequireSliceNearlyEqual(t, slide.Float64(), sweep.Float64(), 0)
}

func TestGenerateFrequencyLimits(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8000))
	limited := g.Generate(Sine, 0.2, 300, Params{MaxFreq: 300}, FreqChirpUp, nil, nil)
	constant := g.Tone(Sine, 0.2, 300)
	testutil.RequireSliceNearlyEqual(t, limited.Float64(), constant.Float64(), 0)
}

func TestGenerateSampleClamp(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8000))
	w := g.Generate(Sine, 0.1, 440, Params{SampleMin: -0.5, SampleMax: 0.5}, nil, nil, nil)
	if p := w.Peak(); p != 0.5 {
		t.Fatalf("peak = %v, want 0.5", p)
	}
}

func TestGenerateAmplitudeEffects(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(1000))
	w := g.Generate(Square, 1, 10, Params{}, nil, AmplLinearDecay, nil)
	if w.Buffer[0] != 1 {
		t.Fatalf("first sample = %v, want 1", w.Buffer[0])
	}
	if last := math.Abs(float64(w.Buffer[999])); last > 0.01 {
		t.Fatalf("last sample = %v, want near 0", last)
	}

	vib := g.Generate(Square, 0.1, 10, Params{VibratoDepth: 0.5}, nil, nil, nil)
	for i, v := range vib.Buffer {
		if math.Abs(float64(v)) != 0.5 {
			t.Fatalf("sample %d = %v, want ±0.5", i, v)
		}
	}
}

func TestGenerateCustomShape(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(100))
	w := g.Generate(ShapeFunc(func(_, _ float64) float64 { return 0.25 }), 0.1, 1, Params{}, nil, AmplConstant, nil)
	testutil.RequireSliceNearlyEqual(t, w.Float64(), testutil.DC(0.25, 10), 0)
}

func TestNoiseIsSeeded(t *testing.T) {
	a := NewGenerator(core.WithSeed(7)).Tone(Noise, 0.01, 0)
	b := NewGenerator(core.WithSeed(7)).Tone(Noise, 0.01, 0)
	c := NewGenerator(core.WithSeed(8)).Tone(Noise, 0.01, 0)
	testutil.RequireSliceNearlyEqual(t, a.Float64(), b.Float64(), 0)
	if d, _ := testutil.MaxAbsDiff(a.Float64(), c.Float64()); d == 0 {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestNoiseHold(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(1000))
	w := g.Generate(Noise, 0.1, 0, Params{NoiseHold: 4}, nil, nil, nil)
	data := w.Float64()
	for i := 0; i+3 < len(data); i += 4 {
		for j := 1; j < 4; j++ {
			if math.Abs(data[i+j]-data[i]) > 1e-6 {
				t.Fatalf("sample %d = %v, held value %v", i+j, data[i+j], data[i])
			}
		}
	}
}

func TestNoiseSmoothingReducesVariation(t *testing.T) {
	diffRMS := func(data []float64) float64 {
		d := make([]float64, len(data)-1)
		for i := range d {
			d[i] = data[i+1] - data[i]
		}
		return testutil.RMS(d)
	}
	raw := NewGenerator().Tone(Noise, 0.1, 0)
	smooth := NewGenerator().Generate(Noise, 0.1, 0, Params{NoiseSmoothing: 0.9}, nil, nil, nil)
	if diffRMS(smooth.Float64()) >= diffRMS(raw.Float64())/2 {
		t.Fatal("smoothing did not reduce sample-to-sample variation")
	}
}

func TestKarplusStrong(t *testing.T) {
	a := KarplusStrong(0.5, 220, 44100, 3)
	b := KarplusStrong(0.5, 220, 44100, 3)
	if a.Len() != 22050 {
		t.Fatalf("len = %d, want 22050", a.Len())
	}
	testutil.RequireSliceNearlyEqual(t, a.Float64(), b.Float64(), 0)

	data := a.Float64()
	testutil.RequireFinite(t, data)
	for i, v := range data {
		if v < -1 || v > 1 {
			t.Fatalf("sample %d = %v out of range", i, v)
		}
	}

	silent := KarplusStrong(0.1, 0, 44100, 3)
	if silent.Len() != 4410 || silent.Peak() != 0 {
		t.Fatalf("zero frequency: len %d peak %v", silent.Len(), silent.Peak())
	}
}

func TestKarplusStrongRecurrence(t *testing.T) {
	// 400 Hz at 8 kHz gives a period of 20 samples
	const period, length = 20, 400
	noise := burst(period, 5)
	raw := pluck(length, noise)
	for i := range period {
		if raw[i] != noise[i] {
			t.Fatalf("first period sample %d = %v, want the burst %v", i, raw[i], noise[i])
		}
	}
	for i := period; i < length; i++ {
		want := 0.5*(raw[i-period]+raw[i-period+1]) + noise[i%period]
		if math.Abs(raw[i]-want) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, raw[i], want)
		}
	}

	got := KarplusStrong(0.05, 400, 8000, 5)
	if got.Len() != length {
		t.Fatalf("len = %d, want %d", got.Len(), length)
	}
	peak := 0.0
	for _, v := range raw {
		peak = math.Max(peak, math.Abs(float64(float32(v))))
	}
	scale := math.Min(1, 1/peak)
	data := got.Float64()
	for i, v := range raw {
		if math.Abs(data[i]-v*scale) > 1e-5 {
			t.Fatalf("sample %d = %v, want %v", i, data[i], v*scale)
		}
	}
	if math.Abs(got.Peak()-math.Min(peak, 1)) > 1e-5 {
		t.Fatalf("peak = %v", got.Peak())
	}
}

func TestGeneratorKarplusStrongUsesConfig(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8000), core.WithSeed(9))
	got := g.KarplusStrong(0.1, 100)
	want := KarplusStrong(0.1, 100, 8000, 9)
	testutil.RequireSliceNearlyEqual(t, got.Float64(), want.Float64(), 0)
}

func TestParseSelectors(t *testing.T) {
	if s, err := ParseWaveshape("pwm"); err != nil || s != PWM {
		t.Fatalf("ParseWaveshape(pwm) = %v, %v", s, err)
	}
	if _, err := ParseWaveshape("bogus"); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
	if f, err := ParseFreqEffect("chirp_down"); err != nil || f != FreqChirpDown {
		t.Fatalf("ParseFreqEffect = %v, %v", f, err)
	}
	if a, err := ParseAmplEffect("EXP_DECAY"); err != nil || a != AmplExpDecay {
		t.Fatalf("ParseAmplEffect = %v, %v", a, err)
	}
	if p, err := ParsePhaseEffect("half"); err != nil || p != PhaseHalf {
		t.Fatalf("ParsePhaseEffect = %v, %v", p, err)
	}
	if _, err := ParseAmplEffect("loud"); err == nil {
		t.Fatal("expected error for unknown amplitude effect")
	}
}

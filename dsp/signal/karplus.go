package signal

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// KarplusStrong synthesizes a plucked string. A noise burst of
// N = round(sampleRate/freq) samples drives the feedback recurrence
//
//	out[n] = 0.5*(out[n-N] + out[n-N+1]) + noise[n mod N]
//
// where out is indexed modulo its own length. The burst is re-injected every
// period, so the low end builds up; the result is scaled down to a peak of 1
// when it overshoots. The burst is drawn from seed, so equal arguments give
// equal output.
func KarplusStrong(durationS, freq float64, sampleRate int, seed int64) waveform.Waveform {
	out := waveform.New(waveform.NumSamples(durationS, sampleRate), sampleRate, freq)
	if len(out.Buffer) == 0 || freq <= 0 {
		return out
	}

	n := max(int(math.Round(float64(sampleRate)/freq)), 2)
	out.SetFloat64(pluck(len(out.Buffer), burst(n, seed)))
	waveform.NormalizeOver(&out, 1)
	return out
}

func burst(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	noise := make([]float64, n)
	for i := range noise {
		noise[i] = 2*rng.Float64() - 1
	}
	return noise
}

// pluck runs the recurrence over a buffer of the given length.
func pluck(length int, noise []float64) []float64 {
	n := len(noise)
	out := make([]float64, length)
	wrap := func(i int) int { return ((i % length) + length) % length }
	for i := range out {
		out[i] = 0.5*(out[wrap(i-n)]+out[wrap(i-n+1)]) + noise[i%n]
	}
	return out
}

// KarplusStrong runs [KarplusStrong] at the generator's rate and seed.
func (g *Generator) KarplusStrong(durationS, freq float64) waveform.Waveform {
	return KarplusStrong(durationS, freq, g.cfg.SampleRate, g.cfg.Seed)
}

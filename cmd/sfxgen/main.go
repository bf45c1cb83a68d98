// Command sfxgen renders sound effects and library instruments, optionally
// saving them to a WAV/AIFF file and printing a graph or spectrum peaks.
//
// Usage:
//
//	sfxgen [flags] name
//
// name is an effect (COIN, LASER, EXPLOSION) or a library instrument
// (PIANO, VIOLIN, ...).
//
// Examples:
//
//	sfxgen -plot coin
//	sfxgen -variation 0.3 -vp 1,-1,0.5 -o laser.wav laser
//	sfxgen -freq 220 -dur 1.5 -spectrum 8 -o piano.aiff piano
//	sfxgen -stats -o boom.wav -subtype PCM_U8 -dither tpdf explosion
//	sfxgen -list
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-chiptune/audio/wavio"
	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/dither"
	"github.com/cwbudde/algo-chiptune/dsp/plot"
	"github.com/cwbudde/algo-chiptune/dsp/signal"
	"github.com/cwbudde/algo-chiptune/dsp/spectrum"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	freqstats "github.com/cwbudde/algo-chiptune/stats/frequency"
	timestats "github.com/cwbudde/algo-chiptune/stats/time"
	"github.com/cwbudde/algo-chiptune/synth"
	"github.com/cwbudde/algo-chiptune/synth/sfx"
)

func main() {
	rate := flag.Int("rate", core.DefaultSampleRate, "sample rate in Hz")
	seed := flag.Int64("seed", 1, "noise seed")
	variation := flag.Float64("variation", 0, "variation amount for effects")
	vpList := flag.String("vp", "", "comma separated variation vector for effects")
	freq := flag.Float64("freq", 440, "instrument frequency in Hz")
	dur := flag.Float64("dur", 1, "instrument duration in seconds")
	out := flag.String("o", "", "write the result to this WAV/AIFF file")
	subtype := flag.String("subtype", "PCM_16", "sample format for -o")
	doPlot := flag.Bool("plot", false, "print an ASCII graph")
	thickness := flag.Int("thickness", int(plot.Thin), "graph style: 0 thin, 1 filled to axis, 2 filled from bottom, 3 thick")
	width := flag.Int("width", 80, "graph width")
	height := flag.Int("height", 16, "graph height")
	peaks := flag.Int("spectrum", 0, "print the N strongest spectrum bins")
	showStats := flag.Bool("stats", false, "print level and spectral statistics")
	ditherName := flag.String("dither", "none", "dither for -o: none, rect, tpdf or gauss")
	list := flag.Bool("list", false, "list effect and instrument names")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sfxgen [flags] name\n\n")
		fmt.Fprintf(os.Stderr, "Renders a sound effect or library instrument.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *list {
		printNames()
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	procOpts := []core.ProcessorOption{core.WithSampleRate(*rate), core.WithSeed(*seed)}
	w, err := render(flag.Arg(0), procOpts, *variation, *vpList, *freq, *dur)
	if err != nil {
		fail(err)
	}
	fmt.Printf("%s: %d samples, %.3f s at %d Hz, peak %.3f\n", strings.ToUpper(flag.Arg(0)), w.Len(), w.Duration, w.SampleRate, w.Peak())

	if *doPlot {
		opts := plot.Options{Width: *width, Height: *height, Thickness: plot.Thickness(*thickness), Mark: '*'}
		if err := plot.Render(os.Stdout, w, opts); err != nil {
			fail(err)
		}
	}
	if *peaks > 0 {
		if err := printPeaks(w, *peaks); err != nil {
			fail(err)
		}
	}
	if *showStats {
		if err := printStats(w); err != nil {
			fail(err)
		}
	}
	if *out != "" {
		st, err := wavio.ParseSubtype(*subtype)
		if err != nil {
			fail(err)
		}
		dt, err := dither.ParseDitherType(*ditherName)
		if err != nil {
			fail(err)
		}
		if err := wavio.Save(w, *out, st, wavio.WithDither(dt, uint64(*seed))); err != nil {
			fail(err)
		}
		fmt.Printf("wrote %s (%v)\n", *out, st)
	}
}

func render(name string, procOpts []core.ProcessorOption, variation float64, vpList string, freq, dur float64) (waveform.Waveform, error) {
	if t, err := sfx.ParseType(name); err == nil {
		vp, err := parseVector(vpList)
		if err != nil {
			return waveform.Waveform{}, err
		}
		log := slog.New(slog.NewTextHandler(os.Stderr, nil))
		g := sfx.New(sfx.WithLogger(log), sfx.WithProcessorOptions(procOpts...))
		return g.Generate(t, variation, vp...)
	}
	inst, err := synth.ParseInstrument(name)
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("%q is neither an effect nor an instrument", name)
	}
	return synth.New(procOpts...).Synthesize(inst, signal.Params{}, dur, freq, nil, nil, nil)
}

func parseVector(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	vp := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad variation value %q", p)
		}
		vp[i] = v
	}
	return vp, nil
}

func printPeaks(w waveform.Waveform, n int) error {
	spec, err := spectrum.FFT(w)
	if err != nil {
		return err
	}
	mags := spectrum.Magnitude(spec.Bins)
	res := spec.Resolution()

	type bin struct{ freq, mag float64 }
	var bins []bin
	for k, m := range mags {
		f := spec.FreqStart + float64(k)*res
		if f >= 0 {
			bins = append(bins, bin{f, m})
		}
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].mag > bins[j].mag })

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Hz\tmagnitude\t")
	for _, b := range bins[:min(n, len(bins))] {
		fmt.Fprintf(tw, "%.1f\t%.4f\t\n", b.freq, b.mag)
	}
	return tw.Flush()
}

func printStats(w waveform.Waveform) error {
	ts := timestats.Analyze(w)
	fs, err := freqstats.Analyze(w)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "rms\t%.4f\t(%.1f dB)\n", ts.RMS, ts.RMS_dB)
	fmt.Fprintf(tw, "peak\t%.4f\t(%.1f dB)\n", ts.Peak, ts.Peak_dB)
	fmt.Fprintf(tw, "crest\t%.2f\t\n", ts.CrestFactor)
	fmt.Fprintf(tw, "dc\t%.5f\t\n", ts.DC)
	fmt.Fprintf(tw, "attack\t%.1f ms\t\n", ts.Attack*1000)
	fmt.Fprintf(tw, "audible\t%.3f s\t\n", ts.Audible)
	fmt.Fprintf(tw, "zc pitch\t%.1f Hz\t\n", ts.Pitch)
	fmt.Fprintf(tw, "dominant\t%.1f Hz\t\n", fs.Dominant)
	fmt.Fprintf(tw, "centroid\t%.1f Hz\t\n", fs.Centroid)
	fmt.Fprintf(tw, "rolloff\t%.1f Hz\t\n", fs.Rolloff)
	fmt.Fprintf(tw, "flatness\t%.3f\t\n", fs.Flatness)
	return tw.Flush()
}

func printNames() {
	fmt.Println("effects:")
	for _, t := range []sfx.Type{sfx.Coin, sfx.Laser, sfx.Explosion} {
		fmt.Printf("  %-10s %d variation slots\n", t, sfx.NumVariations(t))
	}
	fmt.Println("instruments:")
	for _, inst := range synth.Instruments() {
		fmt.Printf("  %v\n", inst)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "sfxgen: %v\n", err)
	os.Exit(1)
}

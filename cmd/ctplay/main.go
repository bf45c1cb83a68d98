// Command ctplay plays a chiptune script on the default audio device or
// renders it to a WAV/AIFF file.
//
// Usage:
//
//	ctplay [flags] tune.ct
//
// While playing from a terminal: space pauses and resumes, + and - change
// the volume, p toggles note printing and q quits.
//
// Examples:
//
//	ctplay song.ct
//	ctplay -interrupt -print song.ct
//	ctplay -ir hall.wav song.ct
//	ctplay -render song.wav -subtype PCM_24 song.ct
//	ctplay -render song.aiff -subtype PCM_S8 -dither tpdf song.ct
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"

	"github.com/cwbudde/algo-chiptune/audio/speaker"
	"github.com/cwbudde/algo-chiptune/audio/wavio"
	"github.com/cwbudde/algo-chiptune/chiptune"
	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/dither"
	"github.com/cwbudde/algo-chiptune/synth"
)

func main() {
	rate := flag.Int("rate", core.DefaultSampleRate, "synthesis and device sample rate in Hz")
	seed := flag.Int64("seed", 1, "noise seed")
	volume := flag.Float64("volume", 1, "initial volume")
	interrupt := flag.Bool("interrupt", false, "restart busy voices on every note")
	verbose := flag.Bool("verbose", false, "log jumps and tempo changes")
	printNotes := flag.Bool("print", false, "print notes while playing")
	irPath := flag.String("ir", "", "impulse response file for reverb")
	render := flag.String("render", "", "render to this WAV/AIFF file instead of playing")
	subtype := flag.String("subtype", "PCM_16", "sample format for -render")
	ditherName := flag.String("dither", "none", "dither for -render: none, rect, tpdf or gauss")
	maxDur := flag.Duration("max", chiptune.DefaultMaxRender, "longest render for looping tunes")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ctplay [flags] tune.ct\n\n")
		fmt.Fprintf(os.Stderr, "Plays or renders a chiptune script.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var err error
	if *render != "" {
		err = renderTune(flag.Arg(0), renderJob{
			out: *render, subtype: *subtype, dither: *ditherName, irPath: *irPath,
			interrupt: *interrupt, maxDur: *maxDur, rate: *rate, seed: *seed,
		}, log)
	} else {
		err = playTune(flag.Arg(0), *irPath, *rate, *seed, *volume, *interrupt, *verbose, *printNotes, log)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ctplay: %v\n", err)
		os.Exit(1)
	}
}

type renderJob struct {
	out, subtype, dither, irPath string
	interrupt                    bool
	maxDur                       time.Duration
	rate                         int
	seed                         int64
}

func renderTune(path string, job renderJob, log *slog.Logger) error {
	st, err := wavio.ParseSubtype(job.subtype)
	if err != nil {
		return err
	}
	dt, err := dither.ParseDitherType(job.dither)
	if err != nil {
		return err
	}
	tune, err := chiptune.ParseFile(path)
	if err != nil {
		return err
	}
	diags, err := chiptune.Build(tune, synth.New(core.WithSampleRate(job.rate), core.WithSeed(job.seed)))
	if err != nil {
		return err
	}
	for _, d := range append(tune.Diagnostics, diags...) {
		log.Warn("script diagnostic", "line", d.Line, "text", d.Text, "err", d.Err)
	}

	opts := chiptune.RenderOptions{Interrupt: job.interrupt, MaxDuration: job.maxDur}
	if job.irPath != "" {
		if opts.IR, err = wavio.Load(job.irPath); err != nil {
			return err
		}
	}
	w, err := chiptune.Render(tune, opts)
	if err != nil {
		return err
	}
	if err := wavio.Save(w, job.out, st, wavio.WithDither(dt, uint64(job.seed))); err != nil {
		return err
	}
	log.Info("rendered", "file", job.out, "seconds", w.Duration, "subtype", st, "dither", dt)
	return nil
}

func playTune(path, irPath string, rate int, seed int64, volume float64, interrupt, verbose, printNotes bool, log *slog.Logger) error {
	dev, err := speaker.New(rate)
	if err != nil {
		return err
	}
	e := chiptune.NewEngine(
		chiptune.WithBackend(dev),
		chiptune.WithLogger(log),
		chiptune.WithSampleRate(rate),
		chiptune.WithSeed(seed),
	)
	defer e.Close()

	if err := e.LoadTune(path); err != nil {
		return err
	}
	if irPath != "" {
		ir, err := wavio.Load(irPath)
		if err != nil {
			return err
		}
		if err := e.SetReverbIR(ir); err != nil {
			return err
		}
	}
	e.SetVolume(volume)
	if printNotes {
		e.EnablePrintNotes()
	}
	e.AddListener(chiptune.ListenerFunc(func(_ *chiptune.Engine, p string) {
		log.Info("tune ended", "path", p)
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		defer func() { _ = term.Restore(fd, old) }()
		go readKeys(e, printNotes)
	}

	if err := e.PlayAsync(ctx, chiptune.PlayOptions{Interrupt: interrupt, Verbose: verbose}); err != nil {
		return err
	}
	e.Wait()
	return nil
}

// readKeys maps single key presses to engine controls until q is pressed or
// stdin closes.
func readKeys(e *chiptune.Engine, printing bool) {
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return
		}
		switch buf[0] {
		case ' ':
			if e.State() == chiptune.StatePaused {
				e.Resume()
			} else {
				e.Pause()
			}
		case '+', '=':
			e.SetVolume(e.Volume() + 0.1)
		case '-', '_':
			e.SetVolume(e.Volume() - 0.1)
		case 'p':
			printing = !printing
			if printing {
				e.EnablePrintNotes()
			} else {
				e.DisablePrintNotes()
			}
		case 'q', 3: // 3 is ctrl-c in raw mode
			e.StopAsync(false)
			return
		}
	}
}

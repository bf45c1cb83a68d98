package chiptune

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-chiptune/audio"
	"github.com/cwbudde/algo-chiptune/dsp/combine"
	"github.com/cwbudde/algo-chiptune/dsp/conv"
	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/synth"
)

// State is the playback state of an Engine.
type State int32

const (
	StateIdle State = iota
	StateLoaded
	StatePlaying
	StatePaused
	StateStopped
	StateEnded
)

var stateNames = [...]string{
	StateIdle:    "idle",
	StateLoaded:  "loaded",
	StatePlaying: "playing",
	StatePaused:  "paused",
	StateStopped: "stopped",
	StateEnded:   "ended",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// pollInterval is the granularity of the pause and cooldown waits.
const pollInterval = 5 * time.Millisecond

// Listener is notified when a tune stops or runs to its end.
type Listener interface {
	TuneEnded(e *Engine, path string)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(e *Engine, path string)

// TuneEnded implements Listener.
func (f ListenerFunc) TuneEnded(e *Engine, path string) { f(e, path) }

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithBackend sets the audio backend. The default is a silent memory backend.
func WithBackend(b audio.Backend) Option {
	return func(e *Engine) {
		if b != nil {
			e.backend = b
		}
	}
}

// WithSampleRate sets the synthesis rate in Hz.
func WithSampleRate(rate int) Option {
	return func(e *Engine) {
		e.procOpts = append(e.procOpts, core.WithSampleRate(rate))
	}
}

// WithSeed sets the seed of the noise oscillators.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.procOpts = append(e.procOpts, core.WithSeed(seed))
	}
}

// PlayOptions controls one playback run.
type PlayOptions struct {
	// Interrupt restarts a voice on every note even if its previous note is
	// still sounding. Without it a busy voice skips the note.
	Interrupt bool
	// Verbose logs jumps and tempo changes.
	Verbose bool
}

// Engine plays parsed tunes through an audio backend.
//
// Load, play and close must be called from one goroutine at a time. Pause,
// Resume, SetVolume, SetReverbIR, ResetReverb, the print switches and
// StopAsync may be called from any goroutine while a tune plays.
type Engine struct {
	log      *slog.Logger
	backend  audio.Backend
	procOpts []core.ProcessorOption
	cfg      core.ProcessorConfig
	syn      *synth.Synthesizer

	mu        sync.Mutex
	tune      *Tune
	listeners []Listener
	done      chan struct{}

	state      atomic.Int32
	running    atomic.Bool
	stop       atomic.Bool
	paused     atomic.Bool
	printNotes atomic.Bool
	volume     atomic.Uint64
	reverb     atomic.Pointer[conv.OverlapAdd]
}

// NewEngine creates an idle engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.backend == nil {
		e.backend = audio.NewMemory()
	}
	e.cfg = core.ApplyProcessorOptions(e.procOpts...)
	e.syn = synth.New(e.procOpts...)
	e.volume.Store(math.Float64bits(1))
	return e
}

// SampleRate returns the synthesis rate.
func (e *Engine) SampleRate() int { return e.cfg.SampleRate }

// State returns the current playback state.
func (e *Engine) State() State { return State(e.state.Load()) }

// Tune returns the loaded tune, or nil.
func (e *Engine) Tune() *Tune {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tune
}

// LoadTune parses and builds the script at path. Malformed lines are logged
// and skipped; only unreadable files and instrument cycles fail the load.
func (e *Engine) LoadTune(path string) error {
	t, err := ParseFile(path)
	if err != nil {
		return err
	}
	return e.load(t)
}

// LoadTuneFrom is LoadTune for a script that is not on disk. name is
// reported to listeners in place of a path.
func (e *Engine) LoadTuneFrom(r io.Reader, name string) error {
	t, err := Parse(r)
	if err != nil {
		return err
	}
	t.Path = name
	return e.load(t)
}

func (e *Engine) load(t *Tune) error {
	if e.running.Load() {
		return ErrBusy
	}
	diags, err := Build(t, e.syn)
	if err != nil {
		e.log.Error("tune rejected", "path", t.Path, "err", err)
		return err
	}
	t.Diagnostics = append(t.Diagnostics, diags...)
	for _, d := range t.Diagnostics {
		e.log.Warn("script diagnostic", "path", t.Path, "line", d.Line, "text", d.Text, "err", d.Err)
	}

	e.mu.Lock()
	e.tune = t
	e.mu.Unlock()
	e.state.Store(int32(StateLoaded))
	e.log.Debug("tune loaded", "path", t.Path, "voices", t.NumVoices, "slots", t.Len())
	return nil
}

// AddListener registers l for tune-ended events.
func (e *Engine) AddListener(l Listener) {
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()
}

// Play plays the loaded tune and blocks until it ends, is stopped with
// StopAsync or ctx is cancelled. Stop requests are honoured once per note
// step; a running sleep is not interrupted.
func (e *Engine) Play(ctx context.Context, opts PlayOptions) error {
	t, err := e.begin()
	if err != nil {
		return err
	}
	defer e.finish()
	return e.run(ctx, t, opts)
}

// PlayAsync starts playback on a new goroutine and returns immediately.
func (e *Engine) PlayAsync(ctx context.Context, opts PlayOptions) error {
	t, err := e.begin()
	if err != nil {
		return err
	}
	go func() {
		defer e.finish()
		if err := e.run(ctx, t, opts); err != nil {
			e.log.Error("playback failed", "path", t.Path, "err", err)
		}
	}()
	return nil
}

// StopAsync asks a running playback to stop. With wait it blocks until the
// playback goroutine has returned.
func (e *Engine) StopAsync(wait bool) {
	e.stop.Store(true)
	if wait {
		e.Wait()
	}
}

// Wait blocks until the current playback, if any, has finished.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Pause holds playback at the next note step.
func (e *Engine) Pause() {
	e.paused.Store(true)
	e.state.CompareAndSwap(int32(StatePlaying), int32(StatePaused))
}

// Resume continues paused playback.
func (e *Engine) Resume() {
	e.paused.Store(false)
	e.state.CompareAndSwap(int32(StatePaused), int32(StatePlaying))
}

// SetVolume sets the external gain applied on top of script and note gain.
func (e *Engine) SetVolume(v float64) {
	e.volume.Store(math.Float64bits(max(v, 0)))
}

// Volume returns the external gain.
func (e *Engine) Volume() float64 { return math.Float64frombits(e.volume.Load()) }

// SetReverbIR convolves every note started from now on with ir. The impulse
// response is resampled to the engine rate and its tail faded out.
func (e *Engine) SetReverbIR(ir waveform.Waveform) error {
	oa, err := prepareIR(ir, e.cfg.SampleRate)
	if err != nil {
		return err
	}
	e.reverb.Store(oa)
	return nil
}

// ResetReverb disables the reverb set by SetReverbIR.
func (e *Engine) ResetReverb() { e.reverb.Store(nil) }

// EnablePrintNotes logs every played step at Info level.
func (e *Engine) EnablePrintNotes() { e.printNotes.Store(true) }

// DisablePrintNotes stops note logging.
func (e *Engine) DisablePrintNotes() { e.printNotes.Store(false) }

// Close stops playback and releases the backend.
func (e *Engine) Close() error {
	e.StopAsync(true)
	return e.backend.Close()
}

func (e *Engine) begin() (*Tune, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tune == nil {
		return nil, ErrNoTune
	}
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	e.stop.Store(false)
	e.paused.Store(false)
	e.done = make(chan struct{})
	e.state.Store(int32(StatePlaying))
	return e.tune, nil
}

func (e *Engine) finish() {
	e.running.Store(false)
	e.mu.Lock()
	close(e.done)
	e.mu.Unlock()
}

type voice struct {
	src audio.Source
	buf audio.Buffer
}

func (e *Engine) openVoices(n int) ([]voice, error) {
	voices := make([]voice, 0, n)
	for range n {
		src, err := e.backend.NewSource()
		if err != nil {
			closeVoices(voices)
			return nil, fmt.Errorf("chiptune: new source: %w", err)
		}
		buf, err := e.backend.NewBuffer()
		if err != nil {
			_ = src.Close()
			closeVoices(voices)
			return nil, fmt.Errorf("chiptune: new buffer: %w", err)
		}
		src.SetPitch(1)
		src.SetLooping(false)
		voices = append(voices, voice{src: src, buf: buf})
	}
	return voices, nil
}

func closeVoices(voices []voice) {
	for _, v := range voices {
		_ = v.src.Stop()
		v.src.Detach()
		_ = v.src.Close()
		_ = v.buf.Close()
	}
}

func (e *Engine) run(ctx context.Context, t *Tune, opts PlayOptions) error {
	voices, err := e.openVoices(t.NumVoices)
	if err != nil {
		e.state.Store(int32(StateStopped))
		return err
	}
	defer closeVoices(voices)

	cur := NewCursor(t.Program)
	if opts.Verbose {
		cur.OnJump = func(ev JumpEvent) {
			e.log.Info("jump", "from", ev.From, "to", ev.To, "kind", ev.Kind, "label", ev.Label, "ending", ev.Ending)
		}
	}

	stopped := false
	tempo := -1.0
	for {
		if e.stop.Load() || ctx.Err() != nil {
			stopped = true
			break
		}
		pos, ok := cur.Next()
		if !ok {
			break
		}
		if opts.Verbose && pos.TempoMS != tempo {
			e.log.Info("tempo", "step", pos.Index, "time_step_ms", pos.TempoMS, "gain", pos.Gain)
		}
		tempo = pos.TempoMS

		for v := range voices {
			note := &t.Voices[v].Notes[pos.Index]
			if note.Kind != NoteSound || note.Wave.Len() == 0 {
				continue
			}
			if !opts.Interrupt && voices[v].src.IsPlaying() {
				continue
			}
			e.start(t, voices[v], note, pos.Gain, opts.Interrupt)
		}
		if pos.Print && e.printNotes.Load() && !pos.Separator {
			e.printStep(t, pos.Index)
		}

		if !pos.Separator {
			time.Sleep(time.Duration(pos.TempoMS * float64(time.Millisecond)))
		}
		for e.paused.Load() && !e.stop.Load() && ctx.Err() == nil {
			time.Sleep(pollInterval)
		}
	}

	if !stopped {
		for anyPlaying(voices) && !e.stop.Load() && ctx.Err() == nil {
			time.Sleep(pollInterval)
		}
		stopped = e.stop.Load() || ctx.Err() != nil
	}
	if stopped {
		e.state.Store(int32(StateStopped))
	} else {
		e.state.Store(int32(StateEnded))
	}

	e.mu.Lock()
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.Unlock()
	for _, l := range listeners {
		l.TuneEnded(e, t.Path)
	}
	return nil
}

// start pushes a note to its voice. Backend failures are logged and the
// note is skipped.
func (e *Engine) start(t *Tune, v voice, note *Note, scriptGain float64, interrupt bool) {
	if interrupt {
		if err := v.src.Stop(); err != nil {
			e.log.Error("stop source", "line", note.Line, "err", err)
		}
	}
	w := note.Wave
	if oa := e.reverb.Load(); oa != nil {
		rw, err := combine.ReverbWith(w, oa)
		if err != nil {
			e.log.Error("reverb", "line", note.Line, "err", err)
		} else {
			w = rw
		}
	}

	v.src.Detach()
	if err := audio.UploadWave(v.buf, w); err != nil {
		e.log.Error("upload buffer", "line", note.Line, "err", err)
		return
	}
	if err := v.src.Attach(v.buf); err != nil {
		e.log.Error("attach buffer", "line", note.Line, "err", err)
		return
	}

	gain := e.Volume() * scriptGain * note.Gain
	if in, ok := t.Instruments[note.Instrument]; ok {
		gain *= in.Gain
	}
	v.src.SetVolume(gain)
	if err := v.src.Play(); err != nil {
		e.log.Error("play source", "line", note.Line, "err", err)
	}
}

func (e *Engine) printStep(t *Tune, idx int) {
	cols := make([]string, len(t.Voices))
	for v := range t.Voices {
		n := t.Voices[v].Notes[idx]
		switch n.Kind {
		case NoteSound:
			cols[v] = fmt.Sprintf("%s %g %s", n.Pitch, n.DurationMS, n.Instrument)
		default:
			cols[v] = "-"
		}
	}
	e.log.Info("step", "index", idx, "notes", "| "+strings.Join(cols, " | ")+" |")
}

func anyPlaying(voices []voice) bool {
	for _, v := range voices {
		if v.src.IsPlaying() {
			return true
		}
	}
	return false
}

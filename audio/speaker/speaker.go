// Package speaker plays audio sources on the default output device through
// oto.
package speaker

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-chiptune/audio"
	"github.com/cwbudde/algo-chiptune/dsp/resample"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Backend owns the process-wide oto context. Every source is one oto player
// reading mono float32 samples at the context rate.
type Backend struct {
	ctx  *oto.Context
	rate int

	mu      sync.Mutex
	sources []*source
	closed  bool
}

// New opens the output device at sampleRate.
func New(sampleRate int) (*Backend, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("speaker: open device: %w", err)
	}
	<-ready
	return &Backend{ctx: ctx, rate: sampleRate}, nil
}

// SampleRate returns the device rate in Hz.
func (b *Backend) SampleRate() int { return b.rate }

// NewSource implements audio.Backend.
func (b *Backend) NewSource() (audio.Source, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, audio.ErrClosed
	}
	s := &source{backend: b, volume: 1, pitch: 1}
	b.sources = append(b.sources, s)
	return s, nil
}

// NewBuffer implements audio.Backend.
func (b *Backend) NewBuffer() (audio.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, audio.ErrClosed
	}
	return &buffer{rate: b.rate}, nil
}

// Close stops every source and suspends the device.
func (b *Backend) Close() error {
	b.mu.Lock()
	sources := b.sources
	b.sources = nil
	b.closed = true
	b.mu.Unlock()

	for _, s := range sources {
		_ = s.Close()
	}
	return b.ctx.Suspend()
}

// release drops s from the live source list.
func (b *Backend) release(s *source) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, live := range b.sources {
		if live == s {
			b.sources = append(b.sources[:i], b.sources[i+1:]...)
			return
		}
	}
}

// buffer holds samples converted to the device rate.
type buffer struct {
	rate    int
	samples []float32
}

func (b *buffer) Upload(samples []float32, f audio.Format) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if len(samples) == 0 {
		return audio.ErrEmptyAudio
	}
	w := waveform.Waveform{Buffer: samples, SampleRate: f.SampleRate}
	w.UpdateDuration()
	if f.SampleRate != b.rate {
		r, err := resample.Resample(w, b.rate)
		if err != nil {
			return fmt.Errorf("speaker: upload: %w", err)
		}
		w = r
	} else {
		w = w.Clone()
	}
	b.samples = w.Buffer
	return nil
}

func (b *buffer) Close() error {
	b.samples = nil
	return nil
}

type source struct {
	backend *Backend
	buf     *buffer
	player  *oto.Player
	volume  float64
	pitch   float64
	loop    bool
}

func (s *source) Attach(b audio.Buffer) error {
	sb, ok := b.(*buffer)
	if !ok {
		return audio.ErrBadFormat
	}
	s.buf = sb
	return nil
}

func (s *source) Detach() { s.buf = nil }

func (s *source) Play() error {
	if s.buf == nil || len(s.buf.samples) == 0 {
		return audio.ErrNoBuffer
	}
	if s.player != nil {
		_ = s.player.Close()
	}
	s.player = s.backend.ctx.NewPlayer(&reader{samples: s.buf.samples, step: s.pitch, loop: s.loop})
	s.player.SetVolume(s.volume)
	s.player.Play()
	return nil
}

func (s *source) Pause() error {
	if s.player != nil {
		s.player.Pause()
	}
	return nil
}

func (s *source) Stop() error {
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}

func (s *source) IsPlaying() bool {
	return s.player != nil && s.player.IsPlaying()
}

func (s *source) SetVolume(v float64) {
	s.volume = v
	if s.player != nil {
		s.player.SetVolume(v)
	}
}

func (s *source) SetPitch(p float64) {
	if p > 0 {
		s.pitch = p
	}
}

func (s *source) SetLooping(loop bool) { s.loop = loop }

func (s *source) Close() error {
	s.buf = nil
	s.backend.release(s)
	return s.Stop()
}

// reader streams samples as little-endian float32, stepping by pitch with
// linear interpolation.
type reader struct {
	samples []float32
	pos     float64
	step    float64
	loop    bool
}

func (r *reader) Read(p []byte) (int, error) {
	n := 0
	last := float64(len(r.samples))
	for n+4 <= len(p) {
		if r.pos >= last {
			if !r.loop {
				break
			}
			r.pos = math.Mod(r.pos, last)
		}
		i := int(r.pos)
		frac := float32(r.pos - float64(i))
		v := r.samples[i]
		if i+1 < len(r.samples) {
			v += frac * (r.samples[i+1] - v)
		}
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(v))
		n += 4
		r.pos += r.step
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

package audio

import (
	"slices"
	"sync"
	"time"
)

// Event records one Play call on a memory source.
type Event struct {
	Source  int
	Samples int
	Rate    int
	Volume  float64
	At      time.Time
}

// Memory is a silent Backend that keeps a log of every Play call. Sources
// report playing for the real-time length of their buffer divided by pitch.
type Memory struct {
	mu      sync.Mutex
	events  []Event
	sources int
	closed  bool
	now     func() time.Time
}

// NewMemory creates an empty memory backend.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// Events returns a copy of the play log.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

// Reset clears the play log.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}

func (m *Memory) record(e Event) {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
}

// NewSource implements Backend.
func (m *Memory) NewSource() (Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	m.sources++
	return &memorySource{backend: m, id: m.sources - 1, volume: 1, pitch: 1}, nil
}

// NewBuffer implements Backend.
func (m *Memory) NewBuffer() (Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	return &memoryBuffer{}, nil
}

// Close implements Backend.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

type memoryBuffer struct {
	samples []float32
	format  Format
}

func (b *memoryBuffer) Upload(samples []float32, f Format) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if len(samples) == 0 {
		return ErrEmptyAudio
	}
	b.samples = slices.Clone(samples)
	b.format = f
	return nil
}

func (b *memoryBuffer) Close() error {
	b.samples = nil
	return nil
}

type memorySource struct {
	backend *Memory
	id      int
	buf     *memoryBuffer
	volume  float64
	pitch   float64
	loop    bool
	until   time.Time
	closed  bool
}

func (s *memorySource) Attach(b Buffer) error {
	mb, ok := b.(*memoryBuffer)
	if !ok {
		return ErrBadFormat
	}
	s.buf = mb
	return nil
}

func (s *memorySource) Detach() { s.buf = nil }

func (s *memorySource) Play() error {
	if s.closed {
		return ErrClosed
	}
	if s.buf == nil || len(s.buf.samples) == 0 {
		return ErrNoBuffer
	}
	now := s.backend.now()
	secs := float64(len(s.buf.samples)) / float64(s.buf.format.SampleRate) / s.pitch
	s.until = now.Add(time.Duration(secs * float64(time.Second)))
	s.backend.record(Event{
		Source:  s.id,
		Samples: len(s.buf.samples),
		Rate:    s.buf.format.SampleRate,
		Volume:  s.volume,
		At:      now,
	})
	return nil
}

func (s *memorySource) Pause() error {
	s.until = time.Time{}
	return nil
}

func (s *memorySource) Stop() error {
	s.until = time.Time{}
	return nil
}

func (s *memorySource) IsPlaying() bool {
	if s.loop && !s.until.IsZero() {
		return true
	}
	return s.backend.now().Before(s.until)
}

func (s *memorySource) SetVolume(v float64) { s.volume = v }

func (s *memorySource) SetPitch(p float64) {
	if p > 0 {
		s.pitch = p
	}
}

func (s *memorySource) SetLooping(loop bool) { s.loop = loop }

func (s *memorySource) Close() error {
	s.closed = true
	s.buf = nil
	return nil
}

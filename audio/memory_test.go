package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

func TestMemoryPlayLog(t *testing.T) {
	m := NewMemory()
	clock := time.Unix(100, 0)
	m.now = func() time.Time { return clock }

	src, err := m.NewSource()
	if err != nil {
		t.Fatal(err)
	}
	buf, err := m.NewBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Play(); !errors.Is(err, ErrNoBuffer) {
		t.Fatalf("Play without buffer: %v", err)
	}

	w := waveform.New(1000, 1000, 440)
	w.Buffer[0] = 0.5
	if err := UploadWave(buf, w); err != nil {
		t.Fatalf("UploadWave: %v", err)
	}
	if err := src.Attach(buf); err != nil {
		t.Fatal(err)
	}
	src.SetVolume(0.25)
	if err := src.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !src.IsPlaying() {
		t.Fatal("source should be playing")
	}
	clock = clock.Add(999 * time.Millisecond)
	if !src.IsPlaying() {
		t.Fatal("source stopped early")
	}
	clock = clock.Add(2 * time.Millisecond)
	if src.IsPlaying() {
		t.Fatal("source still playing after its buffer ended")
	}

	ev := m.Events()
	if len(ev) != 1 || ev[0].Samples != 1000 || ev[0].Volume != 0.25 || ev[0].Rate != 1000 {
		t.Fatalf("events = %+v", ev)
	}
	m.Reset()
	if len(m.Events()) != 0 {
		t.Fatal("Reset kept events")
	}
}

func TestMemoryPitchAndStop(t *testing.T) {
	m := NewMemory()
	clock := time.Unix(0, 0)
	m.now = func() time.Time { return clock }

	src, _ := m.NewSource()
	buf, _ := m.NewBuffer()
	if err := UploadWave(buf, waveform.New(1000, 1000, 0)); err != nil {
		t.Fatal(err)
	}
	_ = src.Attach(buf)
	src.SetPitch(2)
	_ = src.Play()
	clock = clock.Add(600 * time.Millisecond)
	if src.IsPlaying() {
		t.Fatal("double pitch should halve the playing time")
	}

	_ = src.Play()
	_ = src.Stop()
	if src.IsPlaying() {
		t.Fatal("stopped source still playing")
	}
}

func TestUploadValidation(t *testing.T) {
	m := NewMemory()
	buf, _ := m.NewBuffer()
	if err := UploadWave(buf, waveform.New(0, 44100, 0)); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("empty upload: %v", err)
	}
	if err := buf.Upload([]float32{0}, Format{Channels: 2, SampleRate: 44100, BitDepth: 16}); !errors.Is(err, ErrBadFormat) {
		t.Fatalf("stereo upload: %v", err)
	}
	_ = m.Close()
	if _, err := m.NewSource(); !errors.Is(err, ErrClosed) {
		t.Fatalf("NewSource after Close: %v", err)
	}
}

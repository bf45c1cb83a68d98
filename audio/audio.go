// Package audio defines the playback surface consumed by the tune engine and
// an in-memory implementation of it.
//
// A Backend creates Sources and Buffers. A Buffer holds uploaded samples; a
// Source plays the Buffer attached to it. Implementations must allow a
// Source to be driven from one goroutine while IsPlaying is polled from the
// same goroutine; nothing here is shared between voices.
package audio

import (
	"errors"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Errors shared by backend implementations.
var (
	ErrClosed     = errors.New("audio: closed")
	ErrNoBuffer   = errors.New("audio: no buffer attached")
	ErrBadFormat  = errors.New("audio: unsupported sample format")
	ErrEmptyAudio = errors.New("audio: empty sample data")
)

// Format describes uploaded sample data.
type Format struct {
	Channels   int
	SampleRate int
	BitDepth   int
}

// MonoFloat returns the format of a mono float32 waveform at rate.
func MonoFloat(rate int) Format {
	return Format{Channels: 1, SampleRate: rate, BitDepth: 32}
}

// Validate reports whether f can be uploaded.
func (f Format) Validate() error {
	if f.Channels != 1 || f.SampleRate <= 0 {
		return ErrBadFormat
	}
	switch f.BitDepth {
	case 8, 16, 32:
		return nil
	}
	return ErrBadFormat
}

// Buffer stores sample data for playback.
type Buffer interface {
	Upload(samples []float32, f Format) error
	Close() error
}

// Source plays one attached Buffer at a time.
type Source interface {
	Attach(b Buffer) error
	Detach()
	Play() error
	Pause() error
	Stop() error
	IsPlaying() bool
	SetVolume(v float64)
	SetPitch(p float64)
	SetLooping(loop bool)
	Close() error
}

// Backend creates sources and buffers.
type Backend interface {
	NewSource() (Source, error)
	NewBuffer() (Buffer, error)
	Close() error
}

// UploadWave uploads w to b as mono float samples.
func UploadWave(b Buffer, w waveform.Waveform) error {
	if len(w.Buffer) == 0 {
		return ErrEmptyAudio
	}
	return b.Upload(w.Buffer, MonoFloat(w.SampleRate))
}

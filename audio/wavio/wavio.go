// Package wavio loads and saves waveforms as WAV or AIFF files.
//
// The container is chosen by file extension. Sample subtypes are checked
// against the container before the file is created, so an invalid
// combination never leaves a partial file behind.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-chiptune/dsp/dither"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

// Errors returned by Load and Save.
var (
	ErrUnknownContainer   = errors.New("wavio: unknown file extension")
	ErrUnsupportedSubtype = errors.New("wavio: subtype not supported by container")
	ErrInvalidFile        = errors.New("wavio: invalid audio file")
)

// Container is an audio file format.
type Container int

const (
	WAV Container = iota
	AIFF
)

func (c Container) String() string {
	switch c {
	case WAV:
		return "WAV"
	case AIFF:
		return "AIFF"
	}
	return fmt.Sprintf("Container(%d)", int(c))
}

// ContainerOf infers the container from a path's extension.
func ContainerOf(path string) (Container, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return WAV, nil
	case ".aif", ".aiff":
		return AIFF, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownContainer, path)
}

// Subtype is the integer sample encoding.
type Subtype int

const (
	PCM16 Subtype = iota
	PCM24
	PCM32
	// PCMU8 is unsigned 8-bit, WAV only.
	PCMU8
	// PCMS8 is signed 8-bit, AIFF only.
	PCMS8
)

var subtypeNames = map[Subtype]string{
	PCM16: "PCM_16",
	PCM24: "PCM_24",
	PCM32: "PCM_32",
	PCMU8: "PCM_U8",
	PCMS8: "PCM_S8",
}

func (s Subtype) String() string {
	if name, ok := subtypeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Subtype(%d)", int(s))
}

// ParseSubtype maps names such as "PCM_16" (any case) to a Subtype.
func ParseSubtype(name string) (Subtype, error) {
	for s, n := range subtypeNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return PCM16, fmt.Errorf("wavio: unknown subtype %q", name)
}

// BitDepth returns the sample width in bits.
func (s Subtype) BitDepth() int {
	switch s {
	case PCMU8, PCMS8:
		return 8
	case PCM24:
		return 24
	case PCM32:
		return 32
	}
	return 16
}

// Supports reports whether the container can store the subtype.
func (c Container) Supports(s Subtype) bool {
	switch s {
	case PCM16, PCM24, PCM32:
		return c == WAV || c == AIFF
	case PCMU8:
		return c == WAV
	case PCMS8:
		return c == AIFF
	}
	return false
}

// SaveOption adjusts how Save quantizes samples.
type SaveOption func(*saveConfig)

type saveConfig struct {
	dither dither.DitherType
	seed   uint64
}

// WithDither adds dither noise of the given type before quantization. The
// seed makes the noise, and so the file, reproducible.
func WithDither(dt dither.DitherType, seed uint64) SaveOption {
	return func(c *saveConfig) {
		c.dither = dt
		c.seed = seed
	}
}

// Save writes w to path as mono integer PCM. Samples are clamped to [-1, 1]
// and rounded unless a dither option is given.
func Save(w waveform.Waveform, path string, s Subtype, opts ...SaveOption) error {
	cfg := saveConfig{dither: dither.DitherNone, seed: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	q, err := dither.NewQuantizer(
		dither.WithBitDepth(s.BitDepth()),
		dither.WithDitherType(cfg.dither),
		dither.WithSeed(cfg.seed))
	if err != nil {
		return fmt.Errorf("wavio: %w", err)
	}

	c, err := ContainerOf(path)
	if err != nil {
		return err
	}
	if !c.Supports(s) {
		return fmt.Errorf("%w: %v in %v", ErrUnsupportedSubtype, s, c)
	}
	if w.SampleRate <= 0 {
		return waveform.ErrInvalidRate
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: %w", err)
	}
	if err := encode(f, c, s, w, q); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

type encoder interface {
	Write(*audio.IntBuffer) error
	Close() error
}

func encode(out io.WriteSeeker, c Container, s Subtype, w waveform.Waveform, q *dither.Quantizer) error {
	depth := s.BitDepth()
	var enc encoder
	if c == WAV {
		enc = wav.NewEncoder(out, w.SampleRate, depth, 1, 1)
	} else {
		enc = aiff.NewEncoder(out, w.SampleRate, depth, 1)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: w.SampleRate},
		Data:           make([]int, len(w.Buffer)),
		SourceBitDepth: depth,
	}
	for i, v := range w.Buffer {
		x := q.ProcessInteger(float64(v))
		if s == PCMU8 {
			x += 128
		}
		buf.Data[i] = x
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	return nil
}

// Load reads a WAV or AIFF file, averages all channels to mono and scales the
// result down to a peak of 1 if it overshoots.
func Load(path string) (waveform.Waveform, error) {
	c, err := ContainerOf(path)
	if err != nil {
		return waveform.Waveform{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("wavio: %w", err)
	}
	defer f.Close()

	var (
		buf   *audio.IntBuffer
		depth int
	)
	switch c {
	case WAV:
		d := wav.NewDecoder(f)
		if !d.IsValidFile() {
			return waveform.Waveform{}, fmt.Errorf("%w: %s", ErrInvalidFile, path)
		}
		buf, err = d.FullPCMBuffer()
		depth = int(d.BitDepth)
	case AIFF:
		d := aiff.NewDecoder(f)
		if !d.IsValidFile() {
			return waveform.Waveform{}, fmt.Errorf("%w: %s", ErrInvalidFile, path)
		}
		buf, err = d.FullPCMBuffer()
		depth = int(d.BitDepth)
	}
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("wavio: decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 || depth <= 0 {
		return waveform.Waveform{}, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	w := toMono(buf, depth, c == WAV && depth == 8)
	waveform.NormalizeOver(&w, 1)
	return w, nil
}

func toMono(buf *audio.IntBuffer, depth int, unsigned bool) waveform.Waveform {
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	scale := math.Exp2(float64(depth - 1))
	out := make([]float64, frames)
	for i := range out {
		sum := 0.0
		for c := range ch {
			v := buf.Data[i*ch+c]
			if unsigned {
				v -= 128
			}
			sum += float64(v) / scale
		}
		out[i] = sum / float64(ch)
	}
	return waveform.FromFloat64(out, buf.Format.SampleRate, 0)
}

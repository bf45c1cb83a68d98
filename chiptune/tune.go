package chiptune

import (
	"fmt"

	"github.com/cwbudde/algo-chiptune/dsp/envelope"
	"github.com/cwbudde/algo-chiptune/dsp/filter"
	"github.com/cwbudde/algo-chiptune/dsp/signal"
	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/synth"
)

// Defaults applied when a script does not set them.
const (
	DefaultTimeStepMS = 100.0
	DefaultGain       = 1.0
)

// InstrumentKind tags the variant held by an Instrument.
type InstrumentKind int

const (
	KindBasic InstrumentKind = iota
	KindLibrary
	KindRingMod
	KindConv
	KindWeighted
)

func (k InstrumentKind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindLibrary:
		return "library"
	case KindRingMod:
		return "ring_mod"
	case KindConv:
		return "conv"
	case KindWeighted:
		return "weighted_average"
	}
	return fmt.Sprintf("InstrumentKind(%d)", int(k))
}

// WeightedRef is one (weight, instrument) pair of a weighted average.
type WeightedRef struct {
	Weight float64
	Name   string
}

// Instrument is a named recipe for a note's waveform. Fields not used by its
// Kind stay at their zero value.
type Instrument struct {
	Name string
	Kind InstrumentKind

	// ADSR, Filter and Params index the tune tables; -1 means none.
	ADSR   int
	Filter int
	Params int
	Gain   float64

	Shape   signal.Waveshape
	Library synth.Instrument
	Freq    signal.FreqType
	Ampl    signal.AmplType
	Phase   signal.PhaseType

	// A and B name the operands of ring modulation and convolution.
	A, B  string
	Parts []WeightedRef
}

func newInstrument(name string, kind InstrumentKind) *Instrument {
	return &Instrument{Name: name, Kind: kind, ADSR: -1, Filter: -1, Params: -1, Gain: DefaultGain}
}

// References lists the instruments this one is composed of.
func (in *Instrument) References() []string {
	switch in.Kind {
	case KindRingMod, KindConv:
		return []string{in.A, in.B}
	case KindWeighted:
		out := make([]string, len(in.Parts))
		for i, p := range in.Parts {
			out[i] = p.Name
		}
		return out
	}
	return nil
}

// NoteKind distinguishes sounding notes from rests and separators.
type NoteKind int

const (
	// NotePause is a rest: nothing starts, the time step still elapses.
	NotePause NoteKind = iota
	// NoteSeparator marks a control-flow slot; it takes no time.
	NoteSeparator
	// NoteSound starts the note's waveform.
	NoteSound
)

// Note is one slot of a voice.
type Note struct {
	Kind       NoteKind
	Pitch      string
	Frequency  float64
	DurationMS float64
	Instrument string
	// ADSR and Filter override the instrument's when >= 0.
	ADSR   int
	Filter int
	Gain   float64
	// Line is the script line the note came from.
	Line int

	// Wave is filled by Build.
	Wave waveform.Waveform
}

// Voice is one melodic line.
type Voice struct {
	Notes []Note
}

// Tune is a parsed script.
type Tune struct {
	Path      string
	NumVoices int
	Voices    []Voice

	Instruments map[string]*Instrument
	// InstrumentOrder keeps declaration order for stable iteration.
	InstrumentOrder []string
	ADSRs           map[int]envelope.ADSR
	Filters         map[int]filter.Args
	Params          map[int]signal.Params

	Program *Program

	Diagnostics []*ParseError
	built       bool
}

// Len returns the number of note slots per voice.
func (t *Tune) Len() int {
	if len(t.Voices) == 0 {
		return 0
	}
	return len(t.Voices[0].Notes)
}

// Built reports whether note waveforms have been synthesized.
func (t *Tune) Built() bool { return t.built }

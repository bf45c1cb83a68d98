package synth

import (
	"fmt"
	"strings"
)

// Instrument identifies a built-in recipe.
type Instrument int

const (
	Piano Instrument = iota
	Violin
	Organ
	Trumpet
	Flute
	Guitar
	KickDrum
	SnareDrum
	HiHat
	Anvil
)

var instrumentNames = [...]string{
	Piano:     "PIANO",
	Violin:    "VIOLIN",
	Organ:     "ORGAN",
	Trumpet:   "TRUMPET",
	Flute:     "FLUTE",
	Guitar:    "GUITAR",
	KickDrum:  "KICKDRUM",
	SnareDrum: "SNAREDRUM",
	HiHat:     "HIHAT",
	Anvil:     "ANVIL",
}

func (i Instrument) String() string {
	if i >= 0 && int(i) < len(instrumentNames) {
		return instrumentNames[i]
	}
	return fmt.Sprintf("Instrument(%d)", int(i))
}

// Instruments lists every built-in instrument in table order.
func Instruments() []Instrument {
	out := make([]Instrument, len(instrumentNames))
	for i := range out {
		out[i] = Instrument(i)
	}
	return out
}

// ParseInstrument maps a library name such as "PIANO" (any case, optional
// leading '&') to an Instrument.
func ParseInstrument(s string) (Instrument, error) {
	s = strings.TrimPrefix(s, "&")
	for i, name := range instrumentNames {
		if strings.EqualFold(name, s) {
			return Instrument(i), nil
		}
	}
	return Piano, fmt.Errorf("synth: unknown instrument %q", s)
}

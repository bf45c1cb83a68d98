package envelope

import (
	"fmt"
	"slices"
	"strings"
)

var presets = map[string]ADSR{
	"PIANO": {
		Attack:  Segment{Mode: Exp, Time: 0.005},
		Decay:   Segment{Mode: Log, Time: 0.4},
		Sustain: Sustain{Level: 0.35},
		Release: Segment{Mode: Log, Time: 0.15},
	},
	"VIOLIN": {
		Attack:  Segment{Mode: Lin, Time: 0.08},
		Decay:   Segment{Mode: Lin, Time: 0.1},
		Sustain: Sustain{Level: 0.85},
		Release: Segment{Mode: Exp, Time: 0.12},
	},
	"ORGAN": {
		Attack:  Segment{Mode: Lin, Time: 0.01},
		Decay:   Segment{Mode: Lin, Time: 0.01},
		Sustain: Sustain{Level: 1},
		Release: Segment{Mode: Lin, Time: 0.02},
	},
	"TRUMPET": {
		Attack:  Segment{Mode: Exp, Time: 0.03},
		Decay:   Segment{Mode: Lin, Time: 0.06, Start: At(1)},
		Sustain: Sustain{Level: 0.75},
		Release: Segment{Mode: Log, Time: 0.08},
	},
	"FLUTE": {
		Attack:  Segment{Mode: Log, Time: 0.06},
		Decay:   Segment{Mode: Lin, Time: 0.05},
		Sustain: Sustain{Level: 0.8},
		Release: Segment{Mode: Lin, Time: 0.1},
	},
	"GUITAR": {
		Attack:  Segment{Mode: Lin, Time: 0.002},
		Decay:   Segment{Mode: Log, Time: 0.6},
		Sustain: Sustain{Level: 0.2},
		Release: Segment{Mode: Log, Time: 0.1},
	},
	"KICKDRUM": {
		Attack:  Segment{Mode: Lin, Time: 0.001},
		Decay:   Segment{Mode: Log, Time: 0.15},
		Sustain: Sustain{Level: 0, MaxTime: 0.001},
		Release: Segment{Mode: Lin, Time: 0.01},
	},
	"SNAREDRUM": {
		Attack:  Segment{Mode: Lin, Time: 0.001},
		Decay:   Segment{Mode: Log, Time: 0.12},
		Sustain: Sustain{Level: 0.05, MaxTime: 0.05},
		Release: Segment{Mode: Lin, Time: 0.05},
	},
	"HIHAT": {
		Attack:  Segment{Mode: Lin, Time: 0.001},
		Decay:   Segment{Mode: Log, Time: 0.04},
		Sustain: Sustain{Level: 0, MaxTime: 0.001},
		Release: Segment{Mode: Lin, Time: 0.005},
	},
	"ANVIL": {
		Attack:  Segment{Mode: Lin, Time: 0.001},
		Decay:   Segment{Mode: Exp, Time: 0.05, End: At(0.4)},
		Sustain: Sustain{Level: 0.4, MaxTime: 0.3},
		Release: Segment{Mode: Log, Time: 0.8},
	},
}

// Preset returns the named built-in envelope, ignoring case.
func Preset(name string) (ADSR, error) {
	if e, ok := presets[strings.ToUpper(name)]; ok {
		return e, nil
	}
	return ADSR{}, fmt.Errorf("envelope: unknown preset %q", name)
}

// PresetNames lists the built-in envelopes in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

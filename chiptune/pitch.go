package chiptune

import (
	"fmt"
	"math"
	"strconv"
)

// referenceOctave is the octave of the pitch table below.
const referenceOctave = 4

// pitchTable holds the twelve pitch classes of octave 4, C to B.
var pitchTable = [12]float64{
	261.63, 277.18, 293.66, 311.13, 329.63, 349.23,
	369.99, 392.00, 415.30, 440.00, 466.16, 493.88,
}

var letterSemitone = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// PitchFrequency converts a pitch such as "A4", "C#5" or "Bb3" to Hz. An
// accidental that crosses an octave boundary (Cb, B#) moves into the
// neighbouring octave.
func PitchFrequency(pitch string) (float64, error) {
	if len(pitch) < 2 {
		return 0, fmt.Errorf("chiptune: bad pitch %q", pitch)
	}
	letter := pitch[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	semi, ok := letterSemitone[letter]
	if !ok {
		return 0, fmt.Errorf("chiptune: bad pitch letter in %q", pitch)
	}
	rest := pitch[1:]
	switch rest[0] {
	case '#':
		semi++
		rest = rest[1:]
	case 'b':
		semi--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("chiptune: bad octave in %q", pitch)
	}
	switch {
	case semi < 0:
		semi += 12
		octave--
	case semi > 11:
		semi -= 12
		octave++
	}
	return pitchTable[semi] * math.Exp2(float64(octave-referenceOctave)), nil
}

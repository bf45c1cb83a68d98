// Package dither quantizes float samples to integer PCM with optional
// dither noise.
//
// Chip sounds carry long, quiet release tails; plain rounding turns them into
// correlated buzz at low bit depths. Triangular dither trades that for a
// constant, signal-independent noise floor.
package dither

import (
	"fmt"
	"strings"
)

// DitherType selects the probability distribution of the dither noise.
type DitherType int

const (
	// DitherNone rounds to the nearest step.
	DitherNone DitherType = iota
	// DitherRectangular adds uniform noise of one step peak to peak.
	DitherRectangular
	// DitherTriangular adds the sum of two uniform draws (TPDF).
	DitherTriangular
	// DitherGaussian adds normal noise.
	DitherGaussian

	ditherTypeCount
)

var ditherTypeNames = [ditherTypeCount]string{"none", "rect", "tpdf", "gauss"}

func (dt DitherType) String() string {
	if dt.Valid() {
		return ditherTypeNames[dt]
	}
	return fmt.Sprintf("DitherType(%d)", int(dt))
}

// Valid reports whether dt is a known dither type.
func (dt DitherType) Valid() bool {
	return dt >= 0 && dt < ditherTypeCount
}

// ParseDitherType maps none, rect, tpdf or gauss (any case) to a DitherType.
func ParseDitherType(s string) (DitherType, error) {
	for i, name := range ditherTypeNames {
		if strings.EqualFold(s, name) {
			return DitherType(i), nil
		}
	}
	return DitherNone, fmt.Errorf("dither: unknown type %q", s)
}

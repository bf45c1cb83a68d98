package chiptune

import (
	"errors"
	"fmt"
)

// Errors reported by parsing, building and playback.
var (
	ErrUnknownCommand  = errors.New("chiptune: unknown command")
	ErrMissingArgument = errors.New("chiptune: missing argument")
	ErrBadValue        = errors.New("chiptune: bad value")
	ErrUnknownModifier = errors.New("chiptune: unknown modifier")
	ErrUnbalanced      = errors.New("chiptune: unbalanced brackets")
	ErrDuplicateName   = errors.New("chiptune: duplicate name")
	ErrUnknownLabel    = errors.New("chiptune: unknown label")
	ErrUnknownRef      = errors.New("chiptune: unresolved reference")
	ErrInstrumentCycle = errors.New("chiptune: instrument reference cycle")
	ErrNoTune          = errors.New("chiptune: no tune loaded")
	ErrBusy            = errors.New("chiptune: tune already playing")
)

// ParseError is a diagnostic for one script line. Parsing continues after
// it; the offending line contributes defaults or nothing.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v (%s)", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("%v (%s)", e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

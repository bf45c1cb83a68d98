package chiptune

import (
	"errors"
	"slices"
	"testing"
)

// played walks the tune's program and returns the indices of non-separator
// steps in play order.
func played(t *testing.T, tune *Tune) []int {
	t.Helper()
	cur := NewCursor(tune.Program)
	var out []int
	for range 1000 {
		pos, ok := cur.Next()
		if !ok {
			return out
		}
		if !pos.Separator {
			out = append(out, pos.Index)
		}
	}
	t.Fatal("cursor did not terminate")
	return nil
}

func TestCursorGotoTimes(t *testing.T) {
	tune := mustParse(t, `instrument s sine
TAB | C4 10 s |
LABEL L
TAB | D4 10 s |
TAB | E4 10 s |
GOTO_TIMES L 2
TAB | F4 10 s |
`)
	if len(tune.Diagnostics) != 0 {
		t.Fatalf("diagnostics: %v", tune.Diagnostics)
	}
	want := []int{0, 1, 2, 1, 2, 1, 2, 4}
	if got := played(t, tune); !slices.Equal(got, want) {
		t.Fatalf("played %v, want %v", got, want)
	}

	cur := NewCursor(tune.Program)
	for range 4 {
		cur.Next()
	}
	if rem, ok := cur.Remaining(3); !ok || rem != 1 {
		t.Fatalf("remaining after one jump = %d %v, want 1", rem, ok)
	}
	for {
		if _, ok := cur.Next(); !ok {
			break
		}
	}
	if rem, _ := cur.Remaining(3); rem != 2 {
		t.Fatalf("remaining after fall through = %d, want 2", rem)
	}
	if _, ok := cur.Remaining(0); ok {
		t.Fatal("step 0 has no goto")
	}

	cur.Reset()
	if got := played(t, tune); !slices.Equal(got, want) {
		t.Fatalf("replay %v, want %v", got, want)
	}
}

func TestCursorGotoForever(t *testing.T) {
	tune := mustParse(t, "instrument s sine\nLABEL top\nTAB | C4 10 s |\nGOTO top\n")
	cur := NewCursor(tune.Program)
	var jumps int
	cur.OnJump = func(ev JumpEvent) {
		if ev.Kind != JumpGoto || ev.To != 0 || ev.Label != "top" {
			t.Fatalf("jump event %+v", ev)
		}
		jumps++
	}
	for range 50 {
		if _, ok := cur.Next(); !ok {
			t.Fatal("infinite goto ended")
		}
	}
	if jumps < 20 {
		t.Fatalf("jumps = %d", jumps)
	}
}

func TestCursorEndings(t *testing.T) {
	tune := mustParse(t, `instrument s sine
TAB | C4 10 s |
LABEL L
TAB | D4 10 s |
ENDING 1
TAB | E4 10 s |
GOTO_TIMES L 1
ENDING 2
TAB | F4 10 s |
TAB | G4 10 s |
`)
	if len(tune.Diagnostics) != 0 {
		t.Fatalf("diagnostics: %v", tune.Diagnostics)
	}
	want := []int{0, 1, 2, 1, 4, 5}
	if got := played(t, tune); !slices.Equal(got, want) {
		t.Fatalf("played %v, want %v", got, want)
	}
}

func TestCursorEndingsCountPassesPerLabel(t *testing.T) {
	tune := mustParse(t, `instrument s sine
TAB | C4 10 s |
LABEL L
TAB | D4 10 s |
ENDING 1
TAB | E4 10 s |
GOTO_TIMES L 1
ENDING 2
TAB | F4 10 s |
GOTO_TIMES L 1
ENDING 3
TAB | G4 10 s |
`)
	if len(tune.Diagnostics) != 0 {
		t.Fatalf("diagnostics: %v", tune.Diagnostics)
	}
	// Each goto repeats once; the second repeat is the third pass.
	want := []int{0, 1, 2, 1, 4, 1, 6}
	if got := played(t, tune); !slices.Equal(got, want) {
		t.Fatalf("played %v, want %v", got, want)
	}
}

func TestCursorDaCapoAlFine(t *testing.T) {
	tune := mustParse(t, `instrument s sine
TAB | C4 10 s |
TAB | D4 10 s |
FINE
TAB | E4 10 s |
DA_CAPO_AL_FINE
`)
	want := []int{0, 1, 2, 0, 1}
	if got := played(t, tune); !slices.Equal(got, want) {
		t.Fatalf("played %v, want %v", got, want)
	}
}

func TestCursorDalSegnoAlCoda(t *testing.T) {
	tune := mustParse(t, `instrument s sine
TAB | C4 10 s |
SEGNO
TAB | D4 10 s |
TO_CODA
TAB | E4 10 s |
DAL_SEGNO_AL_CODA
CODA
TAB | F4 10 s |
`)
	if len(tune.Diagnostics) != 0 {
		t.Fatalf("diagnostics: %v", tune.Diagnostics)
	}
	var kinds []JumpKind
	cur := NewCursor(tune.Program)
	cur.OnJump = func(ev JumpEvent) { kinds = append(kinds, ev.Kind) }
	var got []int
	for {
		pos, ok := cur.Next()
		if !ok {
			break
		}
		if !pos.Separator {
			got = append(got, pos.Index)
		}
	}
	if want := []int{0, 1, 3, 1, 5}; !slices.Equal(got, want) {
		t.Fatalf("played %v, want %v", got, want)
	}
	if want := []JumpKind{JumpDalSegnoAlCoda, JumpToCoda}; !slices.Equal(kinds, want) {
		t.Fatalf("jumps %v, want %v", kinds, want)
	}
}

func TestCursorUnknownLabelFallsThrough(t *testing.T) {
	tune := mustParse(t, "instrument s sine\nTAB | C4 10 s |\nGOTO nowhere\nTAB | D4 10 s |\n")
	var found bool
	for _, d := range tune.Diagnostics {
		if errors.Is(d, ErrUnknownLabel) {
			found = true
		}
	}
	if !found {
		t.Fatalf("diagnostics = %v", tune.Diagnostics)
	}
	if got := played(t, tune); !slices.Equal(got, []int{0, 2}) {
		t.Fatalf("played %v", got)
	}
}

func TestCursorTempoAndGain(t *testing.T) {
	tune := mustParse(t, `instrument s sine
TIME_STEP_MS 50
LABEL top
TAB | C4 10 s |
GAIN 0.5
TIME_STEP_MS 20
TAB | D4 10 s |
GOTO_TIMES top 1
`)
	cur := NewCursor(tune.Program)
	type state struct {
		idx         int
		tempo, gain float64
	}
	var got []state
	for {
		pos, ok := cur.Next()
		if !ok {
			break
		}
		if !pos.Separator {
			got = append(got, state{pos.Index, pos.TempoMS, pos.Gain})
		}
	}
	want := []state{{0, 50, 1}, {1, 20, 0.5}, {0, 50, 1}, {1, 20, 0.5}}
	if !slices.Equal(got, want) {
		t.Fatalf("states %v, want %v", got, want)
	}
}

func TestCursorPrintAndStart(t *testing.T) {
	tune := mustParse(t, `instrument s sine
TAB | C4 10 s |
START
PRINT OFF
TAB | D4 10 s |
PRINT ON
TAB | E4 10 s |
`)
	cur := NewCursor(tune.Program)
	first, _ := cur.Next()
	second, _ := cur.Next()
	if first.Index != 1 || first.Print || second.Index != 2 || !second.Print {
		t.Fatalf("positions %+v %+v", first, second)
	}
	if _, ok := cur.Next(); ok || !cur.Done() {
		t.Fatal("cursor should be done")
	}
}

func TestCursorDuplicateLabel(t *testing.T) {
	tune := mustParse(t, "instrument s sine\nLABEL a\nTAB | C4 10 s |\nLABEL a\nTAB | D4 10 s |\n")
	if len(tune.Diagnostics) != 1 || !errors.Is(tune.Diagnostics[0], ErrDuplicateName) {
		t.Fatalf("diagnostics = %v", tune.Diagnostics)
	}
	if idx, ok := tune.Program.Label("a"); !ok || idx != 0 {
		t.Fatalf("label a = %d %v, want first definition", idx, ok)
	}
}

func TestJumpKindString(t *testing.T) {
	if JumpDaCapoAlCoda.String() != "DA_CAPO_AL_CODA" || JumpKind(42).String() != "JumpKind(42)" {
		t.Fatal("unexpected JumpKind names")
	}
}

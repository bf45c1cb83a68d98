package chiptune

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
	"github.com/cwbudde/algo-chiptune/synth"
)

func builtTune(t *testing.T, script string) *Tune {
	t.Helper()
	tune := mustParse(t, script)
	if _, err := Build(tune, synth.New()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tune
}

func TestRenderSchedulesNotes(t *testing.T) {
	tune := builtTune(t, "instrument s sine\nTAB | C4 50 s |\nTAB | E4 50 s |\n")
	w, err := Render(tune, RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if w.SampleRate != 44100 || w.Len() != 4410+2205 {
		t.Fatalf("len=%d rate=%d, want 6615 at 44100", w.Len(), w.SampleRate)
	}
	if p := w.Peak(); p > 1+1e-6 || p < 0.5 {
		t.Fatalf("peak = %v", p)
	}
	// Gap between the notes is silent.
	for i := 2300; i < 4400; i++ {
		if w.Buffer[i] != 0 {
			t.Fatalf("sample %d = %v, want silence", i, w.Buffer[i])
		}
	}
}

func TestRenderInterrupt(t *testing.T) {
	script := "instrument s sine\nTAB | C4 200 s |\nTAB | E4 200 s |\n"
	held, err := Render(builtTune(t, script), RenderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if held.Len() != 8820 {
		t.Fatalf("busy voice kept %d samples, want 8820", held.Len())
	}
	cut, err := Render(builtTune(t, script), RenderOptions{Interrupt: true})
	if err != nil {
		t.Fatal(err)
	}
	if cut.Len() != 4410+8820 {
		t.Fatalf("interrupted render %d samples, want 13230", cut.Len())
	}
	// After the cut only the second note sounds, so nothing exceeds 1.
	if p := cut.Peak(); p > 1+1e-6 {
		t.Fatalf("peak = %v", p)
	}
}

func TestRenderStopsInfiniteLoops(t *testing.T) {
	tune := builtTune(t, "instrument s sine\nLABEL a\nTAB | C4 50 s |\nGOTO a\n")
	w, err := Render(tune, RenderOptions{MaxDuration: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if w.Len() == 0 || w.Len() > 44100 {
		t.Fatalf("len = %d", w.Len())
	}
}

func TestRenderWithIR(t *testing.T) {
	tune := builtTune(t, "instrument s sine\nTAB | C4 50 s |\n")
	ir := waveform.New(1000, 44100, 0)
	for i := range ir.Buffer {
		ir.Buffer[i] = float32(math.Exp(-float64(i) / 100))
	}
	w, err := Render(tune, RenderOptions{IR: ir})
	if err != nil {
		t.Fatal(err)
	}
	if w.Len() != 2205+1000-1 {
		t.Fatalf("len = %d, want %d", w.Len(), 2205+1000-1)
	}
}

func TestRenderRequiresBuild(t *testing.T) {
	tune := mustParse(t, minimalScript)
	if _, err := Render(tune, RenderOptions{}); !errors.Is(err, ErrNoTune) {
		t.Fatalf("Render = %v, want ErrNoTune", err)
	}
}

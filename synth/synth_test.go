package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/signal"
	"github.com/cwbudde/algo-chiptune/dsp/spectrum"
	"github.com/cwbudde/algo-chiptune/internal/testutil"
)

func TestEveryInstrumentRenders(t *testing.T) {
	s := New()
	for _, inst := range Instruments() {
		t.Run(inst.String(), func(t *testing.T) {
			w, err := s.Synthesize(inst, signal.Params{}, 0.3, 220, nil, nil, nil)
			if err != nil {
				t.Fatalf("Synthesize: %v", err)
			}
			if w.Len() != 13230 || w.SampleRate != 44100 || w.Frequency != 220 {
				t.Fatalf("len=%d rate=%d freq=%v", w.Len(), w.SampleRate, w.Frequency)
			}
			data := w.Float64()
			testutil.RequireFinite(t, data)
			if p := w.Peak(); math.Abs(p-1) > 1e-6 {
				t.Fatalf("peak = %v, want normalized 1", p)
			}
		})
	}
}

func TestHighNotesStayValid(t *testing.T) {
	s := New()
	for _, inst := range Instruments() {
		if _, err := s.Synthesize(inst, signal.Params{}, 0.05, 4186, nil, nil, nil); err != nil {
			t.Fatalf("%v at C8: %v", inst, err)
		}
	}
}

func TestOrganFundamental(t *testing.T) {
	s := New(core.WithSampleRate(8000))
	w, err := s.Synthesize(Organ, signal.Params{}, 0.5, 250, nil, nil, nil)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	f, err := spectrum.DominantFrequency(w)
	if err != nil {
		t.Fatalf("DominantFrequency: %v", err)
	}
	if math.Abs(f-250) > 10 {
		t.Fatalf("dominant = %v Hz, want about 250", f)
	}
}

func TestSynthesizeIsReproducible(t *testing.T) {
	a, err := New(core.WithSeed(4)).Synthesize(SnareDrum, signal.Params{}, 0.1, 200, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(core.WithSeed(4)).Synthesize(SnareDrum, signal.Params{}, 0.1, 200, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, a.Float64(), b.Float64(), 0)
}

func TestSynthesizeZeroDuration(t *testing.T) {
	w, err := New().Synthesize(Piano, signal.Params{}, 0, 440, nil, nil, nil)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if w.Len() != 0 {
		t.Fatalf("len = %d, want 0", w.Len())
	}
}

func TestUnknownInstrument(t *testing.T) {
	_, err := New().Synthesize(Instrument(99), signal.Params{}, 0.1, 440, nil, nil, nil)
	if !errors.Is(err, ErrUnknownInstrument) {
		t.Fatalf("err = %v, want ErrUnknownInstrument", err)
	}
}

func TestRenderEmptyRecipeIsSilent(t *testing.T) {
	w, err := New().Render(Recipe{}, signal.Params{}, 0.01, 440, nil, nil, nil)
	if err != nil || w.Len() != 441 || w.Peak() != 0 {
		t.Fatalf("len=%d peak=%v err=%v", w.Len(), w.Peak(), err)
	}
}

func TestRecipesAreDeclared(t *testing.T) {
	for _, inst := range Instruments() {
		r, ok := RecipeOf(inst)
		if !ok || len(r.Layers) == 0 || r.Envelope == "" {
			t.Fatalf("%v: incomplete recipe %+v", inst, r)
		}
	}
	if _, ok := RecipeOf(Instrument(-1)); ok {
		t.Fatal("negative id resolved")
	}
}

func TestParseInstrument(t *testing.T) {
	tests := map[string]Instrument{
		"PIANO":     Piano,
		"&guitar":   Guitar,
		"KickDrum":  KickDrum,
		"&ANVIL":    Anvil,
		"snaredrum": SnareDrum,
	}
	for in, want := range tests {
		got, err := ParseInstrument(in)
		if err != nil || got != want {
			t.Fatalf("ParseInstrument(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseInstrument("&KAZOO"); err == nil {
		t.Fatal("expected error")
	}
}

func TestChorusChangesRecipe(t *testing.T) {
	r, ok := RecipeOf(Violin)
	if !ok || !r.Chorus {
		t.Fatal("violin should be chorused")
	}
	wet, err := New().Render(r, signal.Params{}, 0.1, 330, nil, nil, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	r.Chorus = false
	dry, err := New().Render(r, signal.Params{}, 0.1, 330, nil, nil, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if wet.Len() != dry.Len() {
		t.Fatalf("len %d vs %d", wet.Len(), dry.Len())
	}
	same := true
	for i := range wet.Buffer {
		if wet.Buffer[i] != dry.Buffer[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("chorus left the waveform unchanged")
	}
}

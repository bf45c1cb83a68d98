package sfx

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/internal/testutil"
)

func TestCanonicalEffects(t *testing.T) {
	tests := []struct {
		typ  Type
		want int
	}{
		{Coin, 11025},
		{Laser, 13230},
		{Explosion, 39690},
	}
	for _, tc := range tests {
		t.Run(tc.typ.String(), func(t *testing.T) {
			w, err := New().Generate(tc.typ, 0)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if w.Len() != tc.want {
				t.Fatalf("len = %d, want %d", w.Len(), tc.want)
			}
			testutil.RequireFinite(t, w.Float64())
			if p := w.Peak(); math.Abs(p-1) > 1e-6 {
				t.Fatalf("peak = %v, want 1", p)
			}
		})
	}
}

func TestZeroVariationIgnoresVector(t *testing.T) {
	a, err := New(WithProcessorOptions(core.WithSeed(3))).Generate(Explosion, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(WithProcessorOptions(core.WithSeed(3))).Generate(Explosion, 0, 1, -1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, a.Float64(), b.Float64(), 0)
}

func TestVariationPerturbsRecipe(t *testing.T) {
	a, err := New().Generate(Coin, 0)
	if err != nil {
		t.Fatal(err)
	}
	longer, err := New().Generate(Coin, 0.5, 1)
	if err != nil {
		t.Fatal(err)
	}
	if longer.Len() != 16538 {
		t.Fatalf("len = %d, want 16538 (1.5x duration)", longer.Len())
	}
	shifted, err := New().Generate(Coin, 0.5, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := testutil.MaxAbsDiff(a.Float64(), shifted.Float64()); d < 0.1 {
		t.Fatalf("frequency variation had no audible effect (diff %v)", d)
	}
}

func TestExtraVariationsWarn(t *testing.T) {
	var buf bytes.Buffer
	g := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	vp := make([]float64, NumVariations(Coin)+2)
	if _, err := g.Generate(Coin, 1, vp...); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(buf.String(), "ignoring extra variation parameters") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestUnknownEffect(t *testing.T) {
	if _, err := New().Generate(Type(7), 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{Coin, Laser, Explosion} {
		got, err := ParseType(strings.ToLower(typ.String()))
		if err != nil || got != typ {
			t.Fatalf("ParseType(%v) = %v, %v", typ, got, err)
		}
	}
	if _, err := ParseType("boing"); err == nil {
		t.Fatal("expected error")
	}
}

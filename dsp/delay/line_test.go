package delay

import (
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}
	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}
}

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		d.Write(float64(i))
	}
	// delay=1 => most recently written (7)
	if got := d.Read(1); got != 7 {
		t.Fatalf("got %v want 7", got)
	}
	if got := d.Read(3); got != 5 {
		t.Fatalf("got %v want 5", got)
	}
}

func TestReadWraparound(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		d.Write(float64(i))
	}
	want := []float64{9, 8, 7, 6}
	for k, w := range want {
		if got := d.Read(k + 1); got != w {
			t.Fatalf("Read(%d) = %v, want %v", k+1, got, w)
		}
	}
	// Delays beyond the line size wrap.
	if got := d.Read(5); got != 9 {
		t.Fatalf("Read(5) = %v, want 9", got)
	}
}

func TestReadFractionalRamp(t *testing.T) {
	d, err := New(32)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 32; i++ {
		d.Write(float64(i))
	}
	// Hermite interpolation is exact on a linear ramp.
	for _, delay := range []float64{1, 2.5, 7.25, 20.75} {
		want := 32 - delay
		if got := d.ReadFractional(delay); math.Abs(got-want) > 1e-12 {
			t.Fatalf("ReadFractional(%v) = %v, want %v", delay, got, want)
		}
	}
}

func TestReset(t *testing.T) {
	d, _ := New(4)
	d.Write(1)
	d.Write(2)
	d.Reset()
	for k := 1; k <= 4; k++ {
		if got := d.Read(k); got != 0 {
			t.Fatalf("Read(%d) after reset = %v", k, got)
		}
	}
}

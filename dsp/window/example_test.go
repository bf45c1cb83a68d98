package window

import (
	"fmt"

	"github.com/cwbudde/algo-chiptune/dsp/waveform"
)

func ExampleGenerate() {
	w := Generate(TypeHann, 4)
	fmt.Printf("%.2f %.2f %.2f %.2f\n", w[0], w[1], w[2], w[3])
	// Output:
	// 0.00 0.75 0.75 0.00
}

func ExampleFadeOut() {
	w := waveform.FromFloat64([]float64{1, 1, 1, 1}, 8000, 0)
	FadeOut(&w, 2)
	fmt.Println(w.Buffer)
	// Output:
	// [1 1 0.75 0]
}

package conv_test

import (
	"fmt"

	"github.com/cwbudde/algo-chiptune/dsp/conv"
)

func ExampleDirect() {
	out, _ := conv.Direct([]float64{1, 2, 3}, []float64{1, 1})
	fmt.Println(out)
	// Output: [1 3 5 3]
}

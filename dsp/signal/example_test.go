package signal_test

import (
	"fmt"

	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/signal"
)

func ExampleGenerator_Generate() {
	g := signal.NewGenerator(core.WithSampleRate(8))
	w := g.Generate(signal.Square, 1, 1, signal.Params{}, nil, nil, nil)

	fmt.Println(w.Buffer)

	// Output:
	// [1 1 1 -1 -1 -1 -1 1]
}

func ExampleParseWaveshape() {
	shape, err := signal.ParseWaveshape("sawtooth")
	if err != nil {
		panic(err)
	}
	fmt.Println(shape)

	// Output:
	// SAW
}

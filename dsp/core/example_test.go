package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-chiptune/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(22050),
		core.WithSeed(42),
	)

	fmt.Printf("sampleRate=%d seed=%d\n", cfg.SampleRate, cfg.Seed)

	// Output:
	// sampleRate=22050 seed=42
}

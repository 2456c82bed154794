package envelope_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/envelope"
)

func ExampleAR() {
	env, err := envelope.NewAR(1000, 4, 4, envelope.WithCurve(envelope.CurveLinear))
	if err != nil {
		panic(err)
	}

	env.Trigger(127)

	for env.IsActive() {
		fmt.Printf("%.2f ", env.Process())
	}

	fmt.Println()
	// Output:
	// 0.25 0.50 0.75 1.00 0.75 0.50 0.25 0.00
}

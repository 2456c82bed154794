package effects_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/effects"
)

func ExampleFeedbackDelay_ProcessInPlace() {
	d, err := effects.NewFeedbackDelay(1000,
		effects.WithDelayTime(0.002),
		effects.WithDelayFeedback(0.5),
	)
	if err != nil {
		fmt.Println("error")
		return
	}

	buf := []float64{1, 0, 0, 0, 0}
	d.ProcessInPlace(buf)

	fmt.Println(buf)
	// Output:
	// [1 0 0.5 0 0.25]
}

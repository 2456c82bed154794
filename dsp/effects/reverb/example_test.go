package reverb_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/effects/reverb"
)

func ExampleFDNReverb() {
	r, err := reverb.NewFDNReverb(48000, reverb.WithSeed(1), reverb.WithFeedback(0.9))
	if err != nil {
		panic(err)
	}

	peak := 0.0

	for i := 0; i < 10000; i++ {
		x := 0.0
		if i == 0 {
			x = 1
		}

		peak = math.Max(peak, math.Abs(r.ProcessSample(x)))
	}

	fmt.Println(peak > 0 && peak <= 1)
	// Output: true
}

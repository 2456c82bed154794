package svf_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/filter/svf"
)

func ExampleNew() {
	f, err := svf.New(48000, svf.WithCutoffHz(2000), svf.WithQ(0.707))
	if err != nil {
		panic(err)
	}

	var y float64
	for i := 0; i < 4800; i++ {
		y = f.Process(1)
	}

	fmt.Printf("%.4f\n", y)
	// Output:
	// 1.0000
}

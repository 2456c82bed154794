package window

import "fmt"

func ExampleGenerate_periodic() {
	w := Generate(TypeHann, 4, WithPeriodic())
	fmt.Printf("%.2f\n", w)
	fmt.Printf("gain %.2f\n", CoherentGain(w))
	// Output:
	// [0.00 0.50 1.00 0.50]
	// gain 0.50
}

func ExampleApply() {
	frame := []float64{2, 2, 2, 2, 2}
	Apply(TypeHamming, frame)
	fmt.Printf("%.2f\n", frame)
	// Output:
	// [0.16 1.08 2.00 1.08 0.16]
}

func ExampleInfo() {
	for _, t := range []Type{TypeBlackman, Type(42)} {
		m := Info(t)
		fmt.Printf("%s enbw=%.4f cg=%.2f\n", m.Name, m.ENBW, m.CoherentGain)
	}
	// Output:
	// Blackman enbw=1.7268 cg=0.42
	// Rectangular enbw=1.0000 cg=1.00
}

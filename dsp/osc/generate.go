package osc

import (
	"fmt"
	"math"
)

// Source is anything producing one sample per call.
type Source interface {
	Process() float64
}

// Fill renders len(dst) samples from src into dst.
func Fill(dst []float64, src Source) {
	for i := range dst {
		dst[i] = src.Process()
	}
}

// Render allocates and renders samples from src.
func Render(src Source, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("render samples must be > 0: %d", samples)
	}

	out := make([]float64, samples)
	Fill(out, src)

	return out, nil
}

// Impulse returns a unit impulse of the given length.
func Impulse(samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("impulse samples must be > 0: %d", samples)
	}

	out := make([]float64, samples)
	out[0] = 1

	return out, nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}

	return out, nil
}

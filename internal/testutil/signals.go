// Package testutil holds test signals and assertions shared by the DSP,
// instrument and engine tests.
package testutil

import "math"

// Processor is any per-sample effect or filter.
type Processor interface {
	ProcessSample(x float64) float64
}

// Sine returns length samples of a sine at freqHz starting at phase zero.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// Impulse returns a unit impulse at pos. An out-of-range pos gives silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// Render collects n samples from next, e.g. a voice's Process method.
func Render(next func() float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = next()
	}

	return out
}

// ImpulseThrough feeds a unit impulse followed by silence through p.
func ImpulseThrough(p Processor, n int) []float64 {
	out := Impulse(n, 0)
	for i, x := range out {
		out[i] = p.ProcessSample(x)
	}

	return out
}

// Peak returns the largest absolute sample.
func Peak[T ~float32 | ~float64](data []T) float64 {
	m := 0.0
	for _, v := range data {
		m = math.Max(m, math.Abs(float64(v)))
	}

	return m
}

// Energy returns the sum of squares.
func Energy[T ~float32 | ~float64](data []T) float64 {
	e := 0.0
	for _, v := range data {
		e += float64(v) * float64(v)
	}

	return e
}

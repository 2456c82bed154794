package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/window"
)

const minDB = -240.0

// ErrEmptyInput is returned when there is nothing to analyze.
var ErrEmptyInput = errors.New("response: empty input")

// Processor is anything that maps one input sample to one output sample.
type Processor interface {
	ProcessSample(x float64) float64
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(x float64) float64

// ProcessSample calls f(x).
func (f ProcessorFunc) ProcessSample(x float64) float64 { return f(x) }

// Response is a one-sided magnitude spectrum.
type Response struct {
	SampleRate float64
	FFTSize    int
	// Magnitude holds |H(k)| for bins 0..FFTSize/2.
	Magnitude []float64
}

// BinHz returns the bin spacing in Hz.
func (r Response) BinHz() float64 {
	if r.FFTSize == 0 {
		return 0
	}

	return r.SampleRate / float64(r.FFTSize)
}

// At returns the linearly interpolated magnitude at freqHz.
func (r Response) At(freqHz float64) float64 {
	if len(r.Magnitude) == 0 {
		return 0
	}

	pos := core.Clamp(freqHz/r.BinHz(), 0, float64(len(r.Magnitude)-1))
	i := int(pos)

	if i >= len(r.Magnitude)-1 {
		return r.Magnitude[len(r.Magnitude)-1]
	}

	t := pos - float64(i)

	return r.Magnitude[i] + t*(r.Magnitude[i+1]-r.Magnitude[i])
}

// AtDB returns At(freqHz) in dB, floored at -240 dB.
func (r Response) AtDB(freqHz float64) float64 {
	m := r.At(freqHz)
	if m <= 0 {
		return minDB
	}

	return math.Max(core.LinearToDB(m), minDB)
}

// Peak returns the frequency and magnitude of the largest bin.
func (r Response) Peak() (freqHz, magnitude float64) {
	if len(r.Magnitude) == 0 {
		return 0, 0
	}

	best := 0
	for i, m := range r.Magnitude {
		if m > r.Magnitude[best] {
			best = i
		}
	}

	return float64(best) * r.BinHz(), r.Magnitude[best]
}

// ImpulseResponse feeds a unit impulse through p and records length samples.
func ImpulseResponse(p Processor, length int) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("response length must be > 0: %d", length)
	}

	out := make([]float64, length)
	out[0] = p.ProcessSample(1)

	for i := 1; i < length; i++ {
		out[i] = p.ProcessSample(0)
	}

	return out, nil
}

// Measure records the impulse response of p over fftSize samples and
// returns its magnitude response. fftSize must be a power of two.
func Measure(p Processor, sampleRate float64, fftSize int) (Response, error) {
	if !isPowerOf2(fftSize) {
		return Response{}, fmt.Errorf("response fft size must be a power of two: %d", fftSize)
	}

	ir, err := ImpulseResponse(p, fftSize)
	if err != nil {
		return Response{}, err
	}

	return FromImpulse(ir, sampleRate, fftSize)
}

// FromImpulse transforms an impulse response. A zero fftSize selects the next
// power of two >= len(ir); shorter responses are zero-padded and longer ones
// truncated.
func FromImpulse(ir []float64, sampleRate float64, fftSize int) (Response, error) {
	if len(ir) == 0 {
		return Response{}, ErrEmptyInput
	}

	return transform(ir, nil, sampleRate, fftSize)
}

// FromSignal returns the windowed magnitude spectrum of a steady-state
// signal, normalized by the window's coherent gain so a full-scale sine
// reads close to its amplitude.
func FromSignal(x []float64, sampleRate float64, win window.Type) (Response, error) {
	if len(x) == 0 {
		return Response{}, ErrEmptyInput
	}

	coeffs := window.Generate(win, len(x), window.WithPeriodic())

	r, err := transform(x, coeffs, sampleRate, 0)
	if err != nil {
		return Response{}, err
	}

	// one-sided amplitude: 2/N for non-DC bins, corrected for window gain
	norm := 2 / (float64(len(x)) * window.CoherentGain(coeffs))
	vecmath.ScaleBlock(r.Magnitude, r.Magnitude, norm)
	r.Magnitude[0] /= 2

	return r, nil
}

func transform(x, coeffs []float64, sampleRate float64, fftSize int) (Response, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return Response{}, fmt.Errorf("response sample rate must be > 0: %f", sampleRate)
	}

	if fftSize == 0 {
		fftSize = nextPowerOf2(len(x))
	}

	if !isPowerOf2(fftSize) {
		return Response{}, fmt.Errorf("response fft size must be a power of two: %d", fftSize)
	}

	in := make([]complex128, fftSize)
	for i := 0; i < len(x) && i < fftSize; i++ {
		v := x[i]
		if coeffs != nil {
			v *= coeffs[i]
		}

		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Response{}, fmt.Errorf("response fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Response{}, fmt.Errorf("response fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	return Response{SampleRate: sampleRate, FFTSize: fftSize, Magnitude: mag}, nil
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}

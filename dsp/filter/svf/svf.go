package svf

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultCutoffHz = 1000.0
	defaultQ        = 0.707

	minQ          = 0.025
	maxCutoffNorm = 0.49
)

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	cutoffHz float64
	q        float64
}

// WithCutoffHz sets the initial cutoff in Hz. Must be finite and >= 0.
func WithCutoffHz(cutoffHz float64) Option {
	return func(cfg *config) error {
		if cutoffHz < 0 || !core.IsFinite(cutoffHz) {
			return fmt.Errorf("svf: cutoff must be finite and >= 0: %f", cutoffHz)
		}

		cfg.cutoffHz = cutoffHz

		return nil
	}
}

// WithQ sets the initial resonance. Must be finite and >= 0.
func WithQ(q float64) Option {
	return func(cfg *config) error {
		if q < 0 || !core.IsFinite(q) {
			return fmt.Errorf("svf: q must be finite and >= 0: %f", q)
		}

		cfg.q = q

		return nil
	}
}

// SVF is a low-pass state-variable filter with trapezoidal integrators.
type SVF struct {
	sampleRate float64
	cutoffHz   float64
	q          float64

	g, k       float64
	a1, a2, a3 float64

	ic1eq, ic2eq float64

	configured bool
}

// New returns an SVF at sampleRate with optional cutoff and Q.
func New(sampleRate float64, opts ...Option) (*SVF, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("svf: sample rate must be > 0: %f", sampleRate)
	}

	cfg := config{cutoffHz: defaultCutoffHz, q: defaultQ}
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &SVF{sampleRate: sampleRate, cutoffHz: cfg.cutoffHz, q: cfg.q}
	f.updateCoefficients()

	return f, nil
}

// MustNew is New for statically known arguments. It panics on error.
func MustNew(sampleRate float64, opts ...Option) *SVF {
	f, err := New(sampleRate, opts...)
	if err != nil {
		panic(err)
	}

	return f
}

// SampleRate returns the sample rate in Hz.
func (f *SVF) SampleRate() float64 { return f.sampleRate }

// CutoffHz returns the requested cutoff in Hz.
func (f *SVF) CutoffHz() float64 { return f.cutoffHz }

// Q returns the requested resonance.
func (f *SVF) Q() float64 { return f.q }

// SetFrequency updates the cutoff. Non-finite values are rejected; values
// below zero are treated as zero. Coefficients are only recomputed when the
// cutoff changes.
func (f *SVF) SetFrequency(cutoffHz float64) error {
	if !core.IsFinite(cutoffHz) {
		return fmt.Errorf("svf: cutoff must be finite: %f", cutoffHz)
	}

	if cutoffHz < 0 {
		cutoffHz = 0
	}

	if cutoffHz == f.cutoffHz && f.configured {
		return nil
	}

	f.cutoffHz = cutoffHz
	f.updateCoefficients()

	return nil
}

// SetQ updates the resonance. Non-finite values are rejected.
func (f *SVF) SetQ(q float64) error {
	if !core.IsFinite(q) {
		return fmt.Errorf("svf: q must be finite: %f", q)
	}

	if q == f.q && f.configured {
		return nil
	}

	f.q = q
	f.updateCoefficients()

	return nil
}

// Process filters one sample and returns the low-pass output.
func (f *SVF) Process(x float64) float64 {
	v3 := x - f.ic2eq
	v1 := f.a1*f.ic1eq + f.a2*v3
	v2 := f.ic2eq + f.a2*f.ic1eq + f.a3*v3
	f.ic1eq = core.FlushDenormals(2*v1 - f.ic1eq)
	f.ic2eq = core.FlushDenormals(2*v2 - f.ic2eq)

	return v2
}

// ProcessMulti filters one sample and returns the low-, band- and high-pass
// outputs of the same update.
func (f *SVF) ProcessMulti(x float64) (lp, bp, hp float64) {
	v3 := x - f.ic2eq
	v1 := f.a1*f.ic1eq + f.a2*v3
	v2 := f.ic2eq + f.a2*f.ic1eq + f.a3*v3
	f.ic1eq = core.FlushDenormals(2*v1 - f.ic1eq)
	f.ic2eq = core.FlushDenormals(2*v2 - f.ic2eq)

	return v2, v1, x - f.k*v1 - v2
}

// ProcessInPlace low-pass filters buf in place.
func (f *SVF) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = f.Process(x)
	}
}

// ResetState clears the integrators and keeps the coefficients.
func (f *SVF) ResetState() {
	f.ic1eq = 0
	f.ic2eq = 0
}

// Reset zeroes integrators and coefficients. The filter outputs silence
// until SetFrequency or SetQ is called again.
func (f *SVF) Reset() {
	f.g, f.k = 0, 0
	f.a1, f.a2, f.a3 = 0, 0, 0
	f.ic1eq, f.ic2eq = 0, 0
	f.configured = false
}

func (f *SVF) gain(cutoffHz float64) float64 {
	if cutoffHz <= 0 {
		return 0
	}

	ratio := math.Min(cutoffHz/f.sampleRate, maxCutoffNorm)

	return math.Tan(math.Pi * ratio)
}

func damping(q float64) float64 {
	if !(q > minQ) {
		q = minQ
	}

	return 1 / q
}

func (f *SVF) updateCoefficients() {
	f.g = f.gain(f.cutoffHz)
	f.k = damping(f.q)
	f.a1 = 1 / (1 + f.g*(f.g+f.k))
	f.a2 = f.g * f.a1
	f.a3 = f.g * f.a2
	f.configured = true
}

package svf

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// OnePole is a first-order low-pass used for control smoothing and loop damping.
//
//	y[n] = (1-a)*x[n] + a*y[n-1],  a = 1 / (1 + pi*fc/fs)
type OnePole struct {
	sampleRate float64
	alpha      float64
	z          float64
}

// NewOnePole returns a one-pole low-pass with the given cutoff.
func NewOnePole(sampleRate, cutoffHz float64) (*OnePole, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("svf: one-pole sample rate must be > 0: %f", sampleRate)
	}

	p := &OnePole{sampleRate: sampleRate}
	if err := p.SetFrequency(cutoffHz); err != nil {
		return nil, err
	}

	return p, nil
}

// SetFrequency sets the cutoff in Hz. Zero freezes the output.
func (p *OnePole) SetFrequency(cutoffHz float64) error {
	if cutoffHz < 0 || !core.IsFinite(cutoffHz) {
		return fmt.Errorf("svf: one-pole cutoff must be finite and >= 0: %f", cutoffHz)
	}

	p.alpha = 1 / (1 + math.Pi*cutoffHz/p.sampleRate)

	return nil
}

// SetCoefficient sets the feedback coefficient directly. Values are clamped to [0,1].
func (p *OnePole) SetCoefficient(alpha float64) {
	p.alpha = core.ClampUnit(alpha)
}

// Coefficient returns the feedback coefficient.
func (p *OnePole) Coefficient() float64 { return p.alpha }

// Process filters one sample.
func (p *OnePole) Process(x float64) float64 {
	p.z = core.FlushDenormals((1-p.alpha)*x + p.alpha*p.z)
	return p.z
}

// Value returns the last output.
func (p *OnePole) Value() float64 { return p.z }

// Set jumps the state to v.
func (p *OnePole) Set(v float64) { p.z = v }

// Reset clears the state.
func (p *OnePole) Reset() { p.z = 0 }

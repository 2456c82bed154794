package osc

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// Waveform selects the oscillator shape.
type Waveform int

const (
	// Sine is a pure sine.
	Sine Waveform = iota
	// Saw is a rising sawtooth with PolyBLEP edge smoothing.
	Saw
	// Square is a 50% pulse with PolyBLEP edge smoothing.
	Square
	// Triangle is a naive triangle.
	Triangle
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Saw:
		return "saw"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Oscillator is a phase-accumulator oscillator with output in [-1, 1].
type Oscillator struct {
	sampleRate float64
	waveform   Waveform
	freqHz     float64
	phase      float64
	inc        float64
}

// New returns an oscillator at A4.
func New(sampleRate float64, waveform Waveform) (*Oscillator, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("oscillator sample rate must be > 0: %f", sampleRate)
	}

	if waveform < Sine || waveform > Triangle {
		return nil, fmt.Errorf("oscillator waveform invalid: %d", waveform)
	}

	o := &Oscillator{sampleRate: sampleRate, waveform: waveform}
	o.SetFrequency(core.A4Freq)

	return o, nil
}

// SetFrequency sets the frequency in Hz, clamped to [0, sampleRate/2].
// Non-finite values leave the frequency unchanged.
func (o *Oscillator) SetFrequency(hz float64) {
	if !core.IsFinite(hz) {
		return
	}

	o.freqHz = core.Clamp(hz, 0, o.sampleRate/2)
	o.inc = o.freqHz / o.sampleRate
}

// Frequency returns the frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.freqHz }

// Waveform returns the oscillator shape.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// SetPhase sets the normalized phase; it is wrapped into [0, 1).
func (o *Oscillator) SetPhase(phase float64) {
	if !core.IsFinite(phase) {
		return
	}

	o.phase = phase - math.Floor(phase)
}

// Phase returns the normalized phase in [0, 1).
func (o *Oscillator) Phase() float64 { return o.phase }

// Reset returns the phase to zero.
func (o *Oscillator) Reset() { o.phase = 0 }

// Process returns the current sample and advances the phase.
func (o *Oscillator) Process() float64 {
	p := o.phase

	var y float64

	switch o.waveform {
	case Saw:
		y = 2*p - 1 - polyBLEP(p, o.inc)
	case Square:
		if p < 0.5 {
			y = 1
		} else {
			y = -1
		}

		y += polyBLEP(p, o.inc)

		q := p + 0.5
		if q >= 1 {
			q--
		}

		y -= polyBLEP(q, o.inc)
	case Triangle:
		y = 1 - 4*math.Abs(p-0.5)
	default:
		y = math.Sin(2 * math.Pi * p)
	}

	o.phase += o.inc
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}

	return y
}

// polyBLEP returns the two-sample polynomial band-limited step residual at
// phase t for a phase increment dt.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}

	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}

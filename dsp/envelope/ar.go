package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultPower = 2.0
	maxStageMs   = 60000.0
)

// State is the envelope stage.
type State int

const (
	// Off holds zero output.
	Off State = iota
	// Attack rises towards the velocity-scaled peak.
	Attack
	// Decay falls towards zero.
	Decay
)

func (s State) String() string {
	switch s {
	case Off:
		return "off"
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	default:
		return "unknown"
	}
}

// Curve selects the stage shape.
type Curve int

const (
	// CurveLinear ramps as t/len.
	CurveLinear Curve = iota
	// CurveExponential ramps as (t/len)^power.
	CurveExponential
)

// Option configures an AR envelope.
type Option func(*AR) error

// WithCurve selects the stage shape. The default is CurveExponential.
func WithCurve(curve Curve) Option {
	return func(e *AR) error {
		if curve != CurveLinear && curve != CurveExponential {
			return fmt.Errorf("envelope: invalid curve: %d", curve)
		}

		e.curve = curve

		return nil
	}
}

// WithPower sets the exponent of CurveExponential. Must be finite and > 0.
func WithPower(power float64) Option {
	return func(e *AR) error {
		if power <= 0 || !core.IsFinite(power) {
			return fmt.Errorf("envelope: power must be > 0: %f", power)
		}

		e.power = power

		return nil
	}
}

// AR is an attack/decay envelope. The zero value is not usable; use NewAR.
type AR struct {
	sampleRate float64
	attackMs   float64
	decayMs    float64
	attackLen  float64
	decayLen   float64
	curve      Curve
	power      float64

	state     State
	value     float64
	time      float64
	peak      float64
	decayFrom float64
}

// NewAR returns an envelope with the given stage times in milliseconds.
func NewAR(sampleRate, attackMs, decayMs float64, opts ...Option) (*AR, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("envelope: sample rate must be > 0: %f", sampleRate)
	}

	e := &AR{
		sampleRate: sampleRate,
		curve:      CurveExponential,
		power:      defaultPower,
		peak:       1,
	}
	if err := e.SetAttack(attackMs); err != nil {
		return nil, err
	}

	if err := e.SetDecay(decayMs); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// SetAttack sets the attack time in milliseconds, within [0, 60000].
func (e *AR) SetAttack(ms float64) error {
	if err := validateStage(ms, "attack"); err != nil {
		return err
	}

	e.attackMs = ms
	e.attackLen = ms * e.sampleRate / 1000

	return nil
}

// SetDecay sets the decay time in milliseconds, within [0, 60000].
func (e *AR) SetDecay(ms float64) error {
	if err := validateStage(ms, "decay"); err != nil {
		return err
	}

	e.decayMs = ms
	e.decayLen = ms * e.sampleRate / 1000

	return nil
}

// AttackMs returns the attack time in milliseconds.
func (e *AR) AttackMs() float64 { return e.attackMs }

// DecayMs returns the decay time in milliseconds.
func (e *AR) DecayMs() float64 { return e.decayMs }

// Trigger restarts the attack with a peak of velocity/127.
func (e *AR) Trigger(velocity uint8) {
	if velocity > core.MaxMIDI {
		velocity = core.MaxMIDI
	}

	e.peak = float64(velocity) / core.MaxMIDI
	e.value = 0
	e.time = 0
	e.state = Attack
}

// Release moves an attacking envelope into its decay, starting from the
// current level. It has no effect in Decay or Off.
func (e *AR) Release() {
	if e.state != Attack {
		return
	}

	e.decayFrom = e.value
	e.time = 0
	e.state = Decay
}

// Process advances the envelope by one sample and returns its value.
func (e *AR) Process() float64 {
	switch e.state {
	case Attack:
		e.time++
		if e.attackLen <= 0 || e.time >= e.attackLen {
			e.value = e.peak
			e.decayFrom = e.peak
			e.time = 0
			e.state = Decay

			return e.value
		}

		e.value = e.shape(e.time/e.attackLen) * e.peak
	case Decay:
		e.time++
		if e.decayLen <= 0 || e.time >= e.decayLen {
			e.value = 0
			e.time = 0
			e.state = Off

			return e.value
		}

		e.value = e.shape((e.decayLen-e.time)/e.decayLen) * e.decayFrom
	default:
		e.value = 0
		e.time = 0
	}

	return e.value
}

// Value returns the last output without advancing.
func (e *AR) Value() float64 { return e.value }

// State returns the current stage.
func (e *AR) State() State { return e.state }

// IsActive reports whether the envelope is in Attack or Decay.
func (e *AR) IsActive() bool { return e.state != Off }

// Reset moves the envelope to Off with zero output.
func (e *AR) Reset() {
	e.state = Off
	e.value = 0
	e.time = 0
}

func (e *AR) shape(x float64) float64 {
	if e.curve == CurveLinear {
		return x
	}

	if e.power == 2 {
		return x * x
	}

	return math.Pow(x, e.power)
}

func validateStage(ms float64, name string) error {
	if ms < 0 || ms > maxStageMs || !core.IsFinite(ms) {
		return fmt.Errorf("envelope: %s must be in [0, %g] ms: %f", name, maxStageMs, ms)
	}

	return nil
}

package instrument

import (
	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/filter/svf"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

const subtractiveEnvPower = 3

// Subtractive is a band-limited saw through a resonant low-pass, shaped by
// an AR envelope. Trigger's param1 raises the track cutoff and param2 the
// track resonance for that note.
type Subtractive struct {
	osc    *osc.Oscillator
	filter *svf.SVF
	env    *envelope.AR

	cutoff, resonance         float64
	noteCutoff, noteResonance float64
}

var _ Voice = (*Subtractive)(nil)

// NewSubtractive returns a voice using the subtractive parameter defaults.
func NewSubtractive(sampleRate float64) (*Subtractive, error) {
	o, err := osc.New(sampleRate, osc.Saw)
	if err != nil {
		return nil, err
	}

	f, err := svf.New(sampleRate)
	if err != nil {
		return nil, err
	}

	env, err := envelope.NewAR(sampleRate, 0, 100,
		envelope.WithCurve(envelope.CurveExponential),
		envelope.WithPower(subtractiveEnvPower))
	if err != nil {
		return nil, err
	}

	v := &Subtractive{osc: o, filter: f, env: env}
	for _, p := range subtractiveParams {
		v.SetParameter(p.ID, p.Default)
	}

	return v, nil
}

// Trigger starts a note from zero phase.
func (v *Subtractive) Trigger(pitch, velocity uint8, param1, param2 float64) {
	v.noteCutoff, v.noteResonance = param1, param2
	v.applyFilter()
	v.osc.Reset()
	v.osc.SetFrequency(core.PitchToFreq(pitch))
	v.env.Trigger(velocity)
}

// Release moves the envelope to its decay stage.
func (v *Subtractive) Release() { v.env.Release() }

// SetParameter handles cutoff, resonance, attack and decay.
func (v *Subtractive) SetParameter(p Param, value float64) {
	switch p {
	case ParamCutoff:
		v.cutoff = core.ClampUnit(value)
		v.applyFilter()
	case ParamResonance:
		v.resonance = core.ClampUnit(value)
		v.applyFilter()
	case ParamAttack:
		_ = v.env.SetAttack(attackMs(value))
	case ParamDecay:
		_ = v.env.SetDecay(decayMs(value))
	}
}

func (v *Subtractive) applyFilter() {
	_ = v.filter.SetFrequency(cutoffHz(noteParam(v.cutoff, v.noteCutoff)))
	_ = v.filter.SetQ(resonanceQ(noteParam(v.resonance, v.noteResonance)))
}

// Process returns the next sample.
func (v *Subtractive) Process() float64 {
	if !v.env.IsActive() {
		return 0
	}

	return v.filter.Process(v.osc.Process()) * v.env.Process()
}

// IsActive reports whether the envelope is running.
func (v *Subtractive) IsActive() bool { return v.env.IsActive() }

// Level returns the envelope value.
func (v *Subtractive) Level() float64 { return v.env.Value() }

// Reset silences the voice.
func (v *Subtractive) Reset() {
	v.env.Reset()
	v.filter.ResetState()
	v.osc.Reset()
}

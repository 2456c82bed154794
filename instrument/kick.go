package instrument

import (
	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

const (
	maxPitchSweepHz = 2000
	kickAttackMs    = 1
	kickClickMs     = 10
	kickEnvPower    = 3
)

// Kick is a sine drum whose frequency falls from base+sweep to base, plus a
// short noise click. Trigger's param1 raises the track sweep amount and
// param2 the track click level for that note.
type Kick struct {
	osc   *osc.Oscillator
	noise *osc.Noise

	amp   *envelope.AR
	sweep *envelope.AR
	click *envelope.AR

	baseHz      float64
	sweepAmount float64
	clickAmount float64
	noteSweep   float64
	noteClick   float64
}

var _ Voice = (*Kick)(nil)

// NewKick returns a kick voice with a deterministic click noise seed.
func NewKick(sampleRate float64, seed int64) (*Kick, error) {
	o, err := osc.New(sampleRate, osc.Sine)
	if err != nil {
		return nil, err
	}

	curve := []envelope.Option{
		envelope.WithCurve(envelope.CurveExponential),
		envelope.WithPower(kickEnvPower),
	}

	amp, err := envelope.NewAR(sampleRate, kickAttackMs, 100, curve...)
	if err != nil {
		return nil, err
	}

	sweep, err := envelope.NewAR(sampleRate, 0, 100, curve...)
	if err != nil {
		return nil, err
	}

	click, err := envelope.NewAR(sampleRate, 0, kickClickMs, curve...)
	if err != nil {
		return nil, err
	}

	k := &Kick{
		osc:    o,
		noise:  osc.NewNoise(seed),
		amp:    amp,
		sweep:  sweep,
		click:  click,
		baseHz: core.PitchToFreq(36),
	}
	for _, p := range kickParams {
		k.SetParameter(p.ID, p.Default)
	}

	return k, nil
}

// Trigger starts the drum. pitch sets the resting frequency.
func (k *Kick) Trigger(pitch, velocity uint8, param1, param2 float64) {
	k.baseHz = core.PitchToFreq(pitch)
	k.noteSweep, k.noteClick = param1, param2
	k.osc.Reset()
	k.amp.Trigger(velocity)
	k.sweep.Trigger(core.MaxMIDI)
	k.click.Trigger(velocity)
}

// Release is a no-op after the attack; drums run their decay to the end.
func (k *Kick) Release() { k.amp.Release() }

// SetParameter handles pitch envelope amount, click and decay.
func (k *Kick) SetParameter(p Param, value float64) {
	switch p {
	case ParamPitchEnv:
		k.sweepAmount = core.ClampUnit(value)
	case ParamClick:
		k.clickAmount = core.ClampUnit(value)
	case ParamDecay:
		ms := decayMs(value)
		_ = k.amp.SetDecay(ms)
		_ = k.sweep.SetDecay(ms)
	}
}

// Process returns the next sample.
func (k *Kick) Process() float64 {
	if !k.amp.IsActive() {
		return 0
	}

	sweepHz := pitchSweepHz(noteParam(k.sweepAmount, k.noteSweep))
	k.osc.SetFrequency(k.baseHz + k.sweep.Process()*sweepHz)
	c := k.noise.Process() * k.click.Process() * noteParam(k.clickAmount, k.noteClick)

	return k.amp.Process()*k.osc.Process() + c
}

// IsActive reports whether the amplitude envelope is running.
func (k *Kick) IsActive() bool { return k.amp.IsActive() }

// Level returns the amplitude envelope value.
func (k *Kick) Level() float64 { return k.amp.Value() }

// Reset silences the voice.
func (k *Kick) Reset() {
	k.amp.Reset()
	k.sweep.Reset()
	k.click.Reset()
	k.osc.Reset()
}

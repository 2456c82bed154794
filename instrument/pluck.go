package instrument

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/delay"
	"github.com/cwbudde/algo-synth/dsp/filter/svf"
	"github.com/cwbudde/algo-synth/dsp/interp"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

const (
	pluckReleaseMs   = 50
	pluckFollowerHz  = 20
	pluckSilence     = 1e-4
	pluckMinPeriod   = 2
	pluckMinWindow   = 2
	pluckMinTrack    = 5
	pluckTrackDivide = 7
	// headroom over the longest period for the averaging taps
	pluckHeadroom = 1.25
)

// Pluck is a Karplus-Strong string. One period of triangle and noise
// excitation circulates through a moving-average loop filter whose width
// grows with damping. Trigger's param1 raises the track tone (triangle share
// of the excitation) and param2 the track damping for that note.
type Pluck struct {
	sampleRate float64

	line     *delay.Line
	noise    *osc.Noise
	follower *svf.OnePole

	tone    float64
	damping float64
	decayMs float64

	period      float64
	window      int
	loss        float64
	releaseLoss float64
	age         int
	active      bool
	released    bool
}

var _ Voice = (*Pluck)(nil)

// NewPluck returns a string voice sized for the lowest MIDI pitch.
func NewPluck(sampleRate float64, seed int64) (*Pluck, error) {
	maxSeconds := pluckHeadroom / core.PitchToFreq(0)

	line, err := delay.NewForDuration(sampleRate, maxSeconds, delay.WithMode(interp.Linear))
	if err != nil {
		return nil, err
	}

	follower, err := svf.NewOnePole(sampleRate, pluckFollowerHz)
	if err != nil {
		return nil, err
	}

	p := &Pluck{
		sampleRate: sampleRate,
		line:       line,
		noise:      osc.NewNoise(seed),
		follower:   follower,
	}
	for _, info := range pluckParams {
		p.SetParameter(info.ID, info.Default)
	}

	return p, nil
}

// Trigger fills the loop with a fresh excitation.
func (p *Pluck) Trigger(pitch, velocity uint8, param1, param2 float64) {
	tone := noteParam(p.tone, param1)
	damping := noteParam(p.damping, param2)

	maxPeriod := (p.line.MaxDelay() - 2) / pluckHeadroom
	p.period = core.Clamp(p.sampleRate/core.PitchToFreq(pitch), pluckMinPeriod, maxPeriod)

	track := math.Max(pluckMinTrack, p.period/pluckTrackDivide)
	p.window = int(math.Max(pluckMinWindow, damping*damping*track))

	// keep the shortest tap at least one sample back
	if maxWindow := int(2*(p.period-1)) + 1; p.window > maxWindow {
		p.window = max(1, maxWindow)
	}

	gain := float64(velocity) / core.MaxMIDI
	n := int(p.period) + p.window + 2

	for i := range n {
		phase := float64(i) / p.period
		phase -= math.Floor(phase)
		y := triangle(phase)*tone + p.noise.Sign()*(1-tone)
		p.line.Write(gain * y)
	}

	p.loss = p.loopGain(p.decayMs)
	p.releaseLoss = p.loopGain(pluckReleaseMs)
	p.follower.Set(gain)
	p.age = 0
	p.active = gain > 0
	p.released = false
}

// Release fades the string out quickly.
func (p *Pluck) Release() { p.released = true }

// SetParameter handles tone, damping and decay. Tone and damping apply from
// the next note.
func (p *Pluck) SetParameter(param Param, value float64) {
	switch param {
	case ParamTone:
		p.tone = core.ClampUnit(value)
	case ParamDamping:
		p.damping = core.ClampUnit(value)
	case ParamDecay:
		p.decayMs = decayMs(value)
		if p.active {
			p.loss = p.loopGain(p.decayMs)
		}
	}
}

// Process returns the next sample.
func (p *Pluck) Process() float64 {
	if !p.active {
		return 0
	}

	first := p.period + float64(p.window-1)/2
	sum := 0.0

	for k := range p.window {
		sum += p.line.ReadFractional(first - float64(k))
	}

	y := sum / float64(p.window) * p.loss
	if p.released {
		y *= p.releaseLoss
	}

	y = core.FlushDenormals(y)
	p.line.Write(y)

	p.age++
	if p.follower.Process(math.Abs(y)) < pluckSilence && float64(p.age) > 4*p.period {
		p.active = false
	}

	return y
}

// IsActive reports whether the string is still ringing.
func (p *Pluck) IsActive() bool { return p.active }

// Level returns the smoothed absolute output.
func (p *Pluck) Level() float64 { return p.follower.Value() }

// Reset silences the voice.
func (p *Pluck) Reset() {
	p.line.Reset()
	p.follower.Reset()
	p.active = false
	p.released = false
}

// loopGain returns the per-period gain that decays 60 dB in ms.
func (p *Pluck) loopGain(ms float64) float64 {
	samples := ms * 0.001 * p.sampleRate
	if samples <= 0 || p.period <= 0 {
		return 0
	}

	return math.Pow(0.001, p.period/samples)
}

func triangle(phase float64) float64 {
	switch {
	case phase < 0.25:
		return 4 * phase
	case phase < 0.75:
		return 2 - 4*phase
	default:
		return 4*phase - 4
	}
}

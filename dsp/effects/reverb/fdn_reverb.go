package reverb

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/delay"
	"github.com/cwbudde/algo-synth/dsp/filter/svf"
	"github.com/cwbudde/algo-synth/dsp/interp"
)

const (
	allpassCount = 8
	pathCount    = 32

	allpassGain = 0.5

	minPathDelay = 10
	maxPathDelay = 10000
	invertChance = 1.0 / 3.0

	defaultSeed      = 0x5eed
	defaultFeedback  = 0.9
	defaultDampingHz = 5000.0
	defaultDampingQ  = 0.707
	defaultWet       = 1.0
	defaultDry       = 0.0

	maxFeedback = 0.99

	referenceSampleRate = 48000.0
)

// allpassLengths are the diffusion stage lengths at the reference sample rate.
var allpassLengths = [allpassCount]int{861, 732, 642, 562, 410, 352, 285, 199}

// Option configures an FDNReverb.
type Option func(*config) error

type config struct {
	seed      int64
	feedback  float64
	dampingHz float64
	wet       float64
	dry       float64
}

// WithSeed sets the seed for path lengths and polarities.
func WithSeed(seed int64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithFeedback sets the per-path feedback gain in [0, 0.99].
func WithFeedback(g float64) Option {
	return func(cfg *config) error {
		if g < 0 || g > maxFeedback || !core.IsFinite(g) {
			return fmt.Errorf("fdn reverb feedback must be in [0, %g]: %f", maxFeedback, g)
		}

		cfg.feedback = g

		return nil
	}
}

// WithDamping sets the in-loop low-pass cutoff in Hz.
func WithDamping(cutoffHz float64) Option {
	return func(cfg *config) error {
		if cutoffHz <= 0 || !core.IsFinite(cutoffHz) {
			return fmt.Errorf("fdn reverb damping must be > 0: %f", cutoffHz)
		}

		cfg.dampingHz = cutoffHz

		return nil
	}
}

// WithMix sets the dry and wet gains.
func WithMix(dry, wet float64) Option {
	return func(cfg *config) error {
		if dry < 0 || wet < 0 || !core.IsFinite(dry) || !core.IsFinite(wet) {
			return fmt.Errorf("fdn reverb mix gains must be >= 0: dry=%f wet=%f", dry, wet)
		}

		cfg.dry, cfg.wet = dry, wet

		return nil
	}
}

type path struct {
	line   *delay.Line
	length int
	sign   float64
	damp   *svf.SVF
}

// FDNReverb is a mono diffusion + Householder feedback-delay-network reverb.
type FDNReverb struct {
	sampleRate float64
	seed       int64
	feedback   float64
	dampingHz  float64
	wet        float64
	dry        float64

	diffusers [allpassCount]*allpass
	paths     [pathCount]path

	delayed [pathCount]float64
}

// NewFDNReverb creates a reverb for sampleRate. All buffers are allocated
// here; ProcessSample does not allocate.
func NewFDNReverb(sampleRate float64, opts ...Option) (*FDNReverb, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("fdn reverb sample rate must be > 0: %f", sampleRate)
	}

	cfg := config{
		seed:      defaultSeed,
		feedback:  defaultFeedback,
		dampingHz: defaultDampingHz,
		wet:       defaultWet,
		dry:       defaultDry,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	r := &FDNReverb{
		sampleRate: sampleRate,
		seed:       cfg.seed,
		feedback:   cfg.feedback,
		dampingHz:  cfg.dampingHz,
		wet:        cfg.wet,
		dry:        cfg.dry,
	}

	scale := sampleRate / referenceSampleRate

	for i, n := range allpassLengths {
		ap, err := newAllpass(scaledLength(n, scale), allpassGain)
		if err != nil {
			return nil, err
		}

		r.diffusers[i] = ap
	}

	rng := rand.New(rand.NewSource(cfg.seed))

	for i := range r.paths {
		length := scaledLength(minPathDelay+rng.Intn(maxPathDelay-minPathDelay), scale)

		sign := 1.0
		if rng.Float64() < invertChance {
			sign = -1
		}

		line, err := delay.New(length+1, delay.WithMode(interp.None))
		if err != nil {
			return nil, err
		}

		damp, err := svf.New(sampleRate, svf.WithCutoffHz(cfg.dampingHz), svf.WithQ(defaultDampingQ))
		if err != nil {
			return nil, err
		}

		r.paths[i] = path{line: line, length: length, sign: sign, damp: damp}
	}

	return r, nil
}

// ProcessSample processes one sample and returns dry*input + wet*reverb.
func (r *FDNReverb) ProcessSample(input float64) float64 {
	x := input
	for _, ap := range r.diffusers {
		x = ap.process(x)
	}

	x /= allpassCount

	sum := 0.0

	for i := range r.paths {
		d := r.paths[i].line.Read(r.paths[i].length)
		r.delayed[i] = d
		sum += d
	}

	// Householder reflection: h_i = d_i - (2/M) * sum(d)
	reflect := -2 * sum / pathCount
	out := 0.0

	for i := range r.paths {
		p := &r.paths[i]
		h := r.delayed[i] + reflect
		w := p.damp.Process(p.sign * (x + r.feedback*h))
		p.line.Write(w)
		out += w
	}

	out /= pathCount

	return input*r.dry + out*r.wet
}

// ProcessInPlace applies reverb to buf in place.
func (r *FDNReverb) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}

// Reset clears all delay and filter state. The random layout is kept.
func (r *FDNReverb) Reset() {
	for _, ap := range r.diffusers {
		ap.reset()
	}

	for i := range r.paths {
		r.paths[i].line.Reset()
		r.paths[i].damp.ResetState()
		r.delayed[i] = 0
	}
}

// SetFeedback sets the per-path feedback gain in [0, 0.99].
func (r *FDNReverb) SetFeedback(g float64) error {
	if g < 0 || g > maxFeedback || !core.IsFinite(g) {
		return fmt.Errorf("fdn reverb feedback must be in [0, %g]: %f", maxFeedback, g)
	}

	r.feedback = g

	return nil
}

// SetDamping sets the in-loop low-pass cutoff in Hz.
func (r *FDNReverb) SetDamping(cutoffHz float64) error {
	if cutoffHz <= 0 || !core.IsFinite(cutoffHz) {
		return fmt.Errorf("fdn reverb damping must be > 0: %f", cutoffHz)
	}

	for i := range r.paths {
		if err := r.paths[i].damp.SetFrequency(cutoffHz); err != nil {
			return err
		}
	}

	r.dampingHz = cutoffHz

	return nil
}

// SetWet sets wet gain.
func (r *FDNReverb) SetWet(v float64) error {
	if v < 0 || !core.IsFinite(v) {
		return fmt.Errorf("fdn reverb wet must be >= 0: %f", v)
	}

	r.wet = v

	return nil
}

// SetDry sets dry gain.
func (r *FDNReverb) SetDry(v float64) error {
	if v < 0 || !core.IsFinite(v) {
		return fmt.Errorf("fdn reverb dry must be >= 0: %f", v)
	}

	r.dry = v

	return nil
}

// SampleRate returns sample rate in Hz.
func (r *FDNReverb) SampleRate() float64 { return r.sampleRate }

// Seed returns the layout seed.
func (r *FDNReverb) Seed() int64 { return r.seed }

// Feedback returns the per-path feedback gain.
func (r *FDNReverb) Feedback() float64 { return r.feedback }

// Damping returns the in-loop low-pass cutoff in Hz.
func (r *FDNReverb) Damping() float64 { return r.dampingHz }

// Wet returns wet gain.
func (r *FDNReverb) Wet() float64 { return r.wet }

// Dry returns dry gain.
func (r *FDNReverb) Dry() float64 { return r.dry }

// PathLengths returns the delay length of every path in samples.
func (r *FDNReverb) PathLengths() []int {
	out := make([]int, pathCount)
	for i := range r.paths {
		out[i] = r.paths[i].length
	}

	return out
}

// InvertedPaths returns how many paths flip polarity.
func (r *FDNReverb) InvertedPaths() int {
	n := 0

	for i := range r.paths {
		if r.paths[i].sign < 0 {
			n++
		}
	}

	return n
}

func scaledLength(n int, scale float64) int {
	return max(int(math.Round(float64(n)*scale)), 1)
}

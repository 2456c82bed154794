package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/delay"
	"github.com/cwbudde/algo-synth/dsp/filter/svf"
)

const (
	defaultDelayTimeSeconds = 0.5
	defaultDelayFeedback    = 0.5
	defaultMaxDelaySeconds  = 2.0
	minDelayTimeSeconds     = 0.001
	maxDelayFeedback        = 0.99

	// delayGlideSeconds is the time constant of SetTargetTime ramps.
	delayGlideSeconds = 0.01
)

// FeedbackDelayOption configures a FeedbackDelay.
type FeedbackDelayOption func(*feedbackDelayConfig) error

type feedbackDelayConfig struct {
	maxSeconds  float64
	timeSeconds float64
	feedback    float64
}

// WithMaxDelayTime sets the longest delay time the buffer can hold.
func WithMaxDelayTime(seconds float64) FeedbackDelayOption {
	return func(cfg *feedbackDelayConfig) error {
		if seconds < minDelayTimeSeconds || !core.IsFinite(seconds) {
			return fmt.Errorf("delay max time must be >= %f: %f", minDelayTimeSeconds, seconds)
		}

		cfg.maxSeconds = seconds

		return nil
	}
}

// WithDelayTime sets the initial delay time in seconds.
func WithDelayTime(seconds float64) FeedbackDelayOption {
	return func(cfg *feedbackDelayConfig) error {
		if seconds < minDelayTimeSeconds || !core.IsFinite(seconds) {
			return fmt.Errorf("delay time must be >= %f: %f", minDelayTimeSeconds, seconds)
		}

		cfg.timeSeconds = seconds

		return nil
	}
}

// WithDelayFeedback sets the initial feedback in [0, 0.99].
func WithDelayFeedback(feedback float64) FeedbackDelayOption {
	return func(cfg *feedbackDelayConfig) error {
		if feedback < 0 || feedback > maxDelayFeedback || !core.IsFinite(feedback) {
			return fmt.Errorf("delay feedback must be in [0, %g]: %f", maxDelayFeedback, feedback)
		}

		cfg.feedback = feedback

		return nil
	}
}

// FeedbackDelay is a feedback comb: y = x + feedback*y[n-D], with y written
// back into the line. The buffer is sized once from the sample rate and the
// maximum delay time.
type FeedbackDelay struct {
	sampleRate float64
	maxSeconds float64
	feedback   float64

	line          *delay.Line
	delaySamples  float64
	targetSamples float64
	glide         *svf.OnePole
	gliding       bool
}

// NewFeedbackDelay creates a feedback delay.
func NewFeedbackDelay(sampleRate float64, opts ...FeedbackDelayOption) (*FeedbackDelay, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}

	cfg := feedbackDelayConfig{
		maxSeconds:  defaultMaxDelaySeconds,
		timeSeconds: defaultDelayTimeSeconds,
		feedback:    defaultDelayFeedback,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.timeSeconds > cfg.maxSeconds {
		return nil, fmt.Errorf("delay time %f exceeds max time %f", cfg.timeSeconds, cfg.maxSeconds)
	}

	line, err := delay.NewForDuration(sampleRate, cfg.maxSeconds)
	if err != nil {
		return nil, err
	}

	glide, err := svf.NewOnePole(sampleRate, 1/(2*math.Pi*delayGlideSeconds))
	if err != nil {
		return nil, err
	}

	d := &FeedbackDelay{
		sampleRate: sampleRate,
		maxSeconds: cfg.maxSeconds,
		feedback:   cfg.feedback,
		line:       line,
		glide:      glide,
	}
	if err := d.SetTime(cfg.timeSeconds); err != nil {
		return nil, err
	}

	return d, nil
}

// SetTime sets the delay time in seconds without ramping.
func (d *FeedbackDelay) SetTime(seconds float64) error {
	samples, err := d.timeToSamples(seconds)
	if err != nil {
		return err
	}

	d.delaySamples = samples
	d.targetSamples = samples
	d.glide.Set(samples)
	d.gliding = false

	return nil
}

// SetTargetTime ramps the delay time towards seconds with a short one-pole
// glide, avoiding clicks from read-pointer jumps.
func (d *FeedbackDelay) SetTargetTime(seconds float64) error {
	samples, err := d.timeToSamples(seconds)
	if err != nil {
		return err
	}

	d.targetSamples = samples
	d.gliding = samples != d.delaySamples

	return nil
}

// SetFeedback sets the feedback amount in [0, 0.99].
func (d *FeedbackDelay) SetFeedback(feedback float64) error {
	if feedback < 0 || feedback > maxDelayFeedback || !core.IsFinite(feedback) {
		return fmt.Errorf("delay feedback must be in [0, %g]: %f", maxDelayFeedback, feedback)
	}

	d.feedback = feedback

	return nil
}

// ProcessSample processes one sample.
func (d *FeedbackDelay) ProcessSample(input float64) float64 {
	if d.gliding {
		d.delaySamples = d.glide.Process(d.targetSamples)
		if math.Abs(d.delaySamples-d.targetSamples) < 1e-3 {
			d.delaySamples = d.targetSamples
			d.glide.Set(d.targetSamples)
			d.gliding = false
		}
	}

	delayed := d.line.ReadFractional(d.delaySamples)
	out := input + delayed*d.feedback
	d.line.Write(out)

	return out
}

// ProcessInPlace applies the delay to buf in place.
func (d *FeedbackDelay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

// Reset clears the delay buffer and finishes any pending glide.
func (d *FeedbackDelay) Reset() {
	d.line.Reset()
	d.delaySamples = d.targetSamples
	d.glide.Set(d.targetSamples)
	d.gliding = false
}

// SampleRate returns sample rate in Hz.
func (d *FeedbackDelay) SampleRate() float64 { return d.sampleRate }

// Time returns the target delay time in seconds.
func (d *FeedbackDelay) Time() float64 { return d.targetSamples / d.sampleRate }

// MaxTime returns the longest delay time in seconds.
func (d *FeedbackDelay) MaxTime() float64 { return d.maxSeconds }

// Feedback returns feedback amount in [0, 0.99].
func (d *FeedbackDelay) Feedback() float64 { return d.feedback }

// CurrentDelaySamples returns the effective delay in samples, including any
// glide in progress.
func (d *FeedbackDelay) CurrentDelaySamples() float64 { return d.delaySamples }

func (d *FeedbackDelay) timeToSamples(seconds float64) (float64, error) {
	if seconds < minDelayTimeSeconds || seconds > d.maxSeconds || !core.IsFinite(seconds) {
		return 0, fmt.Errorf("delay time must be in [%f, %f]: %f", minDelayTimeSeconds, d.maxSeconds, seconds)
	}

	samples := math.Round(seconds * d.sampleRate)
	if samples < 1 {
		samples = 1
	}

	return math.Min(samples, d.line.MaxDelay()), nil
}

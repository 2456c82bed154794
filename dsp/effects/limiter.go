package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultLimiterAttackMs  = 0.1
	defaultLimiterReleaseMs = 50.0
	defaultLimiterThreshold = 0.9
)

// Limiter is an envelope-follower peak limiter for the master bus. When the
// followed peak exceeds the threshold the input is scaled by threshold/peak.
type Limiter struct {
	sampleRate float64
	threshold  float64
	attackMs   float64
	releaseMs  float64

	attackCoef  float64
	releaseCoef float64
	env         float64
}

// NewLimiter creates a limiter with a 0.1 ms attack, 50 ms release and a
// threshold of 0.9.
func NewLimiter(sampleRate float64) (*Limiter, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("limiter sample rate must be > 0: %f", sampleRate)
	}

	l := &Limiter{
		sampleRate: sampleRate,
		threshold:  defaultLimiterThreshold,
		attackMs:   defaultLimiterAttackMs,
		releaseMs:  defaultLimiterReleaseMs,
	}
	l.attackCoef = l.coefficient(l.attackMs)
	l.releaseCoef = l.coefficient(l.releaseMs)

	return l, nil
}

// SetThreshold sets the linear ceiling in (0, 1].
func (l *Limiter) SetThreshold(threshold float64) error {
	if threshold <= 0 || threshold > 1 || !core.IsFinite(threshold) {
		return fmt.Errorf("limiter threshold must be in (0, 1]: %f", threshold)
	}

	l.threshold = threshold

	return nil
}

// SetAttack sets the attack time in milliseconds.
func (l *Limiter) SetAttack(ms float64) error {
	if ms <= 0 || !core.IsFinite(ms) {
		return fmt.Errorf("limiter attack must be > 0: %f", ms)
	}

	l.attackMs = ms
	l.attackCoef = l.coefficient(ms)

	return nil
}

// SetRelease sets the release time in milliseconds.
func (l *Limiter) SetRelease(ms float64) error {
	if ms <= 0 || !core.IsFinite(ms) {
		return fmt.Errorf("limiter release must be > 0: %f", ms)
	}

	l.releaseMs = ms
	l.releaseCoef = l.coefficient(ms)

	return nil
}

// ProcessSample processes one sample through the limiter.
func (l *Limiter) ProcessSample(input float64) float64 {
	v := math.Abs(input)
	if v > l.env {
		l.env = l.attackCoef*(l.env-v) + v
	} else {
		l.env = core.FlushDenormals(l.releaseCoef*(l.env-v) + v)
	}

	if l.env > l.threshold {
		return input * l.threshold / l.env
	}

	return input
}

// ProcessInPlace limits buf in place.
func (l *Limiter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = l.ProcessSample(buf[i])
	}
}

// Threshold returns the linear ceiling.
func (l *Limiter) Threshold() float64 { return l.threshold }

// Envelope returns the followed peak level.
func (l *Limiter) Envelope() float64 { return l.env }

// Reset clears the follower state.
func (l *Limiter) Reset() { l.env = 0 }

// coefficient returns the per-sample factor that leaves 1% of a step after ms.
func (l *Limiter) coefficient(ms float64) float64 {
	return math.Pow(0.01, 1/(ms*l.sampleRate*0.001))
}

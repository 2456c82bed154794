package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/instrument"
)

const (
	defaultQueueSize       = 1024
	defaultNotifyQueueSize = 1024
	defaultPolyphony       = 8
	defaultDelaySend       = 0.5
	defaultReverbSend      = 0.1
	defaultReverbSeed      = 0x5eed
)

// DefaultTracks is the track layout used when no generators are configured.
var DefaultTracks = []instrument.Kind{
	instrument.KindKick,
	instrument.KindSubtractive,
	instrument.KindPluck,
}

// Option configures an Engine.
type Option func(*config) error

type config struct {
	logger *slog.Logger

	queueSize       int
	notifyQueueSize int

	tracks     []instrument.Kind
	polyphony  int
	generators []instrument.Generator

	loopBeats       float64
	patternCapacity int

	delaySeconds  float64
	delayFeedback float64
	delaySend     float64
	reverbSend    float64
	reverbSeed    int64
	limiter       bool
}

func defaultConfig() config {
	return config{
		logger:          slog.Default(),
		queueSize:       defaultQueueSize,
		notifyQueueSize: defaultNotifyQueueSize,
		tracks:          DefaultTracks,
		polyphony:       defaultPolyphony,
		loopBeats:       4,
		patternCapacity: 1024,
		delaySeconds:    0.5,
		delayFeedback:   0.5,
		delaySend:       defaultDelaySend,
		reverbSend:      defaultReverbSend,
		reverbSeed:      defaultReverbSeed,
	}
}

// WithLogger sets the logger for construction and Dispatch reports.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return errors.New("engine logger must not be nil")
		}

		c.logger = l

		return nil
	}
}

// WithQueueSize sets the control message capacity.
func WithQueueSize(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("engine queue size must be > 0: %d", n)
		}

		c.queueSize = n

		return nil
	}
}

// WithNotifyQueueSize sets how many note notifications may wait for Flush or
// Dispatch before new ones are dropped.
func WithNotifyQueueSize(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("engine notify queue size must be > 0: %d", n)
		}

		c.notifyQueueSize = n

		return nil
	}
}

// WithTracks binds one instrument kind per track, in track order.
func WithTracks(kinds ...instrument.Kind) Option {
	return func(c *config) error {
		if len(kinds) == 0 {
			return errors.New("engine needs at least one track")
		}

		if len(kinds) > core.MaxMIDI+1 {
			return fmt.Errorf("engine track count must be <= %d: %d", core.MaxMIDI+1, len(kinds))
		}

		c.tracks = kinds

		return nil
	}
}

// WithPolyphony sets the voice count of every track built from WithTracks.
func WithPolyphony(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("engine polyphony must be > 0: %d", n)
		}

		c.polyphony = n

		return nil
	}
}

// WithGenerators binds caller-built generators to tracks 0..n-1, replacing
// WithTracks.
func WithGenerators(gens ...instrument.Generator) Option {
	return func(c *config) error {
		if len(gens) == 0 {
			return errors.New("engine needs at least one generator")
		}

		for i, g := range gens {
			if g == nil {
				return fmt.Errorf("engine generator %d is nil", i)
			}
		}

		c.generators = gens

		return nil
	}
}

// WithLoopBeats sets the initial loop length.
func WithLoopBeats(beats float64) Option {
	return func(c *config) error {
		if beats <= 0 || !core.IsFinite(beats) {
			return fmt.Errorf("engine loop length must be > 0 beats: %f", beats)
		}

		c.loopBeats = beats

		return nil
	}
}

// WithPatternCapacity sets the maximum number of pattern events.
func WithPatternCapacity(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("engine pattern capacity must be > 0: %d", n)
		}

		c.patternCapacity = n

		return nil
	}
}

// WithDelay sets the initial delay time in seconds and feedback.
func WithDelay(seconds, feedback float64) Option {
	return func(c *config) error {
		c.delaySeconds = seconds
		c.delayFeedback = feedback

		return nil
	}
}

// WithSends sets the delay and reverb return levels in [0, 1].
func WithSends(delay, reverb float64) Option {
	return func(c *config) error {
		if !validUnit(delay) || !validUnit(reverb) {
			return fmt.Errorf("engine sends must be in [0,1]: %f, %f", delay, reverb)
		}

		c.delaySend = delay
		c.reverbSend = reverb

		return nil
	}
}

// WithReverbSeed sets the seed of the reverb delay layout.
func WithReverbSeed(seed int64) Option {
	return func(c *config) error {
		c.reverbSeed = seed
		return nil
	}
}

// WithLimiter enables a peak limiter before the final clip.
func WithLimiter(enabled bool) Option {
	return func(c *config) error {
		c.limiter = enabled
		return nil
	}
}

func validUnit(v float64) bool {
	return v >= 0 && v <= 1
}

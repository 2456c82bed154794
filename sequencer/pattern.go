package sequencer

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// ErrPatternFull is returned by Add when the pattern is at capacity.
var ErrPatternFull = errors.New("sequencer: pattern full")

// Pattern is an unordered set of Events looping over LengthBeats.
type Pattern struct {
	events      []Event
	lengthBeats float64
}

// NewPattern allocates room for capacity events.
func NewPattern(capacity int, lengthBeats float64) (*Pattern, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("sequencer pattern capacity must be > 0: %d", capacity)
	}

	p := &Pattern{events: make([]Event, 0, capacity)}
	if err := p.SetLengthBeats(lengthBeats); err != nil {
		return nil, err
	}

	return p, nil
}

// Add stores a clamped copy of ev.
func (p *Pattern) Add(ev Event) error {
	if len(p.events) == cap(p.events) {
		return ErrPatternFull
	}

	p.events = append(p.events, ev.clamped())

	return nil
}

// Clear removes all events. Capacity is kept.
func (p *Pattern) Clear() {
	p.events = p.events[:0]
}

// Len returns the number of stored events.
func (p *Pattern) Len() int { return len(p.events) }

// Cap returns the maximum number of events.
func (p *Pattern) Cap() int { return cap(p.events) }

// At returns the i-th event in insertion order.
func (p *Pattern) At(i int) Event { return p.events[i] }

// LengthBeats returns the loop length in beats.
func (p *Pattern) LengthBeats() float64 { return p.lengthBeats }

// SetLengthBeats changes the loop length.
func (p *Pattern) SetLengthBeats(beats float64) error {
	if beats <= 0 || !core.IsFinite(beats) {
		return fmt.Errorf("sequencer loop length must be > 0 beats: %f", beats)
	}

	p.lengthBeats = beats

	return nil
}

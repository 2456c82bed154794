package sequencer

import (
	"cmp"
	"fmt"
	"slices"
)

// Schedule collects the events of one render block. It is reused across
// blocks; entries beyond its capacity are counted and dropped.
type Schedule struct {
	events  []ScheduledEvent
	dropped uint64
}

// NewSchedule allocates a schedule holding up to capacity events.
func NewSchedule(capacity int) (*Schedule, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("sequencer schedule capacity must be > 0: %d", capacity)
	}

	return &Schedule{events: make([]ScheduledEvent, 0, capacity)}, nil
}

// Events returns the block's events ordered by offset. The slice is only
// valid until the next Process call.
func (s *Schedule) Events() []ScheduledEvent { return s.events }

// Len returns the number of events.
func (s *Schedule) Len() int { return len(s.events) }

// Dropped returns the total number of events lost to a full schedule.
func (s *Schedule) Dropped() uint64 { return s.dropped }

// Reset empties the schedule. The drop counter is kept.
func (s *Schedule) Reset() {
	s.events = s.events[:0]
}

func (s *Schedule) push(ev ScheduledEvent) {
	if len(s.events) == cap(s.events) {
		s.dropped++
		return
	}

	s.events = append(s.events, ev)
}

// sort orders events by offset, keeping insertion order for equal offsets.
func (s *Schedule) sort() {
	slices.SortStableFunc(s.events, func(a, b ScheduledEvent) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
}

package sequencer

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// Kind distinguishes the two scheduled event types.
type Kind uint8

const (
	NoteOn Kind = iota
	NoteOff
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Event is one note of a pattern, positioned in beats.
type Event struct {
	Beat     float64
	Pitch    uint8
	Velocity uint8
	Duration float64
	Track    uint8
	Param1   float64
	Param2   float64
}

// clamped returns e with every field forced into its valid range.
func (e Event) clamped() Event {
	e.Beat = beats(e.Beat)
	e.Duration = beats(e.Duration)
	e.Pitch = core.ClampMIDI(int(e.Pitch))
	e.Velocity = core.ClampMIDI(int(e.Velocity))
	e.Track = core.ClampMIDI(int(e.Track))
	e.Param1 = core.ClampUnit(e.Param1)
	e.Param2 = core.ClampUnit(e.Param2)

	return e
}

// maxBeats bounds beat positions and durations so sample conversions stay
// well inside int64.
const maxBeats = 1 << 20

func beats(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	return math.Min(v, maxBeats)
}

// ScheduledEvent is a note event resolved to a sample offset inside one
// render block. Param1 and Param2 are only meaningful for NoteOn.
type ScheduledEvent struct {
	Kind     Kind
	Offset   int
	Pitch    uint8
	Velocity uint8
	Track    uint8
	Param1   float64
	Param2   float64
}

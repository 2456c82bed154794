package engine

import (
	"fmt"

	"github.com/cwbudde/algo-synth/instrument"
	"github.com/cwbudde/algo-synth/sequencer"
)

// MessageKind selects how a Message is applied.
type MessageKind uint8

const (
	// MsgSchedule adds Event to the pattern.
	MsgSchedule MessageKind = iota
	// MsgClear removes all pattern events.
	MsgClear
	// MsgParameter sets Param to Value on Track.
	MsgParameter
	// MsgNoteOn plays Event immediately on Event.Track.
	MsgNoteOn
	// MsgNoteOff releases Event.Pitch on Event.Track.
	MsgNoteOff
	// MsgLoopLength sets the loop length to Value beats.
	MsgLoopLength
	// MsgEffect sets Effect to Value.
	MsgEffect
)

func (k MessageKind) String() string {
	switch k {
	case MsgSchedule:
		return "schedule"
	case MsgClear:
		return "clear"
	case MsgParameter:
		return "parameter"
	case MsgNoteOn:
		return "note_on"
	case MsgNoteOff:
		return "note_off"
	case MsgLoopLength:
		return "loop_length"
	case MsgEffect:
		return "effect"
	default:
		return fmt.Sprintf("message(%d)", uint8(k))
	}
}

// EffectID identifies a shared effect setting.
type EffectID uint8

const (
	// EffectDelayTime is the delay time in seconds. Changes glide.
	EffectDelayTime EffectID = iota
	// EffectDelayFeedback is the delay feedback in [0, 0.99].
	EffectDelayFeedback
	// EffectDelaySend is the delay return level in [0, 1].
	EffectDelaySend
	// EffectReverbSend is the reverb return level in [0, 1].
	EffectReverbSend
	// EffectReverbFeedback is the reverb loop gain in [0, 0.99].
	EffectReverbFeedback
	// EffectReverbDamping is the in-loop low-pass cutoff in Hz.
	EffectReverbDamping
)

func (id EffectID) String() string {
	switch id {
	case EffectDelayTime:
		return "delay_time"
	case EffectDelayFeedback:
		return "delay_feedback"
	case EffectDelaySend:
		return "delay_send"
	case EffectReverbSend:
		return "reverb_send"
	case EffectReverbFeedback:
		return "reverb_feedback"
	case EffectReverbDamping:
		return "reverb_damping"
	default:
		return fmt.Sprintf("effect(%d)", uint8(id))
	}
}

// ParseEffect looks an effect up by its String name.
func ParseEffect(name string) (EffectID, error) {
	for id := EffectDelayTime; id <= EffectReverbDamping; id++ {
		if id.String() == name {
			return id, nil
		}
	}

	return 0, fmt.Errorf("engine: unknown effect %q", name)
}

// Message is a control change posted to the render goroutine. It is a plain
// value so sending never allocates.
type Message struct {
	Kind   MessageKind
	Event  sequencer.Event
	Track  uint8
	Param  instrument.Param
	Effect EffectID
	Value  float64
}

// NoteEvent reports a note started or stopped by the engine.
type NoteEvent struct {
	On    bool
	Pitch uint8
	Track uint8
}

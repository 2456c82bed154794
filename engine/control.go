package engine

import (
	"github.com/cwbudde/algo-synth/instrument"
	"github.com/cwbudde/algo-synth/sequencer"
)

// Send posts msg without blocking. It returns ErrQueueFull, and counts the
// drop, when the queue has no room. Safe for concurrent use.
func (e *Engine) Send(msg Message) error {
	select {
	case e.inbox <- msg:
		return nil
	default:
		e.stats.droppedMessages.Add(1)
		return ErrQueueFull
	}
}

// AddEvent schedules ev in the pattern.
func (e *Engine) AddEvent(ev sequencer.Event) error {
	return e.Send(Message{Kind: MsgSchedule, Event: ev})
}

// ClearEvents empties the pattern.
func (e *Engine) ClearEvents() error {
	return e.Send(Message{Kind: MsgClear})
}

// SetParameter changes a generator control on track.
func (e *Engine) SetParameter(track uint8, p instrument.Param, value float64) error {
	return e.Send(Message{Kind: MsgParameter, Track: track, Param: p, Value: value})
}

// NoteOn plays a note immediately, outside the pattern.
func (e *Engine) NoteOn(pitch, velocity, track uint8, param1, param2 float64) error {
	return e.Send(Message{Kind: MsgNoteOn, Event: sequencer.Event{
		Pitch:    pitch,
		Velocity: velocity,
		Track:    track,
		Param1:   param1,
		Param2:   param2,
	}})
}

// NoteOff releases a note started with NoteOn.
func (e *Engine) NoteOff(pitch, track uint8) error {
	return e.Send(Message{Kind: MsgNoteOff, Event: sequencer.Event{Pitch: pitch, Track: track}})
}

// SetLoopLength sets the pattern length in beats.
func (e *Engine) SetLoopLength(beats float64) error {
	return e.Send(Message{Kind: MsgLoopLength, Value: beats})
}

// SetEffect changes a shared effect setting.
func (e *Engine) SetEffect(id EffectID, value float64) error {
	return e.Send(Message{Kind: MsgEffect, Effect: id, Value: value})
}

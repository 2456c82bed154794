package host

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/instrument"
	"github.com/cwbudde/algo-synth/sequencer"
)

// MaxEngines is the number of engine slots.
const MaxEngines = 16

var (
	// ErrInvalidHandle is returned for a handle that is zero, out of range
	// or already freed.
	ErrInvalidHandle = errors.New("host: invalid engine handle")
	// ErrNoEngineSlots is returned by Initialize when every slot is taken.
	ErrNoEngineSlots = errors.New("host: no free engine slots")
)

// Handle identifies a live engine. The zero Handle is never valid.
type Handle uint32

var (
	slots   [MaxEngines]atomic.Pointer[engine.Engine]
	current atomic.Uint32
)

// Initialize creates an engine at sampleRate and returns its handle. The
// new engine becomes the target of handle-less calls.
func Initialize(sampleRate float32, opts ...engine.Option) (Handle, error) {
	sr := float64(sampleRate)
	if sr <= 0 || !core.IsFinite(sr) {
		return 0, fmt.Errorf("host sample rate must be > 0: %f", sr)
	}

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(sr))

	e, err := engine.New(cfg, opts...)
	if err != nil {
		return 0, err
	}

	for i := range slots {
		if slots[i].CompareAndSwap(nil, e) {
			h := Handle(i + 1)
			current.Store(uint32(h))

			return h, nil
		}
	}

	return 0, ErrNoEngineSlots
}

// Free releases the engine behind h. A render already running on it
// completes normally.
func Free(h Handle) error {
	i, ok := h.index()
	if !ok || slots[i].Swap(nil) == nil {
		return ErrInvalidHandle
	}

	current.CompareAndSwap(uint32(h), 0)

	return nil
}

// Handles returns the number of live engines.
func Handles() int {
	n := 0

	for i := range slots {
		if slots[i].Load() != nil {
			n++
		}
	}

	return n
}

// Lookup returns the engine behind h.
func Lookup(h Handle) (*engine.Engine, error) {
	i, ok := h.index()
	if !ok {
		return nil, ErrInvalidHandle
	}

	e := slots[i].Load()
	if e == nil {
		return nil, ErrInvalidHandle
	}

	return e, nil
}

// Render fills frames samples of left and right. frames is clamped to the
// buffer lengths; an invalid handle or a non-positive frame count renders
// silence.
func Render(h Handle, left, right []float32, sampleTime int64, tempo float32, frames int) {
	frames = max(0, min(frames, len(left), len(right)))
	left, right = left[:frames], right[:frames]

	e, err := Lookup(h)
	if err != nil {
		clear(left)
		clear(right)

		return
	}

	e.Render(left, right, sampleTime, float64(tempo))
}

// AddEvent schedules a pattern event on the current engine.
func AddEvent(beat float32, pitch, velocity uint8, duration float32, track uint8, param1, param2 float32) error {
	e, err := currentEngine()
	if err != nil {
		return err
	}

	return e.AddEvent(sequencer.Event{
		Beat:     float64(beat),
		Pitch:    midi(pitch),
		Velocity: midi(velocity),
		Duration: float64(duration),
		Track:    midi(track),
		Param1:   float64(param1),
		Param2:   float64(param2),
	})
}

// NoteOn plays a note immediately on h.
func NoteOn(h Handle, pitch, velocity, track uint8, param1, param2 float32) error {
	e, err := Lookup(h)
	if err != nil {
		return err
	}

	return e.NoteOn(midi(pitch), midi(velocity), midi(track), float64(param1), float64(param2))
}

// NoteOff releases pitch on track of h.
func NoteOff(h Handle, pitch, track uint8) error {
	e, err := Lookup(h)
	if err != nil {
		return err
	}

	return e.NoteOff(midi(pitch), midi(track))
}

// SetParameter sets parameter id on track of the current engine.
func SetParameter(id uint8, value float32, track uint8) error {
	e, err := currentEngine()
	if err != nil {
		return err
	}

	return e.SetParameter(midi(track), instrument.Param(midi(id)), float64(value))
}

// ClearEvents empties the pattern of the current engine.
func ClearEvents() error {
	e, err := currentEngine()
	if err != nil {
		return err
	}

	return e.ClearEvents()
}

// SetPlayPause starts or pauses the transport of h.
func SetPlayPause(h Handle, playing bool) error {
	e, err := Lookup(h)
	if err != nil {
		return err
	}

	e.SetPlaying(playing)

	return nil
}

// SetProgressObserver installs fn as the playback progress callback of h.
// nil removes it. fn receives the latest progress on each Poll, so hosts
// that want one report per render call Poll after every Render.
func SetProgressObserver(h Handle, fn func(progress float32)) error {
	e, err := Lookup(h)
	if err != nil {
		return err
	}

	if fn == nil {
		e.OnProgress(nil)
		return nil
	}

	e.OnProgress(func(p float64) { fn(float32(p)) })

	return nil
}

// SetNoteObserver installs fn as the note played callback of h. nil
// removes it.
func SetNoteObserver(h Handle, fn func(on bool, pitch, track uint8)) error {
	e, err := Lookup(h)
	if err != nil {
		return err
	}

	if fn == nil {
		e.OnNote(nil)
		return nil
	}

	e.OnNote(func(n engine.NoteEvent) { fn(n.On, n.Pitch, n.Track) })

	return nil
}

// Poll delivers pending notifications of h to its observers and returns
// the number of notes delivered.
func Poll(h Handle) (int, error) {
	e, err := Lookup(h)
	if err != nil {
		return 0, err
	}

	return e.Flush(), nil
}

func (h Handle) index() (int, bool) {
	if h == 0 || h > MaxEngines {
		return 0, false
	}

	return int(h) - 1, true
}

func currentEngine() (*engine.Engine, error) {
	return Lookup(Handle(current.Load()))
}

func midi(v uint8) uint8 { return min(v, core.MaxMIDI) }

// ID converts a numeric argument from a dynamically typed caller to a
// pitch, velocity, track or parameter id. Values are truncated and clamped
// to [0, 127]; NaN maps to 0.
func ID(v float64) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= core.MaxMIDI:
		return core.MaxMIDI
	}

	return uint8(v)
}

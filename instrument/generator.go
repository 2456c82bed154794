package instrument

// Generator is a sound source bound to one track of the engine.
// All methods are called from the render goroutine only.
type Generator interface {
	// NoteOn starts a note. param1 and param2 are in [0, 1] and raise two
	// instrument-specific track parameters for this note only.
	NoteOn(pitch, velocity uint8, param1, param2 float64)
	// NoteOff releases the oldest held note at pitch.
	NoteOff(pitch uint8)
	// SetParameter changes a control value in [0, 1].
	SetParameter(p Param, value float64)
	// Process returns the next output sample.
	Process() float64
	// ProcessBlock fills dst with consecutive output samples.
	ProcessBlock(dst []float64)
	// IsActive reports whether any note is still sounding.
	IsActive() bool
	// Reset silences the generator immediately.
	Reset()
}

// Voice is one monophonic note renderer managed by a Pool.
type Voice interface {
	Trigger(pitch, velocity uint8, param1, param2 float64)
	Release()
	SetParameter(p Param, value float64)
	Process() float64
	IsActive() bool
	// Level is the current output amplitude estimate in [0, 1].
	Level() float64
	Reset()
}

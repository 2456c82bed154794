package instrument

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const defaultPoolGain = 0.5

// PoolOption configures a Pool.
type PoolOption func(*Pool) error

// WithGain scales the summed voice output. Must be finite and >= 0.
func WithGain(gain float64) PoolOption {
	return func(p *Pool) error {
		if gain < 0 || !core.IsFinite(gain) {
			return fmt.Errorf("instrument pool gain must be >= 0: %f", gain)
		}

		p.gain = gain

		return nil
	}
}

// Pool plays notes on a fixed set of voices and implements Generator.
type Pool struct {
	voices   []Voice
	pitch    []uint8
	released []bool
	started  []uint64

	clock  uint64
	cursor int
	gain   float64
	steals uint64

	params [paramCount]float64
}

var _ Generator = (*Pool)(nil)

// NewPool wraps voices, which must be non-empty and non-nil.
func NewPool(voices []Voice, opts ...PoolOption) (*Pool, error) {
	if len(voices) == 0 {
		return nil, errors.New("instrument pool needs at least one voice")
	}

	for i, v := range voices {
		if v == nil {
			return nil, fmt.Errorf("instrument pool voice %d is nil", i)
		}
	}

	p := &Pool{
		voices:   voices,
		pitch:    make([]uint8, len(voices)),
		released: make([]bool, len(voices)),
		started:  make([]uint64, len(voices)),
		gain:     defaultPoolGain,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Polyphony returns the number of voices.
func (p *Pool) Polyphony() int { return len(p.voices) }

// Voice returns the i-th voice.
func (p *Pool) Voice(i int) Voice { return p.voices[i] }

// Steals returns how many notes took over a sounding voice.
func (p *Pool) Steals() uint64 { return p.steals }

// ActiveVoices returns the number of sounding voices.
func (p *Pool) ActiveVoices() int {
	n := 0

	for _, v := range p.voices {
		if v.IsActive() {
			n++
		}
	}

	return n
}

// NoteOn triggers a voice chosen by allocate.
func (p *Pool) NoteOn(pitch, velocity uint8, param1, param2 float64) {
	i := p.allocate()

	p.clock++
	p.voices[i].Trigger(core.ClampMIDI(int(pitch)), core.ClampMIDI(int(velocity)),
		core.ClampUnit(param1), core.ClampUnit(param2))
	p.pitch[i] = pitch
	p.released[i] = false
	p.started[i] = p.clock
}

// NoteOff releases the oldest held voice playing pitch, so overlapping
// notes at one pitch end in the order they started.
func (p *Pool) NoteOff(pitch uint8) {
	oldest := -1

	for i, v := range p.voices {
		if p.released[i] || p.pitch[i] != pitch || !v.IsActive() {
			continue
		}

		if oldest < 0 || p.started[i] < p.started[oldest] {
			oldest = i
		}
	}

	if oldest >= 0 {
		p.voices[oldest].Release()
		p.released[oldest] = true
	}
}

// SetParameter forwards a clamped value to every voice. Non-finite values
// are ignored.
func (p *Pool) SetParameter(param Param, value float64) {
	if param >= paramCount || !core.IsFinite(value) {
		return
	}

	value = core.ClampUnit(value)
	p.params[param] = value

	for _, v := range p.voices {
		v.SetParameter(param, value)
	}
}

// Parameter returns the last value set for param.
func (p *Pool) Parameter(param Param) float64 {
	if param >= paramCount {
		return 0
	}

	return p.params[param]
}

// Process sums one sample of every active voice.
func (p *Pool) Process() float64 {
	sum := 0.0

	for _, v := range p.voices {
		if v.IsActive() {
			sum += v.Process()
		}
	}

	return sum * p.gain
}

// ProcessBlock fills dst with consecutive output samples.
func (p *Pool) ProcessBlock(dst []float64) {
	for i := range dst {
		dst[i] = p.Process()
	}
}

// IsActive reports whether any voice is sounding.
func (p *Pool) IsActive() bool {
	for _, v := range p.voices {
		if v.IsActive() {
			return true
		}
	}

	return false
}

// Reset silences every voice and restarts allocation.
func (p *Pool) Reset() {
	for i, v := range p.voices {
		v.Reset()
		p.released[i] = false
		p.started[i] = 0
	}

	p.clock = 0
	p.cursor = 0
}

// allocate returns a free voice in round-robin order. Without one it steals
// the quietest released voice, then the oldest triggered voice.
func (p *Pool) allocate() int {
	n := len(p.voices)

	for k := range n {
		i := (p.cursor + k) % n
		if !p.voices[i].IsActive() {
			p.cursor = (i + 1) % n
			return i
		}
	}

	p.steals++

	quietest := -1

	for i, v := range p.voices {
		if !p.released[i] {
			continue
		}

		if quietest < 0 || v.Level() < p.voices[quietest].Level() {
			quietest = i
		}
	}

	if quietest >= 0 {
		return quietest
	}

	oldest := 0

	for i := range p.voices {
		if p.started[i] < p.started[oldest] {
			oldest = i
		}
	}

	return oldest
}

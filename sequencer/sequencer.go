package sequencer

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultLoopBeats       = 4
	defaultPatternCapacity = 1024
	defaultPendingCapacity = 512

	maxSamples = 1 << 52
)

// Option configures a Sequencer.
type Option func(*config) error

type config struct {
	loopBeats       float64
	patternCapacity int
	pendingCapacity int
}

// WithLoopBeats sets the initial loop length in beats.
func WithLoopBeats(beats float64) Option {
	return func(c *config) error {
		if beats <= 0 || !core.IsFinite(beats) {
			return fmt.Errorf("sequencer loop length must be > 0 beats: %f", beats)
		}

		c.loopBeats = beats

		return nil
	}
}

// WithPatternCapacity sets the maximum number of pattern events.
func WithPatternCapacity(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("sequencer pattern capacity must be > 0: %d", n)
		}

		c.patternCapacity = n

		return nil
	}
}

// WithPendingCapacity sets how many NoteOffs may wait for a later block.
func WithPendingCapacity(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("sequencer pending capacity must be > 0: %d", n)
		}

		c.pendingCapacity = n

		return nil
	}
}

// pendingOff is a NoteOff waiting for the loop to reach position at.
type pendingOff struct {
	at    int64
	pitch uint8
	track uint8
}

// Sequencer turns a Pattern into per-block Schedules.
type Sequencer struct {
	sampleRate float64
	pattern    *Pattern

	pending        []pendingOff
	pendingDropped uint64

	progress float64
}

// New creates a sequencer for sampleRate with an empty pattern.
func New(sampleRate float64, opts ...Option) (*Sequencer, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("sequencer sample rate must be > 0: %f", sampleRate)
	}

	cfg := config{
		loopBeats:       defaultLoopBeats,
		patternCapacity: defaultPatternCapacity,
		pendingCapacity: defaultPendingCapacity,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	pattern, err := NewPattern(cfg.patternCapacity, cfg.loopBeats)
	if err != nil {
		return nil, err
	}

	return &Sequencer{
		sampleRate: sampleRate,
		pattern:    pattern,
		pending:    make([]pendingOff, 0, cfg.pendingCapacity),
	}, nil
}

// SampleRate returns the configured sample rate.
func (s *Sequencer) SampleRate() float64 { return s.sampleRate }

// Pattern returns the pattern played by s.
func (s *Sequencer) Pattern() *Pattern { return s.pattern }

// Add appends ev to the pattern.
func (s *Sequencer) Add(ev Event) error { return s.pattern.Add(ev) }

// Clear empties the pattern. NoteOffs already pending are still delivered.
func (s *Sequencer) Clear() { s.pattern.Clear() }

// SetLoopLength sets the pattern length in beats.
func (s *Sequencer) SetLoopLength(beats float64) error {
	return s.pattern.SetLengthBeats(beats)
}

// Progress returns the loop position of the last processed block in [0, 1).
func (s *Sequencer) Progress() float64 { return s.progress }

// PendingLen returns the number of NoteOffs waiting for a later block.
func (s *Sequencer) PendingLen() int { return len(s.pending) }

// PendingDropped returns how many NoteOffs were lost to a full pending list.
func (s *Sequencer) PendingDropped() uint64 { return s.pendingDropped }

// BeatsToSamples converts a beat position at tempo BPM to samples,
// truncating toward zero. A non-positive tempo yields 0.
func (s *Sequencer) BeatsToSamples(beats, tempo float64) int64 {
	if !(tempo > 0) || !core.IsFinite(tempo) {
		return 0
	}

	v := beats / tempo * 60 * s.sampleRate
	if v >= maxSamples {
		return maxSamples
	}

	return int64(v)
}

// SamplesToBeats converts a sample count at tempo BPM to beats.
func (s *Sequencer) SamplesToBeats(samples int64, tempo float64) float64 {
	return float64(samples) / s.sampleRate * tempo / 60
}

// LoopSamples returns the loop length in samples at tempo.
func (s *Sequencer) LoopSamples(tempo float64) int64 {
	return s.BeatsToSamples(s.pattern.lengthBeats, tempo)
}

// Process fills dst with the events of block [sampleTime, sampleTime+frames)
// ordered by offset. The window is half-open: an event exactly at the block
// end fires in the next block.
func (s *Sequencer) Process(dst *Schedule, sampleTime int64, tempo float64, frames int) {
	dst.Reset()

	length := s.LoopSamples(tempo)
	if length <= 0 || frames <= 0 {
		return
	}

	start := mod(sampleTime, length)
	end := int64(frames)
	s.progress = float64(start) / float64(length)

	for i := 0; i < len(s.pending); {
		p := s.pending[i]

		off := mod(p.at-start, length)
		if off >= end {
			i++
			continue
		}

		dst.push(ScheduledEvent{Kind: NoteOff, Offset: int(off), Pitch: p.pitch, Track: p.track})

		last := len(s.pending) - 1
		s.pending[i] = s.pending[last]
		s.pending = s.pending[:last]
	}

	for _, ev := range s.pattern.events {
		at := s.BeatsToSamples(ev.Beat, tempo)
		if at >= length {
			continue
		}

		dur := s.BeatsToSamples(ev.Duration, tempo)

		for off := mod(at-start, length); off < end; off += length {
			dst.push(ScheduledEvent{
				Kind:     NoteOn,
				Offset:   int(off),
				Pitch:    ev.Pitch,
				Velocity: ev.Velocity,
				Track:    ev.Track,
				Param1:   ev.Param1,
				Param2:   ev.Param2,
			})

			if off+dur < end {
				dst.push(ScheduledEvent{Kind: NoteOff, Offset: int(off + dur), Pitch: ev.Pitch, Track: ev.Track})
				continue
			}

			s.addPending(pendingOff{at: (at + dur) % length, pitch: ev.Pitch, track: ev.Track})
		}
	}

	dst.sort()
}

// FlushPending moves every pending NoteOff into dst at offset 0. It is used
// when the transport stops so no note is left sounding.
func (s *Sequencer) FlushPending(dst *Schedule) {
	for _, p := range s.pending {
		dst.push(ScheduledEvent{Kind: NoteOff, Pitch: p.pitch, Track: p.track})
	}

	s.pending = s.pending[:0]
}

// Reset drops pending NoteOffs and progress. The pattern is kept.
func (s *Sequencer) Reset() {
	s.pending = s.pending[:0]
	s.progress = 0
}

func (s *Sequencer) addPending(p pendingOff) {
	if len(s.pending) == cap(s.pending) {
		s.pendingDropped++
		return
	}

	s.pending = append(s.pending, p)
}

func mod(a, n int64) int64 {
	r := a % n
	if r < 0 {
		r += n
	}

	return r
}

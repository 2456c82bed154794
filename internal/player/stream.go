// Package player feeds an engine to the system audio device.
package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

// bytesPerFrame is two float32 channels.
const bytesPerFrame = 8

// Source renders stereo blocks at an absolute sample time.
type Source interface {
	Render(left, right []float32, sampleTime int64, tempo float64)
}

// Stream is an io.Reader of interleaved little-endian float32 stereo frames
// pulled from a Source. It owns the transport clock: every Read advances
// the sample time by the frames it produced.
type Stream struct {
	src       Source
	blockSize int

	left, right []float32

	sampleTime atomic.Int64
	tempo      atomic.Uint64
}

// NewStream creates a stream that renders blockSize frames per call.
func NewStream(src Source, blockSize int, tempo float64) (*Stream, error) {
	if src == nil {
		return nil, errors.New("player source must not be nil")
	}

	if blockSize <= 0 {
		return nil, fmt.Errorf("player block size must be > 0: %d", blockSize)
	}

	s := &Stream{
		src:       src,
		blockSize: blockSize,
		left:      make([]float32, blockSize),
		right:     make([]float32, blockSize),
	}
	if err := s.SetTempo(tempo); err != nil {
		return nil, err
	}

	return s, nil
}

// SetTempo changes the tempo from the next block on. Safe for concurrent use.
func (s *Stream) SetTempo(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return fmt.Errorf("player tempo must be > 0: %f", bpm)
	}

	s.tempo.Store(math.Float64bits(bpm))

	return nil
}

// Tempo returns the current tempo in BPM.
func (s *Stream) Tempo() float64 { return math.Float64frombits(s.tempo.Load()) }

// SampleTime returns the number of frames produced so far.
func (s *Stream) SampleTime() int64 { return s.sampleTime.Load() }

// Seek moves the transport to sampleTime.
func (s *Stream) Seek(sampleTime int64) { s.sampleTime.Store(max(0, sampleTime)) }

// Read fills p with whole frames and returns the bytes written. A trailing
// partial frame is left untouched.
func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	tempo := s.Tempo()
	pos := s.sampleTime.Load()
	off := 0

	for done := 0; done < frames; {
		n := min(frames-done, s.blockSize)
		left, right := s.left[:n], s.right[:n]

		s.src.Render(left, right, pos, tempo)

		for i := range n {
			binary.LittleEndian.PutUint32(p[off:], math.Float32bits(left[i]))
			binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(right[i]))
			off += bytesPerFrame
		}

		pos += int64(n)
		done += n
	}

	s.sampleTime.Store(pos)

	return off, nil
}

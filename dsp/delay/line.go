// Package delay provides a fixed-capacity circular delay line with
// selectable fractional-delay interpolation.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/interp"
)

// guardSamples is the headroom added to duration-derived capacities so the
// longest requested delay stays readable by the widest interpolation kernel.
const guardSamples = 4

// Line is a circular delay line.
//
// Read positions are measured back from the write cursor: a delay of 1 is the
// most recently written sample and a delay of Len()-1 the oldest one still
// readable. Delay 0 addresses the slot the next Write overwrites, which holds
// the sample written Len() writes ago.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the interpolation used by ReadFractional.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		switch mode {
		case interp.None, interp.Linear, interp.Cubic:
			d.mode = mode
		}
	}
}

// New returns a delay line of fixed size. The default interpolation is cubic.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	d := &Line{buffer: make([]float64, size), mode: interp.Cubic}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// NewForDuration returns a delay line able to hold maxSeconds of history at
// sampleRate.
func NewForDuration(sampleRate, maxSeconds float64, opts ...Option) (*Line, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}
	if maxSeconds <= 0 || !core.IsFinite(maxSeconds) {
		return nil, fmt.Errorf("delay max time must be > 0: %f", maxSeconds)
	}
	return New(int(math.Ceil(sampleRate*maxSeconds))+guardSamples, opts...)
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Mode returns the interpolation mode used by ReadFractional.
func (d *Line) Mode() interp.Mode {
	return d.mode
}

// MaxDelay returns the largest delay in samples that is read without clamping.
func (d *Line) MaxDelay() float64 {
	return float64(len(d.buffer) - 1)
}

// Write stores one sample in the oldest slot and advances the write cursor.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Delays outside [0, Len()) are clamped.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if delay < 0 {
		delay = 0
	} else if delay >= size {
		delay = size - 1
	}
	readPos := d.writePos - delay
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay using the configured interpolation.
// Delays outside [0, MaxDelay()] are clamped and NaN reads as 0.
func (d *Line) ReadFractional(delay float64) float64 {
	size := len(d.buffer)
	if !(delay > 0) {
		delay = 0
	}
	if maxDelay := float64(size - 1); delay > maxDelay {
		delay = maxDelay
	}

	pos := float64(d.writePos) - delay
	if pos < 0 {
		pos += float64(size)
	}
	i := int(pos)
	if i >= size {
		i -= size
	}
	t := pos - math.Floor(pos)

	switch d.mode {
	case interp.Linear:
		return interp.Linear2(t, d.buffer[i], d.at(i+1))
	case interp.Cubic:
		return interp.Hermite4(t, d.at(i-1), d.buffer[i], d.at(i+1), d.at(i+2))
	default:
		return d.buffer[i]
	}
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func (d *Line) at(i int) float64 {
	size := len(d.buffer)
	if i < 0 {
		i += size
	} else if i >= size {
		i -= size
	}
	return d.buffer[i]
}

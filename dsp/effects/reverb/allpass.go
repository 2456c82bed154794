package reverb

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/delay"
	"github.com/cwbudde/algo-synth/dsp/interp"
)

// allpass is a Schroeder allpass section:
//
//	v[n] = x[n] + g*v[n-D]
//	y[n] = v[n-D] - g*v[n]
type allpass struct {
	line   *delay.Line
	length int
	gain   float64
}

func newAllpass(length int, gain float64) (*allpass, error) {
	if length < 1 {
		return nil, fmt.Errorf("allpass length must be >= 1: %d", length)
	}

	line, err := delay.New(length+1, delay.WithMode(interp.None))
	if err != nil {
		return nil, err
	}

	return &allpass{line: line, length: length, gain: gain}, nil
}

func (a *allpass) process(x float64) float64 {
	delayed := a.line.Read(a.length)
	v := x + a.gain*delayed
	a.line.Write(v)

	return delayed - a.gain*v
}

func (a *allpass) reset() {
	a.line.Reset()
}

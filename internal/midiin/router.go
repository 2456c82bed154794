// Package midiin turns live MIDI input into engine control messages.
package midiin

import (
	"log/slog"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-synth/instrument"
)

// AllChannels makes a Router accept every MIDI channel.
const AllChannels = -1

// Target receives the translated messages. *engine.Engine implements it.
type Target interface {
	NoteOn(pitch, velocity, track uint8, param1, param2 float64) error
	NoteOff(pitch, track uint8) error
	SetParameter(track uint8, p instrument.Param, value float64) error
}

// DefaultControls maps common synth controller numbers to parameters.
var DefaultControls = map[uint8]instrument.Param{
	71: instrument.ParamResonance,
	72: instrument.ParamDecay,
	73: instrument.ParamAttack,
	74: instrument.ParamCutoff,
	75: instrument.ParamTone,
	76: instrument.ParamDamping,
}

// Router forwards notes and mapped controllers on one channel to one track.
type Router struct {
	target   Target
	track    uint8
	channel  int
	controls map[uint8]instrument.Param
	logger   *slog.Logger

	received atomic.Uint64
	dropped  atomic.Uint64
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithChannel restricts the router to channel 0..15, or AllChannels.
func WithChannel(ch int) RouterOption {
	return func(r *Router) {
		if ch == AllChannels || (ch >= 0 && ch < 16) {
			r.channel = ch
		}
	}
}

// WithControls replaces the controller map.
func WithControls(m map[uint8]instrument.Param) RouterOption {
	return func(r *Router) {
		if m != nil {
			r.controls = m
		}
	}
}

// WithLogger sets the logger for unhandled and dropped messages.
func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRouter creates a router that plays on track.
func NewRouter(target Target, track uint8, opts ...RouterOption) *Router {
	r := &Router{
		target:   target,
		track:    track,
		channel:  AllChannels,
		controls: DefaultControls,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Received returns the number of messages handled.
func (r *Router) Received() uint64 { return r.received.Load() }

// Dropped returns the number of messages the target refused.
func (r *Router) Dropped() uint64 { return r.dropped.Load() }

// Handle translates one MIDI message. It is safe to call from the driver's
// listener goroutine.
func (r *Router) Handle(msg gomidi.Message) {
	var ch, key, vel, cc, val uint8

	var err error

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if !r.accepts(ch) {
			return
		}

		err = r.target.NoteOn(key, vel, r.track, 0, 0)
	case msg.GetNoteEnd(&ch, &key):
		if !r.accepts(ch) {
			return
		}

		err = r.target.NoteOff(key, r.track)
	case msg.GetControlChange(&ch, &cc, &val):
		p, ok := r.controls[cc]
		if !r.accepts(ch) || !ok {
			return
		}

		err = r.target.SetParameter(r.track, p, float64(val)/127)
	default:
		r.logger.Debug("unhandled MIDI message", "msg", msg.String())
		return
	}

	r.received.Add(1)

	if err != nil {
		r.dropped.Add(1)
		r.logger.Warn("MIDI message dropped", "msg", msg.String(), "err", err)
	}
}

func (r *Router) accepts(ch uint8) bool {
	return r.channel == AllChannels || int(ch) == r.channel
}

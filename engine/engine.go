package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/effects"
	"github.com/cwbudde/algo-synth/dsp/effects/reverb"
	"github.com/cwbudde/algo-synth/instrument"
	"github.com/cwbudde/algo-synth/sequencer"
)

const minMaxDelaySeconds = 2.0

// ErrQueueFull is returned by Send when the control queue has no room.
var ErrQueueFull = errors.New("engine: control queue full")

// Engine renders a looping pattern through per-track generators and shared
// effects.
type Engine struct {
	cfg    core.ProcessorConfig
	logger *slog.Logger

	inbox  chan Message
	outbox chan NoteEvent

	// render-goroutine state
	seq        *sequencer.Sequencer
	sched      *sequencer.Schedule
	tracks     []instrument.Generator
	trackGain  float64
	delay      *effects.FeedbackDelay
	reverb     *reverb.FDNReverb
	limiter    *effects.Limiter
	delaySend  float64
	reverbSend float64
	wasPlaying bool
	bus        []float64
	scratch    []float64

	playing  atomic.Bool
	progress atomic.Uint64
	stats    counters

	noteObserver     atomic.Pointer[func(NoteEvent)]
	progressObserver atomic.Pointer[func(float64)]
}

// New builds an engine for cfg. All render memory is allocated here.
func New(cfg core.ProcessorConfig, opts ...Option) (*Engine, error) {
	if cfg.SampleRate <= 0 || !core.IsFinite(cfg.SampleRate) {
		return nil, fmt.Errorf("engine sample rate must be > 0: %f", cfg.SampleRate)
	}

	if cfg.MaxBlockSize <= 0 {
		return nil, fmt.Errorf("engine max block size must be > 0: %d", cfg.MaxBlockSize)
	}

	c := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&c); err != nil {
			return nil, err
		}
	}

	tracks, err := buildTracks(cfg.SampleRate, c)
	if err != nil {
		return nil, err
	}

	seq, err := sequencer.New(cfg.SampleRate,
		sequencer.WithLoopBeats(c.loopBeats),
		sequencer.WithPatternCapacity(c.patternCapacity),
		sequencer.WithPendingCapacity(c.patternCapacity))
	if err != nil {
		return nil, err
	}

	// one NoteOn and NoteOff per event plus pending NoteOffs
	sched, err := sequencer.NewSchedule(3 * c.patternCapacity)
	if err != nil {
		return nil, err
	}

	dly, err := effects.NewFeedbackDelay(cfg.SampleRate,
		effects.WithMaxDelayTime(math.Max(minMaxDelaySeconds, c.delaySeconds)),
		effects.WithDelayTime(c.delaySeconds),
		effects.WithDelayFeedback(c.delayFeedback))
	if err != nil {
		return nil, fmt.Errorf("engine delay: %w", err)
	}

	rev, err := reverb.NewFDNReverb(cfg.SampleRate, reverb.WithSeed(c.reverbSeed))
	if err != nil {
		return nil, fmt.Errorf("engine reverb: %w", err)
	}

	var lim *effects.Limiter
	if c.limiter {
		if lim, err = effects.NewLimiter(cfg.SampleRate); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		cfg:        cfg,
		logger:     c.logger,
		inbox:      make(chan Message, c.queueSize),
		outbox:     make(chan NoteEvent, c.notifyQueueSize),
		seq:        seq,
		sched:      sched,
		tracks:     tracks,
		trackGain:  1 / float64(len(tracks)),
		delay:      dly,
		reverb:     rev,
		limiter:    lim,
		delaySend:  c.delaySend,
		reverbSend: c.reverbSend,
		wasPlaying: true,
		bus:        make([]float64, cfg.MaxBlockSize),
		scratch:    make([]float64, cfg.MaxBlockSize),
	}
	e.playing.Store(true)

	e.logger.Info("engine ready",
		"sample_rate", cfg.SampleRate,
		"max_block", cfg.MaxBlockSize,
		"tracks", len(tracks),
		"limiter", lim != nil)

	return e, nil
}

func buildTracks(sampleRate float64, c config) ([]instrument.Generator, error) {
	if len(c.generators) > 0 {
		return c.generators, nil
	}

	tracks := make([]instrument.Generator, len(c.tracks))
	for i, k := range c.tracks {
		pool, err := instrument.New(k, sampleRate, c.polyphony)
		if err != nil {
			return nil, fmt.Errorf("engine track %d: %w", i, err)
		}

		tracks[i] = pool
	}

	return tracks, nil
}

// SampleRate returns the render sample rate.
func (e *Engine) SampleRate() float64 { return e.cfg.SampleRate }

// MaxBlockSize returns the largest chunk rendered in one pass.
func (e *Engine) MaxBlockSize() int { return e.cfg.MaxBlockSize }

// Tracks returns the number of tracks.
func (e *Engine) Tracks() int { return len(e.tracks) }

// SetPlaying starts or pauses the transport. Pausing releases every note
// the sequencer is still holding at the start of the next render call.
func (e *Engine) SetPlaying(playing bool) { e.playing.Store(playing) }

// Playing reports the transport state.
func (e *Engine) Playing() bool { return e.playing.Load() }

// Progress returns the loop position of the last render call in [0, 1).
func (e *Engine) Progress() float64 {
	return math.Float64frombits(e.progress.Load())
}

// Render fills left and right with min(len(left), len(right)) frames
// starting at sampleTime, at tempo BPM. Control messages are applied first.
// Requests longer than MaxBlockSize are rendered in chunks.
func (e *Engine) Render(left, right []float32, sampleTime int64, tempo float64) {
	frames := min(len(left), len(right))

	e.drain()

	playing := e.playing.Load()
	stopping := e.wasPlaying && !playing
	e.wasPlaying = playing

	for done := 0; done < frames; {
		n := min(frames-done, e.cfg.MaxBlockSize)

		e.sched.Reset()

		switch {
		case playing:
			e.seq.Process(e.sched, sampleTime+int64(done), tempo, n)
		case stopping:
			e.seq.FlushPending(e.sched)
			stopping = false
		}

		e.renderChunk(left[done:done+n], right[done:done+n])
		done += n
	}

	e.progress.Store(math.Float64bits(e.seq.Progress()))
	e.stats.renders.Add(1)
	e.stats.frames.Add(uint64(frames))
	e.stats.scheduleDropped.Store(e.sched.Dropped())
	e.stats.pendingDropped.Store(e.seq.PendingDropped())
}

// renderChunk plays the current schedule over len(left) frames. Generators
// run in segments between event offsets so every event lands on its frame.
func (e *Engine) renderChunk(left, right []float32) {
	n := len(left)
	bus := e.bus[:n]
	clear(bus)

	events := e.sched.Events()
	next := 0

	for pos := 0; pos < n; {
		for next < len(events) && events[next].Offset <= pos {
			e.deliver(events[next])
			next++
		}

		end := n
		if next < len(events) {
			end = events[next].Offset
		}

		for _, g := range e.tracks {
			if !g.IsActive() {
				continue
			}

			seg := e.scratch[pos:end]
			g.ProcessBlock(seg)
			vecmath.AddBlockInPlace(bus[pos:end], seg)
		}

		pos = end
	}

	vecmath.ScaleBlock(bus, bus, e.trackGain)

	for i, x := range bus {
		rev := e.reverb.ProcessSample(x)
		dly := e.delay.ProcessSample(x)

		y := x + rev*e.reverbSend + dly*e.delaySend
		if e.limiter != nil {
			y = e.limiter.ProcessSample(y)
		}

		y = core.Clamp(y, -1, 1)
		left[i] = float32(y)
		right[i] = float32(y)
	}
}

func (e *Engine) deliver(ev sequencer.ScheduledEvent) {
	if int(ev.Track) >= len(e.tracks) {
		e.stats.badTrack.Add(1)
		return
	}

	g := e.tracks[ev.Track]

	switch ev.Kind {
	case sequencer.NoteOn:
		g.NoteOn(ev.Pitch, ev.Velocity, ev.Param1, ev.Param2)
		e.notify(NoteEvent{On: true, Pitch: ev.Pitch, Track: ev.Track})
	case sequencer.NoteOff:
		g.NoteOff(ev.Pitch)
		e.notify(NoteEvent{On: false, Pitch: ev.Pitch, Track: ev.Track})
	}
}

func (e *Engine) notify(n NoteEvent) {
	select {
	case e.outbox <- n:
	default:
		e.stats.droppedNotes.Add(1)
	}
}

// drain applies every queued message without blocking.
func (e *Engine) drain() {
	for {
		select {
		case msg := <-e.inbox:
			e.apply(msg)
		default:
			return
		}
	}
}

func (e *Engine) apply(msg Message) {
	switch msg.Kind {
	case MsgSchedule:
		if err := e.seq.Add(msg.Event); err != nil {
			e.stats.patternFull.Add(1)
		}
	case MsgClear:
		e.seq.Clear()
	case MsgParameter:
		if int(msg.Track) < len(e.tracks) {
			e.tracks[msg.Track].SetParameter(msg.Param, msg.Value)
		} else {
			e.stats.badTrack.Add(1)
		}
	case MsgNoteOn:
		ev := msg.Event
		e.deliver(sequencer.ScheduledEvent{
			Kind:     sequencer.NoteOn,
			Pitch:    core.ClampMIDI(int(ev.Pitch)),
			Velocity: core.ClampMIDI(int(ev.Velocity)),
			Track:    ev.Track,
			Param1:   core.ClampUnit(ev.Param1),
			Param2:   core.ClampUnit(ev.Param2),
		})
	case MsgNoteOff:
		e.deliver(sequencer.ScheduledEvent{Kind: sequencer.NoteOff, Pitch: msg.Event.Pitch, Track: msg.Event.Track})
	case MsgLoopLength:
		_ = e.seq.SetLoopLength(msg.Value)
	case MsgEffect:
		e.applyEffect(msg.Effect, msg.Value)
	}
}

func (e *Engine) applyEffect(id EffectID, v float64) {
	if !core.IsFinite(v) {
		return
	}

	switch id {
	case EffectDelayTime:
		_ = e.delay.SetTargetTime(core.Clamp(v, 0.001, e.delay.MaxTime()))
	case EffectDelayFeedback:
		_ = e.delay.SetFeedback(core.Clamp(v, 0, 0.99))
	case EffectDelaySend:
		e.delaySend = core.ClampUnit(v)
	case EffectReverbSend:
		e.reverbSend = core.ClampUnit(v)
	case EffectReverbFeedback:
		_ = e.reverb.SetFeedback(core.Clamp(v, 0, 0.99))
	case EffectReverbDamping:
		_ = e.reverb.SetDamping(core.Clamp(v, 20, e.cfg.SampleRate*0.49))
	}
}

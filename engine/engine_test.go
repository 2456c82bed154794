package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/instrument"
	"github.com/cwbudde/algo-synth/internal/testutil"
	"github.com/cwbudde/algo-synth/sequencer"
)

const (
	testRate  = 48000.0
	testTempo = 120.0
)

// probe is an always-active generator that records the sample position of
// every note it receives.
type probe struct {
	pos   int64
	out   float64
	ons   []int64
	offs  []int64
	p1    float64
	param instrument.Param
	value float64
}

func newProbe(out float64) *probe {
	return &probe{out: out, ons: make([]int64, 0, 64), offs: make([]int64, 0, 64)}
}

func (p *probe) NoteOn(_, _ uint8, param1, _ float64) {
	p.ons = append(p.ons, p.pos)
	p.p1 = param1
}

func (p *probe) NoteOff(uint8) { p.offs = append(p.offs, p.pos) }

func (p *probe) SetParameter(id instrument.Param, v float64) {
	p.param = id
	p.value = v
}

func (p *probe) Process() float64 {
	p.pos++
	return p.out
}

func (p *probe) ProcessBlock(dst []float64) {
	for i := range dst {
		dst[i] = p.Process()
	}
}

func (p *probe) IsActive() bool { return true }
func (p *probe) Reset()         { p.pos = 0 }

func quiet() Option { return WithLogger(slog.New(slog.DiscardHandler)) }

func newTestEngine(t *testing.T, maxBlock int, opts ...Option) *Engine {
	t.Helper()

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(testRate),
		core.WithBlockSize(maxBlock),
		core.WithMaxBlockSize(maxBlock))

	e, err := New(cfg, append([]Option{quiet()}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return e
}

// render plays [from, to) in calls of blockSize frames.
func render(e *Engine, from, to int64, blockSize int) {
	left := make([]float32, blockSize)
	right := make([]float32, blockSize)

	for pos := from; pos < to; pos += int64(blockSize) {
		n := int(min(int64(blockSize), to-pos))
		e.Render(left[:n], right[:n], pos, testTempo)
	}
}

func TestNewValidation(t *testing.T) {
	good := core.ProcessorConfig{SampleRate: testRate, BlockSize: 256, MaxBlockSize: 256}

	tests := []struct {
		name string
		cfg  core.ProcessorConfig
		opts []Option
	}{
		{"zero rate", core.ProcessorConfig{MaxBlockSize: 256}, nil},
		{"nan rate", core.ProcessorConfig{SampleRate: math.NaN(), MaxBlockSize: 256}, nil},
		{"zero block", core.ProcessorConfig{SampleRate: testRate}, nil},
		{"queue", good, []Option{WithQueueSize(0)}},
		{"notify queue", good, []Option{WithNotifyQueueSize(-1)}},
		{"no tracks", good, []Option{WithTracks()}},
		{"bad kind", good, []Option{WithTracks(instrument.Kind(99))}},
		{"polyphony", good, []Option{WithPolyphony(0)}},
		{"nil generator", good, []Option{WithGenerators(nil)}},
		{"loop", good, []Option{WithLoopBeats(0)}},
		{"pattern", good, []Option{WithPatternCapacity(0)}},
		{"sends", good, []Option{WithSends(1.5, 0)}},
		{"delay feedback", good, []Option{WithDelay(0.5, 1.2)}},
		{"nil logger", good, []Option{WithLogger(nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, append([]Option{quiet()}, tt.opts...)...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t, 512)

	if got := e.Tracks(); got != len(DefaultTracks) {
		t.Fatalf("Tracks() = %d, want %d", got, len(DefaultTracks))
	}

	if !e.Playing() {
		t.Fatal("engine should start playing")
	}

	if e.SampleRate() != testRate || e.MaxBlockSize() != 512 {
		t.Fatalf("config = %f/%d", e.SampleRate(), e.MaxBlockSize())
	}
}

func TestRenderEventTimingAcrossBlockSizes(t *testing.T) {
	for _, blockSize := range []int{1, 64, 512, 1000, 4096} {
		t.Run(fmt.Sprintf("block%d", blockSize), func(t *testing.T) {
			p := newProbe(0)
			e := newTestEngine(t, 512, WithGenerators(p))

			if err := e.AddEvent(sequencer.Event{Beat: 1, Pitch: 60, Velocity: 100, Duration: 1, Param1: 0.25}); err != nil {
				t.Fatalf("AddEvent() error = %v", err)
			}

			render(e, 0, 100000, blockSize)

			if !slices.Equal(p.ons, []int64{24000}) {
				t.Fatalf("block %d: NoteOn at %v, want [24000]", blockSize, p.ons)
			}

			if !slices.Equal(p.offs, []int64{48000}) {
				t.Fatalf("block %d: NoteOff at %v, want [48000]", blockSize, p.offs)
			}

			if p.p1 != 0.25 {
				t.Fatalf("param1 = %f, want 0.25", p.p1)
			}
		})
	}
}

func TestSetLoopLength(t *testing.T) {
	p := newProbe(0)
	e := newTestEngine(t, 256, WithGenerators(p))

	_ = e.SetLoopLength(2)
	_ = e.AddEvent(sequencer.Event{Beat: 1, Pitch: 48, Velocity: 90, Duration: 0.5})

	render(e, 0, 96000, 480)

	if !slices.Equal(p.ons, []int64{24000, 72000}) {
		t.Fatalf("NoteOn at %v", p.ons)
	}

	if !slices.Equal(p.offs, []int64{36000, 84000}) {
		t.Fatalf("NoteOff at %v", p.offs)
	}
}

func TestClearEventsStopsPattern(t *testing.T) {
	p := newProbe(0)
	e := newTestEngine(t, 256, WithGenerators(p))

	_ = e.AddEvent(sequencer.Event{Beat: 0, Pitch: 60, Velocity: 100, Duration: 0.5})
	render(e, 0, 1024, 256)

	_ = e.ClearEvents()
	render(e, 1024, 200000, 512)

	if len(p.ons) != 1 {
		t.Fatalf("NoteOn count = %d, want 1", len(p.ons))
	}

	if !slices.Equal(p.offs, []int64{12000}) {
		t.Fatalf("pending NoteOff at %v, want [12000]", p.offs)
	}
}

func TestPauseReleasesHeldNotes(t *testing.T) {
	p := newProbe(0)
	e := newTestEngine(t, 256, WithGenerators(p))

	_ = e.AddEvent(sequencer.Event{Beat: 0, Pitch: 60, Velocity: 100, Duration: 2})
	render(e, 0, 24000, 500)

	e.SetPlaying(false)
	render(e, 24000, 120000, 500)

	if !slices.Equal(p.ons, []int64{0}) {
		t.Fatalf("NoteOn at %v", p.ons)
	}

	if !slices.Equal(p.offs, []int64{24000}) {
		t.Fatalf("NoteOff at %v, want [24000]", p.offs)
	}

	if e.Playing() {
		t.Fatal("Playing() = true after pause")
	}
}

func TestMessagesAppliedWhilePaused(t *testing.T) {
	p := newProbe(0)
	e := newTestEngine(t, 256, WithGenerators(p))
	e.SetPlaying(false)

	_ = e.SetParameter(0, instrument.ParamCutoff, 0.3)
	_ = e.NoteOn(64, 100, 0, 0.7, 0)
	render(e, 0, 256, 256)

	if p.param != instrument.ParamCutoff || p.value != 0.3 {
		t.Fatalf("parameter = %v/%f", p.param, p.value)
	}

	if len(p.ons) != 1 || p.p1 != 0.7 {
		t.Fatalf("live NoteOn = %v p1 %f", p.ons, p.p1)
	}
}

func TestLiveNotesNotify(t *testing.T) {
	p := newProbe(0)
	e := newTestEngine(t, 256, WithGenerators(p))

	var got []NoteEvent
	e.OnNote(func(ev NoteEvent) { got = append(got, ev) })

	_ = e.NoteOn(60, 100, 0, 0, 0)
	_ = e.NoteOff(60, 0)
	render(e, 0, 256, 256)

	if n := e.Flush(); n != 2 {
		t.Fatalf("Flush() = %d, want 2", n)
	}

	want := []NoteEvent{{On: true, Pitch: 60}, {On: false, Pitch: 60}}
	if !slices.Equal(got, want) {
		t.Fatalf("notes = %v, want %v", got, want)
	}

	e.OnNote(nil)
	_ = e.NoteOn(62, 100, 0, 0, 0)
	render(e, 256, 512, 256)

	if n := e.Flush(); n != 1 || len(got) != 2 {
		t.Fatalf("Flush() = %d with %d observed after OnNote(nil)", n, len(got))
	}
}

func TestPatternNotify(t *testing.T) {
	e := newTestEngine(t, 512, WithGenerators(newProbe(0), newProbe(0)))

	_ = e.AddEvent(sequencer.Event{Beat: 0.5, Pitch: 40, Velocity: 100, Duration: 0.25, Track: 1})
	render(e, 0, 48000, 512)

	var got []NoteEvent
	e.OnNote(func(ev NoteEvent) { got = append(got, ev) })
	e.Flush()

	want := []NoteEvent{{On: true, Pitch: 40, Track: 1}, {On: false, Pitch: 40, Track: 1}}
	if !slices.Equal(got, want) {
		t.Fatalf("notes = %v, want %v", got, want)
	}
}

func TestProgress(t *testing.T) {
	e := newTestEngine(t, 512, WithGenerators(newProbe(0)))

	var last float64
	e.OnProgress(func(v float64) { last = v })

	left := make([]float32, 256)
	right := make([]float32, 256)
	e.Render(left, right, 48000, testTempo)
	e.Flush()

	if math.Abs(e.Progress()-0.5) > 1e-12 || last != e.Progress() {
		t.Fatalf("Progress() = %f, observer %f", e.Progress(), last)
	}
}

func TestProgressOncePerFlush(t *testing.T) {
	e := newTestEngine(t, 512, WithGenerators(newProbe(0)))

	var got []float64
	e.OnProgress(func(v float64) { got = append(got, v) })

	left := make([]float32, 256)
	right := make([]float32, 256)

	// loop of 4 beats at 120 BPM is 96000 samples
	for _, pos := range []int64{0, 24000, 48000, 72000} {
		e.Render(left, right, pos, testTempo)
		e.Flush()
	}

	want := []float64{0, 0.25, 0.5, 0.75}
	if len(got) != len(want) {
		t.Fatalf("progress reports = %v, want %v", got, want)
	}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("progress reports = %v, want %v", got, want)
		}
	}

	// renders without a Flush in between collapse to the latest position
	got = got[:0]
	e.Render(left, right, 0, testTempo)
	e.Render(left, right, 24000, testTempo)
	e.Flush()

	if len(got) != 1 || math.Abs(got[0]-0.25) > 1e-12 {
		t.Fatalf("progress reports = %v, want [0.25]", got)
	}
}

func TestRenderDryPassThrough(t *testing.T) {
	e := newTestEngine(t, 128, WithGenerators(newProbe(0.4), newProbe(0.2)), WithSends(0, 0))

	left := make([]float32, 300)
	right := make([]float32, 300)
	e.Render(left, right, 0, testTempo)

	for i := range left {
		if math.Abs(float64(left[i])-0.3) > 1e-6 || left[i] != right[i] {
			t.Fatalf("frame %d = %f/%f, want 0.3", i, left[i], right[i])
		}
	}
}

func TestRenderBoundedAndFinite(t *testing.T) {
	e := newTestEngine(t, 512, WithSends(1, 1), WithDelay(0.25, 0.95))

	for i, tr := range []uint8{0, 1, 2, 1} {
		_ = e.AddEvent(sequencer.Event{Beat: float64(i) * 0.5, Pitch: 36 + 12*tr, Velocity: 127, Duration: 0.4, Track: tr})
	}

	left := make([]float32, 1000)
	right := make([]float32, 1000)

	var energy float64

	for pos := int64(0); pos < 192000; pos += 1000 {
		e.Render(left, right, pos, testTempo)

		testutil.RequireBounded(t, left, 1)

		for i := range left {
			if left[i] != right[i] {
				t.Fatalf("sample %d: channels differ", pos+int64(i))
			}
		}

		energy += testutil.Energy(left)
	}

	if energy == 0 {
		t.Fatal("expected audible output")
	}
}

func TestShortChannelRendersMinimum(t *testing.T) {
	e := newTestEngine(t, 64, WithGenerators(newProbe(0.5)), WithSends(0, 0))

	left := make([]float32, 100)
	right := make([]float32, 40)
	e.Render(left, right, 0, testTempo)

	if left[39] == 0 || left[40] != 0 {
		t.Fatalf("left[39]=%f left[40]=%f", left[39], left[40])
	}

	if got := e.Stats().Frames; got != 40 {
		t.Fatalf("Frames = %d, want 40", got)
	}
}

func TestSendQueueFull(t *testing.T) {
	e := newTestEngine(t, 64, WithQueueSize(2))

	_ = e.ClearEvents()
	_ = e.ClearEvents()

	if err := e.ClearEvents(); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Send() error = %v, want ErrQueueFull", err)
	}

	if got := e.Stats().DroppedMessages; got != 1 {
		t.Fatalf("DroppedMessages = %d, want 1", got)
	}

	render(e, 0, 64, 64)

	if err := e.ClearEvents(); err != nil {
		t.Fatalf("Send() after drain error = %v", err)
	}
}

func TestNotifyQueueFull(t *testing.T) {
	e := newTestEngine(t, 64, WithGenerators(newProbe(0)), WithNotifyQueueSize(1))

	_ = e.NoteOn(60, 100, 0, 0, 0)
	_ = e.NoteOn(61, 100, 0, 0, 0)
	render(e, 0, 64, 64)

	if got := e.Stats().DroppedNotes; got != 1 {
		t.Fatalf("DroppedNotes = %d, want 1", got)
	}
}

func TestBadTrackCounted(t *testing.T) {
	e := newTestEngine(t, 64, WithGenerators(newProbe(0)))

	_ = e.SetParameter(3, instrument.ParamDecay, 0.5)
	_ = e.NoteOn(60, 100, 7, 0, 0)
	_ = e.AddEvent(sequencer.Event{Beat: 0, Pitch: 60, Velocity: 100, Duration: 0.1, Track: 9})
	render(e, 0, 64, 64)

	if got := e.Stats().BadTrack; got != 3 {
		t.Fatalf("BadTrack = %d, want 3", got)
	}
}

func TestPatternFullCounted(t *testing.T) {
	e := newTestEngine(t, 64, WithGenerators(newProbe(0)), WithPatternCapacity(2))

	for i := range 3 {
		_ = e.AddEvent(sequencer.Event{Beat: float64(i), Pitch: 60, Velocity: 100, Duration: 0.1})
	}

	render(e, 0, 64, 64)

	if got := e.Stats().PatternFull; got != 1 {
		t.Fatalf("PatternFull = %d, want 1", got)
	}
}

func TestSetEffectIgnoresNonFinite(t *testing.T) {
	e := newTestEngine(t, 64, WithGenerators(newProbe(0.5)), WithSends(0, 0))

	_ = e.SetEffect(EffectDelaySend, math.NaN())
	_ = e.SetEffect(EffectReverbSend, math.Inf(1))
	_ = e.SetEffect(EffectDelayTime, 100)

	left := make([]float32, 64)
	right := make([]float32, 64)
	e.Render(left, right, 0, testTempo)

	for i, v := range left {
		if math.Abs(float64(v)-0.5) > 1e-6 {
			t.Fatalf("frame %d = %f, want dry 0.5", i, v)
		}
	}

	if got := e.delay.Time(); got > e.delay.MaxTime() {
		t.Fatalf("delay target %f above max %f", got, e.delay.MaxTime())
	}
}

func TestDispatch(t *testing.T) {
	e := newTestEngine(t, 64, WithGenerators(newProbe(0)))

	notes := make(chan NoteEvent, 4)
	e.OnNote(func(ev NoteEvent) { notes <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- e.Dispatch(ctx, time.Millisecond) }()

	_ = e.NoteOn(72, 100, 0, 0, 0)
	render(e, 0, 64, 64)

	select {
	case ev := <-notes:
		if !ev.On || ev.Pitch != 72 {
			t.Fatalf("note = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no note dispatched")
	}

	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Dispatch() error = %v", err)
	}
}

func TestRenderDoesNotAllocate(t *testing.T) {
	e := newTestEngine(t, 256)

	for i := range 8 {
		_ = e.AddEvent(sequencer.Event{Beat: float64(i) * 0.5, Pitch: uint8(40 + i), Velocity: 100, Duration: 0.25, Track: uint8(i % 3)})
	}

	left := make([]float32, 256)
	right := make([]float32, 256)

	var pos int64

	render(e, 0, 4096, 256)
	pos = 4096

	allocs := testing.AllocsPerRun(200, func() {
		e.Render(left, right, pos, testTempo)
		pos += 256
	})
	if allocs != 0 {
		t.Fatalf("Render allocates %.1f times per call", allocs)
	}
}

func BenchmarkRender256(b *testing.B) {
	cfg := core.ProcessorConfig{SampleRate: testRate, BlockSize: 256, MaxBlockSize: 256}

	e, err := New(cfg, quiet())
	if err != nil {
		b.Fatal(err)
	}

	for i := range 16 {
		_ = e.AddEvent(sequencer.Event{Beat: float64(i) * 0.25, Pitch: uint8(36 + i), Velocity: 100, Duration: 0.2, Track: uint8(i % 3)})
	}

	left := make([]float32, 256)
	right := make([]float32, 256)

	var pos int64

	b.ReportAllocs()

	for b.Loop() {
		e.Render(left, right, pos, testTempo)
		pos += 256
	}
}

package instrument

import (
	"math"
	"testing"
)

type fakeVoice struct {
	active    bool
	level     float64
	out       float64
	pitch     uint8
	velocity  uint8
	triggers  int
	releases  int
	lastParam Param
	lastValue float64
}

func (f *fakeVoice) Trigger(pitch, velocity uint8, _, _ float64) {
	f.active = true
	f.level = 1
	f.pitch = pitch
	f.velocity = velocity
	f.triggers++
}

func (f *fakeVoice) Release() { f.releases++ }

func (f *fakeVoice) SetParameter(p Param, v float64) {
	f.lastParam = p
	f.lastValue = v
}

func (f *fakeVoice) Process() float64 { return f.out }
func (f *fakeVoice) IsActive() bool   { return f.active }
func (f *fakeVoice) Level() float64   { return f.level }
func (f *fakeVoice) Reset()           { f.active = false }

func newFakePool(t *testing.T, n int, opts ...PoolOption) (*Pool, []*fakeVoice) {
	t.Helper()

	fakes := make([]*fakeVoice, n)
	voices := make([]Voice, n)

	for i := range fakes {
		fakes[i] = &fakeVoice{}
		voices[i] = fakes[i]
	}

	p, err := NewPool(voices, opts...)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}

	return p, fakes
}

func TestNewPoolValidation(t *testing.T) {
	if _, err := NewPool(nil); err == nil {
		t.Fatal("expected error for empty pool")
	}

	if _, err := NewPool([]Voice{&fakeVoice{}, nil}); err == nil {
		t.Fatal("expected error for nil voice")
	}

	if _, err := NewPool([]Voice{&fakeVoice{}}, WithGain(-1)); err == nil {
		t.Fatal("expected error for negative gain")
	}

	if _, err := NewPool([]Voice{&fakeVoice{}}, WithGain(math.Inf(1))); err == nil {
		t.Fatal("expected error for infinite gain")
	}
}

func TestPoolRoundRobinFreeVoices(t *testing.T) {
	p, fakes := newFakePool(t, 3)

	for i, pitch := range []uint8{60, 62, 64} {
		p.NoteOn(pitch, 100, 0, 0)

		if fakes[i].pitch != pitch || fakes[i].triggers != 1 {
			t.Fatalf("voice %d: pitch=%d triggers=%d", i, fakes[i].pitch, fakes[i].triggers)
		}
	}

	if p.Steals() != 0 {
		t.Fatalf("Steals() = %d, want 0", p.Steals())
	}

	// cursor is back at voice 0, which is busy
	fakes[1].active = false

	p.NoteOn(65, 100, 0, 0)

	if fakes[1].pitch != 65 || fakes[1].triggers != 2 {
		t.Fatalf("free voice not reused: %+v", fakes[1])
	}
}

func TestPoolStealsQuietestReleased(t *testing.T) {
	p, fakes := newFakePool(t, 3)

	p.NoteOn(60, 100, 0, 0)
	p.NoteOn(62, 100, 0, 0)
	p.NoteOn(64, 100, 0, 0)

	p.NoteOff(62)
	p.NoteOff(64)

	fakes[1].level = 0.5
	fakes[2].level = 0.2

	p.NoteOn(67, 100, 0, 0)

	if fakes[2].pitch != 67 {
		t.Fatalf("stole wrong voice: pitches %d %d %d", fakes[0].pitch, fakes[1].pitch, fakes[2].pitch)
	}

	if p.Steals() != 1 {
		t.Fatalf("Steals() = %d, want 1", p.Steals())
	}
}

func TestPoolStealsOldestHeld(t *testing.T) {
	p, fakes := newFakePool(t, 3)

	p.NoteOn(60, 100, 0, 0)
	p.NoteOn(62, 100, 0, 0)
	p.NoteOn(64, 100, 0, 0)

	p.NoteOn(67, 100, 0, 0)
	if fakes[0].pitch != 67 {
		t.Fatalf("first steal took pitches %d %d %d, want voice 0", fakes[0].pitch, fakes[1].pitch, fakes[2].pitch)
	}

	p.NoteOn(69, 100, 0, 0)
	if fakes[1].pitch != 69 {
		t.Fatalf("second steal took pitches %d %d %d, want voice 1", fakes[0].pitch, fakes[1].pitch, fakes[2].pitch)
	}
}

func TestPoolNoteOffMatchesPitch(t *testing.T) {
	p, fakes := newFakePool(t, 3)

	p.NoteOn(60, 100, 0, 0)
	p.NoteOn(62, 100, 0, 0)
	p.NoteOn(60, 100, 0, 0)

	p.NoteOff(60)
	p.NoteOff(60)

	want := []int{1, 0, 1}
	for i, f := range fakes {
		if f.releases != want[i] {
			t.Fatalf("voice %d releases = %d, want %d", i, f.releases, want[i])
		}
	}
}

func TestPoolNoteOffReleasesOldestAtPitch(t *testing.T) {
	p, fakes := newFakePool(t, 3)

	// pattern notes at one pitch overlapping by a beat
	p.NoteOn(60, 100, 0, 0)
	p.NoteOn(60, 100, 0, 0)
	p.NoteOff(60)

	if fakes[0].releases != 1 || fakes[1].releases != 0 {
		t.Fatalf("releases = %d %d, want 1 0", fakes[0].releases, fakes[1].releases)
	}

	p.NoteOn(60, 100, 0, 0)
	p.NoteOff(60)

	if fakes[1].releases != 1 || fakes[2].releases != 0 {
		t.Fatalf("releases = %d %d, want 1 0", fakes[1].releases, fakes[2].releases)
	}
}

func TestPoolProcessSumsActiveVoices(t *testing.T) {
	p, fakes := newFakePool(t, 3, WithGain(0.5))

	fakes[0].out, fakes[1].out, fakes[2].out = 0.2, 0.4, 0.8
	fakes[0].active, fakes[2].active = true, true

	if got := p.Process(); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("Process() = %v, want 0.5", got)
	}

	buf := make([]float64, 4)
	p.ProcessBlock(buf)

	for i, v := range buf {
		if math.Abs(v-0.5) > 1e-12 {
			t.Fatalf("buf[%d] = %v, want 0.5", i, v)
		}
	}

	if !p.IsActive() || p.ActiveVoices() != 2 {
		t.Fatalf("IsActive=%v ActiveVoices=%d", p.IsActive(), p.ActiveVoices())
	}

	p.Reset()

	if p.IsActive() {
		t.Fatal("pool active after Reset")
	}
}

func TestPoolSetParameter(t *testing.T) {
	p, fakes := newFakePool(t, 2)

	p.SetParameter(ParamCutoff, 1.5)

	for i, f := range fakes {
		if f.lastParam != ParamCutoff || f.lastValue != 1 {
			t.Fatalf("voice %d got %v=%v, want cutoff=1", i, f.lastParam, f.lastValue)
		}
	}

	if got := p.Parameter(ParamCutoff); got != 1 {
		t.Fatalf("Parameter() = %v, want 1", got)
	}

	p.SetParameter(ParamCutoff, math.NaN())
	p.SetParameter(paramCount, 0.5)

	if got := p.Parameter(ParamCutoff); got != 1 {
		t.Fatalf("NaN changed parameter to %v", got)
	}
}

func TestPoolProcessDoesNotAllocate(t *testing.T) {
	for _, k := range []Kind{KindKick, KindSubtractive, KindPluck} {
		p, err := New(k, 48000, 8)
		if err != nil {
			t.Fatalf("New(%s) error = %v", k, err)
		}

		buf := make([]float64, 256)
		pitch := uint8(40)

		allocs := testing.AllocsPerRun(50, func() {
			p.NoteOn(pitch, 100, 0.5, 0.5)
			p.ProcessBlock(buf)
			p.NoteOff(pitch)
			pitch++
		})

		if allocs != 0 {
			t.Fatalf("%s: allocs = %v, want 0", k, allocs)
		}
	}
}

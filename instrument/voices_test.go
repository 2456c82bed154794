package instrument

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/internal/testutil"
)

const sr = 48000.0

func render(v Voice, n int) []float64 { return testutil.Render(v.Process, n) }

func TestVoicesSilentUntilTriggered(t *testing.T) {
	for _, k := range []Kind{KindKick, KindSubtractive, KindPluck} {
		v, err := NewVoice(k, sr, 1)
		if err != nil {
			t.Fatalf("NewVoice(%s) error = %v", k, err)
		}

		if v.IsActive() {
			t.Fatalf("%s active before trigger", k)
		}

		if p := testutil.Peak(render(v, 64)); p != 0 {
			t.Fatalf("%s peak before trigger = %v", k, p)
		}
	}
}

func TestVoicesFinishAfterShortDecay(t *testing.T) {
	for _, k := range []Kind{KindKick, KindSubtractive, KindPluck} {
		t.Run(k.String(), func(t *testing.T) {
			v, err := NewVoice(k, sr, 1)
			if err != nil {
				t.Fatalf("NewVoice() error = %v", err)
			}

			v.SetParameter(ParamDecay, 0)
			v.Trigger(57, 127, 0.5, 0.5)

			if !v.IsActive() {
				t.Fatal("inactive after trigger")
			}

			out := render(v, int(sr))
			testutil.RequireFinite(t, out)

			if testutil.Peak(out[:2000]) == 0 {
				t.Fatal("no output after trigger")
			}

			if v.IsActive() {
				t.Fatalf("still active after one second, level %v", v.Level())
			}
		})
	}
}

func TestVoiceResetSilences(t *testing.T) {
	for _, k := range []Kind{KindKick, KindSubtractive, KindPluck} {
		v, _ := NewVoice(k, sr, 1)
		v.Trigger(60, 100, 0.5, 0.5)
		render(v, 100)
		v.Reset()

		if v.IsActive() {
			t.Fatalf("%s active after Reset", k)
		}
	}
}

func TestTrackParametersShapeNotes(t *testing.T) {
	tests := []struct {
		kind  Kind
		param Param
	}{
		{KindSubtractive, ParamCutoff},
		{KindSubtractive, ParamResonance},
		{KindPluck, ParamTone},
		{KindPluck, ParamDamping},
		{KindKick, ParamPitchEnv},
		{KindKick, ParamClick},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.kind, tt.param), func(t *testing.T) {
			play := func(value float64) []float64 {
				p, err := New(tt.kind, sr, 1)
				if err != nil {
					t.Fatalf("New() error = %v", err)
				}

				p.SetParameter(tt.param, value)
				// live MIDI notes carry no per-note params
				p.NoteOn(60, 127, 0, 0)

				return testutil.Render(p.Process, 4800)
			}

			lo, hi := play(0), play(1)
			if slices.Equal(lo, hi) {
				t.Fatalf("%s has no effect on the rendered note", tt.param)
			}
		})
	}
}

func TestNoteParamsRaiseTrackValue(t *testing.T) {
	v, err := NewSubtractive(sr)
	if err != nil {
		t.Fatalf("NewSubtractive() error = %v", err)
	}

	check := func(step string, want float64) {
		t.Helper()

		if got := v.filter.CutoffHz(); math.Abs(got-cutoffHz(want)) > 1e-9 {
			t.Fatalf("%s: cutoff = %v Hz, want %v Hz", step, got, cutoffHz(want))
		}
	}

	v.SetParameter(ParamCutoff, 0.2)
	v.Trigger(60, 127, 0, 0)
	check("track value", 0.2)

	v.Trigger(60, 127, 0.5, 0)
	check("note raises track", 0.6)

	v.SetParameter(ParamCutoff, 0.5)
	check("track change keeps note amount", 0.75)

	v.Trigger(60, 127, 0, 0)
	check("next note", 0.5)
}

func TestNoteParam(t *testing.T) {
	tests := []struct {
		track, note, want float64
	}{
		{0.3, 0, 0.3},
		{0.3, 1, 1},
		{0, 0.5, 0.5},
		{0.5, 0.5, 0.75},
		{-1, 2, 1},
		{1, 0, 1},
	}

	for _, tt := range tests {
		if got := noteParam(tt.track, tt.note); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("noteParam(%v, %v) = %v, want %v", tt.track, tt.note, got, tt.want)
		}
	}
}

func TestSubtractiveVelocityScalesLevel(t *testing.T) {
	v, err := NewSubtractive(sr)
	if err != nil {
		t.Fatalf("NewSubtractive() error = %v", err)
	}

	v.Trigger(60, 127, 1, 0)
	render(v, 10)
	full := v.Level()

	v.Trigger(60, 64, 1, 0)
	render(v, 10)
	half := v.Level()

	if math.Abs(half/full-64.0/127) > 1e-9 {
		t.Fatalf("level ratio = %v, want %v", half/full, 64.0/127)
	}
}

func TestKickDeterministicForSeed(t *testing.T) {
	a, _ := NewKick(sr, 7)
	b, _ := NewKick(sr, 7)

	a.Trigger(36, 120, 0.5, 1)
	b.Trigger(36, 120, 0.5, 1)

	testutil.RequireSliceNearlyEqual(t, render(a, 2048), render(b, 2048), 0)
}

func TestKickSweepSettlesOnBaseFrequency(t *testing.T) {
	k, _ := NewKick(sr, 1)
	k.SetParameter(ParamDecay, 1)
	k.Trigger(45, 127, 1, 0)

	// pitch envelope shares the amplitude decay, so it is still sweeping here
	render(k, 100)

	if f := k.osc.Frequency(); f <= 110 {
		t.Fatalf("frequency during sweep = %v, want > 110", f)
	}
}

func TestPluckPeriodTracksPitch(t *testing.T) {
	p, err := NewPluck(sr, 3)
	if err != nil {
		t.Fatalf("NewPluck() error = %v", err)
	}

	p.SetParameter(ParamDecay, 1)
	p.Trigger(57, 127, 0.3, 0.2)

	out := render(p, 8192)
	want := sr / 220

	best, bestCorr := 0, math.Inf(-1)

	for lag := 150; lag < 300; lag++ {
		c := 0.0
		for i := 0; i+lag < len(out); i++ {
			c += out[i] * out[i+lag]
		}

		if c > bestCorr {
			best, bestCorr = lag, c
		}
	}

	if math.Abs(float64(best)-want) > 2 {
		t.Fatalf("period = %d samples, want about %.1f", best, want)
	}
}

func TestPluckStaysBounded(t *testing.T) {
	for _, pitch := range []uint8{0, 21, 60, 108, 127} {
		p, _ := NewPluck(sr, 1)
		p.Trigger(pitch, 127, 0, 1)

		out := render(p, 4096)
		testutil.RequireFinite(t, out)

		if m := testutil.Peak(out); m > 1 {
			t.Fatalf("pitch %d: peak %v > 1", pitch, m)
		}
	}
}

func TestPluckReleaseShortensTail(t *testing.T) {
	held, _ := NewPluck(sr, 1)
	released, _ := NewPluck(sr, 1)

	held.Trigger(60, 127, 0.5, 0.5)
	released.Trigger(60, 127, 0.5, 0.5)
	released.Release()

	render(held, 4800)
	render(released, 4800)

	if released.Level() >= held.Level() {
		t.Fatalf("released level %v >= held level %v", released.Level(), held.Level())
	}
}

func TestPluckZeroVelocityIsSilent(t *testing.T) {
	p, _ := NewPluck(sr, 1)
	p.Trigger(60, 0, 0.5, 0.5)

	if p.IsActive() {
		t.Fatal("zero velocity note is active")
	}
}

func TestParamTables(t *testing.T) {
	for _, k := range []Kind{KindKick, KindSubtractive, KindPluck} {
		params := k.Params()
		if len(params) == 0 {
			t.Fatalf("%s has no parameters", k)
		}

		for _, info := range params {
			if info.Default < 0 || info.Default > 1 {
				t.Fatalf("%s %s default %v outside [0,1]", k, info.Name(), info.Default)
			}

			if v := info.Map(info.Default); !(v >= 0) || math.IsInf(v, 0) {
				t.Fatalf("%s %s maps default to %v", k, info.Name(), v)
			}

			got, err := ParseParam(info.Name())
			if err != nil || got != info.ID {
				t.Fatalf("ParseParam(%q) = %v, %v", info.Name(), got, err)
			}
		}
	}

	if _, err := ParseParam("nope"); err == nil {
		t.Fatal("expected error for unknown parameter")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindKick, KindSubtractive, KindPluck} {
		got, err := ParseKind(" " + k.String() + " ")
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}

	if _, err := ParseKind("theremin"); err == nil {
		t.Fatal("expected error for unknown kind")
	}

	if _, err := New(Kind(9), sr, 2); err == nil {
		t.Fatal("expected error for unknown kind")
	}

	if _, err := New(KindKick, sr, 0); err == nil {
		t.Fatal("expected error for zero polyphony")
	}
}

func TestTriangleMatchesOscillator(t *testing.T) {
	o, _ := osc.New(8, osc.Triangle)
	o.SetFrequency(1)
	o.SetPhase(0.25)

	for i := range 8 {
		phase := float64(i) / 8
		if got, want := triangle(phase), o.Process(); math.Abs(got-want) > 1e-12 {
			t.Fatalf("triangle(%v) = %v, oscillator %v", phase, got, want)
		}
	}
}

func BenchmarkPoolSubtractive8(b *testing.B) {
	p, _ := New(KindSubtractive, sr, 8)
	for i := range 8 {
		p.NoteOn(uint8(48+i*3), 100, 0.6, 0.2)
	}

	buf := make([]float64, 512)

	b.ReportAllocs()

	for b.Loop() {
		p.ProcessBlock(buf)
	}
}

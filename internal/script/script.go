// Package script runs Lua pattern scripts against the engine.
//
// A script sees these globals:
//
//	add_event(beat, pitch, velocity, duration [, track, param1, param2])
//	clear_events()
//	set_parameter(name, value [, track])
//	set_effect(name, value)
//	set_loop_length(beats)
//	set_tempo(bpm)
//	note(name) -> pitch, e.g. note("C4") == 60
//	tracks -> number of tracks
//
// The os, io and package libraries are not loaded.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/instrument"
	"github.com/cwbudde/algo-synth/sequencer"
)

// Target receives the control messages a script produces.
// *engine.Engine implements it.
type Target interface {
	AddEvent(ev sequencer.Event) error
	ClearEvents() error
	SetParameter(track uint8, p instrument.Param, value float64) error
	SetEffect(id engine.EffectID, value float64) error
	SetLoopLength(beats float64) error
	Tracks() int
}

// Runner executes scripts. It is not safe for concurrent use.
type Runner struct {
	target   Target
	logger   *slog.Logger
	setTempo func(bpm float64) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used by the script's print function.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTempo installs the handler for set_tempo. Without it set_tempo
// raises an error.
func WithTempo(fn func(bpm float64) error) Option {
	return func(r *Runner) { r.setTempo = fn }
}

// New creates a runner that sends to target.
func New(target Target, opts ...Option) (*Runner, error) {
	if target == nil {
		return nil, errors.New("script target must not be nil")
	}

	r := &Runner{target: target, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r, nil
}

// Run executes source. name labels error messages. ctx cancels a running
// script.
func (r *Runner) Run(ctx context.Context, name, source string) error {
	L := r.newState(ctx)
	defer L.Close()

	fn, err := L.LoadString(source)
	if err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}

	L.Push(fn)

	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}

	return nil
}

// RunFile executes the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	L := r.newState(ctx)
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}

	return nil
}

func (r *Runner) newState(ctx context.Context) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			panic(err)
		}
	}

	if ctx != nil {
		L.SetContext(ctx)
	}

	L.SetGlobal("print", L.NewFunction(r.print))
	L.SetGlobal("add_event", L.NewFunction(r.addEvent))
	L.SetGlobal("clear_events", L.NewFunction(r.clearEvents))
	L.SetGlobal("set_parameter", L.NewFunction(r.setParameter))
	L.SetGlobal("set_effect", L.NewFunction(r.setEffect))
	L.SetGlobal("set_loop_length", L.NewFunction(r.setLoopLength))
	L.SetGlobal("set_tempo", L.NewFunction(r.tempo))
	L.SetGlobal("note", L.NewFunction(note))
	L.SetGlobal("tracks", lua.LNumber(r.target.Tracks()))

	return L
}

func (r *Runner) print(L *lua.LState) int {
	args := make([]any, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		args = append(args, L.ToStringMeta(L.Get(i)).String())
	}

	r.logger.Info("script", "out", fmt.Sprint(args...))

	return 0
}

func (r *Runner) addEvent(L *lua.LState) int {
	ev := sequencer.Event{
		Beat:     float64(L.CheckNumber(1)),
		Pitch:    midiArg(L, 2),
		Velocity: midiArg(L, 3),
		Duration: float64(L.CheckNumber(4)),
		Track:    r.trackArg(L, 5),
		Param1:   float64(L.OptNumber(6, 0)),
		Param2:   float64(L.OptNumber(7, 0)),
	}

	check(L, r.target.AddEvent(ev))

	return 0
}

func (r *Runner) clearEvents(L *lua.LState) int {
	check(L, r.target.ClearEvents())
	return 0
}

func (r *Runner) setParameter(L *lua.LState) int {
	p, err := instrument.ParseParam(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}

	value := float64(L.CheckNumber(2))
	check(L, r.target.SetParameter(r.trackArg(L, 3), p, value))

	return 0
}

func (r *Runner) setEffect(L *lua.LState) int {
	id, err := engine.ParseEffect(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}

	check(L, r.target.SetEffect(id, float64(L.CheckNumber(2))))

	return 0
}

func (r *Runner) setLoopLength(L *lua.LState) int {
	beats := float64(L.CheckNumber(1))
	if beats <= 0 {
		L.ArgError(1, "loop length must be > 0")
	}

	check(L, r.target.SetLoopLength(beats))

	return 0
}

func (r *Runner) tempo(L *lua.LState) int {
	if r.setTempo == nil {
		L.RaiseError("set_tempo is not available")
	}

	check(L, r.setTempo(float64(L.CheckNumber(1))))

	return 0
}

func note(L *lua.LState) int {
	pitch, err := ParseNote(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}

	L.Push(lua.LNumber(pitch))

	return 1
}

func (r *Runner) trackArg(L *lua.LState, n int) uint8 {
	track := L.OptInt(n, 0)
	if track < 0 || track >= r.target.Tracks() {
		L.ArgError(n, fmt.Sprintf("track must be in [0,%d)", r.target.Tracks()))
	}

	return uint8(track)
}

func midiArg(L *lua.LState, n int) uint8 {
	v := L.CheckInt(n)
	if v < 0 || v > 127 {
		L.ArgError(n, "must be in [0,127]")
	}

	return uint8(v)
}

func check(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/host"
)

// maxRenderFrames bounds the scratch grown by render.
const maxRenderFrames = 1 << 16

var (
	funcs []js.Func

	// render scratch, grown on demand
	left, right []float32
)

func main() {
	api := js.Global().Get("Object").New()

	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		h, err := host.Initialize(float32(sr))
		if err != nil {
			return err.Error()
		}
		return int(h)
	}))

	api.Set("free", export(func(args []js.Value) any {
		if len(args) < 1 {
			return js.Null()
		}
		return errValue(host.Free(handle(args[0])))
	}))

	api.Set("render", export(func(args []js.Value) any {
		out := js.Global().Get("Object").New()
		if len(args) < 4 {
			out.Set("left", js.Global().Get("Float32Array").New(0))
			out.Set("right", js.Global().Get("Float32Array").New(0))
			return out
		}
		n := min(max(args[1].Int(), 0), maxRenderFrames)
		if cap(left) < n {
			left = make([]float32, n)
			right = make([]float32, n)
		}
		host.Render(handle(args[0]), left[:n], right[:n], int64(args[2].Float()), float32(args[3].Float()), n)
		out.Set("left", float32Array(left[:n]))
		out.Set("right", float32Array(right[:n]))
		return out
	}))

	api.Set("addEvent", export(func(args []js.Value) any {
		if len(args) < 7 {
			return js.Null()
		}
		return errValue(host.AddEvent(
			float32(args[0].Float()),
			host.ID(args[1].Float()),
			host.ID(args[2].Float()),
			float32(args[3].Float()),
			host.ID(args[4].Float()),
			float32(args[5].Float()),
			float32(args[6].Float())))
	}))

	api.Set("noteOn", export(func(args []js.Value) any {
		if len(args) < 4 {
			return js.Null()
		}
		var p1, p2 float32
		if len(args) > 5 {
			p1, p2 = float32(args[4].Float()), float32(args[5].Float())
		}
		return errValue(host.NoteOn(handle(args[0]), host.ID(args[1].Float()), host.ID(args[2].Float()), host.ID(args[3].Float()), p1, p2))
	}))

	api.Set("noteOff", export(func(args []js.Value) any {
		if len(args) < 3 {
			return js.Null()
		}
		return errValue(host.NoteOff(handle(args[0]), host.ID(args[1].Float()), host.ID(args[2].Float())))
	}))

	api.Set("setParameter", export(func(args []js.Value) any {
		if len(args) < 3 {
			return js.Null()
		}
		return errValue(host.SetParameter(host.ID(args[0].Float()), float32(args[1].Float()), host.ID(args[2].Float())))
	}))

	api.Set("setEffect", export(func(args []js.Value) any {
		if len(args) < 3 {
			return js.Null()
		}
		e, err := host.Lookup(handle(args[0]))
		if err != nil {
			return err.Error()
		}
		id, err := engine.ParseEffect(args[1].String())
		if err != nil {
			return err.Error()
		}
		return errValue(e.SetEffect(id, args[2].Float()))
	}))

	api.Set("clearEvents", export(func([]js.Value) any {
		return errValue(host.ClearEvents())
	}))

	api.Set("setPlayPause", export(func(args []js.Value) any {
		if len(args) < 2 {
			return js.Null()
		}
		return errValue(host.SetPlayPause(handle(args[0]), args[1].Bool()))
	}))

	api.Set("onProgress", export(func(args []js.Value) any {
		if len(args) < 2 {
			return js.Null()
		}
		cb := args[1]
		if cb.Type() != js.TypeFunction {
			return errValue(host.SetProgressObserver(handle(args[0]), nil))
		}
		return errValue(host.SetProgressObserver(handle(args[0]), func(p float32) {
			cb.Invoke(p)
		}))
	}))

	api.Set("onNote", export(func(args []js.Value) any {
		if len(args) < 2 {
			return js.Null()
		}
		cb := args[1]
		if cb.Type() != js.TypeFunction {
			return errValue(host.SetNoteObserver(handle(args[0]), nil))
		}
		return errValue(host.SetNoteObserver(handle(args[0]), func(on bool, pitch, track uint8) {
			cb.Invoke(on, int(pitch), int(track))
		}))
	}))

	api.Set("poll", export(func(args []js.Value) any {
		if len(args) < 1 {
			return 0
		}
		n, err := host.Poll(handle(args[0]))
		if err != nil {
			return err.Error()
		}
		return n
	}))

	js.Global().Set("AlgoSynth", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}

func handle(v js.Value) host.Handle {
	if v.Type() != js.TypeNumber || v.Int() < 0 {
		return 0
	}
	return host.Handle(v.Int())
}

func errValue(err error) any {
	if err != nil {
		return err.Error()
	}
	return js.Null()
}

func float32Array(buf []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(buf))
	for i, v := range buf {
		arr.SetIndex(i, v)
	}
	return arr
}

//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-kick/internal/webdemo"
	"github.com/cwbudde/algo-kick/preset"
)

var (
	engine *webdemo.Engine
	funcs  []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr := 44100
		if len(args) > 0 {
			sr = args[0].Int()
		}
		e, err := webdemo.NewEngine(sr)
		if err != nil {
			return err.Error()
		}
		engine = e
		return js.Null()
	}))

	api.Set("defaults", export(func(args []js.Value) any {
		obj := js.Global().Get("Object").New()
		for _, r := range preset.Ranges() {
			obj.Set(r.Key, r.Default)
		}
		return obj
	}))

	api.Set("ranges", export(func(args []js.Value) any {
		ranges := preset.Ranges()
		arr := js.Global().Get("Array").New(len(ranges))
		for i, r := range ranges {
			item := js.Global().Get("Object").New()
			item.Set("key", r.Key)
			item.Set("label", r.Label)
			item.Set("unit", r.Unit)
			item.Set("min", r.Min)
			item.Set("max", r.Max)
			item.Set("step", r.Step)
			item.Set("default", r.Default)
			arr.SetIndex(i, item)
		}
		return arr
	}))

	api.Set("presets", export(func(args []js.Value) any {
		if engine == nil {
			return js.Global().Get("Array").New(0)
		}
		names := engine.PresetNames()
		arr := js.Global().Get("Array").New(len(names))
		for i, n := range names {
			arr.SetIndex(i, n)
		}
		return arr
	}))

	api.Set("loadPreset", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		if err := engine.LoadPreset(args[0].String()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	// render accepts an optional object of parameter values keyed like the
	// preset YAML fields and returns the kick as a Float32Array, or an error
	// string.
	api.Set("render", export(func(args []js.Value) any {
		if engine == nil {
			return "engine not initialized"
		}
		if len(args) > 0 && args[0].Type() == js.TypeObject {
			p := args[0]
			for _, r := range preset.Ranges() {
				v := p.Get(r.Key)
				if v.Type() != js.TypeNumber {
					continue
				}
				if _, err := engine.SetParam(r.Key, v.Float()); err != nil {
					return err.Error()
				}
			}
		}
		buf, err := engine.Render()
		if err != nil {
			return err.Error()
		}
		arr := js.Global().Get("Float32Array").New(len(buf))
		for i := range buf {
			arr.SetIndex(i, buf[i])
		}
		return arr
	}))

	api.Set("spectrumCurve", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		input := args[0]
		freqs := make([]float64, input.Length())
		for i := 0; i < input.Length(); i++ {
			freqs[i] = input.Index(i).Float()
		}
		resp := engine.SpectrumCurveDB(freqs)
		arr := js.Global().Get("Float32Array").New(len(resp))
		for i := range resp {
			arr.SetIndex(i, resp[i])
		}
		return arr
	}))

	api.Set("pitchTrack", export(func(args []js.Value) any {
		if engine == nil {
			return js.Global().Get("Array").New(0)
		}
		track, err := engine.PitchTrack()
		if err != nil {
			return err.Error()
		}
		arr := js.Global().Get("Array").New(len(track))
		for i, pt := range track {
			item := js.Global().Get("Object").New()
			item.Set("time", pt.Time)
			item.Set("freq", pt.Freq)
			arr.SetIndex(i, item)
		}
		return arr
	}))

	js.Global().Set("algoKick", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}

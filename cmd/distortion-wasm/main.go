//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-distortion/distortion"
)

const maxBlockFrames = 128

var (
	globalEffect *distortion.Effect
	// Planar stereo block shared with JS: left then right.
	ioBuffer []float32
	planar   [2][]float32
)

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmSetParam", js.FuncOf(wasmSetParam))
	js.Global().Set("wasmGetParam", js.FuncOf(wasmGetParam))
	js.Global().Set("wasmParamText", js.FuncOf(wasmParamText))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetState", js.FuncOf(wasmGetState))
	js.Global().Set("wasmSetState", js.FuncOf(wasmSetState))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM distortion module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Float()

	fx, err := distortion.NewEffect()
	if err != nil {
		println("Failed to create effect:", err.Error())
		return nil
	}
	fx.Prepare(sampleRate, maxBlockFrames)
	globalEffect = fx

	ioBuffer = make([]float32, maxBlockFrames*2)
	planar[0] = ioBuffer[:maxBlockFrames]
	planar[1] = ioBuffer[maxBlockFrames:]

	println("Distortion initialized at", int(sampleRate), "Hz")
	return js.ValueOf(uintptr(unsafe.Pointer(&ioBuffer[0])))
}

func wasmSetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalEffect == nil {
		return nil
	}
	globalEffect.Params().Set(distortion.ParamID(args[0].Int()), args[1].Float())
	return nil
}

func wasmGetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalEffect == nil {
		return -1
	}
	return globalEffect.Params().Get(distortion.ParamID(args[0].Int()))
}

func wasmParamText(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalEffect == nil {
		return ""
	}
	return globalEffect.Params().DisplayText(distortion.ParamID(args[0].Int()))
}

// wasmProcessBlock processes numFrames of the shared buffer in place. JS
// writes the input to the buffer returned by wasmInit before calling.
func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalEffect == nil {
		return 0
	}

	numFrames := args[0].Int()
	if numFrames > maxBlockFrames {
		numFrames = maxBlockFrames
	}
	if numFrames < 0 {
		numFrames = 0
	}
	numChannels := 2
	if len(args) > 1 {
		numChannels = args[1].Int()
	}
	if numChannels < 1 || numChannels > 2 {
		numChannels = 2
	}

	block := [][]float32{planar[0][:numFrames], planar[1][:numFrames]}
	globalEffect.Process(block[:numChannels], numChannels, numChannels)

	ptr := &ioBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetState(this js.Value, args []js.Value) interface{} {
	if globalEffect == nil {
		return nil
	}
	b, err := globalEffect.State()
	if err != nil {
		println("Failed to save state:", err.Error())
		return nil
	}
	return string(b)
}

func wasmSetState(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalEffect == nil {
		return false
	}
	if err := globalEffect.SetState([]byte(args[0].String())); err != nil {
		println("Failed to restore state:", err.Error())
		return false
	}
	return true
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}

//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/voxelsplace/ppmconv/api"
)

func toJSBytes(b []byte) js.Value {
	uint8arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(uint8arr, b)
	return uint8arr
}

func fromJSBytes(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func ppm2image(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("usage: ppm2image(ppmBytes, targetExt)")
	}
	out, err := api.PPMToImage(fromJSBytes(args[0]), args[1].String())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJSBytes(out)
}

func image2ppm(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return js.ValueOf("usage: image2ppm(imageBytes, sourceExt, 'P3'|'P6')")
	}
	out, err := api.ImageToPPM(fromJSBytes(args[0]), args[1].String(), args[2].String())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJSBytes(out)
}

func ppminfo(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing ppm bytes")
	}
	info, err := api.PPMInfo(fromJSBytes(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	result.Set("format", info.Variant.String())
	result.Set("width", int(info.Width))
	result.Set("height", int(info.Height))
	result.Set("maxColorValue", int(info.MaxColorValue))
	result.Set("xxhash", fmt.Sprintf("%016x", info.Sum64))
	return result
}

func main() {
	js.Global().Set("ppm2image", js.FuncOf(ppm2image))
	js.Global().Set("image2ppm", js.FuncOf(image2ppm))
	js.Global().Set("ppminfo", js.FuncOf(ppminfo))
	select {}
}

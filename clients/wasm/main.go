//go:build js && wasm

// stencilsteg WASM - Client-side encoder and decoder.
// Compiled with: GOOS=js GOARCH=wasm go build -o stencilsteg.wasm ./clients/wasm/
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall/js"

	"github.com/xob0t/stencilsteg/pkg/generator"
	"github.com/xob0t/stencilsteg/pkg/pipeline"
)

// In-memory font store; the browser has no filesystem to load fonts from.
var (
	fontsMu sync.RWMutex
	fonts   = make(map[string][]byte)
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

func main() {
	fmt.Println("stencilsteg WASM loaded")

	js.Global().Set("goEncode", js.FuncOf(encode))
	js.Global().Set("goDecode", js.FuncOf(decode))
	js.Global().Set("goCover", js.FuncOf(cover))
	js.Global().Set("goRegisterFont", js.FuncOf(registerFont))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// goRegisterFont(id, base64TTF) - store a font for goEncode's fontID.
func registerFont(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("error: need id, base64TTF")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}

	fontsMu.Lock()
	fonts[args[0].String()] = data
	fontsMu.Unlock()
	return js.ValueOf("ok")
}

// goEncode(carrierB64, message[, fontID]) - hide message, return base64 PNG.
func encode(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("error: need carrierB64, message")
	}
	carrier, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}

	opts := pipeline.EncodeOptions{Logger: logger}
	if len(args) > 2 && args[2].Truthy() {
		fontsMu.RLock()
		data, ok := fonts[args[2].String()]
		fontsMu.RUnlock()
		if !ok {
			return js.ValueOf("error: unknown font " + args[2].String())
		}
		opts.Raster.FontData = data
	}

	out, err := pipeline.EncodeBytes(context.Background(), carrier, args[1].String(), opts)
	if err != nil {
		return js.ValueOf("error: encode: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(out))
}

// goDecode(encodedB64) - recover the stencil, return base64 PNG.
func decode(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("error: need encodedB64")
	}
	encoded, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}

	out, err := pipeline.DecodeBytes(context.Background(), encoded, 0, logger)
	if err != nil {
		return js.ValueOf("error: decode: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(out))
}

// goCover(width, height, color, noise) - generate a carrier, return base64 PNG.
func cover(_ js.Value, args []js.Value) any {
	if len(args) < 4 {
		return js.ValueOf("error: need width, height, color, noise")
	}
	cfg := generator.Config{
		Width:  args[0].Int(),
		Height: args[1].Int(),
		Color:  args[2].String(),
		Noise:  args[3].Int(),
	}

	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, ".png", cfg); err != nil {
		return js.ValueOf("error: generate cover: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

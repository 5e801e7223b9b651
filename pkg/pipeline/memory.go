package pipeline

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/xob0t/stencilsteg/pkg/imageio"
	"github.com/xob0t/stencilsteg/pkg/lsb"
)

// EncodeBytes is EncodeImage over encoded image data. The carrier may be any
// readable format; the result is PNG.
func EncodeBytes(ctx context.Context, carrier []byte, message string, opts EncodeOptions) ([]byte, error) {
	img, _, err := imageio.Decode(bytes.NewReader(carrier))
	if err != nil {
		return nil, err
	}
	out, err := EncodeImage(ctx, img, message, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, ".png", out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBytes extracts the stencil from encoded image data and returns it
// as a 1-bit PNG.
func DecodeBytes(ctx context.Context, encoded []byte, workers int, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	img, format, err := imageio.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	if format == "jpeg" {
		logger.Warn("input is JPEG, hidden bits are unlikely to have survived")
	}

	st, err := lsb.Extract(ctx, img, lsb.Options{Workers: workers})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, ".png", st.Paletted()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package pipeline runs the file-level stencilsteg operations: it loads
// images, hands them to the rasterizer and the lsb codec, and writes the
// result.
//
// No operation leaves an output file behind when it fails.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/xob0t/stencilsteg/pkg/config"
	"github.com/xob0t/stencilsteg/pkg/imageio"
	"github.com/xob0t/stencilsteg/pkg/lsb"
	"github.com/xob0t/stencilsteg/pkg/stencil"
)

// EncodeOptions configures EncodeImage.
type EncodeOptions struct {
	Raster stencil.RasterOptions
	// Canvas is the stencil size. The zero value uses the carrier size; any
	// other size must equal it.
	Canvas  image.Point
	Rule    stencil.Rule
	Workers int
	Logger  *slog.Logger
}

// EncodeImage renders message into a stencil the size of carrier and embeds
// it.
func EncodeImage(ctx context.Context, carrier image.Image, message string, opts EncodeOptions) (*image.NRGBA, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	size := carrier.Bounds().Size()
	if opts.Canvas != (image.Point{}) && opts.Canvas != size {
		return nil, &lsb.DimensionError{Carrier: size, Stencil: opts.Canvas}
	}

	raster := opts.Raster
	if raster.Logger == nil {
		raster.Logger = logger
	}
	r, err := stencil.NewRasterizer(raster)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	st, err := r.Rasterize(message, size.X, size.Y)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	lines, visible := len(r.Lines(message)), r.VisibleLines(size.Y)
	if lines > visible {
		logger.Warn("message does not fit, lines clipped", "lines", lines, "visible", visible)
	}
	logger.Debug("rasterized message",
		"width", size.X, "height", size.Y, "lines", lines,
		"white", st.CountWhite(), "elapsed", time.Since(start))

	start = time.Now()
	out, err := lsb.Embed(ctx, carrier, st, lsb.Options{Rule: opts.Rule, Workers: opts.Workers})
	if err != nil {
		return nil, err
	}
	logger.Debug("embedded stencil", "elapsed", time.Since(start))
	return out, nil
}

// Encode loads cfg.Encode.Carrier, hides the configured message and writes
// cfg.Encode.Output.
func Encode(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Encode.Carrier == "" {
		return fmt.Errorf("%w: no carrier image given", config.ErrInvalidConfig)
	}
	if cfg.Encode.Output == "" {
		return fmt.Errorf("%w: no output path given", config.ErrInvalidConfig)
	}
	if err := imageio.CheckOutput(cfg.Encode.Output); err != nil {
		return err
	}

	message, err := cfg.Message()
	if err != nil {
		return err
	}

	carrier, format, err := imageio.Load(cfg.Encode.Carrier)
	if err != nil {
		return err
	}
	size := carrier.Bounds().Size()
	logger.Info("loaded carrier", "path", cfg.Encode.Carrier, "format", format,
		"width", size.X, "height", size.Y)

	out, err := EncodeImage(ctx, carrier, message, EncodeOptions{
		Raster:  cfg.RasterOptions(logger),
		Canvas:  image.Pt(cfg.Canvas.Width, cfg.Canvas.Height),
		Rule:    cfg.Rule(),
		Workers: cfg.Workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if err := imageio.Save(cfg.Encode.Output, out); err != nil {
		return err
	}
	logger.Info("wrote encoded image", "path", cfg.Encode.Output)
	return nil
}

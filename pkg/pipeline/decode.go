package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xob0t/stencilsteg/pkg/config"
	"github.com/xob0t/stencilsteg/pkg/generator"
	"github.com/xob0t/stencilsteg/pkg/imageio"
	"github.com/xob0t/stencilsteg/pkg/lsb"
)

// Decode extracts the stencil from cfg.Decode.Input and writes it to
// cfg.Decode.Output as a 1-bit image.
func Decode(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Decode.Input == "" {
		return fmt.Errorf("%w: no input image given", config.ErrInvalidConfig)
	}
	if cfg.Decode.Output == "" {
		return fmt.Errorf("%w: no output path given", config.ErrInvalidConfig)
	}
	if err := imageio.CheckOutput(cfg.Decode.Output); err != nil {
		return err
	}

	img, format, err := imageio.Load(cfg.Decode.Input)
	if err != nil {
		return err
	}
	if format == "jpeg" {
		logger.Warn("input is JPEG, hidden bits are unlikely to have survived", "path", cfg.Decode.Input)
	}

	start := time.Now()
	st, err := lsb.Extract(ctx, img, lsb.Options{Workers: cfg.Workers})
	if err != nil {
		return err
	}
	logger.Debug("extracted stencil", "width", st.Width(), "height", st.Height(),
		"white", st.CountWhite(), "elapsed", time.Since(start))

	if err := imageio.Save(cfg.Decode.Output, st.Paletted()); err != nil {
		return err
	}
	logger.Info("wrote stencil", "path", cfg.Decode.Output)
	return nil
}

// Cover writes a synthetic carrier to cfg.Cover.Output.
func Cover(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Cover.Output == "" {
		return fmt.Errorf("%w: no output path given", config.ErrInvalidConfig)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := cfg.CoverOptions()
	if err := generator.Generate(cfg.Cover.Output, opts); err != nil {
		return err
	}
	logger.Info("wrote cover", "path", cfg.Cover.Output, "color", opts.Color, "noise", opts.Noise)
	return nil
}

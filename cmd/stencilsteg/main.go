// stencilsteg - Hide text as a stencil in an image's red channel.
//
// Usage:
//
//	stencilsteg encode -c <carrier> -o <out.png> -m <text> [options]
//	stencilsteg decode -i <encoded.png> -o <stencil.png>
//	stencilsteg cover -o <cover.png> [--color <hex>] [--noise <n>]
//	stencilsteg capacity -c <carrier> | --width <px> --height <px>
//	stencilsteg init [-o stencilsteg.yaml]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xob0t/stencilsteg/pkg/config"
)

// app carries state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	workers    int

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "stencilsteg",
		Short: "Hide text as a black/white stencil in an image's red channel",
		Long: `stencilsteg renders a message into a black and white stencil and stores it
in the least significant bit of every red sample of a carrier image. Decoding
reads the bits back as a viewable 1-bit image.

Output must be lossless (.png or .bmp). JPEG and GIF are refused.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default: info)")
	pf.IntVar(&a.workers, "workers", 0, "Goroutines per image (default: GOMAXPROCS)")

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newCoverCmd(a),
		newCapacityCmd(a),
		newInitCmd(a),
	)
	return root
}

// setup loads the config file and applies the persistent flags on top.
func (a *app) setup(flags *pflag.FlagSet) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("workers") {
		cfg.Workers = a.workers
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

package main

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/xob0t/stencilsteg/pkg/config"
	"github.com/xob0t/stencilsteg/pkg/imageio"
	"github.com/xob0t/stencilsteg/pkg/pipeline"
	"github.com/xob0t/stencilsteg/pkg/stencil"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		carrier, output   string
		message, msgFile  string
		width, height     int
		fontPath, rule    string
		fontSize          float64
		wrapWidth, margin int
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Hide a message in a carrier image",
		Example: `  stencilsteg encode -c photo.jpg -o secret.png -m "HELLO"
  stencilsteg encode -c photo.png -o secret.bmp --message-file note.txt --font goregular`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			cfg := a.cfg
			if f.Changed("carrier") {
				cfg.Encode.Carrier = carrier
			}
			if f.Changed("output") {
				cfg.Encode.Output = output
			}
			if f.Changed("message") {
				cfg.Encode.Message, cfg.Encode.MessageFile = message, ""
			}
			if f.Changed("message-file") {
				cfg.Encode.Message, cfg.Encode.MessageFile = "", msgFile
			}
			if f.Changed("width") {
				cfg.Canvas.Width = width
			}
			if f.Changed("height") {
				cfg.Canvas.Height = height
			}
			if f.Changed("font") {
				cfg.Text.Font = fontPath
			}
			if f.Changed("font-size") {
				cfg.Text.FontSize = fontSize
			}
			if f.Changed("wrap") {
				cfg.Text.WrapWidth = wrapWidth
			}
			if f.Changed("margin") {
				cfg.Text.Margin = margin
			}
			if f.Changed("rule") {
				cfg.Binarization = rule
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := pipeline.Encode(cmd.Context(), cfg, a.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %s\n", cfg.Encode.Output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&carrier, "carrier", "c", "", "Carrier image (jpeg, png, gif or bmp)")
	f.StringVarP(&output, "output", "o", "", "Output file (.png or .bmp)")
	f.StringVarP(&message, "message", "m", "", "Text to hide")
	f.StringVar(&msgFile, "message-file", "", "Read the text to hide from a file")
	f.IntVar(&width, "width", 0, "Stencil width; must equal the carrier width")
	f.IntVar(&height, "height", 0, "Stencil height; must equal the carrier height")
	f.StringVar(&fontPath, "font", "", "Font: empty for the 7x13 bitmap face, goregular, or a .ttf path")
	f.Float64Var(&fontSize, "font-size", stencil.DefaultFontSize, "Font size in points (outline fonts only)")
	f.IntVar(&wrapWidth, "wrap", stencil.DefaultWrapWidth, "Characters per line")
	f.IntVar(&margin, "margin", stencil.DefaultMargin, "Left and top margin in pixels")
	f.StringVar(&rule, "rule", stencil.RuleThreshold.String(), "Binarization rule: threshold, exact or strict")
	cmd.MarkFlagsMutuallyExclusive("message", "message-file")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:     "decode",
		Short:   "Recover the stencil from an encoded image",
		Example: `  stencilsteg decode -i secret.png -o stencil.png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			cfg := a.cfg
			if f.Changed("input") {
				cfg.Decode.Input = input
			}
			if f.Changed("output") {
				cfg.Decode.Output = output
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := pipeline.Decode(cmd.Context(), cfg, a.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %s\n", cfg.Decode.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Encoded image")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Stencil output (.png or .bmp)")
	return cmd
}

func newCoverCmd(a *app) *cobra.Command {
	var (
		output        string
		width, height int
		color         string
		noise         int
		seed          uint64
	)

	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Generate a synthetic carrier image",
		Example: `  stencilsteg cover -o cover.png
  stencilsteg cover -o cover.bmp --color "#336699" --noise 12 --width 1920 --height 1080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			cfg := a.cfg
			if f.Changed("output") {
				cfg.Cover.Output = output
			}
			if f.Changed("width") {
				cfg.Cover.Width = width
			}
			if f.Changed("height") {
				cfg.Cover.Height = height
			}
			if f.Changed("color") {
				cfg.Cover.Color = color
			}
			if f.Changed("noise") {
				cfg.Cover.Noise = noise
			}
			if f.Changed("seed") {
				cfg.Cover.Seed = seed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generating: %s\n", cfg.Cover.Output)
			if err := pipeline.Cover(cmd.Context(), cfg, a.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %s\n", cfg.Cover.Output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "Output file (.png or .bmp)")
	f.IntVar(&width, "width", 1280, "Width in pixels")
	f.IntVar(&height, "height", 720, "Height in pixels")
	f.StringVar(&color, "color", "random", "Background color: hex or 'random'")
	f.IntVar(&noise, "noise", 8, "Per-channel noise amplitude, 0-255")
	f.Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	return cmd
}

func newCapacityCmd(a *app) *cobra.Command {
	var (
		carrier       string
		width, height int
		message       string
	)

	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Report how many text lines fit on a carrier",
		Example: `  stencilsteg capacity -c photo.jpg
  stencilsteg capacity --width 100 --height 50 -m "does this fit?"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			size := image.Pt(width, height)
			if carrier != "" {
				img, _, err := imageio.Load(carrier)
				if err != nil {
					return err
				}
				size = img.Bounds().Size()
			}
			if size.X <= 0 || size.Y <= 0 {
				return errors.New("give a carrier (-c) or --width and --height")
			}

			r, err := stencil.NewRasterizer(a.cfg.RasterOptions(a.logger))
			if err != nil {
				return err
			}
			visible := r.VisibleLines(size.Y)
			fmt.Fprintf(cmd.OutOrStdout(), "Canvas:  %dx%d\n", size.X, size.Y)
			fmt.Fprintf(cmd.OutOrStdout(), "Lines:   %d of %d characters\n", visible, a.cfg.Text.WrapWidth)
			if cmd.Flags().Changed("message") {
				lines := len(r.Lines(message))
				fmt.Fprintf(cmd.OutOrStdout(), "Message: %d lines", lines)
				if lines > visible {
					fmt.Fprintf(cmd.OutOrStdout(), " (%d clipped)", lines-visible)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&carrier, "carrier", "c", "", "Carrier image to measure")
	f.IntVar(&width, "width", 0, "Canvas width")
	f.IntVar(&height, "height", 0, "Canvas height")
	f.StringVarP(&message, "message", "m", "", "Message to check against the capacity")
	cmd.MarkFlagsMutuallyExclusive("carrier", "width")
	cmd.MarkFlagsMutuallyExclusive("carrier", "height")
	return cmd
}

func newInitCmd(_ *app) *cobra.Command {
	var output string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				}
			}
			if err := os.WriteFile(output, []byte(config.Example()), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", output)
			fmt.Fprintf(cmd.OutOrStdout(), "Run: stencilsteg encode --config %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "stencilsteg.yaml", "Output path for the sample config")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

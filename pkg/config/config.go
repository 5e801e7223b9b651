// Package config loads the stencilsteg YAML configuration.
//
// Every field is optional. Zero values select the built-in defaults, and
// command-line flags override whatever the file sets.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xob0t/stencilsteg/pkg/generator"
	"github.com/xob0t/stencilsteg/pkg/imageio"
	"github.com/xob0t/stencilsteg/pkg/stencil"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level configuration document.
type Config struct {
	Encode       EncodeConfig `yaml:"encode"`
	Decode       DecodeConfig `yaml:"decode"`
	Cover        CoverConfig  `yaml:"cover"`
	Canvas       CanvasConfig `yaml:"canvas"`
	Text         TextConfig   `yaml:"text"`
	Binarization string       `yaml:"binarization"`
	Workers      int          `yaml:"workers"`
	LogLevel     string       `yaml:"log_level"`
}

// EncodeConfig names the inputs and output of an encode run.
type EncodeConfig struct {
	Carrier     string `yaml:"carrier"`
	Output      string `yaml:"output"`
	Message     string `yaml:"message"`
	MessageFile string `yaml:"message_file"`
}

// DecodeConfig names the input and output of a decode run.
type DecodeConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// CoverConfig controls synthetic carrier generation.
type CoverConfig struct {
	Output string `yaml:"output"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Color  string `yaml:"color"`
	Noise  int    `yaml:"noise"`
	Seed   uint64 `yaml:"seed"`
}

// CanvasConfig fixes the stencil size. Zero means "use the carrier size".
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TextConfig tunes the rasterizer.
type TextConfig struct {
	WrapWidth int     `yaml:"wrap_width"`
	Margin    int     `yaml:"margin"`
	LinePitch int     `yaml:"line_pitch"`
	Font      string  `yaml:"font"`
	FontSize  float64 `yaml:"font_size"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Cover: CoverConfig{
			Width:  1280,
			Height: 720,
			Color:  "random",
			Noise:  8,
		},
		Text: TextConfig{
			WrapWidth: stencil.DefaultWrapWidth,
			Margin:    stencil.DefaultMargin,
			LinePitch: stencil.DefaultLinePitch,
			FontSize:  stencil.DefaultFontSize,
		},
		Binarization: stencil.RuleThreshold.String(),
		LogLevel:     "info",
	}
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse YAML: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Canvas.Width < 0 || c.Canvas.Height < 0 {
		bad("canvas size %dx%d is negative", c.Canvas.Width, c.Canvas.Height)
	}
	if (c.Canvas.Width == 0) != (c.Canvas.Height == 0) {
		bad("canvas width and height must both be set or both be 0")
	}
	if c.Text.WrapWidth < 0 {
		bad("text.wrap_width %d is negative", c.Text.WrapWidth)
	}
	if c.Text.Margin < 0 {
		bad("text.margin %d is negative", c.Text.Margin)
	}
	if c.Text.LinePitch < 0 {
		bad("text.line_pitch %d is negative", c.Text.LinePitch)
	}
	if c.Text.FontSize < 0 {
		bad("text.font_size %g is negative", c.Text.FontSize)
	}
	if _, err := stencil.ParseRule(c.Binarization); err != nil {
		bad("binarization: %v", err)
	}
	if c.Workers < 0 {
		bad("workers %d is negative", c.Workers)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		bad("log_level: %v", err)
	}
	if c.Encode.Message != "" && c.Encode.MessageFile != "" {
		bad("encode.message and encode.message_file are mutually exclusive")
	}
	for key, path := range map[string]string{
		"encode.output": c.Encode.Output,
		"decode.output": c.Decode.Output,
		"cover.output":  c.Cover.Output,
	} {
		if path == "" {
			continue
		}
		if err := imageio.CheckOutput(path); err != nil {
			bad("%s: %v", key, err)
		}
	}
	if c.Cover.Width < 0 || c.Cover.Height < 0 {
		bad("cover size %dx%d is negative", c.Cover.Width, c.Cover.Height)
	}
	if c.Cover.Noise < 0 || c.Cover.Noise > 255 {
		bad("cover.noise %d is outside 0-255", c.Cover.Noise)
	}
	if !generator.IsRandom(c.Cover.Color) {
		if _, _, _, err := generator.ParseColor(c.Cover.Color); err != nil {
			bad("cover.color: %v", err)
		}
	}

	return errors.Join(errs...)
}

// Message returns the text to hide: encode.message, or the contents of
// encode.message_file when that is set.
func (c *Config) Message() (string, error) {
	if c.Encode.MessageFile == "" {
		return c.Encode.Message, nil
	}
	data, err := os.ReadFile(c.Encode.MessageFile)
	if err != nil {
		return "", fmt.Errorf("read message file: %w", err)
	}
	return string(data), nil
}

// Rule returns the parsed binarization rule.
func (c *Config) Rule() stencil.Rule {
	r, _ := stencil.ParseRule(c.Binarization)
	return r
}

// RasterOptions maps the text section onto rasterizer options.
func (c *Config) RasterOptions(logger *slog.Logger) stencil.RasterOptions {
	return stencil.RasterOptions{
		WrapWidth: c.Text.WrapWidth,
		Margin:    c.Text.Margin,
		LinePitch: c.Text.LinePitch,
		Font:      c.Text.Font,
		FontSize:  c.Text.FontSize,
		Logger:    logger,
	}
}

// CoverOptions maps the cover section onto generator options.
func (c *Config) CoverOptions() generator.Config {
	return generator.Config{
		Width:  c.Cover.Width,
		Height: c.Cover.Height,
		Color:  c.Cover.Color,
		Noise:  c.Cover.Noise,
		Seed:   c.Cover.Seed,
	}
}

// ParseLevel maps a log level name onto slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// Example returns a commented sample configuration for stencilsteg init.
func Example() string {
	return `# stencilsteg configuration
encode:
  carrier: carrier.jpg
  output: encoded.png        # .png or .bmp only
  message: "HELLO"
  message_file: ""           # read the message from a file instead

decode:
  input: encoded.png
  output: stencil.png

cover:
  output: cover.png
  width: 1280
  height: 720
  color: random              # "#rrggbb" or random
  noise: 8                   # per-channel deviation, 0-255
  seed: 0                    # 0 picks a fresh seed

canvas:
  width: 0                   # 0 uses the carrier size
  height: 0

text:
  wrap_width: 60             # characters per line
  margin: 10                 # left and top margin in pixels
  line_pitch: 10             # pixels between line tops
  font: ""                   # empty: built-in 7x13 face; goregular or a .ttf path
  font_size: 12              # points, outline fonts only

binarization: threshold      # threshold | exact | strict
workers: 0                   # 0 uses GOMAXPROCS
log_level: info              # debug | info | warn | error
`
}

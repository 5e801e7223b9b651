package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xob0t/stencilsteg/pkg/stencil"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, stencil.RuleThreshold, cfg.Rule())
	assert.Equal(t, 60, cfg.Text.WrapWidth)
	assert.Equal(t, 10, cfg.Text.Margin)
	assert.Equal(t, 10, cfg.Text.LinePitch)
	assert.Equal(t, 1280, cfg.Cover.Width)
	assert.Equal(t, 720, cfg.Cover.Height)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
encode:
  carrier: in.jpg
  output: out.bmp
  message: HELLO
canvas: {width: 100, height: 50}
text:
  wrap_width: 20
binarization: strict
workers: 3
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, "in.jpg", cfg.Encode.Carrier)
	assert.Equal(t, "out.bmp", cfg.Encode.Output)
	assert.Equal(t, 100, cfg.Canvas.Width)
	assert.Equal(t, 20, cfg.Text.WrapWidth)
	assert.Equal(t, 10, cfg.Text.Margin, "unset keys keep defaults")
	assert.Equal(t, stencil.RuleStrict, cfg.Rule())
	assert.Equal(t, 3, cfg.Workers)

	msg, err := cfg.Message()
	require.NoError(t, err)
	assert.Equal(t, "HELLO", msg)

	opts := cfg.RasterOptions(slog.Default())
	assert.Equal(t, 20, opts.WrapWidth)
	assert.Equal(t, float64(12), opts.FontSize)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "bogus: 1\n",
		"bad yaml":         "encode: [\n",
		"negative canvas":  "canvas: {width: -1, height: 5}\n",
		"half canvas":      "canvas: {width: 10}\n",
		"negative wrap":    "text: {wrap_width: -3}\n",
		"bad rule":         "binarization: fuzzy\n",
		"negative workers": "workers: -2\n",
		"bad level":        "log_level: loud\n",
		"lossy output":     "encode: {output: out.jpg}\n",
		"unknown output":   "decode: {output: out.tiff}\n",
		"both messages":    "encode: {message: a, message_file: b.txt}\n",
		"bad color":        "cover: {color: teal}\n",
		"noise range":      "cover: {noise: 300}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Workers = -1
	cfg.Binarization = "nope"
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "binarization")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stencilsteg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(Example()), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "carrier.jpg", cfg.Encode.Carrier)
	assert.Equal(t, "stencil.png", cfg.Decode.Output)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExampleRoundTrips(t *testing.T) {
	cfg, err := Parse([]byte(Example()))
	require.NoError(t, err)

	want := Default()
	want.Encode = EncodeConfig{Carrier: "carrier.jpg", Output: "encoded.png", Message: "HELLO"}
	want.Decode = DecodeConfig{Input: "encoded.png", Output: "stencil.png"}
	want.Cover.Output = "cover.png"
	assert.Equal(t, want, cfg)
}

func TestMessageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.txt")
	require.NoError(t, os.WriteFile(path, []byte("from a file"), 0o644))

	cfg := Default()
	cfg.Encode.MessageFile = path
	msg, err := cfg.Message()
	require.NoError(t, err)
	assert.Equal(t, "from a file", msg)

	cfg.Encode.MessageFile = path + ".missing"
	_, err = cfg.Message()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

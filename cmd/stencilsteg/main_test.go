package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xob0t/stencilsteg/pkg/config"
	"github.com/xob0t/stencilsteg/pkg/imageio"
	"github.com/xob0t/stencilsteg/pkg/lsb"
	"github.com/xob0t/stencilsteg/pkg/stencil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCoverEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	cover := filepath.Join(dir, "cover.png")
	encoded := filepath.Join(dir, "secret.png")
	decoded := filepath.Join(dir, "stencil.png")

	out, err := run(t, "cover", "-o", cover, "--width", "120", "--height", "60", "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Done: "+cover)

	_, err = run(t, "encode", "-c", cover, "-o", encoded, "-m", "HELLO")
	require.NoError(t, err)

	_, err = run(t, "decode", "-i", encoded, "-o", decoded)
	require.NoError(t, err)

	img, _, err := imageio.Load(decoded)
	require.NoError(t, err)
	got, err := stencil.FromImage(context.Background(), img, stencil.RuleStrict, 0)
	require.NoError(t, err)
	want, err := stencil.Rasterize("HELLO", 120, 60)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestEncodeFromConfigWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	cover := filepath.Join(dir, "cover.bmp")
	_, err := run(t, "cover", "-o", cover, "--width", "80", "--height", "40", "--seed", "1")
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "stencilsteg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"encode:\n  carrier: "+cover+"\n  output: "+filepath.Join(dir, "from-config.png")+"\n  message: FILE\n",
	), 0o644))

	override := filepath.Join(dir, "override.png")
	_, err = run(t, "--config", cfgPath, "encode", "-o", override, "-m", "FLAG")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "from-config.png"))

	img, _, err := imageio.Load(override)
	require.NoError(t, err)
	got, err := lsb.Extract(context.Background(), img, lsb.Options{})
	require.NoError(t, err)
	want, err := stencil.Rasterize("FLAG", 80, 40)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestEncodeErrors(t *testing.T) {
	dir := t.TempDir()
	cover := filepath.Join(dir, "cover.png")
	_, err := run(t, "cover", "-o", cover, "--width", "20", "--height", "20", "--seed", "2")
	require.NoError(t, err)

	_, err = run(t, "encode", "-c", cover, "-o", filepath.Join(dir, "out.jpg"), "-m", "x")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = run(t, "encode", "-c", cover, "-o", filepath.Join(dir, "out.png"), "--width", "21", "--height", "20")
	assert.ErrorIs(t, err, lsb.ErrDimensionMismatch)
	assert.NoFileExists(t, filepath.Join(dir, "out.png"))

	_, err = run(t, "encode", "-c", cover, "-o", filepath.Join(dir, "out.png"), "--rule", "fuzzy")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = run(t, "encode", "-m", "a", "--message-file", "b")
	assert.Error(t, err)

	_, err = run(t, "--config", filepath.Join(dir, "missing.yaml"), "encode")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCapacity(t *testing.T) {
	out, err := run(t, "capacity", "--width", "100", "--height", "35",
		"-m", "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen")
	require.NoError(t, err)
	assert.Contains(t, out, "Canvas:  100x35")
	assert.Contains(t, out, "Lines:   3 of 60 characters")
	assert.Contains(t, out, "Message: 2 lines")
	assert.NotContains(t, out, "clipped")

	_, err = run(t, "capacity")
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stencilsteg.yaml")
	out, err := run(t, "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created: "+path)

	_, err = config.Load(path)
	require.NoError(t, err)

	_, err = run(t, "init", "-o", path)
	assert.Error(t, err, "refuses to overwrite")
	_, err = run(t, "init", "-o", path, "--force")
	assert.NoError(t, err)
}

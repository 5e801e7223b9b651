package lsb

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xob0t/stencilsteg/internal/pixels"
	"github.com/xob0t/stencilsteg/pkg/stencil"
)

func noisyCarrier(w, h int, seed uint64) *image.NRGBA {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.UintN(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

func randomStencil(w, h int, seed uint64) *stencil.Bitmap {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	bm := stencil.New(w, h)
	for y := range h {
		for x := range w {
			bm.SetWhite(x, y, rng.IntN(2) == 1)
		}
	}
	return bm
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	gray := image.NewGray(image.Rect(0, 0, 40, 30))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i * 7)
	}
	ycc := image.NewYCbCr(image.Rect(0, 0, 40, 30), image.YCbCrSubsampleRatio420)
	for i := range ycc.Y {
		ycc.Y[i] = uint8(i * 13)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, 40, 30))
	copy(rgba.Pix, noisyCarrier(40, 30, 9).Pix)

	carriers := map[string]image.Image{
		"nrgba": noisyCarrier(40, 30, 1),
		"rgba":  rgba,
		"gray":  gray,
		"ycbcr": ycc,
		"sub":   noisyCarrier(60, 50, 2).SubImage(image.Rect(10, 15, 50, 45)),
	}
	for name, carrier := range carriers {
		t.Run(name, func(t *testing.T) {
			for seed := range uint64(4) {
				st := randomStencil(40, 30, seed)
				enc, err := Embed(ctx, carrier, st, Options{})
				require.NoError(t, err)
				got, err := Extract(ctx, enc, Options{})
				require.NoError(t, err)
				assert.True(t, st.Equal(got), "seed %d", seed)
			}
		})
	}
}

func TestEmbedOnlyTouchesRedLSB(t *testing.T) {
	carrier := noisyCarrier(64, 48, 3)
	before := bytes.Clone(carrier.Pix)
	st := randomStencil(64, 48, 5)

	enc, err := Embed(context.Background(), carrier, st, Options{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, before, carrier.Pix, "carrier must not be mutated")

	for y := range 48 {
		in, out := pixels.Row(carrier, y), pixels.Row(enc, y)
		for x := range 64 {
			i := x * 4
			require.Equal(t, in[i]>>1, out[i]>>1, "upper red bits at (%d,%d)", x, y)
			require.Equal(t, in[i+1], out[i+1], "green at (%d,%d)", x, y)
			require.Equal(t, in[i+2], out[i+2], "blue at (%d,%d)", x, y)

			diff := int(in[i]) - int(out[i])
			require.LessOrEqual(t, max(diff, -diff), 1)

			want := uint8(0)
			if st.WhiteAt(x, y) {
				want = 1
			}
			require.Equal(t, want, out[i]&1, "red LSB at (%d,%d)", x, y)
		}
	}
}

func TestEmbedDropsAlpha(t *testing.T) {
	carrier := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	carrier.SetNRGBA(0, 0, color.NRGBA{201, 10, 20, 0})
	carrier.SetNRGBA(1, 0, color.NRGBA{100, 30, 40, 128})

	st := stencil.New(2, 1)
	st.SetWhite(1, 0, true)

	enc, err := Embed(context.Background(), carrier, st, Options{})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{200, 10, 20, 0xff}, enc.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{101, 30, 40, 0xff}, enc.NRGBAAt(1, 0))
	assert.True(t, enc.Opaque())
}

func TestEmbedDimensionMismatch(t *testing.T) {
	enc, err := Embed(context.Background(), noisyCarrier(10, 10, 1), stencil.New(10, 11), Options{})
	assert.Nil(t, enc)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	var de *DimensionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, image.Pt(10, 10), de.Carrier)
	assert.Equal(t, image.Pt(10, 11), de.Stencil)
}

func TestEmbedClassifiesPlainImages(t *testing.T) {
	st := image.NewGray(image.Rect(0, 0, 4, 1))
	copy(st.Pix, []uint8{0, 127, 128, 255})
	carrier := noisyCarrier(4, 1, 7)

	for rule, want := range map[stencil.Rule][]uint8{
		stencil.RuleThreshold:  {0, 0, 1, 1},
		stencil.RuleExactWhite: {0, 0, 0, 1},
	} {
		enc, err := Embed(context.Background(), carrier, st, Options{Rule: rule})
		require.NoError(t, err, rule)
		got, err := Extract(context.Background(), enc, Options{})
		require.NoError(t, err)
		assert.Equal(t, want, got.Row(0), rule.String())
	}

	_, err := Embed(context.Background(), carrier, st, Options{Rule: stencil.RuleStrict})
	assert.ErrorIs(t, err, stencil.ErrUnclassifiedPixel)
}

func TestExtractIsBinaryAndDeterministic(t *testing.T) {
	img := noisyCarrier(33, 17, 11)
	a, err := Extract(context.Background(), img, Options{})
	require.NoError(t, err)
	b, err := Extract(context.Background(), img, Options{Workers: 1})
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	black, white := stencil.Palette[0], stencil.Palette[1]
	for y := range 17 {
		for x := range 33 {
			c := a.At(x, y)
			require.True(t, c == black || c == white, "pixel (%d,%d) = %v", x, y, c)
			require.Equal(t, img.Pix[img.PixOffset(x, y)]&1 == 1, a.WhiteAt(x, y))
		}
	}
}

func TestEmptyMessageClearsEveryRedLSB(t *testing.T) {
	st, err := stencil.Rasterize("", 50, 20)
	require.NoError(t, err)

	enc, err := Embed(context.Background(), noisyCarrier(50, 20, 4), st, Options{})
	require.NoError(t, err)
	for i := 0; i < len(enc.Pix); i += 4 {
		require.Zero(t, enc.Pix[i]&1, "offset %d", i)
	}
}

func TestHelloScenario(t *testing.T) {
	ctx := context.Background()
	want, err := stencil.Rasterize("HELLO", 100, 50)
	require.NoError(t, err)

	enc, err := Embed(ctx, noisyCarrier(100, 50, 42), want, Options{})
	require.NoError(t, err)
	got, err := Extract(ctx, enc, Options{})
	require.NoError(t, err)

	again, err := stencil.Rasterize("HELLO", 100, 50)
	require.NoError(t, err)
	assert.True(t, got.Equal(again))
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Embed(ctx, noisyCarrier(8, 8, 1), stencil.New(8, 8), Options{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = Extract(ctx, noisyCarrier(8, 8, 1), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkEmbed(b *testing.B) {
	carrier := noisyCarrier(1920, 1080, 1)
	st := randomStencil(1920, 1080, 2)
	ctx := context.Background()
	b.ResetTimer()
	for b.Loop() {
		if _, err := Embed(ctx, carrier, st, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtract(b *testing.B) {
	img := noisyCarrier(1920, 1080, 1)
	ctx := context.Background()
	b.ResetTimer()
	for b.Loop() {
		if _, err := Extract(ctx, img, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGaussianPreservesFlatColor(t *testing.T) {
	src := NewLayer(32, 32)
	FillColor(src, color.NRGBA{R: 120, G: 80, B: 40, A: 255})

	out := Gaussian(src, 4)
	i := 16*out.Stride + 16*4
	assert.InDelta(t, 120, int(out.Pix[i]), 2)
	assert.InDelta(t, 80, int(out.Pix[i+1]), 2)
	assert.InDelta(t, 40, int(out.Pix[i+2]), 2)
	assert.InDelta(t, 255, int(out.Pix[i+3]), 1)
}

func TestGaussianZeroRadiusCopies(t *testing.T) {
	src := NewLayer(8, 8)
	FillColor(src, color.NRGBA{G: 9, A: 200})
	out := Gaussian(src, 0)
	assert.Equal(t, src.Pix, out.Pix)
	// A copy, not the same buffer.
	out.Pix[0] = 77
	assert.NotEqual(t, src.Pix[0], out.Pix[0])
}

func TestGaussianKeepsNonPremultipliedChannels(t *testing.T) {
	// Convolution works in premultiplied space; the result must come back
	// unpremultiplied. A uniform semi-transparent layer keeps its stored
	// color values, not the alpha-scaled ones.
	src := NewLayer(32, 32)
	FillColor(src, color.NRGBA{R: 200, G: 100, B: 50, A: 100})

	out := Gaussian(src, 3)
	i := 16*out.Stride + 16*4
	assert.InDelta(t, 200, int(out.Pix[i]), 3)
	assert.InDelta(t, 100, int(out.Pix[i+1]), 3)
	assert.InDelta(t, 50, int(out.Pix[i+2]), 3)
	assert.InDelta(t, 100, int(out.Pix[i+3]), 2)
}

func TestBlurAlphaSpreads(t *testing.T) {
	src := NewLayer(21, 21)
	src.Pix[10*src.Stride+10*4+3] = 255

	out := BlurAlpha(src, 4)

	center := out.Pix[10*out.Stride+10*4+3]
	near := out.Pix[10*out.Stride+12*4+3]
	far := out.Pix[10*out.Stride+20*4+3]
	assert.Greater(t, center, near, "alpha decays with distance")
	assert.Greater(t, near, far)
	assert.Zero(t, far, "beyond the kernel reach")

	// RGB comes back white everywhere, ready for tinting.
	assert.Equal(t, uint8(255), out.Pix[0])
	assert.Equal(t, uint8(255), out.Pix[1])
	assert.Equal(t, uint8(255), out.Pix[2])
}

func TestBlurAlphaFlatRegionStable(t *testing.T) {
	// A fully opaque mask stays fully opaque: clamp-to-edge sampling means
	// no alpha leaks out at the borders.
	src := NewLayer(16, 16)
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	out := BlurAlpha(src, 3)
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("alpha dropped to %d at offset %d", out.Pix[i], i)
		}
	}
}

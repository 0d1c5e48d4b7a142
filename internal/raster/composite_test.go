package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pixel(m []uint8) color.NRGBA {
	return color.NRGBA{R: m[0], G: m[1], B: m[2], A: m[3]}
}

func TestOverOpaque(t *testing.T) {
	dst := NewLayer(2, 2)
	FillColor(dst, color.NRGBA{B: 255, A: 255})
	src := NewLayer(2, 2)
	FillColor(src, color.NRGBA{R: 255, A: 255})

	Over(dst, src, 1)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, pixel(dst.Pix))
}

func TestOverZeroOpacityIsNoop(t *testing.T) {
	dst := NewLayer(2, 2)
	FillColor(dst, color.NRGBA{B: 255, A: 255})
	src := NewLayer(2, 2)
	FillColor(src, color.NRGBA{R: 255, A: 255})

	Over(dst, src, 0)
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, pixel(dst.Pix))
}

func TestOverBlendsPartialAlpha(t *testing.T) {
	dst := NewLayer(1, 1)
	FillColor(dst, color.NRGBA{A: 255})
	src := NewLayer(1, 1)
	FillColor(src, color.NRGBA{R: 255, G: 255, B: 255, A: 128})

	Over(dst, src, 1)
	got := pixel(dst.Pix)
	assert.InDelta(t, 128, int(got.R), 1)
	assert.Equal(t, uint8(255), got.A, "opaque destination stays opaque")
}

func TestOverTransparentSourceLeavesDst(t *testing.T) {
	dst := NewLayer(1, 1)
	FillColor(dst, color.NRGBA{G: 77, A: 200})
	src := NewLayer(1, 1)

	Over(dst, src, 1)
	assert.Equal(t, color.NRGBA{G: 77, A: 200}, pixel(dst.Pix))
}

func TestStencilAlpha(t *testing.T) {
	layer := NewLayer(3, 1)
	FillColor(layer, color.NRGBA{R: 10, A: 255})
	mask := NewLayer(3, 1)
	mask.Pix[0*4+3] = 255
	mask.Pix[1*4+3] = 128
	mask.Pix[2*4+3] = 0

	StencilAlpha(layer, mask)
	assert.Equal(t, uint8(255), layer.Pix[3])
	assert.Equal(t, uint8(128), layer.Pix[7])
	assert.Equal(t, uint8(0), layer.Pix[11])
	assert.Equal(t, uint8(10), layer.Pix[0], "colors untouched")
}

func TestEraseAlpha(t *testing.T) {
	layer := NewLayer(3, 1)
	FillColor(layer, color.NRGBA{R: 10, A: 255})
	mask := NewLayer(3, 1)
	mask.Pix[0*4+3] = 255
	mask.Pix[1*4+3] = 0
	mask.Pix[2*4+3] = 128

	EraseAlpha(layer, mask)
	assert.Equal(t, uint8(0), layer.Pix[3], "fully masked pixel erased")
	assert.Equal(t, uint8(255), layer.Pix[7], "unmasked pixel kept")
	assert.Equal(t, uint8(127), layer.Pix[11], "half masked")
}

func TestTintAlpha(t *testing.T) {
	layer := NewLayer(2, 1)
	layer.Pix[3] = 200 // first pixel has alpha, second does not

	TintAlpha(layer, func(x, y int) (uint8, uint8, uint8) {
		return 1, 2, 3
	})
	assert.Equal(t, []uint8{1, 2, 3, 200}, layer.Pix[0:4])
	assert.Equal(t, []uint8{0, 0, 0, 0}, layer.Pix[4:8], "transparent pixel untouched")
}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, 0.0, Smoothstep(10, 20, 5))
	assert.Equal(t, 1.0, Smoothstep(10, 20, 25))
	assert.InDelta(t, 0.5, Smoothstep(10, 20, 15), 1e-12)
	// Degenerate window is a hard step.
	assert.Equal(t, 0.0, Smoothstep(10, 10, 9))
	assert.Equal(t, 1.0, Smoothstep(10, 10, 10))
}

func TestCoverFitSize(t *testing.T) {
	src := NewLayer(100, 40)
	out := CoverFit(src, 50, 50)
	assert.Equal(t, 50, out.Rect.Dx())
	assert.Equal(t, 50, out.Rect.Dy())
}

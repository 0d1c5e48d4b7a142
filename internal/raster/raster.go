// Package raster provides the pixel-buffer primitives the render pipeline
// is built from: Gaussian blur, alpha-compositing verbs, gradients and
// cover-fit scaling. All operations work on non-premultiplied *image.NRGBA
// buffers; each function returning an image allocates a fresh buffer and
// leaves its inputs untouched.
package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// NewLayer allocates a transparent canvas of the given size.
func NewLayer(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// ToNRGBA converts any image to a non-premultiplied RGBA buffer anchored
// at the origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// CoverFit scales src to cover a w x h canvas (scale = max of the width
// and height ratios) and center-crops the overflow.
func CoverFit(src image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
}

// FillColor paints every pixel of dst with c.
func FillColor(dst *image.NRGBA, c color.NRGBA) {
	w := dst.Rect.Dx()
	h := dst.Rect.Dy()
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			row[x] = c.R
			row[x+1] = c.G
			row[x+2] = c.B
			row[x+3] = c.A
		}
	}
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Smoothstep is the Hermite ramp: 0 at or below edge0, 1 at or above
// edge1, 3t²-2t³ in between.
func Smoothstep(edge0, edge1, v float64) float64 {
	if edge1 <= edge0 {
		if v < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp01((v - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

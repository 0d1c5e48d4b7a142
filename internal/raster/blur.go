package raster

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// Gaussian returns src blurred with a separable Gaussian kernel. radius is
// the CSS-style blur radius in pixels; the Gaussian standard deviation is
// radius/2, matching the filter semantics the parameter document was
// authored against. radius <= 0 returns an unblurred copy.
func Gaussian(src *image.NRGBA, radius float64) *image.NRGBA {
	if radius <= 0 {
		return imaging.Clone(src)
	}
	sigma := radius / 2

	k := gaussianKernel1D(sigma).Normalized()

	// Two 1D passes instead of one 2D convolution. Convolution runs on
	// premultiplied RGBA, which is the correct space for blurring layers
	// with partial alpha; Clone unpremultiplies the result back to NRGBA.
	opts := convolution.Options{Bias: 0, Wrap: false, KeepAlpha: false}
	result := convolution.Convolve(src, k, &opts)
	result = convolution.Convolve(result, k.Transposed(), &opts)

	return imaging.Clone(result)
}

// gaussianKernel1D builds a 1D Gaussian kernel of radius ceil(3*sigma).
func gaussianKernel1D(sigma float64) *convolution.Kernel {
	sfactor := -0.5 / (sigma * sigma)
	radius := math.Ceil(3 * sigma)
	length := 2*int(radius) + 1

	k := convolution.NewKernel(length, 1)
	for i, x := 0, -radius; i < length; i, x = i+1, x+1 {
		k.Matrix[i] = math.Exp(sfactor * x * x)
	}
	return k
}

// BlurAlpha blurs only the alpha channel of src, leaving RGB at full
// white. Mask buffers are white-RGB by construction, so a premultiplied
// blur of the whole image followed by unpremultiplication degenerates to
// exactly this; doing it directly avoids color bleed at zero-alpha pixels.
func BlurAlpha(src *image.NRGBA, radius float64) *image.NRGBA {
	if radius <= 0 {
		return imaging.Clone(src)
	}
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	sigma := radius / 2

	kr := int(math.Ceil(3 * sigma))
	klen := 2*kr + 1
	kernel := make([]float64, klen)
	sfactor := -0.5 / (sigma * sigma)
	sum := 0.0
	for i := 0; i < klen; i++ {
		x := float64(i - kr)
		kernel[i] = math.Exp(sfactor * x * x)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	tmp := make([]float64, w*h)
	out := make([]float64, w*h)

	// Horizontal pass with clamp-to-edge sampling.
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			acc := 0.0
			for i := 0; i < klen; i++ {
				sx := x + i - kr
				if sx < 0 {
					sx = 0
				} else if sx >= w {
					sx = w - 1
				}
				acc += kernel[i] * float64(row[sx*4+3])
			}
			tmp[y*w+x] = acc
		}
	}
	// Vertical pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for i := 0; i < klen; i++ {
				sy := y + i - kr
				if sy < 0 {
					sy = 0
				} else if sy >= h {
					sy = h - 1
				}
				acc += kernel[i] * tmp[sy*w+x]
			}
			out[y*w+x] = acc
		}
	}

	dst := NewLayer(w, h)
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			a := out[y*w+x]
			if a < 0 {
				a = 0
			} else if a > 255 {
				a = 255
			}
			row[x*4] = 255
			row[x*4+1] = 255
			row[x*4+2] = 255
			row[x*4+3] = uint8(a + 0.5)
		}
	}
	return dst
}

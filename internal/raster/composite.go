package raster

import "image"

// The compositing verbs below are the canvas-style operators the pipeline
// needs, expressed as explicit per-pixel alpha arithmetic so no graphics
// API is assumed. Sizes must match; callers composite full layers only.

// Over draws src onto dst with non-premultiplied source-over blending,
// modulated by opacity in [0,1]. dst is modified in place.
func Over(dst, src *image.NRGBA, opacity float64) {
	w := dst.Rect.Dx()
	h := dst.Rect.Dy()
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	for y := 0; y < h; y++ {
		d := dst.Pix[y*dst.Stride:]
		s := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			sa := float64(s[i+3]) / 255 * opacity
			if sa == 0 {
				continue
			}
			da := float64(d[i+3]) / 255
			oa := sa + da*(1-sa)
			if oa == 0 {
				continue
			}
			for c := 0; c < 3; c++ {
				sc := float64(s[i+c])
				dc := float64(d[i+c])
				d[i+c] = uint8((sc*sa+dc*da*(1-sa))/oa + 0.5)
			}
			d[i+3] = uint8(oa*255 + 0.5)
		}
	}
}

// StencilAlpha keeps layer only where mask is opaque: layer alpha is
// multiplied by mask alpha, colors untouched. This is the "destination-in"
// operator (and, with the fill drawn first, implements "source-in"
// stenciling as well). layer is modified in place.
func StencilAlpha(layer, mask *image.NRGBA) {
	w := layer.Rect.Dx()
	h := layer.Rect.Dy()
	for y := 0; y < h; y++ {
		l := layer.Pix[y*layer.Stride:]
		m := mask.Pix[y*mask.Stride:]
		for x := 0; x < w; x++ {
			i := x*4 + 3
			l[i] = uint8(uint32(l[i]) * uint32(m[i]) / 255)
		}
	}
}

// EraseAlpha removes layer where mask is opaque: layer alpha is multiplied
// by (1 - mask alpha). This is the "destination-out" operator. layer is
// modified in place.
func EraseAlpha(layer, mask *image.NRGBA) {
	w := layer.Rect.Dx()
	h := layer.Rect.Dy()
	for y := 0; y < h; y++ {
		l := layer.Pix[y*layer.Stride:]
		m := mask.Pix[y*mask.Stride:]
		for x := 0; x < w; x++ {
			i := x*4 + 3
			l[i] = uint8(uint32(l[i]) * uint32(255-m[i]) / 255)
		}
	}
}

// TintAlpha paints every pixel of layer with the color sampled from paint
// at that pixel while keeping layer's alpha. Used to turn an alpha-only
// stroke layer into a tinted (solid or gradient) one.
func TintAlpha(layer *image.NRGBA, paint func(x, y int) (r, g, b uint8)) {
	w := layer.Rect.Dx()
	h := layer.Rect.Dy()
	for y := 0; y < h; y++ {
		l := layer.Pix[y*layer.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			if l[i+3] == 0 {
				continue
			}
			r, g, b := paint(x, y)
			l[i] = r
			l[i+1] = g
			l[i+2] = b
		}
	}
}

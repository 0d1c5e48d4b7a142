package mask

import (
	"image"
	"math"

	"github.com/glimmer-tools/glimmer/internal/raster"
)

const (
	// Pre-blur applied to the padded sharp mask before the distance field.
	// Must stay small: a larger blur makes the zero-distance contour
	// recede inward and opens a gap between stroke and silhouette.
	strokePreBlurRadius = 1.5
	// Blur radius for the inner choke mask.
	chokeBlurRadius = 6.0
	// Alpha above which a blurred choke pixel counts as interior.
	chokeAlphaCut = 220
	// Extra padding beyond the widest stroke plus feather.
	padMargin = 8
	// Divisor coupling feather radius to the local stroke width.
	featherWidthDivisor = 54
)

// Widths holds the three control values (left edge, middle, right edge)
// for either stroke width or feather radius.
type Widths struct {
	Start, Mid, End float64
}

// Max returns the largest of the three control values.
func (w Widths) Max() float64 {
	return math.Max(w.Start, math.Max(w.Mid, w.End))
}

// scaled multiplies all three control values.
func (w Widths) scaled(s float64) Widths {
	return Widths{Start: w.Start * s, Mid: w.Mid * s, End: w.End * s}
}

// At interpolates the control values piecewise-linearly at t in [0,1]:
// Start at t=0, Mid at t=0.5, End at t=1.
func (w Widths) At(t float64) float64 {
	t = raster.Clamp01(t)
	if t < 0.5 {
		return raster.Lerp(w.Start, w.Mid, t*2)
	}
	return raster.Lerp(w.Mid, w.End, (t-0.5)*2)
}

// FeatherAt is the effective feather radius at a point where the stroke is
// targetWidth wide: it scales with both the authored blur amount and the
// local width, so thick strokes get proportionally softer edges.
func FeatherAt(blur, targetWidth float64) float64 {
	return math.Max(1, blur*(0.5+targetWidth/featherWidthDivisor))
}

// BuildOutline synthesizes the tapered outline stroke for rawMask as an
// alpha-only layer (white RGB, to be tinted by the compositor). widths and
// feathers are the per-position control values in logical pixels; scale is
// the master stroke multiplier and pxScale the physical/logical pixel
// ratio of rawMask. Width and feather are resolved in logical units first
// and converted once, so a 2x surface gets exactly twice the stroke and
// twice the feather. If all scaled widths are zero or negative the layer
// is disabled and comes back fully transparent.
func BuildOutline(rawMask *image.NRGBA, widths Widths, scale float64, feathers Widths, pxScale float64) *image.NRGBA {
	w := rawMask.Rect.Dx()
	h := rawMask.Rect.Dy()
	if pxScale <= 0 {
		pxScale = 1
	}

	eff := widths.scaled(scale)
	if eff.Start <= 0 && eff.Mid <= 0 && eff.End <= 0 {
		return raster.NewLayer(w, h)
	}

	// Pad so wide blurred strokes never clip at the canvas border. Edge
	// pixels are replicated into the padding; transparent padding would
	// read as a mask boundary and draw a false stroke along the border.
	maxFeather := FeatherAt(feathers.Max(), eff.Max())
	pad := int(math.Ceil((eff.Max()+maxFeather)*pxScale)) + padMargin
	padded := padReplicate(rawMask, pad)

	soft := raster.BlurAlpha(padded, strokePreBlurRadius)
	dist := DistanceField(soft)

	pw := w + 2*pad
	ph := h + 2*pad
	stroke := raster.NewLayer(pw, ph)
	for y := 0; y < ph; y++ {
		row := stroke.Pix[y*stroke.Stride:]
		for x := 0; x < pw; x++ {
			d := dist[y*pw+x]
			if d == 0 || math.IsInf(d, 1) {
				continue
			}
			t := raster.Clamp01(float64(x-pad) / float64(w))
			logicalWidth := eff.At(t)
			if logicalWidth <= 0 {
				continue
			}
			target := logicalWidth * pxScale
			a := 1.0
			if d > target {
				feather := FeatherAt(feathers.At(t), logicalWidth) * pxScale
				a = 1 - raster.Smoothstep(target, target+feather, d)
			}
			if a <= 0 {
				continue
			}
			i := x * 4
			row[i] = 255
			row[i+1] = 255
			row[i+2] = 255
			row[i+3] = uint8(a*255 + 0.5)
		}
	}

	// Inner choke: erase the deep interior so the stroke's inner edge
	// tucks underneath the main silhouette fill instead of meeting it at
	// an anti-aliased seam.
	choke := raster.BlurAlpha(padded, chokeBlurRadius)
	hardThreshold(choke, chokeAlphaCut)
	raster.EraseAlpha(stroke, choke)

	return unpad(stroke, pad, w, h)
}

// padReplicate copies m into a buffer padded on all sides, clamping reads
// to the nearest edge pixel.
func padReplicate(m *image.NRGBA, pad int) *image.NRGBA {
	w := m.Rect.Dx()
	h := m.Rect.Dy()
	pw := w + 2*pad
	ph := h + 2*pad
	out := raster.NewLayer(pw, ph)
	for y := 0; y < ph; y++ {
		sy := y - pad
		if sy < 0 {
			sy = 0
		} else if sy >= h {
			sy = h - 1
		}
		src := m.Pix[sy*m.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < pw; x++ {
			sx := x - pad
			if sx < 0 {
				sx = 0
			} else if sx >= w {
				sx = w - 1
			}
			copy(dst[x*4:x*4+4], src[sx*4:sx*4+4])
		}
	}
	return out
}

// unpad crops the centered w x h region back out of a padded layer.
func unpad(m *image.NRGBA, pad, w, h int) *image.NRGBA {
	out := raster.NewLayer(w, h)
	for y := 0; y < h; y++ {
		src := m.Pix[(y+pad)*m.Stride+pad*4:]
		dst := out.Pix[y*out.Stride:]
		copy(dst[:w*4], src[:w*4])
	}
	return out
}

// hardThreshold binarizes m's alpha at cut.
func hardThreshold(m *image.NRGBA, cut uint8) {
	w := m.Rect.Dx()
	h := m.Rect.Dy()
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride:]
		for x := 0; x < w; x++ {
			i := x*4 + 3
			if row[i] > cut {
				row[i] = 255
			} else {
				row[i] = 0
			}
		}
	}
}

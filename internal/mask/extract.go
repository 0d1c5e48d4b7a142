// Package mask derives a silhouette mask from a source image and turns it
// into a tapered outline stroke via a chamfer distance field. No semantic
// segmentation happens here: the local path is a corner-color keying
// heuristic, with an externally supplied mask (e.g. from a background
// removal service) taking precedence when present.
package mask

import (
	"fmt"
	"image"

	"github.com/glimmer-tools/glimmer/internal/raster"
)

// Empirically tuned constants, preserved from the original tool for
// output compatibility.
const (
	// Mean corner alpha at or above this means the source has no usable
	// transparency of its own.
	cornerOpaqueMean = 250
	// Binary cut for sources that do carry alpha.
	sourceAlphaCut = 50
	// Max per-channel distance from the corner-averaged background color
	// below which a pixel is judged background.
	colorKeyThreshold = 35
	// Pixels above this alpha count toward the bounding box.
	bboxAlphaThreshold = 20
	// Asymmetric smoothstep window for re-binarizing the blurred mask.
	// The low edge sits closer to zero than the high edge to 255, which
	// biases ambiguous boundary pixels toward foreground.
	rampLow  = 50
	rampHigh = 200
	// Divisor for the resolution-proportional smoothing blur radius.
	smoothRadiusDivisor = 160
	// Light blur radii producing rawMask and mask respectively.
	rawMaskBlurRadius = 1.0
	maskBlurRadius    = 2.5
)

// Result is the output of Extract. Mask and RawMask are white-RGB images
// whose alpha encodes foreground membership; both match the canvas size.
// RawMask keeps near full detail, Mask is further smoothed for gross shape
// decisions. Center is the silhouette bounding-box midpoint in canvas
// pixels.
type Result struct {
	Mask    *image.NRGBA
	RawMask *image.NRGBA
	Center  image.Point
}

// Extract produces the silhouette masks for a w x h canvas. If external is
// non-nil its alpha channel is the raw source (cover-fit to the canvas)
// and no color analysis runs; otherwise the local heuristic segments src.
func Extract(src image.Image, external image.Image, w, h int) (*Result, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}

	var sharp *image.NRGBA
	if external != nil {
		sharp = alphaOnly(raster.CoverFit(external, w, h))
	} else {
		if src == nil {
			return nil, fmt.Errorf("no source image")
		}
		sharp = segmentLocal(raster.CoverFit(src, w, h))
	}

	smoothed := liquidSmooth(sharp, w, h)
	rawMask := raster.BlurAlpha(smoothed, rawMaskBlurRadius)
	mask := raster.BlurAlpha(rawMask, maskBlurRadius)

	return &Result{
		Mask:    mask,
		RawMask: rawMask,
		Center:  boundsCenter(rawMask),
	}, nil
}

// alphaOnly copies img's alpha channel onto a white-RGB mask buffer.
func alphaOnly(img *image.NRGBA) *image.NRGBA {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	out := raster.NewLayer(w, h)
	for y := 0; y < h; y++ {
		s := img.Pix[y*img.Stride:]
		d := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			d[i] = 255
			d[i+1] = 255
			d[i+2] = 255
			d[i+3] = s[i+3]
		}
	}
	return out
}

// segmentLocal runs the cheap local heuristic: threshold the source's own
// alpha when it has any, else key out the corner-averaged background
// color. It assumes a roughly uniform background sampled at the corners.
func segmentLocal(img *image.NRGBA) *image.NRGBA {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	out := raster.NewLayer(w, h)

	corners := [4][2]int{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}}
	alphaSum := 0
	var bgR, bgG, bgB int
	for _, c := range corners {
		i := c[1]*img.Stride + c[0]*4
		bgR += int(img.Pix[i])
		bgG += int(img.Pix[i+1])
		bgB += int(img.Pix[i+2])
		alphaSum += int(img.Pix[i+3])
	}

	useAlpha := alphaSum/4 < cornerOpaqueMean
	bgR /= 4
	bgG /= 4
	bgB /= 4

	for y := 0; y < h; y++ {
		s := img.Pix[y*img.Stride:]
		d := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			fg := false
			if useAlpha {
				fg = s[i+3] >= sourceAlphaCut
			} else {
				diff := absDiff(int(s[i]), bgR)
				if v := absDiff(int(s[i+1]), bgG); v > diff {
					diff = v
				}
				if v := absDiff(int(s[i+2]), bgB); v > diff {
					diff = v
				}
				fg = diff >= colorKeyThreshold
			}
			d[i] = 255
			d[i+1] = 255
			d[i+2] = 255
			if fg {
				d[i+3] = 255
			}
		}
	}
	return out
}

// liquidSmooth removes single-pixel threshold noise: blur at a radius
// proportional to the canvas size, then remap alpha through a smoothstep
// ramp over [rampLow, rampHigh] to re-binarize with soft edges.
func liquidSmooth(sharp *image.NRGBA, w, h int) *image.NRGBA {
	radius := float64(min(w, h)) / smoothRadiusDivisor
	if radius < 1 {
		radius = 1
	}
	blurred := raster.BlurAlpha(sharp, radius)
	for y := 0; y < h; y++ {
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < w; x++ {
			i := x*4 + 3
			v := raster.Smoothstep(rampLow, rampHigh, float64(row[i]))
			row[i] = uint8(v*255 + 0.5)
		}
	}
	return blurred
}

// boundsCenter returns the midpoint of the bounding box of pixels with
// alpha above bboxAlphaThreshold, or the canvas center when the mask is
// empty.
func boundsCenter(m *image.NRGBA) image.Point {
	w := m.Rect.Dx()
	h := m.Rect.Dy()
	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride:]
		for x := 0; x < w; x++ {
			if row[x*4+3] > bboxAlphaThreshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < 0 {
		return image.Point{X: w / 2, Y: h / 2}
	}
	return image.Point{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

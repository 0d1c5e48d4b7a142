package render

import (
	"image"
	"image/color"
	"math"

	"github.com/glimmer-tools/glimmer/internal/raster"
	"github.com/glimmer-tools/glimmer/pkg/scene"
)

// orbAntialiasWidth is the smoothstep transition width in pixels at the
// ellipse edge.
const orbAntialiasWidth = 0.7

// drawOrb renders one light orb onto dst. The orb is a rotated ellipse,
// filled flat or with an elliptical radial gradient, blurred per-orb and
// composited at the orb's opacity. Position is normalized to the canvas;
// radii, rotation and blur are logical values scaled by pxScale.
func (r *Renderer) drawOrb(dst *image.NRGBA, o scene.Orb, pxScale float64) {
	w := dst.Rect.Dx()
	h := dst.Rect.Dy()
	cx := o.X * float64(w)
	cy := o.Y * float64(h)
	rx := o.RadiusX * pxScale
	ry := o.RadiusY * pxScale
	if rx <= 0 || ry <= 0 || o.Opacity <= 0 {
		return
	}

	var solid color.NRGBA
	var grad *raster.RadialGradient
	if o.Fill.Mode == scene.FillGradient && len(o.Fill.Stops) > 0 {
		grad = raster.NewRadialGradient(cx, cy, rx, ry, o.Rotation, r.fillStops(o.Fill.Stops))
	} else {
		c, err := raster.ParseHexColor(o.Fill.Color)
		if err != nil {
			r.Logger.Warn("orb color unparseable, skipping orb", "color", o.Fill.Color, "err", err)
			return
		}
		solid = c
	}

	layer := raster.NewLayer(w, h)

	// Tight bounding box around the rotated ellipse, grown by the
	// anti-alias band.
	reach := math.Max(rx, ry) + orbAntialiasWidth + 1
	x0 := clampInt(int(cx-reach), 0, w)
	x1 := clampInt(int(cx+reach)+1, 0, w)
	y0 := clampInt(int(cy-reach), 0, h)
	y1 := clampInt(int(cy+reach)+1, 0, h)

	cos := math.Cos(-o.Rotation)
	sin := math.Sin(-o.Rotation)
	minR := math.Min(rx, ry)

	for y := y0; y < y1; y++ {
		row := layer.Pix[y*layer.Stride:]
		for x := x0; x < x1; x++ {
			px := float64(x) + 0.5 - cx
			py := float64(y) + 0.5 - cy
			ux := (px*cos - py*sin) / rx
			uy := (px*sin + py*cos) / ry
			// Approximate signed distance to the ellipse edge, scaled
			// back to pixel units for a resolution-independent AA band.
			sdf := (math.Hypot(ux, uy) - 1) * minR
			cov := smoothstepCoverage(sdf)
			if cov <= 0 {
				continue
			}
			c := solid
			if grad != nil {
				c = grad.ColorAt(float64(x)+0.5, float64(y)+0.5)
			}
			a := float64(c.A) / 255 * cov
			if a <= 0 {
				continue
			}
			i := x * 4
			row[i] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = uint8(a*255 + 0.5)
		}
	}

	if o.Blur > 0 {
		layer = raster.Gaussian(layer, o.Blur*pxScale)
	}
	raster.Over(dst, layer, o.Opacity)
}

// smoothstepCoverage converts a signed distance to anti-aliased coverage
// with a Hermite ramp over the anti-alias band.
func smoothstepCoverage(sdf float64) float64 {
	if sdf >= orbAntialiasWidth {
		return 0
	}
	if sdf <= -orbAntialiasWidth {
		return 1
	}
	t := (sdf + orbAntialiasWidth) / (2 * orbAntialiasWidth)
	return 1 - t*t*(3-2*t)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package render composites the full scene: background fill, light orbs,
// silhouette stroke layers, the masked subject fill and a directional
// blur, in a fixed order. A render is a pure function of its inputs; the
// renderer holds no frame-to-frame state, so identical inputs produce
// byte-identical output.
package render

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/glimmer-tools/glimmer/internal/mask"
	"github.com/glimmer-tools/glimmer/internal/raster"
	"github.com/glimmer-tools/glimmer/pkg/scene"
)

// mainFillBlurRadius is the tiny anti-aliasing blur applied to the raw
// mask before it stencils the main silhouette fill, in logical pixels.
const mainFillBlurRadius = 0.5

// Renderer renders scenes. The zero Logger is replaced by a silent one;
// install a real logger to see degraded-render diagnostics.
type Renderer struct {
	Logger *slog.Logger
}

// New returns a Renderer that logs nowhere until told otherwise.
func New() *Renderer {
	return &Renderer{Logger: newNopLogger()}
}

// Render draws the scene into dst. Parameters are authored in logical
// units over a logicalW x logicalH canvas; dst may be any uniform multiple
// of that size and all widths, feathers, blurs and offsets are scaled by
// the ratio. external, when non-nil, is a pre-resolved background-removal
// mask and suppresses local segmentation.
func (r *Renderer) Render(dst *image.NRGBA, logicalW, logicalH int, src image.Image, p scene.ControlParams, external image.Image) {
	if r.Logger == nil {
		r.Logger = newNopLogger()
	}
	w := dst.Rect.Dx()
	h := dst.Rect.Dy()
	pxScale := 1.0
	if logicalW > 0 {
		pxScale = float64(w) / float64(logicalW)
	}

	// 1. Flat background.
	bg, err := raster.ParseHexColor(p.Background)
	if err != nil {
		r.Logger.Warn("background color unparseable, using black", "color", p.Background, "err", err)
		bg = color.NRGBA{A: 255}
	}
	raster.FillColor(dst, bg)

	// 2. Background orbs, array order as z-order.
	if p.BackgroundOrbs.Enabled {
		for _, o := range p.BackgroundOrbs.Orbs {
			r.drawOrb(dst, o, pxScale)
		}
	}

	// 3. Silhouette masks. Extraction failure degrades to showing the
	// cover-fit source with no silhouette shaping; orbs stay visible.
	m, err := mask.Extract(src, external, w, h)
	if err != nil {
		r.Logger.Warn("mask extraction failed, rendering without silhouette", "err", err)
		if src != nil {
			raster.Over(dst, raster.CoverFit(src, w, h), 1)
		}
		r.directionalBlur(dst, p.DirectionalBlur, pxScale)
		return
	}

	// 4. Stroke layers beneath the fill: back first, then the optional
	// inner accent layer.
	r.drawStrokeLayer(dst, m.RawMask, p.BackSilhouette, pxScale)
	if p.InnerSilhouette != nil {
		r.drawStrokeLayer(dst, m.RawMask, *p.InnerSilhouette, pxScale)
	}

	// 5. Main silhouette fill: paint the fill over the whole canvas and
	// stencil it to the lightly blurred raw mask (source-in).
	if p.Silhouette.Enabled {
		fill := raster.NewLayer(w, h)
		r.paintFill(fill, p.Silhouette.Fill)
		stencil := raster.BlurAlpha(m.RawMask, mainFillBlurRadius*pxScale)
		raster.StencilAlpha(fill, stencil)
		fill = shiftLayer(fill, p.Silhouette.OffsetX*pxScale, p.Silhouette.OffsetY*pxScale)
		raster.Over(dst, fill, 1)
	}

	// 6. Foreground orbs, visible only inside the subject
	// (destination-in to the raw mask).
	if p.ForegroundOrbs.Enabled && len(p.ForegroundOrbs.Orbs) > 0 {
		layer := raster.NewLayer(w, h)
		for _, o := range p.ForegroundOrbs.Orbs {
			r.drawOrb(layer, o, pxScale)
		}
		raster.StencilAlpha(layer, m.RawMask)
		raster.Over(dst, layer, 1)
	}

	// 7. Directional blur over the finished composite.
	r.directionalBlur(dst, p.DirectionalBlur, pxScale)
}

// drawStrokeLayer builds one outline layer, tints it per the layer's fill,
// and composites it. Disabled layers and all-zero widths are no-ops.
func (r *Renderer) drawStrokeLayer(dst, rawMask *image.NRGBA, layer scene.SilhouetteLayer, pxScale float64) {
	if !layer.Enabled || layer.Opacity <= 0 {
		return
	}
	h := dst.Rect.Dy()

	// Widths and feathers stay in logical units here; BuildOutline applies
	// the pixel ratio after resolving the width-coupled feather, keeping
	// the feather linear in pxScale.
	widths := mask.Widths{Start: layer.StrokeWidth, Mid: layer.StrokeWidthMid, End: layer.StrokeWidthEnd}
	feathers := mask.Widths{Start: layer.Feather, Mid: layer.FeatherMid, End: layer.FeatherEnd}
	stroke := mask.BuildOutline(rawMask, widths, layer.Scale, feathers, pxScale)

	switch layer.Fill.Mode {
	case scene.FillGradient:
		grad := raster.NewLinearGradient(0, 0, 0, float64(h), r.fillStops(layer.Fill.Stops))
		raster.TintAlpha(stroke, func(x, y int) (uint8, uint8, uint8) {
			c := grad.ColorAt(float64(x), float64(y))
			return c.R, c.G, c.B
		})
	default:
		c, err := raster.ParseHexColor(layer.Fill.Color)
		if err != nil {
			r.Logger.Warn("stroke color unparseable, skipping layer", "color", layer.Fill.Color, "err", err)
			return
		}
		raster.TintAlpha(stroke, func(int, int) (uint8, uint8, uint8) {
			return c.R, c.G, c.B
		})
	}

	stroke = shiftLayer(stroke, layer.OffsetX*pxScale, layer.OffsetY*pxScale)
	raster.Over(dst, stroke, layer.Opacity)
}

// paintFill paints layer entirely with the style: flat color or a
// top-to-bottom linear gradient.
func (r *Renderer) paintFill(layer *image.NRGBA, fill scene.FillStyle) {
	w := layer.Rect.Dx()
	h := layer.Rect.Dy()
	if fill.Mode == scene.FillGradient && len(fill.Stops) > 0 {
		grad := raster.NewLinearGradient(0, 0, 0, float64(h), r.fillStops(fill.Stops))
		for y := 0; y < h; y++ {
			row := layer.Pix[y*layer.Stride:]
			c := grad.ColorAt(0, float64(y))
			for x := 0; x < w; x++ {
				i := x * 4
				row[i] = c.R
				row[i+1] = c.G
				row[i+2] = c.B
				row[i+3] = c.A
			}
		}
		return
	}
	c, err := raster.ParseHexColor(fill.Color)
	if err != nil {
		r.Logger.Warn("fill color unparseable, using opaque black", "color", fill.Color, "err", err)
		c = color.NRGBA{A: 255}
	}
	raster.FillColor(layer, c)
}

// fillStops converts document gradient stops to raster stops, dropping
// unparseable colors with a log line.
func (r *Renderer) fillStops(stops []scene.GradientStop) []raster.ColorStop {
	out := make([]raster.ColorStop, 0, len(stops))
	for _, s := range stops {
		c, err := raster.ParseHexColor(s.Color)
		if err != nil {
			r.Logger.Warn("gradient stop color unparseable, dropping stop", "color", s.Color, "err", err)
			continue
		}
		out = append(out, raster.ColorStop{Offset: s.Position, Color: c})
	}
	return out
}

// directionalBlur applies the progressive blur: blur a snapshot of the
// composite at the stronger endpoint's radius, stencil it to a linear
// opacity ramp between the two endpoints (each endpoint's alpha is its
// own amount normalized by the max), and lay it back over the sharp
// composite. This fakes a spatially varying blur without per-pixel
// variable-radius support.
func (r *Renderer) directionalBlur(dst *image.NRGBA, db scene.DirectionalBlur, pxScale float64) {
	if !db.Enabled {
		return
	}
	maxAmt := math.Max(db.StartAmount, db.EndAmount)
	if maxAmt <= 0 {
		return
	}
	w := dst.Rect.Dx()
	h := dst.Rect.Dy()

	blurred := raster.Gaussian(dst, maxAmt*pxScale)

	startA := uint8(raster.Clamp01(db.StartAmount/maxAmt)*255 + 0.5)
	endA := uint8(raster.Clamp01(db.EndAmount/maxAmt)*255 + 0.5)
	grad := raster.NewLinearGradient(
		db.StartX*float64(w), db.StartY*float64(h),
		db.EndX*float64(w), db.EndY*float64(h),
		[]raster.ColorStop{
			{Offset: 0, Color: color.NRGBA{R: 255, G: 255, B: 255, A: startA}},
			{Offset: 1, Color: color.NRGBA{R: 255, G: 255, B: 255, A: endA}},
		},
	)
	ramp := raster.NewLayer(w, h)
	for y := 0; y < h; y++ {
		row := ramp.Pix[y*ramp.Stride:]
		for x := 0; x < w; x++ {
			c := grad.ColorAt(float64(x)+0.5, float64(y)+0.5)
			i := x * 4
			row[i] = 255
			row[i+1] = 255
			row[i+2] = 255
			row[i+3] = c.A
		}
	}
	raster.StencilAlpha(blurred, ramp)
	raster.Over(dst, blurred, 1)
}

// shiftLayer translates a layer by an integer-rounded pixel offset,
// filling vacated pixels with transparency. Zero offsets return the layer
// unchanged.
func shiftLayer(layer *image.NRGBA, dx, dy float64) *image.NRGBA {
	ox := int(math.Round(dx))
	oy := int(math.Round(dy))
	if ox == 0 && oy == 0 {
		return layer
	}
	w := layer.Rect.Dx()
	h := layer.Rect.Dy()
	out := raster.NewLayer(w, h)
	for y := 0; y < h; y++ {
		sy := y - oy
		if sy < 0 || sy >= h {
			continue
		}
		for x := 0; x < w; x++ {
			sx := x - ox
			if sx < 0 || sx >= w {
				continue
			}
			copy(out.Pix[y*out.Stride+x*4:y*out.Stride+x*4+4], layer.Pix[sy*layer.Stride+sx*4:sy*layer.Stride+sx*4+4])
		}
	}
	return out
}

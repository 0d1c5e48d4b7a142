package raster

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorStop is a color at an offset in [0,1] along a gradient.
type ColorStop struct {
	Offset float64
	Color  color.NRGBA
}

// sortStops returns stops ordered ascending by offset with duplicate
// offsets collapsed last-wins, matching the gradient API the parameter
// documents were authored against. The input slice is not modified.
func sortStops(stops []ColorStop) []ColorStop {
	if len(stops) < 2 {
		return stops
	}
	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	out := sorted[:0]
	for i := 0; i < len(sorted); i++ {
		if len(out) > 0 && out[len(out)-1].Offset == sorted[i].Offset {
			out[len(out)-1] = sorted[i]
			continue
		}
		out = append(out, sorted[i])
	}
	return out
}

// colorAtOffset interpolates the sorted stops at t, clamping beyond the
// first and last stop.
func colorAtOffset(stops []ColorStop, t float64) color.NRGBA {
	if len(stops) == 0 {
		return color.NRGBA{}
	}
	if len(stops) == 1 {
		return stops[0].Color
	}
	t = Clamp01(t)
	idx := sort.Search(len(stops), func(i int) bool {
		return stops[i].Offset >= t
	})
	if idx == 0 {
		return stops[0].Color
	}
	if idx >= len(stops) {
		return stops[len(stops)-1].Color
	}
	s1 := stops[idx-1]
	s2 := stops[idx]
	if s2.Offset == s1.Offset {
		return s1.Color
	}
	local := (t - s1.Offset) / (s2.Offset - s1.Offset)
	return lerpNRGBA(s1.Color, s2.Color, local)
}

func lerpNRGBA(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(Lerp(float64(a.R), float64(b.R), t) + 0.5),
		G: uint8(Lerp(float64(a.G), float64(b.G), t) + 0.5),
		B: uint8(Lerp(float64(a.B), float64(b.B), t) + 0.5),
		A: uint8(Lerp(float64(a.A), float64(b.A), t) + 0.5),
	}
}

// LinearGradient interpolates stops along the line from (X0,Y0) to
// (X1,Y1), padding beyond the endpoints.
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	stops          []ColorStop
}

// NewLinearGradient builds a gradient from possibly unsorted stops.
func NewLinearGradient(x0, y0, x1, y1 float64, stops []ColorStop) *LinearGradient {
	return &LinearGradient{X0: x0, Y0: y0, X1: x1, Y1: y1, stops: sortStops(stops)}
}

// ColorAt projects (x,y) onto the gradient axis and interpolates.
func (g *LinearGradient) ColorAt(x, y float64) color.NRGBA {
	dx := g.X1 - g.X0
	dy := g.Y1 - g.Y0
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		if len(g.stops) == 0 {
			return color.NRGBA{}
		}
		return g.stops[0].Color
	}
	t := ((x-g.X0)*dx + (y-g.Y0)*dy) / lenSq
	return colorAtOffset(g.stops, t)
}

// RadialGradient is a circular gradient stretched into an ellipse by
// scaling one axis and rotating, per the orb model: a circle of radius
// RadiusX with the y axis scaled by RadiusY/RadiusX.
type RadialGradient struct {
	CX, CY           float64
	RadiusX, RadiusY float64
	Rotation         float64
	stops            []ColorStop
}

// NewRadialGradient builds an elliptical radial gradient from possibly
// unsorted stops.
func NewRadialGradient(cx, cy, rx, ry, rotation float64, stops []ColorStop) *RadialGradient {
	return &RadialGradient{CX: cx, CY: cy, RadiusX: rx, RadiusY: ry, Rotation: rotation, stops: sortStops(stops)}
}

// ColorAt maps (x,y) into the unrotated unit-circle space of the ellipse
// and interpolates by normalized radius.
func (g *RadialGradient) ColorAt(x, y float64) color.NRGBA {
	if g.RadiusX <= 0 || g.RadiusY <= 0 {
		return color.NRGBA{}
	}
	dx := x - g.CX
	dy := y - g.CY
	cos := math.Cos(-g.Rotation)
	sin := math.Sin(-g.Rotation)
	ux := (dx*cos - dy*sin) / g.RadiusX
	uy := (dx*sin + dy*cos) / g.RadiusY
	return colorAtOffset(g.stops, math.Hypot(ux, uy))
}

// ParseHexColor parses #rgb, #rrggbb and #rrggbbaa sRGB hex strings.
func ParseHexColor(s string) (color.NRGBA, error) {
	if len(s) == 9 && s[0] == '#' {
		var r, g, b, a uint8
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		return color.NRGBA{R: r, G: g, B: b, A: a}, nil
	}
	if len(s) == 4 && s[0] == '#' {
		s = fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3])
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: 255,
	}, nil
}

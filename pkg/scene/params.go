// Package scene defines the parameter document that drives a render: the
// background, silhouette stroke layers, light orbs and directional blur.
// The rendering core treats a ControlParams value as an immutable snapshot;
// editing happens through Patch documents merged over Defaults.
package scene

// FillMode selects between a flat color and a gradient fill.
type FillMode string

const (
	FillSolid    FillMode = "solid"
	FillGradient FillMode = "gradient"
)

// GradientStop is a color at a position in [0,1] along a gradient.
// Stops may arrive unsorted; gradient builders sort them by position and
// resolve duplicate positions last-wins.
type GradientStop struct {
	Position float64 `json:"position"`
	Color    string  `json:"color"`
}

// FillStyle describes how a shape or stroke layer is painted.
// Color is an sRGB hex string ("#rrggbb"); Stops are only consulted when
// Mode is FillGradient.
type FillStyle struct {
	Mode  FillMode       `json:"mode"`
	Color string         `json:"color"`
	Stops []GradientStop `json:"stops,omitempty"`
}

// Orb is a single light source. X and Y are normalized to the canvas
// (0..1); radii and blur are in logical pixels; Rotation is in radians.
type Orb struct {
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	RadiusX  float64   `json:"radiusX"`
	RadiusY  float64   `json:"radiusY"`
	Rotation float64   `json:"rotation"`
	Blur     float64   `json:"blur"`
	Opacity  float64   `json:"opacity"`
	Fill     FillStyle `json:"fill"`
}

// OrbGroup is an ordered set of orbs. Array position is z-order: later
// orbs draw over earlier ones.
type OrbGroup struct {
	Enabled bool  `json:"enabled"`
	Orbs    []Orb `json:"orbs"`
}

// SilhouetteLayer describes one outline stroke layer. The three width and
// feather values are control points at the left edge, horizontal middle
// and right edge of the canvas; Scale multiplies all three widths.
// All values are in logical pixels.
type SilhouetteLayer struct {
	Enabled        bool      `json:"enabled"`
	StrokeWidth    float64   `json:"strokeWidth"`
	StrokeWidthMid float64   `json:"strokeWidthMid"`
	StrokeWidthEnd float64   `json:"strokeWidthEnd"`
	Feather        float64   `json:"feather"`
	FeatherMid     float64   `json:"featherMid"`
	FeatherEnd     float64   `json:"featherEnd"`
	Scale          float64   `json:"scale"`
	Fill           FillStyle `json:"fill"`
	Opacity        float64   `json:"opacity"`
	OffsetX        float64   `json:"offsetX"`
	OffsetY        float64   `json:"offsetY"`
}

// MainSilhouette is the filled subject shape drawn over the stroke layers.
type MainSilhouette struct {
	Enabled bool      `json:"enabled"`
	Fill    FillStyle `json:"fill"`
	OffsetX float64   `json:"offsetX"`
	OffsetY float64   `json:"offsetY"`
}

// DirectionalBlur is a progressive blur between two points. Each endpoint
// carries its own blur amount in logical pixels; the rendered blur strength
// fades linearly from one endpoint's amount to the other's.
type DirectionalBlur struct {
	Enabled     bool    `json:"enabled"`
	StartX      float64 `json:"startX"`
	StartY      float64 `json:"startY"`
	EndX        float64 `json:"endX"`
	EndY        float64 `json:"endY"`
	StartAmount float64 `json:"startAmount"`
	EndAmount   float64 `json:"endAmount"`
}

// ControlParams is the aggregate root driving every render. It is
// JSON-serializable; older saved documents missing newer fields are
// completed by merging over Defaults (see Patch.Apply).
type ControlParams struct {
	Background      string           `json:"background"`
	BackgroundOrbs  OrbGroup         `json:"backgroundOrbs"`
	ForegroundOrbs  OrbGroup         `json:"foregroundOrbs"`
	Silhouette      MainSilhouette   `json:"silhouette"`
	BackSilhouette  SilhouetteLayer  `json:"backSilhouette"`
	InnerSilhouette *SilhouetteLayer `json:"innerSilhouette,omitempty"`
	DirectionalBlur DirectionalBlur  `json:"directionalBlur"`
}

// Defaults returns the canonical parameter document. Stroke widths use the
// unscaled 400-px reference convention; all values are logical pixels.
func Defaults() ControlParams {
	return ControlParams{
		Background: "#101018",
		BackgroundOrbs: OrbGroup{
			Enabled: true,
			Orbs: []Orb{
				{
					X: 0.28, Y: 0.3, RadiusX: 150, RadiusY: 150,
					Blur: 60, Opacity: 0.85,
					Fill: FillStyle{
						Mode: FillGradient,
						Stops: []GradientStop{
							{Position: 0, Color: "#ffb86c"},
							{Position: 1, Color: "#1a1a24"},
						},
					},
				},
				{
					X: 0.78, Y: 0.72, RadiusX: 110, RadiusY: 90,
					Rotation: 0.5, Blur: 45, Opacity: 0.7,
					Fill: FillStyle{
						Mode: FillGradient,
						Stops: []GradientStop{
							{Position: 0, Color: "#6c8cff"},
							{Position: 1, Color: "#101018"},
						},
					},
				},
			},
		},
		ForegroundOrbs: OrbGroup{Enabled: true},
		Silhouette: MainSilhouette{
			Enabled: true,
			Fill:    FillStyle{Mode: FillSolid, Color: "#14141c"},
		},
		BackSilhouette: SilhouetteLayer{
			Enabled:        true,
			StrokeWidth:    4,
			StrokeWidthMid: 12,
			StrokeWidthEnd: 2,
			Feather:        2,
			FeatherMid:     4,
			FeatherEnd:     2,
			Scale:          1,
			Fill:           FillStyle{Mode: FillSolid, Color: "#ffb86c"},
			Opacity:        1,
		},
		DirectionalBlur: DirectionalBlur{
			StartX: 0.5, StartY: 0,
			EndX: 0.5, EndY: 1,
			EndAmount: 18,
		},
	}
}

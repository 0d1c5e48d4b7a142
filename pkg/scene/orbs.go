package scene

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// GenerateOrbs lays out n orbs colored from palette, for the "randomize"
// action. All randomness in the tool lives here, outside the render core:
// rendering the resulting orbs is fully deterministic. A nil rng yields a
// fixed seed so repeated calls produce the same layout.
func GenerateOrbs(palette []colorful.Color, n int, rng *rand.Rand) []Orb {
	if n <= 0 || len(palette) == 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	orbs := make([]Orb, 0, n)
	for i := 0; i < n; i++ {
		c := palette[i%len(palette)]
		r := 60 + rng.Float64()*120
		orbs = append(orbs, Orb{
			X:        0.1 + rng.Float64()*0.8,
			Y:        0.1 + rng.Float64()*0.8,
			RadiusX:  r,
			RadiusY:  r * (0.7 + rng.Float64()*0.3),
			Rotation: rng.Float64() * math.Pi,
			Blur:     20 + rng.Float64()*50,
			Opacity:  0.5 + rng.Float64()*0.4,
			Fill: FillStyle{
				Mode: FillGradient,
				Stops: []GradientStop{
					{Position: 0, Color: c.Clamped().Hex()},
					{Position: 1, Color: "#00000000"},
				},
			},
		})
	}
	return orbs
}

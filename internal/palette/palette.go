// Package palette suggests orb colors from an uploaded image. It backs
// the "randomize lights" action and the palette API endpoint; the render
// core never calls it.
package palette

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Method selects the extraction backend.
type Method int

const (
	MethodDominantColor Method = iota
	MethodKMeans
)

func (m Method) String() string {
	if m == MethodKMeans {
		return "kmeans"
	}
	return "dominantcolor"
}

// ParseMethod maps a user-facing name to a Method, defaulting to
// dominantcolor.
func ParseMethod(s string) Method {
	if s == "kmeans" {
		return MethodKMeans
	}
	return MethodDominantColor
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// Extract returns up to k suggested colors for img. The kmeans method
// falls back to dominantcolor when clustering comes back empty.
func Extract(img image.Image, k int, method Method) []colorful.Color {
	if method == MethodKMeans {
		if p := extractKMeans(img, k); len(p) > 0 {
			return p
		}
	}
	return extractDominant(img, k)
}

// SortByBrightness orders colors darkest first, so the first entry suits
// a background role.
func SortByBrightness(p []colorful.Color) {
	slices.SortFunc(p, func(a, b colorful.Color) int {
		ra, ga, ba := a.LinearRgb()
		rb, gb, bb := b.LinearRgb()
		ya := 0.2126*ra + 0.7152*ga + 0.0722*ba
		yb := 0.2126*rb + 0.7152*gb + 0.0722*bb
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}

func extractDominant(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1,
		})
	}
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: w})
	}
	return selectDiverse(weighted, k)
}

func extractKMeans(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	// Subsample so clustering stays tractable on large uploads.
	const maxSamples = 12000
	step := 1
	if w*h > maxSamples {
		step = int(math.Sqrt(float64(w*h)/maxSamples)) + 1
	}
	dataset := make(clusters.Observations, 0, maxSamples)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535,
				float64(g16) / 65535,
				float64(b16) / 65535,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}
	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{col: col, weight: float64(max(len(c.Observations), 1))})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse picks k colors greedily, scoring each candidate by its Lab
// distance to the already-picked set weighted by its population, so the
// result stays close to the image's dominant tones without collapsing
// into near-duplicates.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	if k > len(cands) {
		k = len(cands)
	}
	maxW := 0.0
	for _, c := range cands {
		if c.weight > maxW {
			maxW = c.weight
		}
	}
	if maxW <= 0 {
		maxW = 1
	}

	picked := make([]int, 0, k)
	used := make([]bool, len(cands))

	seed := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].weight > cands[seed].weight {
			seed = i
		}
	}
	picked = append(picked, seed)
	used[seed] = true

	labs := make([][3]float64, len(cands))
	for i, c := range cands {
		l, a, b := c.col.Lab()
		labs[i] = [3]float64{l, a, b}
	}

	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i := range cands {
			if used[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, p := range picked {
				d0 := labs[i][0] - labs[p][0]
				d1 := labs[i][1] - labs[p][1]
				d2 := labs[i][2] - labs[p][2]
				if v := d0*d0 + d1*d1 + d2*d2; v < minD2 {
					minD2 = v
				}
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(cands[i].weight/maxW))
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	out := make([]colorful.Color, 0, len(picked))
	for _, i := range picked {
		out = append(out, cands[i].col)
	}
	return out
}

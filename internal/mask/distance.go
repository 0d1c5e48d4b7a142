package mask

import (
	"image"
	"math"
)

// insideAlpha is the alpha above which a pixel seeds the distance field
// at zero.
const insideAlpha = 128

// DistanceField computes, for every pixel of m, the chamfer approximation
// of the Euclidean distance to the nearest mask pixel. Foreground pixels
// (alpha > insideAlpha) have distance 0; pixels the field never reaches
// stay at +Inf. The result is row-major, one value per pixel.
//
// Two relaxation passes over 8-connected neighbors, axis neighbors at
// weight 1 and diagonals at sqrt 2, bound the angular error near 8%,
// which is invisible in a soft stroke and much cheaper than an exact
// Euclidean transform.
func DistanceField(m *image.NRGBA) []float64 {
	w := m.Rect.Dx()
	h := m.Rect.Dy()
	dist := make([]float64, w*h)

	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride:]
		for x := 0; x < w; x++ {
			if row[x*4+3] > insideAlpha {
				dist[y*w+x] = 0
			} else {
				dist[y*w+x] = math.Inf(1)
			}
		}
	}

	// Forward pass: relax from left, up, upper-left, upper-right.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			d := dist[i]
			if x > 0 {
				if v := dist[i-1] + 1; v < d {
					d = v
				}
			}
			if y > 0 {
				if v := dist[i-w] + 1; v < d {
					d = v
				}
				if x > 0 {
					if v := dist[i-w-1] + math.Sqrt2; v < d {
						d = v
					}
				}
				if x < w-1 {
					if v := dist[i-w+1] + math.Sqrt2; v < d {
						d = v
					}
				}
			}
			dist[i] = d
		}
	}

	// Backward pass: relax from right, down, lower-left, lower-right.
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := y*w + x
			d := dist[i]
			if x < w-1 {
				if v := dist[i+1] + 1; v < d {
					d = v
				}
			}
			if y < h-1 {
				if v := dist[i+w] + 1; v < d {
					d = v
				}
				if x > 0 {
					if v := dist[i+w-1] + math.Sqrt2; v < d {
						d = v
					}
				}
				if x < w-1 {
					if v := dist[i+w+1] + math.Sqrt2; v < d {
						d = v
					}
				}
			}
			dist[i] = d
		}
	}

	return dist
}

package mask

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmer-tools/glimmer/internal/raster"
)

// point returns a w x h mask with a single opaque pixel at (px, py).
func point(w, h, px, py int) *image.NRGBA {
	m := raster.NewLayer(w, h)
	m.Pix[py*m.Stride+px*4+3] = 255
	return m
}

func TestDistanceFieldSinglePoint(t *testing.T) {
	m := point(5, 5, 2, 2)
	d := DistanceField(m)
	require.Len(t, d, 25)

	assert.Equal(t, 0.0, d[2*5+2], "seed pixel")
	assert.Equal(t, 1.0, d[2*5+3], "axis neighbor")
	assert.Equal(t, 1.0, d[1*5+2], "axis neighbor above")
	assert.InDelta(t, math.Sqrt2, d[3*5+3], 1e-12, "diagonal neighbor")
	assert.InDelta(t, 2*math.Sqrt2, d[4*5+4], 1e-12, "two diagonal steps")
	assert.InDelta(t, 2*math.Sqrt2, d[0], 1e-12, "opposite corner")
}

func TestDistanceFieldEmptyMask(t *testing.T) {
	m := raster.NewLayer(4, 4)
	d := DistanceField(m)
	for i, v := range d {
		assert.True(t, math.IsInf(v, 1), "pixel %d should be unreachable", i)
	}
}

func TestDistanceFieldFullMask(t *testing.T) {
	m := raster.NewLayer(4, 4)
	for i := 3; i < len(m.Pix); i += 4 {
		m.Pix[i] = 255
	}
	d := DistanceField(m)
	for i, v := range d {
		assert.Equal(t, 0.0, v, "pixel %d", i)
	}
}

func TestDistanceFieldMonotonicAlongRow(t *testing.T) {
	// Opaque left column: distance along any row must increase by exactly
	// one per pixel.
	m := raster.NewLayer(8, 3)
	for y := 0; y < 3; y++ {
		m.Pix[y*m.Stride+3] = 255
	}
	d := DistanceField(m)
	for x := 0; x < 8; x++ {
		assert.Equal(t, float64(x), d[1*8+x], "column %d", x)
	}
}

func TestDistanceFieldInsideThreshold(t *testing.T) {
	// Alpha at exactly insideAlpha does not seed; one above does.
	m := raster.NewLayer(3, 1)
	m.Pix[3] = insideAlpha
	m.Pix[7] = insideAlpha + 1
	d := DistanceField(m)
	assert.Equal(t, 1.0, d[0])
	assert.Equal(t, 0.0, d[1])
}

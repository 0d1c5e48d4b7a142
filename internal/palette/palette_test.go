package palette

import (
	"image"
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blocks builds an image of vertical color bands of equal width.
func blocks(w, h int, cols ...color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	band := w / len(cols)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ci := x / band
			if ci >= len(cols) {
				ci = len(cols) - 1
			}
			i := y*img.Stride + x*4
			img.Pix[i] = cols[ci].R
			img.Pix[i+1] = cols[ci].G
			img.Pix[i+2] = cols[ci].B
			img.Pix[i+3] = 255
		}
	}
	return img
}

func TestParseMethod(t *testing.T) {
	assert.Equal(t, MethodKMeans, ParseMethod("kmeans"))
	assert.Equal(t, MethodDominantColor, ParseMethod("dominantcolor"))
	assert.Equal(t, MethodDominantColor, ParseMethod(""))
	assert.Equal(t, MethodDominantColor, ParseMethod("garbage"))
}

func TestMethodString(t *testing.T) {
	assert.Equal(t, "kmeans", MethodKMeans.String())
	assert.Equal(t, "dominantcolor", MethodDominantColor.String())
}

func TestExtractDominantCount(t *testing.T) {
	img := blocks(120, 60,
		color.NRGBA{R: 220, G: 40, B: 40},
		color.NRGBA{R: 40, G: 220, B: 40},
		color.NRGBA{R: 40, G: 40, B: 220},
	)
	got := Extract(img, 3, MethodDominantColor)
	require.Len(t, got, 3)

	// The three bands should be recognizably distinct.
	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			assert.Greater(t, got[i].DistanceLab(got[j]), 0.05, "colors %d and %d collapsed", i, j)
		}
	}
}

func TestExtractKMeansCount(t *testing.T) {
	img := blocks(120, 60,
		color.NRGBA{R: 230, G: 30, B: 30},
		color.NRGBA{R: 30, G: 30, B: 230},
	)
	got := Extract(img, 2, MethodKMeans)
	require.Len(t, got, 2)
	assert.Greater(t, got[0].DistanceLab(got[1]), 0.1)
}

func TestExtractZeroCount(t *testing.T) {
	img := blocks(20, 20, color.NRGBA{R: 100})
	assert.Nil(t, Extract(img, 0, MethodDominantColor))
}

func TestSortByBrightness(t *testing.T) {
	p := []colorful.Color{
		{R: 1, G: 1, B: 1},
		{R: 0, G: 0, B: 0},
		{R: 0.5, G: 0.5, B: 0.5},
	}
	SortByBrightness(p)
	assert.Equal(t, colorful.Color{}, p[0], "darkest first")
	assert.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, p[2], "brightest last")
}

func TestSelectDiversePrefersSpread(t *testing.T) {
	cands := []weightedColor{
		{col: colorful.Color{R: 1, G: 0, B: 0}, weight: 10},
		{col: colorful.Color{R: 0.98, G: 0.02, B: 0}, weight: 9},
		{col: colorful.Color{R: 0, G: 0, B: 1}, weight: 3},
	}
	got := selectDiverse(cands, 2)
	require.Len(t, got, 2)
	assert.Equal(t, cands[0].col, got[0], "heaviest seed")
	assert.Equal(t, cands[2].col, got[1], "distant color beats the near-duplicate")
}

func TestSelectDiverseClampsK(t *testing.T) {
	cands := []weightedColor{{col: colorful.Color{R: 1}, weight: 1}}
	assert.Len(t, selectDiverse(cands, 5), 1)
	assert.Nil(t, selectDiverse(nil, 3))
	assert.Nil(t, selectDiverse(cands, 0))
}

package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/glimmer-tools/glimmer/internal/raster"
	"github.com/glimmer-tools/glimmer/pkg/scene"
)

// Export canvas: a fixed 4:5 raster rendered at scale 1.
const (
	ExportWidth  = 1080
	ExportHeight = 1350
)

// Export renders the scene onto the fixed export canvas and encodes it as
// a PNG byte stream.
func (r *Renderer) Export(src image.Image, p scene.ControlParams, external image.Image) ([]byte, error) {
	return r.RenderPNG(ExportWidth, ExportHeight, src, p, external)
}

// RenderPNG renders at an arbitrary logical canvas size (scale 1) and
// encodes the result as PNG bytes.
func (r *Renderer) RenderPNG(w, h int, src image.Image, p scene.ControlParams, external image.Image) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}
	dst := raster.NewLayer(w, h)
	r.Render(dst, w, h, src, p, external)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

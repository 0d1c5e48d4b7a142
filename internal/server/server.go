// Package server exposes the render pipeline over HTTP: a health probe, a
// multipart render endpoint streaming PNG back, and a palette suggestion
// endpoint.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glimmer-tools/glimmer/internal/bgremove"
	"github.com/glimmer-tools/glimmer/internal/palette"
	"github.com/glimmer-tools/glimmer/internal/render"
	"github.com/glimmer-tools/glimmer/pkg/scene"

	_ "image/jpeg"
	_ "image/png"
)

// maxUploadBytes caps the parsed multipart form size.
const maxUploadBytes = 32 << 20

// Server implements the HTTP API.
type Server struct {
	startTime time.Time
	version   string
	renderer  *render.Renderer
	remover   *bgremove.Client
	logger    *slog.Logger
}

// New creates a server. remover may be nil when no background-removal
// service is configured.
func New(version string, remover *bgremove.Client, logger *slog.Logger) *Server {
	r := render.New()
	if logger != nil {
		r.Logger = logger
	}
	return &Server{
		startTime: time.Now(),
		version:   version,
		renderer:  r,
		remover:   remover,
		logger:    logger,
	}
}

// Routes returns the API router, mounted by the serve command under
// /api/v1.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Post("/render", s.CreateRender)
	r.Post("/palette", s.SuggestPalette)
	return r
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    int       `json:"uptime"`
	Version   string    `json:"version"`
}

// GetHealth reports liveness, uptime and version.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    int(time.Since(s.startTime).Seconds()),
		Version:   s.version,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logf("encode health response", err)
	}
}

// CreateRender renders an uploaded image with the posted parameters and
// streams the PNG back.
//
// Multipart form fields:
//   - image: the source image (required, PNG or JPEG)
//   - mask: a pre-computed alpha mask image (optional)
//   - params: a partial parameter document merged over defaults (optional)
//   - width, height: logical canvas size (optional, default export size)
//   - remote: "1" to try the configured background-removal service when no
//     mask part was uploaded (optional)
func (s *Server) CreateRender(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_FORM", "could not parse multipart form", requestID)
		return
	}

	src, srcData, err := formImage(r, "image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_IMAGE", err.Error(), requestID)
		return
	}

	params := scene.Defaults()
	if doc := r.FormValue("params"); doc != "" {
		params, err = scene.Merge(params, []byte(doc))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "INVALID_PARAMS", err.Error(), requestID)
			return
		}
	}

	var external image.Image
	if m, _, err := formImage(r, "mask"); err == nil {
		external = m
	} else if r.FormValue("remote") == "1" && s.remover != nil {
		external = s.remover.RemoveOrNil(r.Context(), srcData)
	}

	width := formInt(r, "width", render.ExportWidth)
	height := formInt(r, "height", render.ExportHeight)
	if width <= 0 || height <= 0 || width > 4096 || height > 5120 {
		s.writeError(w, http.StatusBadRequest, "INVALID_SIZE", fmt.Sprintf("unsupported canvas size %dx%d", width, height), requestID)
		return
	}

	png, err := s.renderer.RenderPNG(width, height, src, params, external)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "RENDER_FAILED", err.Error(), requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.logf("write render response", err)
	}
}

// PaletteResponse is the palette endpoint payload.
type PaletteResponse struct {
	Method string   `json:"method"`
	Colors []string `json:"colors"`
}

// SuggestPalette extracts suggested orb colors from the uploaded image.
// Form fields: image (required), count (default 5), method
// ("dominantcolor" or "kmeans").
func (s *Server) SuggestPalette(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_FORM", "could not parse multipart form", requestID)
		return
	}
	src, _, err := formImage(r, "image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_IMAGE", err.Error(), requestID)
		return
	}

	count := formInt(r, "count", 5)
	if count < 1 || count > 16 {
		s.writeError(w, http.StatusBadRequest, "INVALID_COUNT", "count must be between 1 and 16", requestID)
		return
	}
	method := palette.ParseMethod(r.FormValue("method"))

	colors := palette.Extract(src, count, method)
	palette.SortByBrightness(colors)

	resp := PaletteResponse{Method: method.String()}
	for _, c := range colors {
		resp.Colors = append(resp.Colors, c.Hex())
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logf("encode palette response", err)
	}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, msg, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: msg, RequestID: requestID}); err != nil {
		s.logf("encode error response", err)
	}
}

func (s *Server) logf(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "err", err)
	}
}

// formImage decodes the named multipart file as an image, returning the
// decoded image and the raw upload bytes.
func formImage(r *http.Request, field string) (image.Image, []byte, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, nil, fmt.Errorf("missing %q file field", field)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %q upload: %w", field, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("decode %q upload: %w", field, err)
	}
	return img, data, nil
}

func formInt(r *http.Request, field string, def int) int {
	v := r.FormValue(field)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

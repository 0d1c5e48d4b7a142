package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Test server setup
func setupTestServer() *httptest.Server {
	r := chi.NewRouter()

	// Add middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	apiServer := New("1.0.0-test", nil, nil)

	// Mount API routes at /api/v1
	r.Mount("/api/v1", apiServer.Routes())

	return httptest.NewServer(r)
}

// testPhotoPNG encodes a small photo: dark background, bright subject
// rectangle in the middle.
func testPhotoPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 60, 75))
	for y := 0; y < 75; y++ {
		for x := 0; x < 60; x++ {
			c := color.NRGBA{R: 10, G: 10, B: 14, A: 255}
			if x >= 15 && x < 45 && y >= 18 && y < 56 {
				c = color.NRGBA{R: 220, G: 180, B: 140, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test photo: %v", err)
	}
	return buf.Bytes()
}

// multipartBody builds a multipart form with the given file and value
// fields, returning the body and content type.
func multipartBody(t *testing.T, files map[string][]byte, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range files {
		part, err := mw.CreateFormFile(field, field+".png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for field, v := range values {
		if err := mw.WriteField(field, v); err != nil {
			t.Fatalf("write form field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	var healthResp HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if healthResp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", healthResp.Status)
	}
	if healthResp.Version != "1.0.0-test" {
		t.Errorf("Expected version '1.0.0-test', got %s", healthResp.Version)
	}
	if healthResp.Uptime < 0 {
		t.Errorf("Expected non-negative uptime, got %d", healthResp.Uptime)
	}
	if time.Since(healthResp.Timestamp) > time.Minute {
		t.Errorf("Timestamp seems too old: %v", healthResp.Timestamp)
	}
}

func TestRenderEndpoint_Success(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	body, contentType := multipartBody(t,
		map[string][]byte{"image": testPhotoPNG(t)},
		map[string]string{
			"width":  "120",
			"height": "150",
			"params": `{"backSilhouette":{"strokeWidthMid":8}}`,
		})

	resp, err := http.Post(server.URL+"/api/v1/render", contentType, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected Content-Type image/png, got %s", ct)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("Failed to decode rendered PNG: %v", err)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 150 {
		t.Errorf("Expected 120x150 image, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestRenderEndpoint_MissingImage(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	body, contentType := multipartBody(t, nil, map[string]string{"width": "100"})

	resp, err := http.Post(server.URL+"/api/v1/render", contentType, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Code != "INVALID_IMAGE" {
		t.Errorf("Expected code INVALID_IMAGE, got %s", errResp.Code)
	}
}

func TestRenderEndpoint_BadParams(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	body, contentType := multipartBody(t,
		map[string][]byte{"image": testPhotoPNG(t)},
		map[string]string{"params": `{broken`})

	resp, err := http.Post(server.URL+"/api/v1/render", contentType, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Code != "INVALID_PARAMS" {
		t.Errorf("Expected code INVALID_PARAMS, got %s", errResp.Code)
	}
}

func TestRenderEndpoint_OversizeCanvas(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	body, contentType := multipartBody(t,
		map[string][]byte{"image": testPhotoPNG(t)},
		map[string]string{"width": "9999", "height": "9999"})

	resp, err := http.Post(server.URL+"/api/v1/render", contentType, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestRenderEndpoint_NotMultipart(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/render", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestPaletteEndpoint(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	body, contentType := multipartBody(t,
		map[string][]byte{"image": testPhotoPNG(t)},
		map[string]string{"count": "3"})

	resp, err := http.Post(server.URL+"/api/v1/palette", contentType, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var palResp PaletteResponse
	if err := json.NewDecoder(resp.Body).Decode(&palResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if palResp.Method != "dominantcolor" {
		t.Errorf("Expected default method dominantcolor, got %s", palResp.Method)
	}
	if len(palResp.Colors) == 0 || len(palResp.Colors) > 3 {
		t.Errorf("Expected 1-3 colors, got %d", len(palResp.Colors))
	}
	for _, c := range palResp.Colors {
		if !strings.HasPrefix(c, "#") || len(c) != 7 {
			t.Errorf("Expected #rrggbb color, got %q", c)
		}
	}
}

func TestPaletteEndpoint_BadCount(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	body, contentType := multipartBody(t,
		map[string][]byte{"image": testPhotoPNG(t)},
		map[string]string{"count": "99"})

	resp, err := http.Post(server.URL+"/api/v1/palette", contentType, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

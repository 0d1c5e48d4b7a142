// Package bgremove calls an optional remote background-removal service.
// Its only contract with the rest of the tool: given an image, come back
// with a mask image or nothing. Every failure mode is an error the caller
// downgrades to "no external mask" — the local heuristic always remains as
// the fallback.
package bgremove

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	_ "image/jpeg"
	_ "image/png"
)

// Client talks to a background-removal HTTP endpoint.
type Client struct {
	URL    string
	APIKey string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New builds a client for the given endpoint. An empty url disables the
// client: Remove returns nil immediately.
func New(url, apiKey string) *Client {
	return &Client{
		URL:    url,
		APIKey: apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Remove submits the encoded image and decodes the returned mask. A nil
// image with nil error means the service is not configured. Any network,
// auth, status or decode failure is returned as an error; callers treat
// that as "no mask" and continue with local extraction.
func (c *Client) Remove(ctx context.Context, imageData []byte) (image.Image, error) {
	if c == nil || c.URL == "" {
		return nil, nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "upload.png")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("X-Api-Key", c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("background removal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("background removal HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read background removal response: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode background removal mask: %w", err)
	}
	return img, nil
}

// RemoveOrNil is Remove with the degrade-to-nil policy applied: failures
// are logged and swallowed.
func (c *Client) RemoveOrNil(ctx context.Context, imageData []byte) image.Image {
	img, err := c.Remove(ctx, imageData)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Warn("background removal unavailable, using local heuristic", "err", err)
		}
		return nil
	}
	return img
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Package recognizer provides text recognition backends for screenshot
// extraction.
package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/fplpicks/internal/domain/extract"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 1 << 20
)

// HTTPRecognizer posts raw image bytes to an image-to-text inference
// endpoint. Responses shaped as {"generated_text": "..."}, a list of those,
// or {"text": "..."} are understood.
type HTTPRecognizer struct {
	client *http.Client
	url    string
	token  string
}

// HTTPOption configures an HTTPRecognizer.
type HTTPOption func(*HTTPRecognizer)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(r *HTTPRecognizer) {
		if c != nil {
			r.client = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(r *HTTPRecognizer) {
		if d > 0 {
			r.client.Timeout = d
		}
	}
}

// WithBearerToken sends an Authorization header.
func WithBearerToken(token string) HTTPOption {
	return func(r *HTTPRecognizer) { r.token = token }
}

// NewHTTP returns a recognizer for url.
func NewHTTP(url string, opts ...HTTPOption) *HTTPRecognizer {
	r := &HTTPRecognizer{
		client: &http.Client{Timeout: defaultHTTPTimeout},
		url:    url,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type generated struct {
	GeneratedText string `json:"generated_text"`
	Text          string `json:"text"`
}

func (g generated) value() string {
	if g.GeneratedText != "" {
		return g.GeneratedText
	}
	return g.Text
}

// Recognize implements extract.Recognizer.
func (r *HTTPRecognizer) Recognize(ctx context.Context, img extract.Image) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", extract.ErrRecognition, err)
	}
	ct := img.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", extract.ErrRecognition, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", extract.ErrRecognition, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", extract.ErrRecognition, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return decode(body)
}

func decode(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []generated
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", fmt.Errorf("%w: decode response: %w", extract.ErrRecognition, err)
		}
		parts := make([]string, 0, len(list))
		for _, g := range list {
			if v := g.value(); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, "\n"), nil
	}

	var one generated
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", extract.ErrRecognition, err)
	}
	return one.value(), nil
}

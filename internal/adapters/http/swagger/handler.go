// Package swagger serves the API reference.
package swagger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"

	"github.com/okian/fplpicks/pkg/logger"
)

// document is the embedded OpenAPI file in both encodings, built once.
type document struct {
	once sync.Once
	yaml []byte
	json []byte
	etag string
	err  error
}

func (d *document) load() error {
	d.once.Do(func() {
		d.yaml = OpenAPI
		sum := sha256.Sum256(OpenAPI)
		d.etag = `"` + hex.EncodeToString(sum[:8]) + `"`

		tree, err := yaml.Parser().Unmarshal(OpenAPI)
		if err != nil {
			d.err = fmt.Errorf("parse openapi.yaml: %w", err)
			return
		}
		maps.IntfaceKeysToStrings(tree)
		if d.json, err = json.Marshal(tree); err != nil {
			d.err = fmt.Errorf("encode openapi.json: %w", err)
		}
	})
	return d.err
}

// Register attaches the API reference routes to mux.
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
//	GET /openapi.json  -> the same document as JSON
func Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	doc := &document{}
	if err := doc.load(); err != nil {
		logger.Get().Error(ctx, "openapi document unavailable as JSON", logger.Error(err))
	}

	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})
	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, doc.etag, "application/yaml; charset=utf-8", doc.yaml)
	})
	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, r *http.Request) {
		if doc.json == nil {
			http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
			return
		}
		serve(w, r, doc.etag, "application/json", doc.json)
	})
}

func serve(w http.ResponseWriter, r *http.Request, etag, contentType string, body []byte) {
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>fplpicks API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`

// Package site serves the embedded squad builder page.
package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error constants.
var (
	ErrServe = errors.New("site serve failed")
)

// Register attaches the page and its assets to mux. Only the exact root and
// /assets/ are claimed so API routes keep their 404s.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	root := NewRootHandler()
	mux.HandleFunc("GET /{$}", root.HandleRoot)
	mux.Handle("GET /assets/", http.FileServer(FS()))
}

// RootHandler serves the index page.
type RootHandler struct {
	fs http.FileSystem
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{fs: FS()}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	if err := h.serveIndex(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *RootHandler) serveIndex(w http.ResponseWriter) error {
	f, err := h.fs.Open("index.html")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}
	return nil
}

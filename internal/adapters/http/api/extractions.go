package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	service "github.com/okian/fplpicks/internal/app"
	"github.com/okian/fplpicks/internal/domain/extract"
)

const imagesField = "images"

// ExtractionDependencies is what the extraction handlers need.
type ExtractionDependencies interface {
	StartExtraction(ctx context.Context, id string, files []extract.Image) (service.JobView, error)
	Job(ctx context.Context, id, jobID string) (service.JobView, error)
}

// ExtractionsHandler accepts screenshot uploads and reports job progress.
type ExtractionsHandler struct {
	deps     ExtractionDependencies
	maxBytes int64
}

// NewExtractionsHandler creates a new extractions handler.
func NewExtractionsHandler(deps ExtractionDependencies, maxBytes int64) *ExtractionsHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &ExtractionsHandler{deps: deps, maxBytes: maxBytes}
}

type rejectedFilesResponse struct {
	errorResponse
	Rejected []string `json:"rejected"`
}

// HandleStart handles POST /sessions/{id}/extractions.
func (h *ExtractionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
			return
		}
		writeFailure(w, WrapKind("extraction_start", ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[imagesField]
	if len(headers) == 0 {
		writeFailure(w, NewKind("extraction_start: no files in field "+imagesField, ErrBadRequest))
		return
	}
	files := make([]extract.Image, 0, len(headers))
	for _, fh := range headers {
		img, err := readPart(fh)
		if err != nil {
			writeFailure(w, WrapKind("extraction_start", ErrBadRequest, err))
			return
		}
		files = append(files, img)
	}

	view, err := h.deps.StartExtraction(r.Context(), r.PathValue("id"), files)
	if err != nil {
		status, code := classify(err)
		if errors.Is(err, service.ErrNoValidImages) {
			writeJSON(w, status, rejectedFilesResponse{
				errorResponse: errorResponse{Code: code, Message: err.Error()},
				Rejected:      view.Rejected,
			})
			return
		}
		writeError(w, status, code, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/sessions/%s/extractions/%s", view.SessionID, view.ID))
	writeJSON(w, http.StatusAccepted, view)
}

// HandleGet handles GET /sessions/{id}/extractions/{job}.
func (h *ExtractionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Job(r.Context(), r.PathValue("id"), r.PathValue("job"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func readPart(fh *multipart.FileHeader) (extract.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return extract.Image{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return extract.Image{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return extract.Image{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

package api

import (
	"context"
	"net/http"

	"github.com/okian/fplpicks/internal/domain/gate"
)

// SubmissionDependencies is what the submission handler needs.
type SubmissionDependencies interface {
	Submit(ctx context.Context, id string, captainID, viceID int) (gate.Submission, error)
}

// SubmissionHandler locks in a squad for the current period.
type SubmissionHandler struct {
	deps SubmissionDependencies
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(deps SubmissionDependencies) *SubmissionHandler {
	return &SubmissionHandler{deps: deps}
}

type submitRequest struct {
	CaptainID     int `json:"captain_id"`
	ViceCaptainID int `json:"vice_captain_id,omitempty"`
}

// HandleSubmit handles POST /sessions/{id}/submission.
func (h *SubmissionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, WrapKind("submission", ErrBadRequest, err))
		return
	}
	sub, err := h.deps.Submit(r.Context(), r.PathValue("id"), req.CaptainID, req.ViceCaptainID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

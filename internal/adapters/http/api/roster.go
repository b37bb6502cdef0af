package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/fplpicks/internal/app"
)

// Import modes accepted by the import endpoint.
const (
	importReplace = "replace"
	importAppend  = "append"
)

// RosterDependencies is what the roster handlers need.
type RosterDependencies interface {
	AddPlayer(ctx context.Context, id string, playerID int) (service.SessionView, error)
	RemovePlayer(ctx context.Context, id string, playerID int) (service.SessionView, error)
	ImportNames(ctx context.Context, id string, names []string, replace bool) (service.ImportResult, error)
}

// RosterHandler edits the squad of a session.
type RosterHandler struct {
	deps RosterDependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

type addPlayerRequest struct {
	PlayerID int `json:"player_id"`
}

type importRequest struct {
	Names []string `json:"names"`
	Mode  string   `json:"mode,omitempty"`
}

// rejectionResponse carries the roster alongside the refusal.
type rejectionResponse struct {
	errorResponse
	Session service.SessionView `json:"session"`
}

// HandleAdd handles POST /sessions/{id}/roster/players.
func (h *RosterHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, WrapKind("roster_add", ErrBadRequest, err))
		return
	}
	if req.PlayerID <= 0 {
		writeFailure(w, NewKind("roster_add: player_id is required", ErrBadRequest))
		return
	}

	view, err := h.deps.AddPlayer(r.Context(), r.PathValue("id"), req.PlayerID)
	if err != nil {
		status, code := classify(err)
		if status == http.StatusConflict && view.ID != "" {
			writeJSON(w, status, rejectionResponse{
				errorResponse: errorResponse{Code: code, Message: err.Error()},
				Session:       view,
			})
			return
		}
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRemove handles DELETE /sessions/{id}/roster/players/{pid}.
func (h *RosterHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(r.PathValue("pid"))
	if err != nil || pid <= 0 {
		writeFailure(w, WrapKind("roster_remove: invalid player id", ErrBadRequest, err))
		return
	}
	view, err := h.deps.RemovePlayer(r.Context(), r.PathValue("id"), pid)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleImport handles POST /sessions/{id}/roster/import.
func (h *RosterHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, WrapKind("roster_import", ErrBadRequest, err))
		return
	}
	replace := true
	switch req.Mode {
	case "", importReplace:
	case importAppend:
		replace = false
	default:
		writeFailure(w, NewKind("roster_import: mode must be replace or append", ErrBadRequest))
		return
	}

	res, err := h.deps.ImportNames(r.Context(), r.PathValue("id"), req.Names, replace)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

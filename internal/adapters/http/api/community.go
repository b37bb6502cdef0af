package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/fplpicks/internal/app"
)

// CommunityDependencies is what the community view needs.
type CommunityDependencies interface {
	Community(ctx context.Context, p int) (service.CommunityView, error)
}

// CommunityHandler serves aggregated ownership for a period.
type CommunityHandler struct {
	deps CommunityDependencies
}

// NewCommunityHandler creates a new community handler.
func NewCommunityHandler(deps CommunityDependencies) *CommunityHandler {
	return &CommunityHandler{deps: deps}
}

// HandleGet handles GET /community?period=. Without a period the current
// one is used.
func (h *CommunityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p := 0
	if raw := r.URL.Query().Get("period"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeFailure(w, WrapKind("community: invalid period", ErrBadRequest, err))
			return
		}
		p = n
	}
	view, err := h.deps.Community(r.Context(), p)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

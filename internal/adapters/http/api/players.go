package api

import (
	"context"
	"net/http"

	"github.com/okian/fplpicks/internal/domain/catalog"
)

// PlayerDependencies is what the player search needs.
type PlayerDependencies interface {
	SearchPlayers(ctx context.Context, query, position string) ([]catalog.Player, error)
}

// PlayersHandler serves the catalog.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleSearch handles GET /players?q=&position=.
func (h *PlayersHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	players, err := h.deps.SearchPlayers(r.Context(), q.Get("q"), q.Get("position"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if players == nil {
		players = []catalog.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

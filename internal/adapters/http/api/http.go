// Package api exposes the squad pool over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/fplpicks/internal/adapters/recognizer"
	"github.com/okian/fplpicks/internal/adapters/repository"
	service "github.com/okian/fplpicks/internal/app"
	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/gate"
	"github.com/okian/fplpicks/internal/domain/period"
	"github.com/okian/fplpicks/internal/domain/roster"
)

const defaultMaxUploadBytes = 20 << 20

// Dependencies required by HTTP handlers. Each handler depends only on the
// slice of behaviour it needs.
type Dependencies interface {
	SessionDependencies
	RosterDependencies
	ExtractionDependencies
	SubmissionDependencies
	PlayerDependencies
	CommunityDependencies
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes bounds the multipart body of an extraction upload.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps           Dependencies
	stats          StatsProvider
	maxUploadBytes int64

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		stats:          statsProvider,
		maxUploadBytes: defaultMaxUploadBytes,
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	sessions := NewSessionsHandler(s.deps)
	rosters := NewRosterHandler(s.deps)
	extractions := NewExtractionsHandler(s.deps, s.maxUploadBytes)
	submissions := NewSubmissionHandler(s.deps)
	players := NewPlayersHandler(s.deps)
	community := NewCommunityHandler(s.deps)

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(sessions.HandleCreate, "session_create"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(sessions.HandleGet, "session_get"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(sessions.HandleDelete, "session_delete"))

	mux.HandleFunc("POST /sessions/{id}/roster/players", MetricsMiddleware(rosters.HandleAdd, "roster_add"))
	mux.HandleFunc("DELETE /sessions/{id}/roster/players/{pid}", MetricsMiddleware(rosters.HandleRemove, "roster_remove"))
	mux.HandleFunc("POST /sessions/{id}/roster/import", MetricsMiddleware(rosters.HandleImport, "roster_import"))

	mux.HandleFunc("POST /sessions/{id}/extractions", MetricsMiddleware(extractions.HandleStart, "extraction_start"))
	mux.HandleFunc("GET /sessions/{id}/extractions/{job}", MetricsMiddleware(extractions.HandleGet, "extraction_get"))

	mux.HandleFunc("POST /sessions/{id}/submission", MetricsMiddleware(submissions.HandleSubmit, "submission"))

	mux.HandleFunc("GET /players", MetricsMiddleware(players.HandleSearch, "players"))
	mux.HandleFunc("GET /community", MetricsMiddleware(community.HandleGet, "community"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a domain error to its status and code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

//nolint:gocyclo // flat error table
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrNoValidImages),
		errors.Is(err, catalog.ErrInvalidPosition),
		errors.Is(err, period.ErrInvalidPeriod):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, catalog.ErrPlayerNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, roster.ErrSquadFull):
		return http.StatusConflict, "squad_full"
	case errors.Is(err, roster.ErrAlreadyPicked):
		return http.StatusConflict, "already_picked"
	case errors.Is(err, roster.ErrOverBudget):
		return http.StatusConflict, "over_budget"
	case errors.Is(err, roster.ErrPositionFull):
		return http.StatusConflict, "position_full"
	case errors.Is(err, roster.ErrClubLimit):
		return http.StatusConflict, "club_limit"
	case errors.Is(err, gate.ErrClosed):
		return http.StatusConflict, "gate_closed"
	case errors.Is(err, repository.ErrPeriodFull):
		return http.StatusConflict, "period_full"
	case errors.Is(err, service.ErrDuplicateJob):
		return http.StatusConflict, "duplicate_job"
	case errors.Is(err, gate.ErrIncomplete):
		return http.StatusUnprocessableEntity, "incomplete_squad"
	case errors.Is(err, gate.ErrCaptainNotPicked),
		errors.Is(err, gate.ErrViceNotPicked),
		errors.Is(err, gate.ErrSameCaptain):
		return http.StatusUnprocessableEntity, "invalid_captain"
	case errors.Is(err, service.ErrBusy), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, gate.ErrFlagStore),
		errors.Is(err, gate.ErrSink),
		errors.Is(err, recognizer.ErrUnavailable),
		errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

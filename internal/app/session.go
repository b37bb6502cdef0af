package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/gate"
	"github.com/okian/fplpicks/internal/domain/match"
	"github.com/okian/fplpicks/internal/domain/roster"
	"github.com/okian/fplpicks/pkg/logger"
	"github.com/okian/fplpicks/pkg/metrics"
)

// session is one squad in progress. mu guards builder, gate and deleted.
type session struct {
	id      string
	mu      sync.Mutex
	builder *roster.Builder
	gate    *gate.Gate
	created time.Time
	deleted bool
}

// SessionView is the read model of a session.
type SessionView struct {
	ID          string           `json:"id"`
	Period      int              `json:"period"`
	Gate        gate.State       `json:"gate"`
	Players     []catalog.Player `json:"players"`
	Constraints roster.Report    `json:"constraints"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Rejection explains why a player could not be added.
type Rejection struct {
	Player catalog.Player `json:"player"`
	Reason string         `json:"reason"`
}

// ImportResult is the outcome of applying matched names to a roster.
type ImportResult struct {
	Match    match.Result     `json:"match"`
	Added    []catalog.Player `json:"added"`
	Rejected []Rejection      `json:"rejected"`
	Session  SessionView      `json:"session"`
}

func (sess *session) view() SessionView {
	return SessionView{
		ID:          sess.id,
		Period:      sess.gate.Period(),
		Gate:        sess.gate.State(),
		Players:     sess.builder.Players(),
		Constraints: sess.builder.Constraints(),
		CreatedAt:   sess.created,
	}
}

func (sess *session) ids() []int {
	ps := sess.builder.Players()
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

// CreateSession starts a new session with an empty squad.
func (s *Service) CreateSession(ctx context.Context) (SessionView, error) {
	sess, err := s.open(ctx, uuid.New().String())
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Session returns the view of session id. A well-formed id unknown to this
// process is re-created and its submission flag re-read.
func (s *Service) Session(ctx context.Context, id string) (SessionView, error) {
	sess, err := s.resolve(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// DeleteSession drops a session and abandons its pending jobs.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	metrics.UpdateActiveSessions(n)

	sess.mu.Lock()
	sess.deleted = true
	sess.mu.Unlock()

	abandoned := s.abandonJobs(id)
	s.logger.Info(ctx, "session deleted",
		logger.String("session_id", id),
		logger.Int("abandoned_jobs", abandoned),
	)
	return nil
}

// AddPlayer adds a catalog player to the session squad. Roster rejections
// leave the squad unchanged and wrap one of the roster sentinel errors.
func (s *Service) AddPlayer(ctx context.Context, id string, playerID int) (SessionView, error) {
	p, err := s.catalog.Lookup(playerID)
	if err != nil {
		return SessionView{}, err
	}
	sess, err := s.resolve(ctx, id)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.builder.Add(p); err != nil {
		metrics.RecordRosterOperation("add", reason(err))
		s.logger.Debug(ctx, "add rejected",
			logger.String("session_id", id),
			logger.Int("player_id", playerID),
			logger.Error(err),
		)
		return sess.view(), err
	}
	metrics.RecordRosterOperation("add", "ok")
	return sess.view(), nil
}

// RemovePlayer removes a player from the session squad.
func (s *Service) RemovePlayer(ctx context.Context, id string, playerID int) (SessionView, error) {
	sess, err := s.resolve(ctx, id)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.builder.Remove(playerID) {
		metrics.RecordRosterOperation("remove", "not_picked")
		return sess.view(), fmt.Errorf("%w: %d not in squad", catalog.ErrPlayerNotFound, playerID)
	}
	metrics.RecordRosterOperation("remove", "ok")
	return sess.view(), nil
}

// ImportNames matches names against the catalog and applies the fitted
// players. With replace the squad is cleared first; otherwise players already
// in the squad are skipped and the rest are added within the remaining budget.
func (s *Service) ImportNames(ctx context.Context, id string, names []string, replace bool) (ImportResult, error) {
	sess, err := s.resolve(ctx, id)
	if err != nil {
		return ImportResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.importLocked(ctx, sess, names, replace), nil
}

func (s *Service) importLocked(ctx context.Context, sess *session, names []string, replace bool) ImportResult {
	var existing []int
	if replace {
		sess.builder.Reset()
	} else {
		existing = sess.ids()
	}

	res := s.matcher.Match(names, existing)
	metrics.RecordNameMatches(len(res.Matched), len(res.Unmatched))

	out := ImportResult{Match: res, Added: []catalog.Player{}, Rejected: []Rejection{}}
	for _, p := range res.Players {
		if err := sess.builder.Add(p); err != nil {
			metrics.RecordRosterOperation("import", reason(err))
			out.Rejected = append(out.Rejected, Rejection{Player: p, Reason: err.Error()})
			continue
		}
		metrics.RecordRosterOperation("import", "ok")
		out.Added = append(out.Added, p)
	}
	out.Session = sess.view()

	s.logger.Info(ctx, "names imported",
		logger.String("session_id", sess.id),
		logger.Int("names", len(names)),
		logger.Int("added", len(out.Added)),
		logger.Int("unmatched", len(res.Unmatched)),
		logger.Int("skipped", len(res.Skipped)),
		logger.Bool("replace", replace),
	)
	return out
}

// resolve returns the live session for id, creating it when id is a valid
// UUID not yet known to this process.
func (s *Service) resolve(ctx context.Context, id string) (*session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}
	return s.open(ctx, id)
}

func (s *Service) lookup(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Service) open(ctx context.Context, id string) (*session, error) {
	g, err := gate.Open(ctx, s.flags, id, s.Period(),
		gate.WithLogger(s.logger.Named("gate")),
		gate.WithClock(s.now),
		gate.WithSink(s.repo),
	)
	if err != nil {
		return nil, err
	}
	fresh := &session{id: id, builder: roster.New(), gate: g, created: s.now().UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	s.sessions[id] = fresh
	metrics.UpdateActiveSessions(len(s.sessions))
	return fresh, nil
}

// rollover moves every open session to period p.
func (s *Service) rollover(ctx context.Context, p int) {
	s.mu.RLock()
	all := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	for _, sess := range all {
		sess.mu.Lock()
		if err := sess.gate.Rollover(ctx, p); err != nil {
			s.logger.Error(ctx, "gate rollover failed",
				logger.String("session_id", sess.id),
				logger.Int("period", p),
				logger.Error(err),
			)
		}
		sess.mu.Unlock()
	}
}

// reason maps an error to a short metric label.
func reason(err error) string {
	switch {
	case errors.Is(err, roster.ErrSquadFull):
		return "squad_full"
	case errors.Is(err, roster.ErrAlreadyPicked):
		return "already_picked"
	case errors.Is(err, roster.ErrOverBudget):
		return "over_budget"
	case errors.Is(err, roster.ErrPositionFull):
		return "position_full"
	case errors.Is(err, roster.ErrClubLimit):
		return "club_limit"
	default:
		return "error"
	}
}

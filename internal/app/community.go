package service

import (
	"context"
	"fmt"

	"github.com/okian/fplpicks/internal/domain/aggregate"
	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/gate"
	"github.com/okian/fplpicks/internal/domain/match"
	"github.com/okian/fplpicks/internal/domain/period"
	"github.com/okian/fplpicks/pkg/logger"
	"github.com/okian/fplpicks/pkg/metrics"
)

// CommunityView is the aggregated view of one period.
type CommunityView struct {
	Period int             `json:"period"`
	Stats  aggregate.Stats `json:"stats"`
}

// Submit locks in the session squad for the current period.
func (s *Service) Submit(ctx context.Context, id string, captainID, viceID int) (gate.Submission, error) {
	sess, err := s.resolve(ctx, id)
	if err != nil {
		return gate.Submission{}, err
	}

	sess.mu.Lock()
	sub, err := sess.gate.Submit(ctx, sess.builder, captainID, viceID)
	sess.mu.Unlock()
	if err != nil {
		return gate.Submission{}, err
	}
	metrics.UpdateSubmissionsStored(s.repo.Count(ctx, sub.Period))

	if s.broadcaster != nil {
		view := s.community(ctx, sub.Period)
		s.broadcaster.Broadcast(ctx, view.Period, view.Stats)
	}
	return sub, nil
}

// Community aggregates the submissions of period p, or of the current period
// when p is zero.
func (s *Service) Community(ctx context.Context, p int) (CommunityView, error) {
	if p < 0 {
		return CommunityView{}, fmt.Errorf("%w: %d", period.ErrInvalidPeriod, p)
	}
	if p == 0 {
		p = s.Period()
	}
	return s.community(ctx, p), nil
}

// community recomputes stats only when the period has new submissions.
func (s *Service) community(ctx context.Context, p int) CommunityView {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	version := s.repo.Version(ctx, p)
	if c, ok := s.cache[p]; ok && c.version == version {
		return CommunityView{Period: p, Stats: c.stats}
	}

	subs, err := s.repo.ByPeriod(ctx, p)
	if err != nil {
		s.logger.Error(ctx, "failed to read submissions", logger.Int("period", p), logger.Error(err))
	}
	stats := aggregate.Compute(subs)

	s.cache[p] = cachedStats{version: version, stats: stats}
	return CommunityView{Period: p, Stats: stats}
}

// SearchPlayers filters the catalog by name or club and optional position.
func (s *Service) SearchPlayers(_ context.Context, query, position string) ([]catalog.Player, error) {
	var pos catalog.Position
	if position != "" {
		p, err := catalog.ParsePosition(position)
		if err != nil {
			return nil, err
		}
		pos = p
	}
	return s.catalog.Search(query, pos), nil
}

// MatchNames previews how names resolve against the catalog without touching
// any squad.
func (s *Service) MatchNames(_ context.Context, names []string) match.Result {
	res := s.matcher.Match(names, nil)
	metrics.RecordNameMatches(len(res.Matched), len(res.Unmatched))
	return res
}

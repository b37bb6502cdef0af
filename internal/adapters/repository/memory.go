package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/fplpicks/internal/domain/gate"
)

type period struct {
	subs    []gate.Submission
	version uint64
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	periods     map[int]*period
	byID        map[string]gate.Submission
	periodLimit int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		periods: make(map[int]*period),
		byID:    make(map[string]gate.Submission),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, sub gate.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[sub.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, sub.ID)
	}
	p, ok := s.periods[sub.Period]
	if !ok {
		p = &period{}
		s.periods[sub.Period] = p
	}
	if s.periodLimit > 0 && len(p.subs) >= s.periodLimit {
		return fmt.Errorf("%w: period %d", ErrPeriodFull, sub.Period)
	}

	p.subs = append(p.subs, sub)
	p.version++
	s.byID[sub.ID] = sub
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.byID, id)
	p := s.periods[sub.Period]
	for i := range p.subs {
		if p.subs[i].ID == id {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			break
		}
	}
	p.version++
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (gate.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byID[id]
	if !ok {
		return gate.Submission{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sub, nil
}

// ByPeriod implements Store. The returned slice is a copy.
func (s *MemoryStore) ByPeriod(_ context.Context, period int) ([]gate.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.periods[period]
	if !ok {
		return []gate.Submission{}, nil
	}
	out := make([]gate.Submission, len(p.subs))
	copy(out, p.subs)
	return out, nil
}

// Version implements Store.
func (s *MemoryStore) Version(_ context.Context, period int) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.periods[period]; ok {
		return p.version
	}
	return 0
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context, period int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.periods[period]; ok {
		return len(p.subs)
	}
	return 0
}

package recognizer

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/fplpicks/internal/domain/extract"
)

const defaultStaticSeed = 42

// StaticRecognizer returns canned text and simulates the latency of a real
// inference service. Used for development and tests.
type StaticRecognizer struct {
	mu         sync.Mutex
	text       string
	byName     map[string]string
	minLatency time.Duration
	maxLatency time.Duration
	rng        *rand.Rand
}

// StaticOption configures a StaticRecognizer.
type StaticOption func(*StaticRecognizer)

// WithText sets the text returned for images without a specific entry.
func WithText(text string) StaticOption {
	return func(s *StaticRecognizer) { s.text = text }
}

// WithImageText returns text for the image with the given name.
func WithImageText(name, text string) StaticOption {
	return func(s *StaticRecognizer) { s.byName[name] = text }
}

// WithLatencyRange sets the simulated latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) StaticOption {
	return func(s *StaticRecognizer) {
		if minLatency >= 0 && maxLatency >= minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// NewStatic returns a StaticRecognizer with no latency.
func NewStatic(opts ...StaticOption) *StaticRecognizer {
	s := &StaticRecognizer{
		byName: make(map[string]string),
		rng:    rand.New(rand.NewSource(defaultStaticSeed)), //nolint:gosec // reproducible latency
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recognize implements extract.Recognizer.
func (s *StaticRecognizer) Recognize(ctx context.Context, img extract.Image) (string, error) {
	if d := s.latency(); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if text, ok := s.byName[img.Name]; ok {
		return text, nil
	}
	return s.text, nil
}

func (s *StaticRecognizer) latency() time.Duration {
	if s.maxLatency <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxLatency == s.minLatency {
		return s.minLatency
	}
	return s.minLatency + time.Duration(s.rng.Int63n(int64(s.maxLatency-s.minLatency)))
}

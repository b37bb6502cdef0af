package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithPeriodLimit caps how many submissions one period may hold. Zero or
// negative means unlimited.
func WithPeriodLimit(n int) Option {
	return func(s *MemoryStore) {
		s.periodLimit = n
	}
}

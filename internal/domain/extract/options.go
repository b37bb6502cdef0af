package extract

import (
	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/pkg/logger"
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithAnchors replaces the club codes used to locate names in a line.
func WithAnchors(anchors []catalog.Club) Option {
	return func(e *Extractor) {
		if len(anchors) > 0 {
			e.anchors = append([]catalog.Club(nil), anchors...)
		}
	}
}

// WithFallbackNames replaces the low-confidence fallback list.
func WithFallbackNames(names []string) Option {
	return func(e *Extractor) {
		if len(names) > 0 {
			e.fallback = append([]string(nil), names...)
		}
	}
}

// WithMinNames sets how many unique names must be found before the
// extracted result is trusted over the fallback list.
func WithMinNames(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minNames = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

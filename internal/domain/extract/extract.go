// Package extract turns team screenshots into candidate player names using an
// external text recognizer and a club-code parsing heuristic.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/pkg/logger"
	"github.com/okian/fplpicks/pkg/metrics"
)

// Default extraction parameters.
const (
	defaultMinNames = 5
	minNameRunes    = 3
	maxNameWords    = 4
)

var disallowedNameChars = regexp.MustCompile(`[^\w\s'\-.]`)

// Image is one uploaded screenshot.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Recognizer transcribes an image into free text. Implementations wrap
// failures with ErrRecognition. It may be slow and must honour ctx.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (string, error)
}

// ImageReport describes what was read from one image.
type ImageReport struct {
	Name  string   `json:"name"`
	Lines int      `json:"lines"`
	Names []string `json:"names"`
	Error string   `json:"error,omitempty"`
}

// Result is the outcome of an extraction run.
type Result struct {
	Names    []string      `json:"names"`
	Fallback bool          `json:"fallback"`
	Images   []ImageReport `json:"images"`
}

// Extractor reads player names out of screenshots.
type Extractor struct {
	recognizer Recognizer
	anchors    []catalog.Club
	fallback   []string
	minNames   int
	logger     logger.Logger
}

// New builds an Extractor around r.
func New(r Recognizer, opts ...Option) *Extractor {
	e := &Extractor{
		recognizer: r,
		anchors:    catalog.ParseAnchors,
		fallback:   catalog.FallbackNames,
		minNames:   defaultMinNames,
		logger:     logger.Get().Named("extract"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FallbackNames returns a copy of the configured fallback list.
func (e *Extractor) FallbackNames() []string {
	return append([]string(nil), e.fallback...)
}

// Extract recognizes images one after another and parses names from every
// line. A failed recognition counts as empty text for that image. When fewer
// than the minimum number of unique names is found across all images, the
// fallback list is returned instead. Only ctx cancellation aborts the run.
func (e *Extractor) Extract(ctx context.Context, images []Image) (Result, error) {
	if len(images) == 0 {
		return Result{}, ErrNoImages
	}

	start := time.Now()
	defer func() {
		metrics.RecordExtractionLatency(float64(time.Since(start).Milliseconds()))
	}()

	seen := newNameSet()
	reports := make([]ImageReport, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("extraction cancelled: %w", err)
		}

		report := ImageReport{Name: img.Name}
		text, err := e.recognizer.Recognize(ctx, img)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, fmt.Errorf("extraction cancelled: %w", ctxErr)
			}
			metrics.RecordRecognitionError()
			e.logger.Warn(ctx, "recognition failed; treating image as empty",
				logger.String("image", img.Name),
				logger.Error(err),
			)
			report.Error = err.Error()
			text = ""
		}

		report.Lines = len(splitLines(text))
		report.Names = e.ParseText(text)
		for _, n := range report.Names {
			seen.add(n)
		}
		reports = append(reports, report)
	}

	res := Result{Names: seen.list(), Images: reports}
	if len(res.Names) < e.minNames {
		e.logger.Info(ctx, "too few names recognised; using fallback list",
			logger.Int("found", len(res.Names)),
			logger.Int("required", e.minNames),
		)
		metrics.RecordExtractionFallback()
		res.Names = e.FallbackNames()
		res.Fallback = true
	}
	return res, nil
}

// ParseText extracts candidate names from a transcription, in order of first
// appearance and without duplicates.
func (e *Extractor) ParseText(text string) []string {
	set := newNameSet()
	for _, line := range splitLines(text) {
		if name, ok := e.nameBeforeAnchor(line); ok {
			set.add(name)
		}
		lower := strings.ToLower(line)
		for _, known := range e.fallback {
			if strings.Contains(lower, strings.ToLower(known)) {
				set.add(known)
			}
		}
	}
	return set.list()
}

// nameBeforeAnchor returns the words preceding the first token that contains
// a club code, cleaned up, if they look like a name.
func (e *Extractor) nameBeforeAnchor(line string) (string, bool) {
	tokens := strings.Fields(line)
	at := -1
	for i, tok := range tokens {
		if e.hasAnchor(tok) {
			at = i
			break
		}
	}
	if at <= 0 {
		return "", false
	}

	name := strings.Join(tokens[:at], " ")
	name = strings.TrimSpace(disallowedNameChars.ReplaceAllString(name, ""))
	if utf8.RuneCountInString(name) < minNameRunes {
		return "", false
	}
	if len(strings.Split(name, " ")) > maxNameWords {
		return "", false
	}
	return name, true
}

func (e *Extractor) hasAnchor(token string) bool {
	up := strings.ToUpper(token)
	for _, a := range e.anchors {
		if strings.Contains(up, string(a)) {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// ValidateImages splits uploads into images and rejected files. A missing
// content type is sniffed from the data.
func ValidateImages(files []Image) (accepted []Image, rejected []string) {
	for _, f := range files {
		ct := f.ContentType
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(f.Data)
		}
		if !strings.HasPrefix(ct, "image/") {
			rejected = append(rejected, f.Name)
			continue
		}
		f.ContentType = ct
		accepted = append(accepted, f)
	}
	return accepted, rejected
}

// nameSet keeps unique names (exact match) in insertion order.
type nameSet struct {
	seen  map[string]struct{}
	order []string
}

func newNameSet() *nameSet {
	return &nameSet{seen: make(map[string]struct{})}
}

func (s *nameSet) add(name string) {
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
}

func (s *nameSet) list() []string {
	return append([]string{}, s.order...)
}

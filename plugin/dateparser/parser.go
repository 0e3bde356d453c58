// Package dateparser finds Czech date expressions and tells which of them open
// or close a date range ("od středy do pátku").
//
// Recognition itself is delegated to an Oracle. This package prepares the text
// for it (Normalize), recovers the positions the oracle does not report (Locate)
// and labels range boundaries (Classify).
//
// Usage:
//
//	p := dateparser.NewExtendedParser(recognizer.NewBuiltin(time.Local))
//	spans, err := p.SearchDates(ctx, "chci dovcu od nedele do 23.12.")
package dateparser

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
)

// ExtendedParser is safe for concurrent use; it keeps no state between calls.
type ExtendedParser struct {
	oracle   Oracle
	settings Settings
	logger   *slog.Logger
}

// Option configures an ExtendedParser.
type Option func(*ExtendedParser)

// WithSettings overrides DefaultSettings.
func WithSettings(settings Settings) Option {
	return func(p *ExtendedParser) {
		p.settings = settings
	}
}

// WithLogger sets the logger used for dropped oracle hits.
func WithLogger(logger *slog.Logger) Option {
	return func(p *ExtendedParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewExtendedParser creates a parser backed by oracle.
func NewExtendedParser(oracle Oracle, opts ...Option) *ExtendedParser {
	p := &ExtendedParser{
		oracle:   oracle,
		settings: DefaultSettings(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Settings returns the resolution policy handed to the oracle.
func (p *ExtendedParser) Settings() Settings {
	return p.settings
}

// Parse returns the one date text means, without its time of day.
// The boolean is false when text is not a date; that is not an error.
func (p *ExtendedParser) Parse(ctx context.Context, text string) (Date, bool, error) {
	normalized := Normalize(text)

	t, ok, err := p.oracle.Resolve(ctx, normalized, p.settings)
	if err != nil {
		return Date{}, false, errors.Wrap(err, "failed to resolve date")
	}
	if !ok {
		return Date{}, false, nil
	}
	return DateOf(t), true, nil
}

// SearchResult is the outcome of Search. Span offsets refer to Normalized.
type SearchResult struct {
	Normalized string     `json:"normalized"`
	Dates      []DateSpan `json:"dates"`
}

// Search finds all dates in text and labels range boundaries.
func (p *ExtendedParser) Search(ctx context.Context, text string) (SearchResult, error) {
	normalized := Normalize(text)

	hits, err := p.oracle.Search(ctx, normalized, p.settings)
	if err != nil {
		return SearchResult{}, errors.Wrap(err, "failed to search dates")
	}

	spans := locate(normalized, hits, p.logger)
	if len(spans) < len(hits) {
		p.logger.Warn("dateparser: dropped oracle hits that were not found in text",
			"hits", len(hits),
			"located", len(spans))
	}

	return SearchResult{
		Normalized: normalized,
		Dates:      Classify(spans, normalized),
	}, nil
}

// SearchDates is Search without the normalized text.
func (p *ExtendedParser) SearchDates(ctx context.Context, text string) ([]DateSpan, error) {
	result, err := p.Search(ctx, text)
	if err != nil {
		return nil, err
	}
	return result.Dates, nil
}

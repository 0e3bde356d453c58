package recognizer

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/czdate/plugin/dateparser"
)

// Fallback asks primary first and, when it fails, answers from secondary.
// Context cancellation is not treated as a failure.
type Fallback struct {
	primary   dateparser.Oracle
	secondary dateparser.Oracle
	logger    *slog.Logger
}

// NewFallback composes two oracles. A nil logger selects slog.Default().
func NewFallback(primary, secondary dateparser.Oracle, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Search implements dateparser.Oracle.
func (f *Fallback) Search(ctx context.Context, text string, settings dateparser.Settings) ([]dateparser.Hit, error) {
	hits, err := f.primary.Search(ctx, text, settings)
	if err == nil || ctx.Err() != nil {
		return hits, err
	}

	f.logger.Warn("date oracle search failed, using fallback", "error", err)
	return f.secondary.Search(ctx, text, settings)
}

// Resolve implements dateparser.Oracle.
func (f *Fallback) Resolve(ctx context.Context, text string, settings dateparser.Settings) (time.Time, bool, error) {
	d, ok, err := f.primary.Resolve(ctx, text, settings)
	if err == nil || ctx.Err() != nil {
		return d, ok, err
	}

	f.logger.Warn("date oracle resolve failed, using fallback", "error", err)
	return f.secondary.Resolve(ctx, text, settings)
}

var _ dateparser.Oracle = (*Fallback)(nil)

package recognizer

import (
	"context"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
	"github.com/pkg/errors"

	"github.com/hrygo/czdate/plugin/dateparser"
)

// GoDateparser recognizes dates with go-dateparser, which carries the Czech
// locale data of the Python dateparser project. It runs in process.
type GoDateparser struct {
	timezone *time.Location
	now      func() time.Time
}

// NewGoDateparser creates a recognizer resolving relative dates in timezone.
func NewGoDateparser(timezone *time.Location) *GoDateparser {
	if timezone == nil {
		timezone = time.Local
	}
	return &GoDateparser{
		timezone: timezone,
		now:      time.Now,
	}
}

// WithClock returns a new recognizer that takes "today" from now.
func (g *GoDateparser) WithClock(now func() time.Time) *GoDateparser {
	return &GoDateparser{
		timezone: g.timezone,
		now:      now,
	}
}

// Search implements dateparser.Oracle.
func (g *GoDateparser) Search(ctx context.Context, text string, settings dateparser.Settings) ([]dateparser.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !supportsCzech(settings) || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	_, results, err := dps.Search(g.config(settings), text)
	if err != nil {
		return nil, errors.Wrap(err, "go-dateparser search failed")
	}

	hits := make([]dateparser.Hit, 0, len(results))
	for _, r := range results {
		if r.Text == "" || r.Date.Time.IsZero() {
			continue
		}
		hits = append(hits, dateparser.Hit{Text: r.Text, Date: g.dayOf(r.Date.Time)})
	}
	return hits, nil
}

// Resolve implements dateparser.Oracle. A text go-dateparser cannot read is
// reported as "no date", not as an error.
func (g *GoDateparser) Resolve(ctx context.Context, text string, settings dateparser.Settings) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	if !supportsCzech(settings) || strings.TrimSpace(text) == "" {
		return time.Time{}, false, nil
	}

	dt, err := dps.Parse(g.config(settings), text)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false, nil
	}
	return g.dayOf(dt.Time), true, nil
}

func (g *GoDateparser) config(settings dateparser.Settings) *dps.Configuration {
	cfg := &dps.Configuration{
		Languages:           settings.Languages,
		DefaultLanguages:    settings.DefaultLanguages,
		CurrentTime:         g.now().In(g.timezone),
		PreferredDateSource: dps.Future,
		DateOrder:           dps.DMY,
	}

	switch settings.PreferDatesFrom {
	case dateparser.PreferPast:
		cfg.PreferredDateSource = dps.Past
	case dateparser.PreferCurrentPeriod:
		cfg.PreferredDateSource = dps.CurrentPeriod
	}
	if settings.DateOrder == dateparser.OrderMDY {
		cfg.DateOrder = dps.MDY
	}
	return cfg
}

// dayOf keeps the calendar day go-dateparser produced, pinned to midnight in
// the recognizer's timezone.
func (g *GoDateparser) dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, g.timezone)
}

// Ensure GoDateparser implements dateparser.Oracle
var _ dateparser.Oracle = (*GoDateparser)(nil)

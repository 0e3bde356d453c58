package dateparser

import (
	"context"
	"time"
)

// Hit is one date expression reported by an Oracle.
// Oracles do not report positions; Text is the substring they matched.
type Hit struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Oracle recognizes date expressions in text.
// Implementations must be safe for concurrent use.
type Oracle interface {
	// Resolve returns the single date the whole text denotes.
	// The boolean is false when the text is not a date.
	Resolve(ctx context.Context, text string, settings Settings) (time.Time, bool, error)

	// Search returns every date expression in textual order.
	Search(ctx context.Context, text string, settings Settings) ([]Hit, error)
}

// DatePreference decides how ambiguous dates (no year, bare weekday) are resolved.
type DatePreference string

const (
	PreferFuture        DatePreference = "future"
	PreferPast          DatePreference = "past"
	PreferCurrentPeriod DatePreference = "current_period"
)

// DateOrder is the component order used for numeric dates.
type DateOrder string

const (
	OrderDMY DateOrder = "DMY"
	OrderMDY DateOrder = "MDY"
)

// Settings carries locale hints and the resolution policy handed to an Oracle.
type Settings struct {
	Languages             []string       `json:"languages"`
	DefaultLanguages      []string       `json:"default_languages"`
	PreferDatesFrom       DatePreference `json:"prefer_dates_from"`
	PreferLocaleDateOrder bool           `json:"prefer_locale_date_order"`
	DateOrder             DateOrder      `json:"date_order"`
}

// Language is the only locale the normalizer and classifier understand.
const Language = "cs"

// DefaultSettings prefers future dates and forces day-month-year order for Czech only.
func DefaultSettings() Settings {
	return Settings{
		Languages:             []string{Language},
		DefaultLanguages:      []string{Language},
		PreferDatesFrom:       PreferFuture,
		PreferLocaleDateOrder: false,
		DateOrder:             OrderDMY,
	}
}

// HasLanguage reports whether recognition is allowed for lang.
func (s Settings) HasLanguage(lang string) bool {
	for _, l := range s.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

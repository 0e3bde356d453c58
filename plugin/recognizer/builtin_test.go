package recognizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/czdate/plugin/dateparser"
)

var prague = time.FixedZone("CET", 3600)

// Tuesday 2026-10-13 10:00.
func fixedBuiltin() *Builtin {
	fixedNow := time.Date(2026, time.October, 13, 10, 0, 0, 0, prague)
	return NewBuiltin(prague).WithClock(func() time.Time { return fixedNow })
}

type wantHit struct {
	text string
	date string
}

func searchHits(t *testing.T, b *Builtin, text string, settings dateparser.Settings) []wantHit {
	t.Helper()
	hits, err := b.Search(context.Background(), text, settings)
	require.NoError(t, err)

	out := make([]wantHit, len(hits))
	for i, h := range hits {
		out[i] = wantHit{text: h.Text, date: h.Date.Format("2006-01-02")}
	}
	return out
}

func TestBuiltin_Search(t *testing.T) {
	b := fixedBuiltin()

	tests := []struct {
		name  string
		input string
		want  []wantHit
	}{
		{"weekday and numeric", "chci dovcu od neděle do 23. 12.", []wantHit{{"neděle", "2026-10-18"}, {"23. 12.", "2026-12-23"}}},
		{"numeric with year", "chci dovcu do 12. 1.2022", []wantHit{{"12. 1.2022", "2022-01-12"}}},
		{"spaced year", "narozen 31. 10. 1965", []wantHit{{"31. 10. 1965", "1965-10-31"}}},
		{"next wednesday", "od středa do dalsi středa", []wantHit{{"středa", "2026-10-14"}, {"dalsi středa", "2026-10-21"}}},
		{"friday", "od středa do pátek", []wantHit{{"středa", "2026-10-14"}, {"pátek", "2026-10-16"}}},
		{"next friday after wednesday", "od středa do dalsiho pátek", []wantHit{{"středa", "2026-10-14"}, {"dalsiho pátek", "2026-10-16"}}},
		{"next monday after friday", "od pátek do pristi pondělí", []wantHit{{"pátek", "2026-10-16"}, {"pristi pondělí", "2026-10-19"}}},
		{"next friday alone", "dalsi pátek", []wantHit{{"dalsi pátek", "2026-10-23"}}},
		{"today is tuesday", "v úterý", []wantHit{{"úterý", "2026-10-13"}}},
		{"next tuesday", "pristi utery", []wantHit{{"pristi utery", "2026-10-20"}}},
		{"last friday", "minuly pátek", []wantHit{{"minuly pátek", "2026-10-09"}}},
		{"relative days", "dnes, zitra nebo vcera", []wantHit{{"dnes", "2026-10-13"}, {"zitra", "2026-10-14"}, {"vcera", "2026-10-12"}}},
		{"accented relative day", "Zítra", []wantHit{{"Zítra", "2026-10-14"}}},
		{"month name", "23. prosince 2027", []wantHit{{"23. prosince 2027", "2027-12-23"}}},
		{"passed month name", "od 1. kvetna", []wantHit{{"1. kvetna", "2027-05-01"}}},
		{"today without year", "13. 10.", []wantHit{{"13. 10.", "2026-10-13"}}},
		{"leap day", "29. 2.", []wantHit{{"29. 2.", "2028-02-29"}}},
		{"iso", "deadline 2026-01-28", []wantHit{{"2026-01-28", "2026-01-28"}}},
		{"repeated", "1. 1. a 1. 1.", []wantHit{{"1. 1.", "2027-01-01"}, {"1. 1.", "2027-01-01"}}},
		{"clock time and decimal", "v 12:30 za 10.30", []wantHit{}},
		{"invalid day", "31. 4.", []wantHit{}},
		{"unknown month word", "1. cast", []wantHit{}},
		{"nothing", "blbost", []wantHit{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchHits(t, b, tt.input, dateparser.DefaultSettings()))
		})
	}
}

func TestBuiltin_ResolutionPolicy(t *testing.T) {
	b := fixedBuiltin()

	t.Run("MDY", func(t *testing.T) {
		s := dateparser.DefaultSettings()
		s.DateOrder = dateparser.OrderMDY
		assert.Equal(t, []wantHit{{"12. 1.", "2026-12-01"}}, searchHits(t, b, "12. 1.", s))
	})

	t.Run("Past", func(t *testing.T) {
		s := dateparser.DefaultSettings()
		s.PreferDatesFrom = dateparser.PreferPast
		assert.Equal(t, []wantHit{{"23. 12.", "2025-12-23"}, {"neděle", "2026-10-11"}}, searchHits(t, b, "23. 12. neděle", s))
	})

	t.Run("CurrentPeriod", func(t *testing.T) {
		s := dateparser.DefaultSettings()
		s.PreferDatesFrom = dateparser.PreferCurrentPeriod
		assert.Equal(t, []wantHit{{"1. 1.", "2026-01-01"}, {"neděle", "2026-10-18"}, {"pondělí", "2026-10-12"}}, searchHits(t, b, "1. 1. neděle pondělí", s))
	})

	t.Run("OtherLanguage", func(t *testing.T) {
		s := dateparser.DefaultSettings()
		s.Languages = []string{"en"}
		assert.Empty(t, searchHits(t, b, "zitra 1. 1.", s))
	})

	t.Run("DefaultLanguagesOnly", func(t *testing.T) {
		s := dateparser.Settings{DefaultLanguages: []string{"cs"}}
		assert.Len(t, searchHits(t, b, "zitra", s), 1)
	})
}

func TestBuiltin_Resolve(t *testing.T) {
	b := fixedBuiltin()
	ctx := context.Background()
	settings := dateparser.DefaultSettings()

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"full date", "31. 10. 1965", "1965-10-31", true},
		{"passed date goes to next year", "6. 1.", "2027-01-06", true},
		{"tomorrow", "zitra", "2026-10-14", true},
		{"today", "dnes", "2026-10-13", true},
		{"surrounding punctuation", " 23. 12.! ", "2026-12-23", true},
		{"no date", "blbost", "", false},
		{"words around the date", "od 1. 1.", "", false},
		{"two dates", "1. 1. a 2. 2.", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := b.Resolve(ctx, tt.input, settings)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
			}
		})
	}
}

func TestBuiltin_WithTimezone(t *testing.T) {
	// 23:30 UTC on Tuesday is already Wednesday in Prague.
	fixedNow := time.Date(2026, time.October, 13, 23, 30, 0, 0, time.UTC)
	b := NewBuiltin(time.UTC).WithClock(func() time.Time { return fixedNow })

	got, ok, err := b.Resolve(context.Background(), "dnes", dateparser.DefaultSettings())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-10-13", got.Format("2006-01-02"))

	got, ok, err = b.WithTimezone(prague).Resolve(context.Background(), "dnes", dateparser.DefaultSettings())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-10-14", got.Format("2006-01-02"))
}

func TestNewBuiltin_NilTimezone(t *testing.T) {
	b := NewBuiltin(nil)
	assert.Equal(t, time.Local, b.timezone)
}

// Package recognizer provides dateparser.Oracle implementations: a rule-based
// Czech recognizer, HTTP sidecar and LLM clients, and wrappers that add
// fallback and caching.
package recognizer

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/hrygo/czdate/plugin/dateparser"
	"github.com/hrygo/czdate/plugin/textfold"
)

// maxYearSearch bounds the search for a valid year of "29. 2.".
const maxYearSearch = 8

// Builtin recognizes Czech dates with fixed rules. It needs no network access.
type Builtin struct {
	timezone *time.Location
	now      func() time.Time
}

// NewBuiltin creates a recognizer resolving relative dates in timezone.
func NewBuiltin(timezone *time.Location) *Builtin {
	if timezone == nil {
		timezone = time.Local
	}
	return &Builtin{
		timezone: timezone,
		now:      time.Now,
	}
}

// WithTimezone returns a new recognizer with the given timezone.
func (b *Builtin) WithTimezone(tz *time.Location) *Builtin {
	return &Builtin{
		timezone: tz,
		now:      b.now,
	}
}

// WithClock returns a new recognizer that takes "today" from now.
func (b *Builtin) WithClock(now func() time.Time) *Builtin {
	return &Builtin{
		timezone: b.timezone,
		now:      now,
	}
}

// candidate is a recognized expression at byte offsets [start, end).
type candidate struct {
	start, end int
	date       time.Time
}

// Search implements dateparser.Oracle.
func (b *Builtin) Search(_ context.Context, text string, settings dateparser.Settings) ([]dateparser.Hit, error) {
	candidates := b.scan(text, settings)

	hits := make([]dateparser.Hit, 0, len(candidates))
	for _, c := range candidates {
		hits = append(hits, dateparser.Hit{Text: text[c.start:c.end], Date: c.date})
	}
	return hits, nil
}

// Resolve implements dateparser.Oracle. The text must consist of exactly one
// date expression, optionally surrounded by whitespace and punctuation.
func (b *Builtin) Resolve(_ context.Context, text string, settings dateparser.Settings) (time.Time, bool, error) {
	candidates := b.scan(text, settings)
	if len(candidates) != 1 {
		return time.Time{}, false, nil
	}

	c := candidates[0]
	if !isFiller(text[:c.start]) || !isFiller(text[c.end:]) {
		return time.Time{}, false, nil
	}
	return c.date, true, nil
}

// scan returns non-overlapping candidates in textual order.
func (b *Builtin) scan(text string, settings dateparser.Settings) []candidate {
	if !supportsCzech(settings) {
		return nil
	}

	today := b.today()

	var all []candidate
	all = append(all, b.matchISO(text)...)
	all = append(all, b.matchNumeric(text, today, settings)...)
	all = append(all, b.matchMonthNames(text, today, settings.PreferDatesFrom)...)
	all = append(all, b.matchWords(text, today, settings.PreferDatesFrom)...)

	// Earliest first; on equal start the longer expression wins.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end > all[j].end
	})

	out := make([]candidate, 0, len(all))
	end := -1
	for _, c := range all {
		if c.start < end {
			continue
		}
		out = append(out, c)
		end = c.end
	}
	return out
}

func (b *Builtin) matchISO(text string) []candidate {
	var out []candidate
	for _, m := range isoDatePattern.FindAllStringSubmatchIndex(text, -1) {
		year := atoi(text[m[2]:m[3]])
		month := atoi(text[m[4]:m[5]])
		day := atoi(text[m[6]:m[7]])
		if d, ok := b.makeDate(year, time.Month(month), day); ok {
			out = append(out, candidate{start: m[0], end: m[1], date: d})
		}
	}
	return out
}

func (b *Builtin) matchNumeric(text string, today time.Time, settings dateparser.Settings) []candidate {
	var out []candidate
	for _, m := range numericDatePattern.FindAllStringSubmatchIndex(text, -1) {
		spaced := m[4] != m[5]
		dotted := m[8] >= 0
		// "10.30" is a decimal or a clock time, not a date.
		if !spaced && !dotted {
			continue
		}

		first := atoi(text[m[2]:m[3]])
		second := atoi(text[m[6]:m[7]])
		day, month := first, second
		if settings.DateOrder == dateparser.OrderMDY {
			day, month = second, first
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}

		var (
			d  time.Time
			ok bool
		)
		if m[10] >= 0 {
			d, ok = b.makeDate(atoi(text[m[10]:m[11]]), time.Month(month), day)
		} else {
			d, ok = b.resolveDayMonth(day, time.Month(month), today, settings.PreferDatesFrom)
		}
		if ok {
			out = append(out, candidate{start: m[0], end: m[1], date: d})
		}
	}
	return out
}

func (b *Builtin) matchMonthNames(text string, today time.Time, pref dateparser.DatePreference) []candidate {
	var out []candidate
	for _, m := range dayMonthNamePattern.FindAllStringSubmatchIndex(text, -1) {
		month, ok := monthNames[fold(text[m[4]:m[5]])]
		if !ok {
			continue
		}
		day := atoi(text[m[2]:m[3]])

		var d time.Time
		if m[6] >= 0 {
			d, ok = b.makeDate(atoi(text[m[6]:m[7]]), month, day)
		} else {
			d, ok = b.resolveDayMonth(day, month, today, pref)
		}
		if ok {
			out = append(out, candidate{start: m[0], end: m[1], date: d})
		}
	}
	return out
}

// matchWords recognizes relative days and weekdays, with an optional modifier
// word directly in front of the weekday ("dalsi streda"). A "next" weekday
// counts from the weekday named before it, so "od streda do dalsi patek" ends on
// the Friday of the same week.
func (b *Builtin) matchWords(text string, today time.Time, pref dateparser.DatePreference) []candidate {
	var (
		out    []candidate
		anchor time.Time // last weekday resolved in text
	)

	tokens := wordPattern.FindAllStringIndex(text, -1)
	for i, tok := range tokens {
		word := fold(text[tok[0]:tok[1]])

		if offset, ok := relativeDays[word]; ok {
			out = append(out, candidate{start: tok[0], end: tok[1], date: today.AddDate(0, 0, offset)})
			continue
		}

		wd, ok := weekdays[word]
		if !ok {
			continue
		}

		start := tok[0]
		date := resolveWeekday(today, wd, pref)

		if i > 0 {
			prev := tokens[i-1]
			if mod, ok := weekdayModifiers[fold(text[prev[0]:prev[1]])]; ok && strings.TrimSpace(text[prev[1]:tok[0]]) == "" {
				start = prev[0]
				date = applyModifier(today, anchor, wd, mod)
			}
		}

		out = append(out, candidate{start: start, end: tok[1], date: date})
		anchor = date
	}
	return out
}

// resolveDayMonth picks the year for a date written without one.
func (b *Builtin) resolveDayMonth(day int, month time.Month, today time.Time, pref dateparser.DatePreference) (time.Time, bool) {
	switch pref {
	case dateparser.PreferPast:
		for y := today.Year(); y >= today.Year()-maxYearSearch; y-- {
			if d, ok := b.makeDate(y, month, day); ok && !d.After(today) {
				return d, true
			}
		}
	case dateparser.PreferCurrentPeriod:
		return b.makeDate(today.Year(), month, day)
	default:
		for y := today.Year(); y <= today.Year()+maxYearSearch; y++ {
			if d, ok := b.makeDate(y, month, day); ok && !d.Before(today) {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// makeDate rejects dates time.Date would silently roll over ("31. 4.").
func (b *Builtin) makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, b.timezone)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func (b *Builtin) today() time.Time {
	now := b.now().In(b.timezone)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.timezone)
}

// resolveWeekday resolves a bare weekday. Today counts as the upcoming and as
// the most recent occurrence.
func resolveWeekday(today time.Time, wd time.Weekday, pref dateparser.DatePreference) time.Time {
	switch pref {
	case dateparser.PreferPast:
		return today.AddDate(0, 0, -((int(today.Weekday()) - int(wd) + 7) % 7))
	case dateparser.PreferCurrentPeriod:
		// Monday-based week.
		monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
		return monday.AddDate(0, 0, (int(wd)+6)%7)
	default:
		return today.AddDate(0, 0, (int(wd)-int(today.Weekday())+7)%7)
	}
}

// applyModifier resolves a weekday preceded by a modifier word. A zero anchor
// means no weekday was named earlier in the text.
func applyModifier(today, anchor time.Time, wd time.Weekday, mod weekdayModifier) time.Time {
	switch mod {
	case modifierNext:
		if anchor.IsZero() {
			anchor = resolveWeekday(today, wd, dateparser.PreferFuture)
		}
		return nextWeekdayAfter(anchor, wd)
	case modifierLast:
		yesterday := today.AddDate(0, 0, -1)
		return resolveWeekday(yesterday, wd, dateparser.PreferPast)
	default:
		return resolveWeekday(today, wd, dateparser.PreferFuture)
	}
}

// nextWeekdayAfter returns the first wd strictly after day.
func nextWeekdayAfter(day time.Time, wd time.Weekday) time.Time {
	return day.AddDate(0, 0, (int(wd)-int(day.Weekday())+6)%7+1)
}

func supportsCzech(settings dateparser.Settings) bool {
	if len(settings.Languages) > 0 {
		return settings.HasLanguage(dateparser.Language)
	}
	if len(settings.DefaultLanguages) == 0 {
		return true
	}
	for _, l := range settings.DefaultLanguages {
		if l == dateparser.Language {
			return true
		}
	}
	return false
}

func fold(word string) string {
	return strings.ToLower(textfold.StripAccents(word))
}

func isFiller(s string) bool {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) == ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Ensure Builtin implements dateparser.Oracle
var _ dateparser.Oracle = (*Builtin)(nil)

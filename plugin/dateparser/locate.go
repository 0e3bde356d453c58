package dateparser

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Locate turns oracle hits into ordered, non-overlapping spans over text.
//
// Each hit is searched at or after the end of the previous span, so repeated
// substrings ("do 1. 1. ... 1. 1.") map to successive occurrences. A hit that
// cannot be found after the cursor is dropped; the remaining hits are kept.
func Locate(text string, hits []Hit) []DateSpan {
	return locate(text, hits, slog.Default())
}

func locate(text string, hits []Hit, logger *slog.Logger) []DateSpan {
	spans := make([]DateSpan, 0, len(hits))

	cursor := 0     // byte offset
	runeCursor := 0 // rune offset of cursor

	for _, hit := range hits {
		if strings.TrimSpace(hit.Text) == "" {
			logger.Debug("dateparser: skipping empty oracle hit")
			continue
		}

		start, end, ok := find(text, hit.Text, cursor)
		if !ok {
			logger.Debug("dateparser: oracle hit not found after cursor",
				"hit", hit.Text,
				"cursor", runeCursor)
			continue
		}

		runeStart := runeCursor + utf8.RuneCountInString(text[cursor:start])
		runeEnd := runeStart + utf8.RuneCountInString(text[start:end])

		spans = append(spans, DateSpan{
			Start:      runeStart,
			End:        runeEnd,
			Value:      text[start:end],
			ParsedDate: DateOf(hit.Date),
		})

		cursor, runeCursor = end, runeEnd
	}

	return spans
}

// find returns the byte range of the first occurrence of sub in text at or after
// from. Oracles may collapse whitespace, so an exact miss is retried with every
// whitespace run in sub matching any whitespace run in text.
func find(text, sub string, from int) (int, int, bool) {
	if idx := strings.Index(text[from:], sub); idx >= 0 {
		start := from + idx
		return start, start + len(sub), true
	}

	re, err := regexp.Compile(whitespaceTolerant(sub))
	if err != nil {
		return 0, 0, false
	}
	loc := re.FindStringIndex(text[from:])
	if loc == nil || loc[0] == loc[1] {
		return 0, 0, false
	}
	return from + loc[0], from + loc[1], true
}

func whitespaceTolerant(sub string) string {
	fields := strings.Fields(sub)
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(quoted, `\s+`)
}

package dateparser

import (
	"regexp"

	"github.com/hrygo/czdate/plugin/textfold"
)

// Cue words are matched against accent-free text.
const (
	startCues = `od|zacatek|zacinajici|zacatkem`
	endCues   = `do|az|konec|koncici|koncem`
	dashes    = `[-–—]`

	// optionalWord lets one modifier sit between the cue and the date ("od pristi streda").
	optionalWord = `(?:\s+[\p{L}\p{N}]+)?`
)

var (
	startCueBefore = regexp.MustCompile(`(?i)\b(?:` + startCues + `)\b` + optionalWord + `\s*$`)
	endCueAfter    = regexp.MustCompile(`(?i)^\s*(?:\b(?:` + endCues + `)\b|` + dashes + `)`)
	endCueBefore   = regexp.MustCompile(`(?i)(?:\b(?:` + endCues + `)\b|` + dashes + `)` + optionalWord + `\s*$`)
)

// Classify returns a copy of spans with Range set from the cue words found in
// the gaps around each span. Only the text between a span and its direct
// neighbours is consulted, so a cue belonging to another date cannot leak in.
//
// A span preceded by a start cue or followed by an end cue is a range start;
// otherwise a span preceded by an end cue is a range end. Spans must be ordered
// by Start, as produced by Locate.
func Classify(spans []DateSpan, text string) []DateSpan {
	out := make([]DateSpan, len(spans))
	copy(out, spans)
	if len(out) == 0 {
		return out
	}

	offsets := runeOffsets(text)
	textEnd := len(offsets) - 1

	for i := range out {
		prevEnd := 0
		if i > 0 {
			prevEnd = out[i-1].End
		}
		nextStart := textEnd
		if i+1 < len(out) {
			nextStart = out[i+1].Start
		}

		previous := sliceRunes(text, offsets, prevEnd, out[i].Start)
		following := sliceRunes(text, offsets, out[i].End, nextStart)

		out[i].Range = classifyGaps(previous, following)
	}

	return out
}

func classifyGaps(previous, following string) RangeRole {
	previous = textfold.StripAccents(previous)
	following = textfold.StripAccents(following)

	switch {
	case startCueBefore.MatchString(previous) || endCueAfter.MatchString(following):
		return RangeStart
	case endCueBefore.MatchString(previous):
		return RangeEnd
	default:
		return RangeNone
	}
}

// runeOffsets maps rune index i to its byte offset; the last entry is len(text).
func runeOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}

// sliceRunes returns text[from:to] in rune offsets, clamped to the text.
func sliceRunes(text string, offsets []int, from, to int) string {
	last := len(offsets) - 1
	from = min(max(from, 0), last)
	to = min(max(to, 0), last)
	if from >= to {
		return ""
	}
	return text[offsets[from]:offsets[to]]
}

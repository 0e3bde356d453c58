package dateparser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spansOf places each value after the previous one, in rune offsets.
func spansOf(t *testing.T, text string, values ...string) []DateSpan {
	t.Helper()

	spans := make([]DateSpan, 0, len(values))
	cursor := 0
	for _, v := range values {
		idx := strings.Index(text[cursor:], v)
		require.GreaterOrEqual(t, idx, 0, "value %q not in %q", v, text)
		start := cursor + idx
		end := start + len(v)
		spans = append(spans, DateSpan{
			Start: utf8.RuneCountInString(text[:start]),
			End:   utf8.RuneCountInString(text[:end]),
			Value: v,
		})
		cursor = end
	}
	return spans
}

func roles(spans []DateSpan) []RangeRole {
	out := make([]RangeRole, len(spans))
	for i, s := range spans {
		out[i] = s.Range
	}
	return out
}

func TestClassify_RangePhrases(t *testing.T) {
	texts := []string{
		"chci dovcu 23. 12. - 1. 1.",
		"chci dovcu 23. 12. – 1. 1.",
		"chci dovcu 23. 12. — 1. 1.",
		"chci dovcu 23. 12. až 1. 1.",
		"chci dovcu 23. 12. az 1. 1.",
		"chci dovcu od 23. 12. do 1. 1.",
		"chci dovcu začínající 23. 12. s koncem 1. 1.",
		"Od 23. 12. DO 1. 1.",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			got := Classify(spansOf(t, text, "23. 12.", "1. 1."), text)
			assert.Equal(t, []RangeRole{RangeStart, RangeEnd}, roles(got))
		})
	}
}

func TestClassify_Partial(t *testing.T) {
	got := Classify([]DateSpan{{Start: 9, End: 16}}, "dovca od 23. 12.")
	assert.Equal(t, RangeStart, got[0].Range)

	got = Classify([]DateSpan{{Start: 9, End: 16}}, "dovca do 23. 12.")
	assert.Equal(t, RangeEnd, got[0].Range)

	got = Classify([]DateSpan{{Start: 6, End: 13}}, "dovca 23. 12.")
	assert.Equal(t, RangeNone, got[0].Range)
}

func TestClassify_Swapped(t *testing.T) {
	text := "dovca do 1. 1. od 23. 12."
	got := Classify([]DateSpan{{Start: 9, End: 14}, {Start: 18, End: 25}}, text)
	assert.Equal(t, []RangeRole{RangeEnd, RangeStart}, roles(got))
}

func TestClassify_StartWinsTieBreak(t *testing.T) {
	text := "do 1. 1. - 5. 5."
	got := Classify(spansOf(t, text, "1. 1.", "5. 5."), text)
	assert.Equal(t, []RangeRole{RangeStart, RangeEnd}, roles(got))
}

func TestClassify_NeighbourBounded(t *testing.T) {
	// Scanning the whole prefix would see "do zitra " before "pozitri".
	text := "do zitra pozitri"
	got := Classify(spansOf(t, text, "zitra", "pozitri"), text)
	assert.Equal(t, []RangeRole{RangeEnd, RangeNone}, roles(got))

	text = "od 1. 1. a 5. 5."
	got = Classify(spansOf(t, text, "1. 1.", "5. 5."), text)
	assert.Equal(t, []RangeRole{RangeStart, RangeNone}, roles(got))
}

func TestClassify_ModifierBetweenCueAndDate(t *testing.T) {
	text := "od pristi středa do dalsi pátek"
	got := Classify(spansOf(t, text, "středa", "pátek"), text)
	assert.Equal(t, []RangeRole{RangeStart, RangeEnd}, roles(got))

	// Two words between the cue and the date are too many.
	text = "od toho pristiho pátek"
	got = Classify(spansOf(t, text, "pátek"), text)
	assert.Equal(t, RangeNone, got[0].Range)
}

func TestClassify_CueMustBeWholeWord(t *testing.T) {
	text := "pod 1. 1. a kodo 5. 5."
	got := Classify(spansOf(t, text, "1. 1.", "5. 5."), text)
	assert.Equal(t, []RangeRole{RangeNone, RangeNone}, roles(got))
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	text := "od 23. 12. do 1. 1."
	in := spansOf(t, text, "23. 12.", "1. 1.")

	out := Classify(in, text)

	assert.Equal(t, []RangeRole{RangeNone, RangeNone}, roles(in))
	assert.Equal(t, []RangeRole{RangeStart, RangeEnd}, roles(out))
	for i := range in {
		assert.Equal(t, in[i].Start, out[i].Start)
		assert.Equal(t, in[i].End, out[i].End)
		assert.Equal(t, in[i].Value, out[i].Value)
	}
}

func TestClassify_Empty(t *testing.T) {
	out := Classify(nil, "nic")
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

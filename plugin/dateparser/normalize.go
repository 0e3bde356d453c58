package dateparser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hrygo/czdate/plugin/textfold"
)

// inflection maps accent-free inflected forms to the form the oracle understands.
type inflection struct {
	forms     []string
	canonical string
}

// inflections is applied in order. Add new word forms here, not in code.
var inflections = []inflection{
	{forms: []string{"dneska"}, canonical: "dnes"},
	{forms: []string{"pondeli", "pondelka"}, canonical: "pondělí"},
	{forms: []string{"utery", "uterka"}, canonical: "úterý"},
	{forms: []string{"streda", "stredy", "stredu"}, canonical: "středa"},
	{forms: []string{"ctvrtek", "ctvrtku", "ctvrtka"}, canonical: "čtvrtek"},
	{forms: []string{"patek", "patky", "patku"}, canonical: "pátek"},
	{forms: []string{"sobota", "soboty", "sobotu", "vikend", "vikendu"}, canonical: "sobota"},
	{forms: []string{"nedele", "nedeli"}, canonical: "neděle"},
}

// sortedInflections holds every entry's forms longest first, so "pondelka" is
// replaced before "pondeli" could match a part of it.
var sortedInflections = func() []inflection {
	out := make([]inflection, len(inflections))
	for i, inf := range inflections {
		forms := append([]string(nil), inf.forms...)
		sort.SliceStable(forms, func(a, b int) bool { return len(forms[a]) > len(forms[b]) })
		out[i] = inflection{forms: forms, canonical: inf.canonical}
	}
	return out
}()

// dottedDayMonth matches an unspaced "23.12." which the oracle would read as 23:12.
var dottedDayMonth = regexp.MustCompile(`\b([1-3][0-9]|[1-9])\.(1[0-2]|[1-9])(\.|\b)`)

// Normalize prepares Czech text for the oracle: accents are stripped, inflected
// day names are rewritten to their nominative form and "d.m." gets a space after
// the day. It never fails and is idempotent.
func Normalize(text string) string {
	text = textfold.StripAccents(text)

	for _, inf := range sortedInflections {
		for _, form := range inf.forms {
			text = strings.ReplaceAll(text, form, inf.canonical)
		}
	}

	// A match consumes the trailing dot, so "1.1.1." needs a second round.
	for {
		repaired := dottedDayMonth.ReplaceAllString(text, "${1}. ${2}${3}")
		if repaired == text {
			return text
		}
		text = repaired
	}
}

package recognizer

import (
	"regexp"
	"time"
)

// Patterns for numeric dates. Word tables below are keyed by accent-free lowercase forms.
var (
	// "23. 12.", "12. 1.2022", "31. 10. 1965", "23. 12"
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})\.(\s?)(\d{1,2})(?:(\.)(?:\s?(\d{4})\b)?|\b)`)

	// "2026-01-28"
	isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)

	// "23. prosince", "1. kvetna 2027"; the word is checked against monthNames.
	dayMonthNamePattern = regexp.MustCompile(`\b(\d{1,2})\.\s?(\p{L}+)(?:\s(\d{4})\b)?`)

	// wordPattern splits text into tokens for the word tables.
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// relativeDays maps relative day words to day offsets from today.
var relativeDays = map[string]int{
	"dnes":        0,
	"dneska":      0,
	"zitra":       1,
	"pozitri":     2,
	"vcera":       -1,
	"predevcirem": -2,
}

// weekdays maps nominative and common inflected weekday forms.
var weekdays = map[string]time.Weekday{
	"pondeli":  time.Monday,
	"pondelka": time.Monday,
	"utery":    time.Tuesday,
	"uterka":   time.Tuesday,
	"streda":   time.Wednesday,
	"stredy":   time.Wednesday,
	"stredu":   time.Wednesday,
	"ctvrtek":  time.Thursday,
	"ctvrtka":  time.Thursday,
	"ctvrtku":  time.Thursday,
	"patek":    time.Friday,
	"patku":    time.Friday,
	"patky":    time.Friday,
	"sobota":   time.Saturday,
	"soboty":   time.Saturday,
	"sobotu":   time.Saturday,
	"nedele":   time.Sunday,
	"nedeli":   time.Sunday,
}

// weekdayModifier shifts a weekday away from its default resolution.
type weekdayModifier int

const (
	modifierThis weekdayModifier = iota
	modifierNext
	modifierLast
)

// weekdayModifiers lists words that may directly precede a weekday.
var weekdayModifiers = map[string]weekdayModifier{
	"tento":    modifierThis,
	"tuto":     modifierThis,
	"toto":     modifierThis,
	"tenhle":   modifierThis,
	"tuhle":    modifierThis,
	"pristi":   modifierNext,
	"pristiho": modifierNext,
	"pristim":  modifierNext,
	"dalsi":    modifierNext,
	"dalsiho":  modifierNext,
	"dalsim":   modifierNext,
	"minuly":   modifierLast,
	"minulou":  modifierLast,
	"minule":   modifierLast,
	"minuleho": modifierLast,
	"minulem":  modifierLast,
}

// monthNames maps nominative and genitive month names.
var monthNames = map[string]time.Month{
	"leden":     time.January,
	"ledna":     time.January,
	"unor":      time.February,
	"unora":     time.February,
	"brezen":    time.March,
	"brezna":    time.March,
	"duben":     time.April,
	"dubna":     time.April,
	"kveten":    time.May,
	"kvetna":    time.May,
	"cerven":    time.June,
	"cervna":    time.June,
	"cervenec":  time.July,
	"cervence":  time.July,
	"srpen":     time.August,
	"srpna":     time.August,
	"zari":      time.September,
	"rijen":     time.October,
	"rijna":     time.October,
	"listopad":  time.November,
	"listopadu": time.November,
	"prosinec":  time.December,
	"prosince":  time.December,
}

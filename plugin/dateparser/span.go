package dateparser

import (
	"encoding/json"
	"time"
)

// RangeRole marks a span as one boundary of an implied date interval.
// The zero value means the span stands alone.
type RangeRole string

const (
	RangeNone  RangeRole = ""
	RangeStart RangeRole = "start"
	RangeEnd   RangeRole = "end"
)

// dateLayout is the wire format of Date.
const dateLayout = "2006-01-02"

// Date is a calendar date without a time component.
// The embedded time is always midnight in the location the date was resolved in.
type Date struct {
	time.Time
}

// DateOf drops the clock part of t.
func DateOf(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

// NewDate builds a date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Equal reports whether both dates denote the same calendar day, regardless of location.
func (d Date) Equal(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month() && d.Day() == other.Day()
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// DateSpan is one recognized date occurrence in normalized text.
// Start and End are half-open character (rune) offsets.
type DateSpan struct {
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Value      string    `json:"value"`
	ParsedDate Date      `json:"parsed_date"`
	Range      RangeRole `json:"range,omitempty"`
}

// HasRange reports whether the classifier assigned a range role.
func (s DateSpan) HasRange() bool {
	return s.Range != RangeNone
}

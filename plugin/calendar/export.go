// Package calendar exports recognized date spans as iCalendar all-day events.
package calendar

import (
	"bytes"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/czdate/plugin/dateparser"
)

const productID = "-//czdate//Czech date extraction//CS"

// Event is one all-day event. End is inclusive.
type Event struct {
	Start dateparser.Date
	End   dateparser.Date
	Text  string
}

// Events turns spans into events. A span marked as range start, followed directly
// by a range end on the same day or later, becomes one multi-day event; every
// other span becomes a single-day event.
func Events(spans []dateparser.DateSpan) []Event {
	events := make([]Event, 0, len(spans))
	for i := 0; i < len(spans); i++ {
		s := spans[i]
		if s.Range == dateparser.RangeStart && i+1 < len(spans) {
			next := spans[i+1]
			if next.Range == dateparser.RangeEnd && !next.ParsedDate.Before(s.ParsedDate.Time) {
				events = append(events, Event{Start: s.ParsedDate, End: next.ParsedDate, Text: s.Value + " – " + next.Value})
				i++
				continue
			}
		}
		events = append(events, Event{Start: s.ParsedDate, End: s.ParsedDate, Text: s.Value})
	}
	return events
}

// NewCalendar builds a VCALENDAR with one VEVENT per event. summary is used as
// the event title; an empty summary falls back to the matched text.
func NewCalendar(events []Event, summary string, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, ev := range events {
		title := summary
		if title == "" {
			title = ev.Text
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, uuid.New().String())
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetText(ical.PropSummary, title)
		event.Props.SetDate(ical.PropDateTimeStart, ev.Start.Time)
		// DTEND of an all-day event is exclusive.
		event.Props.SetDate(ical.PropDateTimeEnd, ev.End.AddDate(0, 0, 1))
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// Encode serializes the spans as an iCalendar document.
func Encode(spans []dateparser.DateSpan, summary string, stamp time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(NewCalendar(Events(spans), summary, stamp)); err != nil {
		return nil, errors.Wrap(err, "failed to encode calendar")
	}
	return buf.Bytes(), nil
}

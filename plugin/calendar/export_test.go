package calendar

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/czdate/plugin/dateparser"
)

func span(value string, y int, m time.Month, d int, role dateparser.RangeRole) dateparser.DateSpan {
	return dateparser.DateSpan{Value: value, ParsedDate: dateparser.NewDate(y, m, d), Range: role}
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name  string
		spans []dateparser.DateSpan
		want  []Event
	}{
		{
			name: "range",
			spans: []dateparser.DateSpan{
				span("neděle", 2026, 10, 18, dateparser.RangeStart),
				span("23. 12.", 2026, 12, 23, dateparser.RangeEnd),
			},
			want: []Event{
				{Start: dateparser.NewDate(2026, 10, 18), End: dateparser.NewDate(2026, 12, 23), Text: "neděle – 23. 12."},
			},
		},
		{
			name: "single dates",
			spans: []dateparser.DateSpan{
				span("zitra", 2026, 10, 14, dateparser.RangeNone),
				span("pátek", 2026, 10, 16, dateparser.RangeEnd),
			},
			want: []Event{
				{Start: dateparser.NewDate(2026, 10, 14), End: dateparser.NewDate(2026, 10, 14), Text: "zitra"},
				{Start: dateparser.NewDate(2026, 10, 16), End: dateparser.NewDate(2026, 10, 16), Text: "pátek"},
			},
		},
		{
			name: "end before start stays separate",
			spans: []dateparser.DateSpan{
				span("23. 12.", 2026, 12, 23, dateparser.RangeStart),
				span("1. 1.", 2026, 1, 1, dateparser.RangeEnd),
			},
			want: []Event{
				{Start: dateparser.NewDate(2026, 12, 23), End: dateparser.NewDate(2026, 12, 23), Text: "23. 12."},
				{Start: dateparser.NewDate(2026, 1, 1), End: dateparser.NewDate(2026, 1, 1), Text: "1. 1."},
			},
		},
		{
			name: "dangling start",
			spans: []dateparser.DateSpan{
				span("středa", 2026, 10, 14, dateparser.RangeStart),
			},
			want: []Event{
				{Start: dateparser.NewDate(2026, 10, 14), End: dateparser.NewDate(2026, 10, 14), Text: "středa"},
			},
		},
		{
			name:  "empty",
			spans: nil,
			want:  []Event{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Events(tt.spans)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.True(t, tt.want[i].Start.Equal(got[i].Start), "start %d", i)
				assert.True(t, tt.want[i].End.Equal(got[i].End), "end %d", i)
				assert.Equal(t, tt.want[i].Text, got[i].Text)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	spans := []dateparser.DateSpan{
		span("neděle", 2026, 10, 18, dateparser.RangeStart),
		span("23. 12.", 2026, 12, 23, dateparser.RangeEnd),
		span("zitra", 2026, 10, 14, dateparser.RangeNone),
	}
	stamp := time.Date(2026, 10, 13, 10, 0, 0, 0, time.UTC)

	data, err := Encode(spans, "Dovolená", stamp)
	require.NoError(t, err)

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Dovolená", summary)

	assert.Equal(t, "20261018", events[0].Props.Get(ical.PropDateTimeStart).Value)
	assert.Equal(t, "20261224", events[0].Props.Get(ical.PropDateTimeEnd).Value)
	assert.Equal(t, "20261014", events[1].Props.Get(ical.PropDateTimeStart).Value)
	assert.Equal(t, "20261015", events[1].Props.Get(ical.PropDateTimeEnd).Value)

	assert.Contains(t, string(data), "PRODID:"+productID)
}

func TestEncode_DefaultSummary(t *testing.T) {
	data, err := Encode([]dateparser.DateSpan{span("zitra", 2026, 10, 14, dateparser.RangeNone)}, "", time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(data), "SUMMARY:zitra")
}

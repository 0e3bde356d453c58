// Package timezone resolves the reference timezone used to decide what "today" is.
package timezone

import (
	"fmt"
	"time"

	// Embedded zone database so containers without /usr/share/zoneinfo still resolve Europe/Prague.
	_ "time/tzdata"
)

// TimezonePrague is the default reference timezone.
const TimezonePrague = "Europe/Prague"

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Prague").
// "Local" selects the host timezone. If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	switch tz {
	case "", "UTC":
		return UTC, nil
	case "Local":
		return time.Local, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}

// Today returns the start of the current day in the given timezone.
func Today(tz *time.Location) time.Time {
	return StartOfDay(time.Now(), tz)
}

// LocationPrague is the pre-loaded default location.
var LocationPrague = MustParseTimezone(TimezonePrague)

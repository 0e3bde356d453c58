package recognizer

import (
	"time"

	"github.com/pkg/errors"
)

// ErrUnavailable marks failures of a remote oracle: unreachable, bad status
// or an unreadable answer. Callers test for it with errors.Is.
var ErrUnavailable = errors.New("date oracle unavailable")

// isoDate is the wire format remote oracles use for dates.
const isoDate = "2006-01-02"

func parseISODate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(isoDate, s, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrUnavailable, "invalid date %q", s)
	}
	return t, nil
}

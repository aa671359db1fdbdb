package booking

import (
	"fmt"
	"strings"
	"time"
)

// Stored date and time are two independent fields decomposed from one
// selected instant under a fixed UTC convention: the UTC calendar date
// and the UTC time-of-day. Callers in a non-UTC zone can see the calendar
// day shift relative to their wall clock.

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05.000"
)

// SplitInstant decomposes an instant into the stored date and time fields.
func SplitInstant(t time.Time) (date, clock string) {
	utc := t.UTC()
	return utc.Format(dateLayout), utc.Format(clockLayout) + "Z"
}

// CombineDateTime reconstructs an instant from the stored pair: calendar
// date from the date field, hour and minute from the time field, in UTC.
// Minute precision by design. The result is display-only and must never
// be persisted back.
func CombineDateTime(date, clock string) (time.Time, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse booking date %q: %w", date, err)
	}
	c, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, time.UTC), nil
}

func parseClock(clock string) (time.Time, error) {
	trimmed := strings.TrimSuffix(clock, "Z")
	for _, layout := range []string{clockLayout, "15:04:05", "15:04"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse booking time %q: unrecognized format", clock)
}

// DisplayDateTime renders the stored pair for the profile screen, e.g.
// "03/01/2025" and "02:30 PM".
func DisplayDateTime(date, clock string) (displayDate, displayTime string, err error) {
	t, err := CombineDateTime(date, clock)
	if err != nil {
		return "", "", err
	}
	return t.Format("01/02/2006"), t.Format("03:04 PM"), nil
}

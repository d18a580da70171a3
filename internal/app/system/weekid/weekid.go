// Package weekid formats ISO-8601 week identifiers such as "2025-W03".
package weekid

import (
	"fmt"
	"time"
)

// Key returns the ISO week of t (in UTC) as "YYYY-Www". The year is the
// ISO week-numbering year, so 2024-12-30 is "2025-W01".
func Key(t time.Time) string {
	y, w := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// Bounds returns the Monday 00:00 UTC that starts t's ISO week and the
// last instant of the following Sunday.
func Bounds(t time.Time) (start, end time.Time) {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // days since Monday
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start = day.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

package notify

import (
	"time"

	"github.com/mvasilev/concord/internal/models"
)

// InQuietHours reports whether now falls inside the start..end window.
// Bounds are "HH:mm" on the same wall clock as now; an absent or malformed
// bound disables quiet hours rather than erroring. start == end is a
// zero-width window and is never active. A window with start > end crosses
// midnight and is active from start until end the next day.
func InQuietHours(start, end string, now time.Time) bool {
	s, ok := ParseClock(start)
	if !ok {
		return false
	}
	e, ok := ParseClock(end)
	if !ok {
		return false
	}

	n := now.Hour()*60 + now.Minute()
	switch {
	case s == e:
		return false
	case s < e:
		return s <= n && n < e
	default:
		return n >= s || n < e
	}
}

// QuietHoursActive evaluates a settings record's quiet-hours window.
func QuietHoursActive(s models.NotificationSettings, now time.Time) bool {
	return InQuietHours(s.QuietHoursStart, s.QuietHoursEnd, now)
}

// ParseClock parses "HH:mm" into minutes since midnight.
func ParseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

package notify

import (
	"fmt"
	"time"
)

// MuteExpired reports whether a mute deadline has passed. A nil deadline
// covers both "not muted" and "muted until manually unmuted", and neither
// of those is an expired mute. A deadline exactly at now has not expired.
func MuteExpired(mutedUntil *time.Time, now time.Time) bool {
	if mutedUntil == nil {
		return false
	}
	return mutedUntil.Before(now)
}

// muteDurations are the duration tokens accepted when constructing a mute
// override. "forever" maps to zero and yields a nil deadline.
var muteDurations = map[string]time.Duration{
	"15m":     15 * time.Minute,
	"1h":      time.Hour,
	"8h":      8 * time.Hour,
	"24h":     24 * time.Hour,
	"forever": 0,
}

// MuteDeadline converts a duration token into an absolute mute deadline
// relative to now. "forever" returns nil. Unknown tokens are a validation
// error for the caller to surface.
func MuteDeadline(duration string, now time.Time) (*time.Time, error) {
	d, ok := muteDurations[duration]
	if !ok {
		return nil, fmt.Errorf("invalid mute duration %q", duration)
	}
	if d == 0 {
		return nil, nil
	}
	t := now.Add(d)
	return &t, nil
}

// ValidMuteDuration reports whether the token is an accepted mute duration.
func ValidMuteDuration(duration string) bool {
	_, ok := muteDurations[duration]
	return ok
}

// Package notify computes effective notification behavior: which level
// applies to a message for a given user, whether a mute has lapsed, and
// whether the user's quiet-hours window is active. Everything here is a
// pure function over already-loaded settings; current time is always
// passed in by the caller, and results must not be cached across requests
// since mute expiry alone can change the answer.
package notify

// Level is a notification level from the closed set.
type Level string

const (
	LevelAll      Level = "all"
	LevelMentions Level = "mentions"
	LevelNothing  Level = "nothing"
)

// Valid reports whether l is one of the recognized levels.
func (l Level) Valid() bool {
	switch l {
	case LevelAll, LevelMentions, LevelNothing:
		return true
	}
	return false
}

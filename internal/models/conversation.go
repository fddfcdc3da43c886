package models

import "time"

// Conversation is a direct-message channel between two users.
type Conversation struct {
	ID        int64     `json:"id,string"`
	UserA     int64     `json:"user_a,string"`
	UserB     int64     `json:"user_b,string"`
	CreatedAt time.Time `json:"created_at"`
}

// Includes reports whether userID is one of the two participants.
func (c Conversation) Includes(userID int64) bool {
	return c.UserA == userID || c.UserB == userID
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID int64) int64 {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}

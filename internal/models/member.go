package models

import "time"

// Member is a user's membership in one server. Roles holds the ids of the
// member's assigned roles; the row is created on the first role grant and
// removed when the member leaves or the last role is taken away.
type Member struct {
	ServerID int64     `json:"server_id,string"`
	UserID   int64     `json:"user_id,string"`
	Nickname *string   `json:"nickname,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
	Roles    []int64   `json:"roles"`
}

package models

import "time"

// Message lives in either a server channel (ChannelID set) or a direct
// conversation (ConversationID set). Mentions lists user ids named in the
// content, resolved at send time.
type Message struct {
	ID             int64      `json:"id,string"`
	ChannelID      int64      `json:"channel_id,string,omitempty"`
	ConversationID int64      `json:"conversation_id,string,omitempty"`
	AuthorID       int64      `json:"author_id,string"`
	Content        string     `json:"content"`
	Mentions       []int64    `json:"mentions,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
}

type MessageWithAuthor struct {
	Message
	AuthorUsername    string  `json:"author_username"`
	AuthorDisplayName string  `json:"author_display_name"`
	AuthorAvatarHash  *string `json:"author_avatar_hash,omitempty"`
}

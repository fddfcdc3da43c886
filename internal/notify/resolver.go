package notify

import (
	"time"

	"github.com/mvasilev/concord/internal/models"
)

// Context describes where a message originated. Channel messages carry
// ChannelID plus its parent ServerID; direct messages carry only
// ConversationID. The two shapes are mutually exclusive per resolution
// call: a context with a channel or server id never consults conversation
// overrides, and vice versa.
type Context struct {
	ChannelID      int64
	ServerID       int64
	ConversationID int64
}

// ChannelContext builds the context for a message in a server channel.
func ChannelContext(channelID, serverID int64) Context {
	return Context{ChannelID: channelID, ServerID: serverID}
}

// ConversationContext builds the context for a direct message.
func ConversationContext(conversationID int64) Context {
	return Context{ConversationID: conversationID}
}

// ResolveLevel picks the effective notification level for a message.
// Tiers, most specific first: channel override, server override,
// conversation override, global default. A tier is skipped when no
// override exists for the id or when the override's mute deadline has
// expired; an expired override never blocks fallthrough to the next tier.
// Quiet hours are not part of level selection — suppression during quiet
// hours is a separate delivery decision.
func ResolveLevel(s models.NotificationSettings, ctx Context, now time.Time) Level {
	if ctx.ChannelID != 0 || ctx.ServerID != 0 {
		if l, ok := activeOverride(s.ChannelOverrides, ctx.ChannelID, now); ok {
			return l
		}
		if l, ok := activeOverride(s.ServerOverrides, ctx.ServerID, now); ok {
			return l
		}
	} else if l, ok := activeOverride(s.ConversationOverrides, ctx.ConversationID, now); ok {
		return l
	}

	if l := Level(s.GlobalNotifications); l.Valid() {
		return l
	}
	return LevelAll
}

// activeOverride returns the override's level if one exists for id and its
// mute has not lapsed.
func activeOverride(m map[int64]models.NotificationOverride, id int64, now time.Time) (Level, bool) {
	if id == 0 {
		return "", false
	}
	o, ok := m[id]
	if !ok {
		return "", false
	}
	if MuteExpired(o.MutedUntil, now) {
		return "", false
	}
	l := Level(o.Level)
	if !l.Valid() {
		return "", false
	}
	return l, true
}

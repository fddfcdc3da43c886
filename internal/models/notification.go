package models

import "time"

// NotificationOverride replaces a user's global notification level for one
// server, channel, or conversation. A nil MutedUntil on a mute-style
// override means the mute holds until the user lifts it by hand.
type NotificationOverride struct {
	Level      string     `json:"level"`
	MutedUntil *time.Time `json:"muted_until,omitempty"`
}

// NotificationSettings is the single per-user notification document. The
// three override maps are keyed by server, channel, and conversation id
// respectively and are independent of each other. Quiet-hours bounds are
// "HH:mm" wall-clock strings; empty means unset.
type NotificationSettings struct {
	UserID                int64                          `json:"user_id,string"`
	GlobalNotifications   string                         `json:"global_notifications"`
	ServerOverrides       map[int64]NotificationOverride `json:"server_overrides"`
	ChannelOverrides      map[int64]NotificationOverride `json:"channel_overrides"`
	ConversationOverrides map[int64]NotificationOverride `json:"conversation_overrides"`
	QuietHoursStart       string                         `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd         string                         `json:"quiet_hours_end,omitempty"`
	DesktopEnabled        bool                           `json:"desktop_enabled"`
	PushEnabled           bool                           `json:"push_enabled"`
	SoundEnabled          bool                           `json:"sound_enabled"`
}

// DefaultNotificationSettings returns the settings a user starts with.
func DefaultNotificationSettings(userID int64) NotificationSettings {
	return NotificationSettings{
		UserID:                userID,
		GlobalNotifications:   "all",
		ServerOverrides:       map[int64]NotificationOverride{},
		ChannelOverrides:      map[int64]NotificationOverride{},
		ConversationOverrides: map[int64]NotificationOverride{},
		DesktopEnabled:        true,
		PushEnabled:           true,
		SoundEnabled:          true,
	}
}

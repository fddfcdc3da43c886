package service

import (
	"context"
	"time"

	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/notify"
)

// NotificationService manages per-user notification preferences: level
// overrides, mutes, and quiet hours.
type NotificationService struct {
	settings      database.NotificationSettingsRepository
	channels      database.ChannelRepository
	conversations database.ConversationRepository
	members       database.MemberRepository
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(
	settings database.NotificationSettingsRepository,
	channels database.ChannelRepository,
	conversations database.ConversationRepository,
	members database.MemberRepository,
) *NotificationService {
	return &NotificationService{
		settings:      settings,
		channels:      channels,
		conversations: conversations,
		members:       members,
	}
}

// GetSettings returns the user's notification settings, defaults included.
func (s *NotificationService) GetSettings(ctx context.Context, userID int64) (*models.NotificationSettings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return settings, nil
}

// SettingsUpdate carries the updatable global preference fields; nil means
// unchanged.
type SettingsUpdate struct {
	GlobalNotifications *string
	QuietHoursStart     *string
	QuietHoursEnd       *string
	DesktopEnabled      *bool
	PushEnabled         *bool
	SoundEnabled        *bool
}

// UpdateSettings patches the user's global notification preferences.
// Quiet-hours bounds must both be HH:mm clock times and must be set or
// cleared together; an empty string clears a bound.
func (s *NotificationService) UpdateSettings(ctx context.Context, userID int64, update SettingsUpdate) (*models.NotificationSettings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	if update.GlobalNotifications != nil {
		if !notify.Level(*update.GlobalNotifications).Valid() {
			return nil, BadRequest("INVALID_LEVEL", "level must be one of all, mentions, nothing")
		}
		settings.GlobalNotifications = *update.GlobalNotifications
	}
	if update.QuietHoursStart != nil {
		if *update.QuietHoursStart != "" {
			if _, ok := notify.ParseClock(*update.QuietHoursStart); !ok {
				return nil, BadRequest("INVALID_QUIET_HOURS", "quiet hours start must be a HH:mm clock time")
			}
		}
		settings.QuietHoursStart = *update.QuietHoursStart
	}
	if update.QuietHoursEnd != nil {
		if *update.QuietHoursEnd != "" {
			if _, ok := notify.ParseClock(*update.QuietHoursEnd); !ok {
				return nil, BadRequest("INVALID_QUIET_HOURS", "quiet hours end must be a HH:mm clock time")
			}
		}
		settings.QuietHoursEnd = *update.QuietHoursEnd
	}
	if (settings.QuietHoursStart == "") != (settings.QuietHoursEnd == "") {
		return nil, BadRequest("INVALID_QUIET_HOURS", "quiet hours start and end must be set together")
	}
	if update.DesktopEnabled != nil {
		settings.DesktopEnabled = *update.DesktopEnabled
	}
	if update.PushEnabled != nil {
		settings.PushEnabled = *update.PushEnabled
	}
	if update.SoundEnabled != nil {
		settings.SoundEnabled = *update.SoundEnabled
	}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return settings, nil
}

// OverrideTarget names what a level override or mute applies to.
type OverrideTarget string

const (
	TargetServer       OverrideTarget = "server"
	TargetChannel      OverrideTarget = "channel"
	TargetConversation OverrideTarget = "conversation"
)

// SetLevelOverride sets the notification level for one server, channel, or
// conversation. Any mute deadline on the target is dropped so the new
// level takes effect immediately.
func (s *NotificationService) SetLevelOverride(ctx context.Context, userID int64, target OverrideTarget, targetID int64, level string) (*models.NotificationSettings, error) {
	if !notify.Level(level).Valid() {
		return nil, BadRequest("INVALID_LEVEL", "level must be one of all, mentions, nothing")
	}

	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	overrides, serr := s.targetOverrides(ctx, settings, userID, target, targetID)
	if serr != nil {
		return nil, serr
	}
	overrides[targetID] = models.NotificationOverride{Level: level}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return settings, nil
}

// Mute silences a target for the given duration. A mute is an override at
// level nothing with a deadline; "forever" leaves the deadline unset so it
// holds until lifted by hand.
func (s *NotificationService) Mute(ctx context.Context, userID int64, target OverrideTarget, targetID int64, duration string) (*models.NotificationSettings, error) {
	deadline, err := notify.MuteDeadline(duration, time.Now())
	if err != nil {
		return nil, BadRequest("INVALID_DURATION", "duration must be one of 15m, 1h, 8h, 24h, forever")
	}

	settings, serr := s.settings.Get(ctx, userID)
	if serr != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	overrides, oerr := s.targetOverrides(ctx, settings, userID, target, targetID)
	if oerr != nil {
		return nil, oerr
	}
	overrides[targetID] = models.NotificationOverride{
		Level:      string(notify.LevelNothing),
		MutedUntil: deadline,
	}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return settings, nil
}

// ClearOverride removes the override on a target, lifting its mute or
// level override in one stroke.
func (s *NotificationService) ClearOverride(ctx context.Context, userID int64, target OverrideTarget, targetID int64) (*models.NotificationSettings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	overrides, serr := s.targetOverrides(ctx, settings, userID, target, targetID)
	if serr != nil {
		return nil, serr
	}
	delete(overrides, targetID)

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return settings, nil
}

// targetOverrides verifies the target exists and is visible to the user,
// then returns the override map it lives in.
func (s *NotificationService) targetOverrides(ctx context.Context, settings *models.NotificationSettings, userID int64, target OverrideTarget, targetID int64) (map[int64]models.NotificationOverride, error) {
	switch target {
	case TargetServer:
		member, err := s.members.GetByServerAndUser(ctx, targetID, userID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if member == nil {
			return nil, NotFound("NOT_FOUND", "server not found")
		}
		if settings.ServerOverrides == nil {
			settings.ServerOverrides = map[int64]models.NotificationOverride{}
		}
		return settings.ServerOverrides, nil
	case TargetChannel:
		ch, err := s.channels.GetByID(ctx, targetID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if ch == nil {
			return nil, NotFound("NOT_FOUND", "channel not found")
		}
		member, err := s.members.GetByServerAndUser(ctx, ch.ServerID, userID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if member == nil {
			return nil, NotFound("NOT_FOUND", "channel not found")
		}
		if settings.ChannelOverrides == nil {
			settings.ChannelOverrides = map[int64]models.NotificationOverride{}
		}
		return settings.ChannelOverrides, nil
	case TargetConversation:
		conv, err := s.conversations.GetByID(ctx, targetID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if conv == nil || !conv.Includes(userID) {
			return nil, NotFound("NOT_FOUND", "conversation not found")
		}
		if settings.ConversationOverrides == nil {
			settings.ConversationOverrides = map[int64]models.NotificationOverride{}
		}
		return settings.ConversationOverrides, nil
	default:
		return nil, BadRequest("INVALID_TARGET", "target must be one of server, channel, conversation")
	}
}

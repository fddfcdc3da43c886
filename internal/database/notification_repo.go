package database

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvasilev/concord/internal/models"
)

type notificationSettingsRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationSettingsRepository(pool *pgxpool.Pool) NotificationSettingsRepository {
	return &notificationSettingsRepo{pool: pool}
}

// Get loads the user's settings. The three override maps live in jsonb
// columns and are deserialized exactly once, here; the resolver downstream
// only ever sees well-typed maps. A user with no row yet gets the default
// settings.
func (r *notificationSettingsRepo) Get(ctx context.Context, userID int64) (*models.NotificationSettings, error) {
	s := models.DefaultNotificationSettings(userID)
	var serverRaw, channelRaw, convRaw []byte

	err := r.pool.QueryRow(ctx,
		`SELECT global_notifications, server_overrides, channel_overrides, conversation_overrides,
		        quiet_hours_start, quiet_hours_end, desktop_enabled, push_enabled, sound_enabled
		 FROM notification_settings WHERE user_id = $1`, userID,
	).Scan(
		&s.GlobalNotifications, &serverRaw, &channelRaw, &convRaw,
		&s.QuietHoursStart, &s.QuietHoursEnd, &s.DesktopEnabled, &s.PushEnabled, &s.SoundEnabled,
	)
	if err == pgx.ErrNoRows {
		return &s, nil
	}
	if err != nil {
		return nil, err
	}

	s.ServerOverrides = decodeOverrides(serverRaw)
	s.ChannelOverrides = decodeOverrides(channelRaw)
	s.ConversationOverrides = decodeOverrides(convRaw)
	return &s, nil
}

func (r *notificationSettingsRepo) Upsert(ctx context.Context, settings *models.NotificationSettings) error {
	serverRaw, err := json.Marshal(settings.ServerOverrides)
	if err != nil {
		return err
	}
	channelRaw, err := json.Marshal(settings.ChannelOverrides)
	if err != nil {
		return err
	}
	convRaw, err := json.Marshal(settings.ConversationOverrides)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO notification_settings
		   (user_id, global_notifications, server_overrides, channel_overrides, conversation_overrides,
		    quiet_hours_start, quiet_hours_end, desktop_enabled, push_enabled, sound_enabled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id) DO UPDATE SET
		   global_notifications = EXCLUDED.global_notifications,
		   server_overrides = EXCLUDED.server_overrides,
		   channel_overrides = EXCLUDED.channel_overrides,
		   conversation_overrides = EXCLUDED.conversation_overrides,
		   quiet_hours_start = EXCLUDED.quiet_hours_start,
		   quiet_hours_end = EXCLUDED.quiet_hours_end,
		   desktop_enabled = EXCLUDED.desktop_enabled,
		   push_enabled = EXCLUDED.push_enabled,
		   sound_enabled = EXCLUDED.sound_enabled`,
		settings.UserID, settings.GlobalNotifications, serverRaw, channelRaw, convRaw,
		settings.QuietHoursStart, settings.QuietHoursEnd,
		settings.DesktopEnabled, settings.PushEnabled, settings.SoundEnabled,
	)
	return err
}

// decodeOverrides parses a stored override map. Malformed or empty
// payloads degrade to an empty map, never an error: a corrupt settings
// document must not make every notification decision fail.
func decodeOverrides(raw []byte) map[int64]models.NotificationOverride {
	m := map[int64]models.NotificationOverride{}
	if len(raw) == 0 {
		return m
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[int64]models.NotificationOverride{}
	}
	return m
}

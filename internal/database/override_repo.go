package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvasilev/concord/internal/models"
)

type channelOverrideRepo struct {
	pool *pgxpool.Pool
}

func NewChannelOverrideRepository(pool *pgxpool.Pool) ChannelOverrideRepository {
	return &channelOverrideRepo{pool: pool}
}

// Set upserts an override. Role- and user-targeted overrides are stored in
// the same table with one of role_id / user_id null; the unique indexes are
// partial, one per target kind.
func (r *channelOverrideRepo) Set(ctx context.Context, override *models.ChannelOverride) error {
	roleID := nullableID(override.RoleID)
	userID := nullableID(override.UserID)

	if roleID != nil {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO channel_overrides (channel_id, role_id, user_id, allow_keys, deny_keys)
			 VALUES ($1, $2, NULL, $3, $4)
			 ON CONFLICT (channel_id, role_id) WHERE role_id IS NOT NULL
			 DO UPDATE SET allow_keys = EXCLUDED.allow_keys, deny_keys = EXCLUDED.deny_keys`,
			override.ChannelID, roleID, override.Allow, override.Deny,
		)
		return err
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO channel_overrides (channel_id, role_id, user_id, allow_keys, deny_keys)
		 VALUES ($1, NULL, $2, $3, $4)
		 ON CONFLICT (channel_id, user_id) WHERE user_id IS NOT NULL
		 DO UPDATE SET allow_keys = EXCLUDED.allow_keys, deny_keys = EXCLUDED.deny_keys`,
		override.ChannelID, userID, override.Allow, override.Deny,
	)
	return err
}

func (r *channelOverrideRepo) GetByChannel(ctx context.Context, channelID int64) ([]models.ChannelOverride, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT channel_id, role_id, user_id, allow_keys, deny_keys
		 FROM channel_overrides WHERE channel_id = $1`, channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []models.ChannelOverride
	for rows.Next() {
		var o models.ChannelOverride
		var roleID, userID *int64
		if err := rows.Scan(&o.ChannelID, &roleID, &userID, &o.Allow, &o.Deny); err != nil {
			return nil, err
		}
		if roleID != nil {
			o.RoleID = *roleID
		}
		if userID != nil {
			o.UserID = *userID
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *channelOverrideRepo) DeleteForRole(ctx context.Context, channelID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM channel_overrides WHERE channel_id = $1 AND role_id = $2`,
		channelID, roleID,
	)
	return err
}

func (r *channelOverrideRepo) DeleteForUser(ctx context.Context, channelID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM channel_overrides WHERE channel_id = $1 AND user_id = $2`,
		channelID, userID,
	)
	return err
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

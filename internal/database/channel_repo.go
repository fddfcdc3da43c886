package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvasilev/concord/internal/models"
)

type channelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepository(pool *pgxpool.Pool) ChannelRepository {
	return &channelRepo{pool: pool}
}

func (r *channelRepo) Create(ctx context.Context, channel *models.Channel) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO channels (id, server_id, name, type, position, topic, parent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		channel.ID, channel.ServerID, channel.Name, channel.Type, channel.Position, channel.Topic, channel.ParentID,
	)
	return err
}

func (r *channelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	ch := &models.Channel{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, server_id, name, type, position, topic, parent_id
		 FROM channels WHERE id = $1`, id,
	).Scan(&ch.ID, &ch.ServerID, &ch.Name, &ch.Type, &ch.Position, &ch.Topic, &ch.ParentID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return ch, err
}

func (r *channelRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Channel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, server_id, name, type, position, topic, parent_id
		 FROM channels WHERE server_id = $1
		 ORDER BY position, id`, serverID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.ServerID, &ch.Name, &ch.Type, &ch.Position, &ch.Topic, &ch.ParentID); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (r *channelRepo) Update(ctx context.Context, channel *models.Channel) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE channels SET name = $2, position = $3, topic = $4, parent_id = $5 WHERE id = $1`,
		channel.ID, channel.Name, channel.Position, channel.Topic, channel.ParentID,
	)
	return err
}

func (r *channelRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	return err
}

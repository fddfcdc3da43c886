package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvasilev/concord/internal/models"
)

type messageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, channel_id, conversation_id, author_id, content, mentions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		message.ID, nullableID(message.ChannelID), nullableID(message.ConversationID),
		message.AuthorID, message.Content, message.Mentions, message.CreatedAt,
	)
	return err
}

func (r *messageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	m := &models.Message{}
	var channelID, conversationID *int64
	err := r.pool.QueryRow(ctx,
		`SELECT id, channel_id, conversation_id, author_id, content, mentions, created_at, edited_at
		 FROM messages WHERE id = $1`, id,
	).Scan(&m.ID, &channelID, &conversationID, &m.AuthorID, &m.Content, &m.Mentions, &m.CreatedAt, &m.EditedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if channelID != nil {
		m.ChannelID = *channelID
	}
	if conversationID != nil {
		m.ConversationID = *conversationID
	}
	return m, nil
}

const messageWithAuthorQuery = `
	SELECT m.id, m.channel_id, m.conversation_id, m.author_id, m.content, m.mentions,
	       m.created_at, m.edited_at,
	       u.username, u.display_name, u.avatar_hash
	FROM messages m
	INNER JOIN users u ON u.id = m.author_id`

func (r *messageRepo) GetByChannel(ctx context.Context, channelID int64, before int64, limit int) ([]models.MessageWithAuthor, error) {
	rows, err := r.pool.Query(ctx,
		messageWithAuthorQuery+`
		 WHERE m.channel_id = $1 AND ($2 = 0 OR m.id < $2)
		 ORDER BY m.id DESC
		 LIMIT $3`, channelID, before, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *messageRepo) GetByConversation(ctx context.Context, conversationID int64, before int64, limit int) ([]models.MessageWithAuthor, error) {
	rows, err := r.pool.Query(ctx,
		messageWithAuthorQuery+`
		 WHERE m.conversation_id = $1 AND ($2 = 0 OR m.id < $2)
		 ORDER BY m.id DESC
		 LIMIT $3`, conversationID, before, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]models.MessageWithAuthor, error) {
	var messages []models.MessageWithAuthor
	for rows.Next() {
		var m models.MessageWithAuthor
		var channelID, conversationID *int64
		if err := rows.Scan(
			&m.ID, &channelID, &conversationID, &m.AuthorID, &m.Content, &m.Mentions,
			&m.CreatedAt, &m.EditedAt,
			&m.AuthorUsername, &m.AuthorDisplayName, &m.AuthorAvatarHash,
		); err != nil {
			return nil, err
		}
		if channelID != nil {
			m.ChannelID = *channelID
		}
		if conversationID != nil {
			m.ConversationID = *conversationID
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *messageRepo) Update(ctx context.Context, message *models.Message) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET content = $2, mentions = $3, edited_at = now() WHERE id = $1`,
		message.ID, message.Content, message.Mentions,
	)
	return err
}

func (r *messageRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}

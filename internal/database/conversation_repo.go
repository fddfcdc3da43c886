package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvasilev/concord/internal/models"
)

type conversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepo{pool: pool}
}

func (r *conversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	// Participants are stored in id order so the pair is unique regardless
	// of who opened the conversation.
	a, b := conv.UserA, conv.UserB
	if a > b {
		a, b = b, a
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO conversations (id, user_a, user_b, created_at)
		 VALUES ($1, $2, $3, $4)`,
		conv.ID, a, b, conv.CreatedAt,
	)
	return err
}

func (r *conversationRepo) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_a, user_b, created_at FROM conversations WHERE id = $1`, id,
	).Scan(&conv.ID, &conv.UserA, &conv.UserB, &conv.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return conv, err
}

func (r *conversationRepo) GetByParticipants(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	if userA > userB {
		userA, userB = userB, userA
	}
	conv := &models.Conversation{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_a, user_b, created_at FROM conversations
		 WHERE user_a = $1 AND user_b = $2`, userA, userB,
	).Scan(&conv.ID, &conv.UserA, &conv.UserB, &conv.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return conv, err
}

func (r *conversationRepo) GetByUser(ctx context.Context, userID int64) ([]models.Conversation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_a, user_b, created_at FROM conversations
		 WHERE user_a = $1 OR user_b = $1
		 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserA, &c.UserB, &c.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvasilev/concord/internal/models"
)

type memberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepo{pool: pool}
}

func (r *memberRepo) Create(ctx context.Context, member *models.Member) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO members (server_id, user_id, nickname, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		member.ServerID, member.UserID, member.Nickname, member.JoinedAt,
	)
	return err
}

func (r *memberRepo) GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error) {
	m := &models.Member{}
	err := r.pool.QueryRow(ctx,
		`SELECT m.server_id, m.user_id, m.nickname, m.joined_at,
		        COALESCE(array_agg(mr.role_id) FILTER (WHERE mr.role_id IS NOT NULL), '{}')
		 FROM members m
		 LEFT JOIN member_roles mr ON mr.server_id = m.server_id AND mr.user_id = m.user_id
		 WHERE m.server_id = $1 AND m.user_id = $2
		 GROUP BY m.server_id, m.user_id`, serverID, userID,
	).Scan(&m.ServerID, &m.UserID, &m.Nickname, &m.JoinedAt, &m.Roles)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *memberRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.server_id, m.user_id, m.nickname, m.joined_at,
		        COALESCE(array_agg(mr.role_id) FILTER (WHERE mr.role_id IS NOT NULL), '{}')
		 FROM members m
		 LEFT JOIN member_roles mr ON mr.server_id = m.server_id AND mr.user_id = m.user_id
		 WHERE m.server_id = $1
		 GROUP BY m.server_id, m.user_id
		 ORDER BY m.joined_at`, serverID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ServerID, &m.UserID, &m.Nickname, &m.JoinedAt, &m.Roles); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepo) ListUserIDs(ctx context.Context, serverID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM members WHERE server_id = $1`, serverID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *memberRepo) Update(ctx context.Context, member *models.Member) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE members SET nickname = $3 WHERE server_id = $1 AND user_id = $2`,
		member.ServerID, member.UserID, member.Nickname,
	)
	return err
}

func (r *memberRepo) Delete(ctx context.Context, serverID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM members WHERE server_id = $1 AND user_id = $2`,
		serverID, userID,
	)
	return err
}

func (r *memberRepo) AddRole(ctx context.Context, serverID, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO member_roles (server_id, user_id, role_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		serverID, userID, roleID,
	)
	return err
}

func (r *memberRepo) RemoveRole(ctx context.Context, serverID, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM member_roles WHERE server_id = $1 AND user_id = $2 AND role_id = $3`,
		serverID, userID, roleID,
	)
	return err
}

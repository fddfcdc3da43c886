package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvasilev/concord/internal/models"
)

const roleColumns = `id, server_id, name, color, position,
	read_messages, send_messages, manage_messages, manage_channels,
	manage_roles, manage_server, mention_everyone, administrator,
	mentionable, is_default`

type roleRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepo{pool: pool}
}

func scanRole(row pgx.Row, role *models.Role) error {
	return row.Scan(
		&role.ID, &role.ServerID, &role.Name, &role.Color, &role.Position,
		&role.ReadMessages, &role.SendMessages, &role.ManageMessages, &role.ManageChannels,
		&role.ManageRoles, &role.ManageServer, &role.MentionEveryone, &role.Administrator,
		&role.Mentionable, &role.IsDefault,
	)
}

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (`+roleColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		role.ID, role.ServerID, role.Name, role.Color, role.Position,
		role.ReadMessages, role.SendMessages, role.ManageMessages, role.ManageChannels,
		role.ManageRoles, role.ManageServer, role.MentionEveryone, role.Administrator,
		role.Mentionable, role.IsDefault,
	)
	return err
}

func (r *roleRepo) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	role := &models.Role{}
	err := scanRole(r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = $1`, id,
	), role)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return role, err
}

func (r *roleRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE server_id = $1
		 ORDER BY position DESC, id`, serverID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

func (r *roleRepo) GetByMember(ctx context.Context, serverID, userID int64) ([]models.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.server_id, r.name, r.color, r.position,
		        r.read_messages, r.send_messages, r.manage_messages, r.manage_channels,
		        r.manage_roles, r.manage_server, r.mention_everyone, r.administrator,
		        r.mentionable, r.is_default
		 FROM roles r
		 INNER JOIN member_roles mr ON mr.role_id = r.id
		 WHERE mr.server_id = $1 AND mr.user_id = $2
		 ORDER BY r.position DESC, r.id`, serverID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

func collectRoles(rows pgx.Rows) ([]models.Role, error) {
	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := scanRole(rows, &role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *roleRepo) Update(ctx context.Context, role *models.Role) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE roles SET name = $2, color = $3, position = $4,
		   read_messages = $5, send_messages = $6, manage_messages = $7,
		   manage_channels = $8, manage_roles = $9, manage_server = $10,
		   mention_everyone = $11, administrator = $12, mentionable = $13
		 WHERE id = $1`,
		role.ID, role.Name, role.Color, role.Position,
		role.ReadMessages, role.SendMessages, role.ManageMessages,
		role.ManageChannels, role.ManageRoles, role.ManageServer,
		role.MentionEveryone, role.Administrator, role.Mentionable,
	)
	return err
}

func (r *roleRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	return err
}

package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const userColumns = `key, organization_key, email, matrix_user_id, matrix_home_server, created, updated`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.Key, &u.OrganizationKey, &u.Email, &u.MatrixUserID, &u.MatrixHomeServer, &u.Created, &u.Updated)
	return u, err
}

func (q *Queries) GetUser(ctx context.Context, key uuid.UUID) (model.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE key = $1`, key))
	return u, wrap("get user", err)
}

// GetUserByMatrixID returns the oldest user bound to a chat identity.
func (q *Queries) GetUserByMatrixID(ctx context.Context, matrixUserID string) (model.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE matrix_user_id = $1 ORDER BY created LIMIT 1`, matrixUserID))
	return u, wrap("get user by matrix id", err)
}

func (q *Queries) ListUsersByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.User, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE organization_key = $1 ORDER BY created`, organizationKey)
	if err != nil {
		return nil, wrap("list users", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.User, error) {
		return scanUser(row)
	})
	return out, wrap("list users", err)
}

func (q *Queries) InsertUser(ctx context.Context, u model.User) error {
	_, err := q.db.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.Key, u.OrganizationKey, u.Email, u.MatrixUserID, u.MatrixHomeServer, u.Created, u.Updated,
	)
	return wrap("insert user", err)
}

func (q *Queries) UpdateUser(ctx context.Context, u model.User) error {
	tag, err := q.db.Exec(ctx, `UPDATE users SET
		organization_key = $2, email = $3, matrix_user_id = $4, matrix_home_server = $5, updated = $6
		WHERE key = $1`,
		u.Key, u.OrganizationKey, u.Email, u.MatrixUserID, u.MatrixHomeServer, u.Updated,
	)
	return affected("update user", tag, err)
}

func (q *Queries) DeleteUser(ctx context.Context, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM users WHERE key = $1`, key)
	return affected("delete user", tag, err)
}

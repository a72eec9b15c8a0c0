package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const boardColumns = `key, organization_key, owner_key, name, description, columns, lanes, filter, created, updated`

func scanBoard(row pgx.Row) (model.Board, error) {
	var b model.Board
	err := row.Scan(
		&b.Key, &b.OrganizationKey, &b.OwnerKey, &b.Name, &b.Description,
		&b.Columns, &b.Lanes, &b.Filter, &b.Created, &b.Updated,
	)
	return b, err
}

func (q *Queries) listBoards(ctx context.Context, where string, arg uuid.UUID) ([]model.Board, error) {
	rows, err := q.db.Query(ctx, `SELECT `+boardColumns+` FROM boards WHERE `+where+` = $1 ORDER BY created`, arg)
	if err != nil {
		return nil, wrap("list boards", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Board, error) {
		return scanBoard(row)
	})
	return out, wrap("list boards", err)
}

func (q *Queries) GetBoard(ctx context.Context, key uuid.UUID) (model.Board, error) {
	b, err := scanBoard(q.db.QueryRow(ctx, `SELECT `+boardColumns+` FROM boards WHERE key = $1`, key))
	return b, wrap("get board", err)
}

func (q *Queries) ListBoardsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Board, error) {
	return q.listBoards(ctx, "organization_key", organizationKey)
}

func (q *Queries) ListBoardsByOwner(ctx context.Context, ownerKey uuid.UUID) ([]model.Board, error) {
	return q.listBoards(ctx, "owner_key", ownerKey)
}

func (q *Queries) InsertBoard(ctx context.Context, b model.Board) error {
	_, err := q.db.Exec(ctx, `INSERT INTO boards (`+boardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.Key, b.OrganizationKey, b.OwnerKey, b.Name, b.Description,
		strs(b.Columns), strs(b.Lanes), b.Filter, b.Created, b.Updated,
	)
	return wrap("insert board", err)
}

func (q *Queries) UpdateBoard(ctx context.Context, b model.Board) error {
	tag, err := q.db.Exec(ctx, `UPDATE boards SET
		name = $2, description = $3, columns = $4, lanes = $5, filter = $6, updated = $7
		WHERE key = $1`,
		b.Key, b.Name, b.Description, strs(b.Columns), strs(b.Lanes), b.Filter, b.Updated,
	)
	return affected("update board", tag, err)
}

func (q *Queries) DeleteBoard(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM boards WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete board", tag, err)
}

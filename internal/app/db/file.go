package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const fileColumns = `key, owner_key, organization_key, association_type, association_key, url, hash, name,
	description, tags, format, size, created, updated`

func scanFile(row pgx.Row) (model.File, error) {
	var f model.File
	err := row.Scan(
		&f.Key, &f.OwnerKey, &f.OrganizationKey, &f.AssociationType, &f.AssociationKey, &f.URL, &f.Hash, &f.Name,
		&f.Description, &f.Tags, &f.Format, &f.Size, &f.Created, &f.Updated,
	)
	return f, err
}

func (q *Queries) GetFile(ctx context.Context, key uuid.UUID) (model.File, error) {
	f, err := scanFile(q.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM files WHERE key = $1`, key))
	return f, wrap("get file", err)
}

func (q *Queries) ListAssociatedFiles(ctx context.Context, associationType model.AssociationType, associationKey uuid.UUID) ([]model.File, error) {
	rows, err := q.db.Query(ctx, `SELECT `+fileColumns+` FROM files
		WHERE association_type = $1 AND association_key = $2
		ORDER BY created DESC`, associationType, associationKey)
	if err != nil {
		return nil, wrap("list files", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.File, error) {
		return scanFile(row)
	})
	return out, wrap("list files", err)
}

func (q *Queries) InsertFile(ctx context.Context, f model.File) error {
	_, err := q.db.Exec(ctx, `INSERT INTO files (`+fileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		f.Key, f.OwnerKey, f.OrganizationKey, f.AssociationType, f.AssociationKey, f.URL, f.Hash, f.Name,
		f.Description, f.Tags, f.Format, f.Size, f.Created, f.Updated,
	)
	return wrap("insert file", err)
}

func (q *Queries) UpdateFile(ctx context.Context, f model.File) error {
	tag, err := q.db.Exec(ctx, `UPDATE files SET
		url = $2, hash = $3, name = $4, description = $5, tags = $6, format = $7, size = $8, updated = $9
		WHERE key = $1`,
		f.Key, f.URL, f.Hash, f.Name, f.Description, f.Tags, f.Format, f.Size, f.Updated,
	)
	return affected("update file", tag, err)
}

func (q *Queries) DeleteFile(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM files WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete file", tag, err)
}

package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const noteColumns = `key, organization_key, owner_key, association_type, association_key, title, content, url,
	created, updated`

func scanNote(row pgx.Row) (model.Note, error) {
	var n model.Note
	err := row.Scan(
		&n.Key, &n.OrganizationKey, &n.OwnerKey, &n.AssociationType, &n.AssociationKey,
		&n.Title, &n.Content, &n.URL, &n.Created, &n.Updated,
	)
	return n, err
}

func (q *Queries) GetNote(ctx context.Context, key uuid.UUID) (model.Note, error) {
	n, err := scanNote(q.db.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE key = $1`, key))
	return n, wrap("get note", err)
}

// ListAssociatedNotes returns the notes attached to one record, newest first.
func (q *Queries) ListAssociatedNotes(ctx context.Context, associationType model.AssociationType, associationKey uuid.UUID) ([]model.Note, error) {
	rows, err := q.db.Query(ctx, `SELECT `+noteColumns+` FROM notes
		WHERE association_type = $1 AND association_key = $2
		ORDER BY created DESC`, associationType, associationKey)
	if err != nil {
		return nil, wrap("list notes", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Note, error) {
		return scanNote(row)
	})
	return out, wrap("list notes", err)
}

func (q *Queries) InsertNote(ctx context.Context, n model.Note) error {
	_, err := q.db.Exec(ctx, `INSERT INTO notes (`+noteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.Key, n.OrganizationKey, n.OwnerKey, n.AssociationType, n.AssociationKey,
		n.Title, n.Content, n.URL, n.Created, n.Updated,
	)
	return wrap("insert note", err)
}

func (q *Queries) UpdateNote(ctx context.Context, n model.Note) error {
	tag, err := q.db.Exec(ctx, `UPDATE notes SET
		association_type = $2, association_key = $3, title = $4, content = $5, url = $6, updated = $7
		WHERE key = $1`,
		n.Key, n.AssociationType, n.AssociationKey, n.Title, n.Content, n.URL, n.Updated,
	)
	return affected("update note", tag, err)
}

func (q *Queries) DeleteNote(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM notes WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete note", tag, err)
}

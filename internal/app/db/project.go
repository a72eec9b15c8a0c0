package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const projectColumns = `key, organization_key, owner_key, name, description, tags,
	estimated_quarter_days, start, due, created, updated`

func scanProject(row pgx.Row) (model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.Key, &p.OrganizationKey, &p.OwnerKey, &p.Name, &p.Description, &p.Tags,
		&p.EstimatedQuarterDays, &p.Start, &p.Due, &p.Created, &p.Updated,
	)
	return p, err
}

func (q *Queries) GetProject(ctx context.Context, key uuid.UUID) (model.Project, error) {
	p, err := scanProject(q.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE key = $1`, key))
	return p, wrap("get project", err)
}

func (q *Queries) ListProjectsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Project, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE organization_key = $1 ORDER BY created`, organizationKey)
	if err != nil {
		return nil, wrap("list projects", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Project, error) {
		return scanProject(row)
	})
	return out, wrap("list projects", err)
}

func (q *Queries) InsertProject(ctx context.Context, p model.Project) error {
	_, err := q.db.Exec(ctx, `INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.Key, p.OrganizationKey, p.OwnerKey, p.Name, p.Description, p.Tags,
		p.EstimatedQuarterDays, p.Start, p.Due, p.Created, p.Updated,
	)
	return wrap("insert project", err)
}

func (q *Queries) UpdateProject(ctx context.Context, p model.Project) error {
	tag, err := q.db.Exec(ctx, `UPDATE projects SET
		name = $2, description = $3, tags = $4, estimated_quarter_days = $5,
		start = $6, due = $7, updated = $8
		WHERE key = $1`,
		p.Key, p.Name, p.Description, p.Tags, p.EstimatedQuarterDays, p.Start, p.Due, p.Updated,
	)
	return affected("update project", tag, err)
}

func (q *Queries) DeleteProject(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM projects WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete project", tag, err)
}

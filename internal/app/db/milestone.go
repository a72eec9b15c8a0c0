package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const milestoneColumns = `key, organization_key, owner_key, project_key, name, description, tags,
	estimated_quarter_days, start, due, created, updated`

func scanMilestone(row pgx.Row) (model.Milestone, error) {
	var m model.Milestone
	err := row.Scan(
		&m.Key, &m.OrganizationKey, &m.OwnerKey, &m.ProjectKey, &m.Name, &m.Description, &m.Tags,
		&m.EstimatedQuarterDays, &m.Start, &m.Due, &m.Created, &m.Updated,
	)
	return m, err
}

func (q *Queries) GetMilestone(ctx context.Context, key uuid.UUID) (model.Milestone, error) {
	m, err := scanMilestone(q.db.QueryRow(ctx, `SELECT `+milestoneColumns+` FROM mile_stones WHERE key = $1`, key))
	return m, wrap("get milestone", err)
}

func (q *Queries) ListMilestonesByProject(ctx context.Context, projectKey uuid.UUID) ([]model.Milestone, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+milestoneColumns+` FROM mile_stones WHERE project_key = $1 ORDER BY due, created`, projectKey)
	if err != nil {
		return nil, wrap("list milestones", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Milestone, error) {
		return scanMilestone(row)
	})
	return out, wrap("list milestones", err)
}

func (q *Queries) InsertMilestone(ctx context.Context, m model.Milestone) error {
	_, err := q.db.Exec(ctx, `INSERT INTO mile_stones (`+milestoneColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.Key, m.OrganizationKey, m.OwnerKey, m.ProjectKey, m.Name, m.Description, m.Tags,
		m.EstimatedQuarterDays, m.Start, m.Due, m.Created, m.Updated,
	)
	return wrap("insert milestone", err)
}

func (q *Queries) UpdateMilestone(ctx context.Context, m model.Milestone) error {
	tag, err := q.db.Exec(ctx, `UPDATE mile_stones SET
		project_key = $2, name = $3, description = $4, tags = $5, estimated_quarter_days = $6,
		start = $7, due = $8, updated = $9
		WHERE key = $1`,
		m.Key, m.ProjectKey, m.Name, m.Description, m.Tags, m.EstimatedQuarterDays, m.Start, m.Due, m.Updated,
	)
	return affected("update milestone", tag, err)
}

func (q *Queries) DeleteMilestone(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM mile_stones WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete milestone", tag, err)
}

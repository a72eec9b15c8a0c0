package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const taskColumns = `key, organization_key, project_key, owner_key, assignee_key, name, description, tags,
	status, estimated_quarter_days, start, due, created, updated`

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.Key, &t.OrganizationKey, &t.ProjectKey, &t.OwnerKey, &t.AssigneeKey, &t.Name, &t.Description, &t.Tags,
		&t.Status, &t.EstimatedQuarterDays, &t.Start, &t.Due, &t.Created, &t.Updated,
	)
	return t, err
}

func (q *Queries) listTasks(ctx context.Context, where string, arg uuid.UUID) ([]model.Task, error) {
	rows, err := q.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE `+where+` = $1 ORDER BY created`, arg)
	if err != nil {
		return nil, wrap("list tasks", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Task, error) {
		return scanTask(row)
	})
	return out, wrap("list tasks", err)
}

func (q *Queries) GetTask(ctx context.Context, key uuid.UUID) (model.Task, error) {
	t, err := scanTask(q.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE key = $1`, key))
	return t, wrap("get task", err)
}

func (q *Queries) ListTasksByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Task, error) {
	return q.listTasks(ctx, "organization_key", organizationKey)
}

func (q *Queries) ListTasksByProject(ctx context.Context, projectKey uuid.UUID) ([]model.Task, error) {
	return q.listTasks(ctx, "project_key", projectKey)
}

func (q *Queries) InsertTask(ctx context.Context, t model.Task) error {
	_, err := q.db.Exec(ctx, `INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.Key, t.OrganizationKey, t.ProjectKey, t.OwnerKey, t.AssigneeKey, t.Name, t.Description, t.Tags,
		t.Status, t.EstimatedQuarterDays, t.Start, t.Due, t.Created, t.Updated,
	)
	return wrap("insert task", err)
}

func (q *Queries) UpdateTask(ctx context.Context, t model.Task) error {
	tag, err := q.db.Exec(ctx, `UPDATE tasks SET
		project_key = $2, assignee_key = $3, name = $4, description = $5, tags = $6, status = $7,
		estimated_quarter_days = $8, start = $9, due = $10, updated = $11
		WHERE key = $1`,
		t.Key, t.ProjectKey, t.AssigneeKey, t.Name, t.Description, t.Tags, t.Status,
		t.EstimatedQuarterDays, t.Start, t.Due, t.Updated,
	)
	return affected("update task", tag, err)
}

func (q *Queries) DeleteTask(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM tasks WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete task", tag, err)
}

package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const outboxColumns = `key, organization_key, category, body, matrix_user_id, matrix_access_token,
	matrix_home_server, delivered_rooms, attempts, status, last_error, next_attempt_at, created, updated`

func scanOutbox(row pgx.Row) (model.OutboxMessage, error) {
	var m model.OutboxMessage
	err := row.Scan(
		&m.Key, &m.OrganizationKey, &m.Category, &m.Body, &m.MatrixUserID, &m.MatrixAccessToken,
		&m.MatrixHomeServer, &m.DeliveredRooms, &m.Attempts, &m.Status, &m.LastError, &m.NextAttemptAt,
		&m.Created, &m.Updated,
	)
	return m, err
}

func (q *Queries) EnqueueNotification(ctx context.Context, m model.OutboxMessage) error {
	if m.Status == "" {
		m.Status = model.OutboxPending
	}
	_, err := q.db.Exec(ctx, `INSERT INTO notification_outbox (`+outboxColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		m.Key, m.OrganizationKey, m.Category, m.Body, m.MatrixUserID, m.MatrixAccessToken,
		m.MatrixHomeServer, uuids(m.DeliveredRooms), m.Attempts, m.Status, m.LastError, m.NextAttemptAt,
		m.Created, m.Updated,
	)
	return wrap("enqueue notification", err)
}

// ClaimDueNotifications leases up to limit pending rows whose next attempt is due by
// pushing next_attempt_at to leaseUntil. Concurrent workers skip rows another worker holds.
func (q *Queries) ClaimDueNotifications(ctx context.Context, now, leaseUntil int64, limit int) ([]model.OutboxMessage, error) {
	rows, err := q.db.Query(ctx, `UPDATE notification_outbox SET next_attempt_at = $2
		WHERE key IN (
			SELECT key FROM notification_outbox
			WHERE status = 'pending' AND next_attempt_at <= $1
			ORDER BY created
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+outboxColumns, now, leaseUntil, limit)
	if err != nil {
		return nil, wrap("claim notifications", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.OutboxMessage, error) {
		return scanOutbox(row)
	})
	return out, wrap("claim notifications", err)
}

func (q *Queries) MarkNotificationDelivered(ctx context.Context, key uuid.UUID, deliveredRooms []uuid.UUID, now int64) error {
	tag, err := q.db.Exec(ctx, `UPDATE notification_outbox SET
		status = 'delivered', delivered_rooms = $2, last_error = '', updated = $3
		WHERE key = $1`, key, uuids(deliveredRooms), now)
	return affected("mark notification delivered", tag, err)
}

// MarkNotificationFailed persists the retry bookkeeping carried by m.
func (q *Queries) MarkNotificationFailed(ctx context.Context, m model.OutboxMessage) error {
	tag, err := q.db.Exec(ctx, `UPDATE notification_outbox SET
		status = $2, delivered_rooms = $3, attempts = $4, last_error = $5, next_attempt_at = $6, updated = $7
		WHERE key = $1`,
		m.Key, m.Status, uuids(m.DeliveredRooms), m.Attempts, m.LastError, m.NextAttemptAt, m.Updated)
	return affected("mark notification failed", tag, err)
}

package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const roomColumns = `key, owner_key, organization_key, name, description, matrix_room_url, matrix_room_id,
	message_types, alert_level, created, updated`

func scanRoom(row pgx.Row) (model.Room, error) {
	var r model.Room
	err := row.Scan(
		&r.Key, &r.OwnerKey, &r.OrganizationKey, &r.Name, &r.Description, &r.MatrixRoomURL, &r.MatrixRoomID,
		&r.MessageTypes, &r.AlertLevel, &r.Created, &r.Updated,
	)
	return r, err
}

func (q *Queries) GetRoom(ctx context.Context, key uuid.UUID) (model.Room, error) {
	r, err := scanRoom(q.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE key = $1`, key))
	return r, wrap("get room", err)
}

// ListRoomsByOrganization returns rooms in creation order, which is also the fan-out order.
func (q *Queries) ListRoomsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Room, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE organization_key = $1 ORDER BY created, key`, organizationKey)
	if err != nil {
		return nil, wrap("list rooms", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Room, error) {
		return scanRoom(row)
	})
	return out, wrap("list rooms", err)
}

func (q *Queries) InsertRoom(ctx context.Context, r model.Room) error {
	_, err := q.db.Exec(ctx, `INSERT INTO rooms (`+roomColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.Key, r.OwnerKey, r.OrganizationKey, r.Name, r.Description, r.MatrixRoomURL, r.MatrixRoomID,
		r.MessageTypes, r.AlertLevel, r.Created, r.Updated,
	)
	return wrap("insert room", err)
}

func (q *Queries) UpdateRoom(ctx context.Context, r model.Room) error {
	tag, err := q.db.Exec(ctx, `UPDATE rooms SET
		name = $2, description = $3, matrix_room_url = $4, matrix_room_id = $5, message_types = $6,
		alert_level = $7, updated = $8
		WHERE key = $1`,
		r.Key, r.Name, r.Description, r.MatrixRoomURL, r.MatrixRoomID, r.MessageTypes, r.AlertLevel, r.Updated,
	)
	return affected("update room", tag, err)
}

func (q *Queries) DeleteRoom(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM rooms WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete room", tag, err)
}

package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const entityColumns = `key, organization_key, external_accounting_id, owner_key, matrix_room_url, web_url,
	avatar_url, entity_type, name, description, address_primary, address_unit, city, state, zip_code,
	country, created, updated`

func scanEntity(row pgx.Row) (model.Entity, error) {
	var e model.Entity
	err := row.Scan(
		&e.Key, &e.OrganizationKey, &e.ExternalAccountingID, &e.OwnerKey, &e.MatrixRoomURL, &e.WebURL,
		&e.AvatarURL, &e.EntityType, &e.Name, &e.Description, &e.AddressPrimary, &e.AddressUnit, &e.City,
		&e.State, &e.ZipCode, &e.Country, &e.Created, &e.Updated,
	)
	return e, err
}

func (q *Queries) GetEntity(ctx context.Context, key uuid.UUID) (model.Entity, error) {
	e, err := scanEntity(q.db.QueryRow(ctx, `SELECT `+entityColumns+` FROM entitys WHERE key = $1`, key))
	return e, wrap("get entity", err)
}

func (q *Queries) ListEntitiesByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Entity, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+entityColumns+` FROM entitys WHERE organization_key = $1 ORDER BY name`, organizationKey)
	if err != nil {
		return nil, wrap("list entities", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Entity, error) {
		return scanEntity(row)
	})
	return out, wrap("list entities", err)
}

func (q *Queries) InsertEntity(ctx context.Context, e model.Entity) error {
	_, err := q.db.Exec(ctx, `INSERT INTO entitys (`+entityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		e.Key, e.OrganizationKey, e.ExternalAccountingID, e.OwnerKey, e.MatrixRoomURL, e.WebURL,
		e.AvatarURL, e.EntityType, e.Name, e.Description, e.AddressPrimary, e.AddressUnit, e.City,
		e.State, e.ZipCode, e.Country, e.Created, e.Updated,
	)
	return wrap("insert entity", err)
}

func (q *Queries) UpdateEntity(ctx context.Context, e model.Entity) error {
	tag, err := q.db.Exec(ctx, `UPDATE entitys SET
		external_accounting_id = $2, matrix_room_url = $3, web_url = $4, avatar_url = $5, entity_type = $6,
		name = $7, description = $8, address_primary = $9, address_unit = $10, city = $11, state = $12,
		zip_code = $13, country = $14, updated = $15
		WHERE key = $1`,
		e.Key, e.ExternalAccountingID, e.MatrixRoomURL, e.WebURL, e.AvatarURL, e.EntityType,
		e.Name, e.Description, e.AddressPrimary, e.AddressUnit, e.City, e.State,
		e.ZipCode, e.Country, e.Updated,
	)
	return affected("update entity", tag, err)
}

func (q *Queries) DeleteEntity(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM entitys WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete entity", tag, err)
}

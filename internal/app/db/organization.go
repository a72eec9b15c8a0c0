package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const organizationColumns = `key, external_accounting_id, external_accounting_url, owner_key, name, description,
	matrix_home_server, matrix_live_support_room_url, matrix_general_room_url, domain, contact_email,
	created, updated`

func scanOrganization(row pgx.Row) (model.Organization, error) {
	var o model.Organization
	err := row.Scan(
		&o.Key, &o.ExternalAccountingID, &o.ExternalAccountingURL, &o.OwnerKey, &o.Name, &o.Description,
		&o.MatrixHomeServer, &o.MatrixLiveSupportRoomURL, &o.MatrixGeneralRoomURL, &o.Domain, &o.ContactEmail,
		&o.Created, &o.Updated,
	)
	return o, err
}

func (q *Queries) GetOrganization(ctx context.Context, key uuid.UUID) (model.Organization, error) {
	o, err := scanOrganization(q.db.QueryRow(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE key = $1`, key))
	return o, wrap("get organization", err)
}

func (q *Queries) ListOrganizationsByOwner(ctx context.Context, ownerKey uuid.UUID) ([]model.Organization, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE owner_key = $1 ORDER BY created`, ownerKey)
	if err != nil {
		return nil, wrap("list organizations", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Organization, error) {
		return scanOrganization(row)
	})
	return out, wrap("list organizations", err)
}

func (q *Queries) InsertOrganization(ctx context.Context, o model.Organization) error {
	_, err := q.db.Exec(ctx, `INSERT INTO organizations (`+organizationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.Key, o.ExternalAccountingID, o.ExternalAccountingURL, o.OwnerKey, o.Name, o.Description,
		o.MatrixHomeServer, o.MatrixLiveSupportRoomURL, o.MatrixGeneralRoomURL, o.Domain, o.ContactEmail,
		o.Created, o.Updated,
	)
	return wrap("insert organization", err)
}

func (q *Queries) UpdateOrganization(ctx context.Context, o model.Organization) error {
	tag, err := q.db.Exec(ctx, `UPDATE organizations SET
		external_accounting_id = $2, external_accounting_url = $3, name = $4, description = $5,
		matrix_home_server = $6, matrix_live_support_room_url = $7, matrix_general_room_url = $8,
		domain = $9, contact_email = $10, updated = $11
		WHERE key = $1`,
		o.Key, o.ExternalAccountingID, o.ExternalAccountingURL, o.Name, o.Description,
		o.MatrixHomeServer, o.MatrixLiveSupportRoomURL, o.MatrixGeneralRoomURL,
		o.Domain, o.ContactEmail, o.Updated,
	)
	return affected("update organization", tag, err)
}

func (q *Queries) DeleteOrganization(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM organizations WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete organization", tag, err)
}

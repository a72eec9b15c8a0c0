package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const serviceItemColumns = `key, organization_key, external_accounting_id, owner_key, name, description, value,
	currency, service_item_type, service_value_type, expenses, created, updated`

func scanServiceItem(row pgx.Row) (model.ServiceItem, error) {
	var s model.ServiceItem
	err := row.Scan(
		&s.Key, &s.OrganizationKey, &s.ExternalAccountingID, &s.OwnerKey, &s.Name, &s.Description, &s.Value,
		&s.Currency, &s.ServiceItemType, &s.ServiceValueType, &s.Expenses, &s.Created, &s.Updated,
	)
	return s, err
}

func (q *Queries) collectServiceItems(ctx context.Context, sql string, args ...any) ([]model.ServiceItem, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap("list service items", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ServiceItem, error) {
		return scanServiceItem(row)
	})
	return out, wrap("list service items", err)
}

func (q *Queries) GetServiceItem(ctx context.Context, key uuid.UUID) (model.ServiceItem, error) {
	s, err := scanServiceItem(q.db.QueryRow(ctx, `SELECT `+serviceItemColumns+` FROM service_items WHERE key = $1`, key))
	return s, wrap("get service item", err)
}

func (q *Queries) ListServiceItemsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.ServiceItem, error) {
	return q.collectServiceItems(ctx,
		`SELECT `+serviceItemColumns+` FROM service_items WHERE organization_key = $1 ORDER BY name`, organizationKey)
}

// ListServiceItemsByExternalID finds items imported from one accounting item.
func (q *Queries) ListServiceItemsByExternalID(ctx context.Context, organizationKey uuid.UUID, externalID string) ([]model.ServiceItem, error) {
	return q.collectServiceItems(ctx, `SELECT `+serviceItemColumns+` FROM service_items
		WHERE organization_key = $1 AND external_accounting_id = $2
		ORDER BY created`, organizationKey, externalID)
}

func (q *Queries) InsertServiceItem(ctx context.Context, s model.ServiceItem) error {
	_, err := q.db.Exec(ctx, `INSERT INTO service_items (`+serviceItemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.Key, s.OrganizationKey, s.ExternalAccountingID, s.OwnerKey, s.Name, s.Description, s.Value,
		s.Currency, s.ServiceItemType, s.ServiceValueType, uuids(s.Expenses), s.Created, s.Updated,
	)
	return wrap("insert service item", err)
}

func (q *Queries) UpdateServiceItem(ctx context.Context, s model.ServiceItem) error {
	tag, err := q.db.Exec(ctx, `UPDATE service_items SET
		external_accounting_id = $2, name = $3, description = $4, value = $5, currency = $6,
		service_item_type = $7, service_value_type = $8, expenses = $9, updated = $10
		WHERE key = $1`,
		s.Key, s.ExternalAccountingID, s.Name, s.Description, s.Value, s.Currency,
		s.ServiceItemType, s.ServiceValueType, uuids(s.Expenses), s.Updated,
	)
	return affected("update service item", tag, err)
}

func (q *Queries) DeleteServiceItem(ctx context.Context, ownerKey, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM service_items WHERE owner_key = $1 AND key = $2`, ownerKey, key)
	return affected("delete service item", tag, err)
}

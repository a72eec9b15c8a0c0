package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const contactColumns = `key, external_accounting_id, entity_key, first_name, middle_initial, last_name,
	description, position, email, phone, secondary_email, secondary_phone, matrix_user_id, web_url,
	avatar_url, social_urls, address_primary, address_unit, city, state, zip_code, country,
	created, updated`

func scanContact(row pgx.Row) (model.Contact, error) {
	var c model.Contact
	err := row.Scan(
		&c.Key, &c.ExternalAccountingID, &c.EntityKey, &c.FirstName, &c.MiddleInitial, &c.LastName,
		&c.Description, &c.Position, &c.Email, &c.Phone, &c.SecondaryEmail, &c.SecondaryPhone, &c.MatrixUserID, &c.WebURL,
		&c.AvatarURL, &c.SocialURLs, &c.AddressPrimary, &c.AddressUnit, &c.City, &c.State, &c.ZipCode, &c.Country,
		&c.Created, &c.Updated,
	)
	return c, err
}

func collectContacts(rows pgx.Rows, err error) ([]model.Contact, error) {
	if err != nil {
		return nil, wrap("list contacts", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Contact, error) {
		return scanContact(row)
	})
	return out, wrap("list contacts", err)
}

func (q *Queries) GetContact(ctx context.Context, key uuid.UUID) (model.Contact, error) {
	c, err := scanContact(q.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE key = $1`, key))
	return c, wrap("get contact", err)
}

func (q *Queries) ListContactsByEntity(ctx context.Context, entityKey uuid.UUID) ([]model.Contact, error) {
	return collectContacts(q.db.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE entity_key = $1 ORDER BY last_name, first_name`, entityKey))
}

// ListContactsByOrganization joins through the owning entity.
func (q *Queries) ListContactsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Contact, error) {
	return collectContacts(q.db.Query(ctx, `SELECT
		c.key, c.external_accounting_id, c.entity_key, c.first_name, c.middle_initial, c.last_name,
		c.description, c.position, c.email, c.phone, c.secondary_email, c.secondary_phone, c.matrix_user_id, c.web_url,
		c.avatar_url, c.social_urls, c.address_primary, c.address_unit, c.city, c.state, c.zip_code, c.country,
		c.created, c.updated
		FROM contacts c JOIN entitys e ON e.key = c.entity_key
		WHERE e.organization_key = $1
		ORDER BY c.last_name, c.first_name`, organizationKey))
}

func (q *Queries) InsertContact(ctx context.Context, c model.Contact) error {
	_, err := q.db.Exec(ctx, `INSERT INTO contacts (`+contactColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		c.Key, c.ExternalAccountingID, c.EntityKey, c.FirstName, c.MiddleInitial, c.LastName,
		c.Description, c.Position, c.Email, c.Phone, c.SecondaryEmail, c.SecondaryPhone, c.MatrixUserID, c.WebURL,
		c.AvatarURL, strs(c.SocialURLs), c.AddressPrimary, c.AddressUnit, c.City, c.State, c.ZipCode, c.Country,
		c.Created, c.Updated,
	)
	return wrap("insert contact", err)
}

func (q *Queries) UpdateContact(ctx context.Context, c model.Contact) error {
	tag, err := q.db.Exec(ctx, `UPDATE contacts SET
		external_accounting_id = $2, entity_key = $3, first_name = $4, middle_initial = $5, last_name = $6,
		description = $7, position = $8, email = $9, phone = $10, secondary_email = $11, secondary_phone = $12,
		matrix_user_id = $13, web_url = $14, avatar_url = $15, social_urls = $16, address_primary = $17,
		address_unit = $18, city = $19, state = $20, zip_code = $21, country = $22, updated = $23
		WHERE key = $1`,
		c.Key, c.ExternalAccountingID, c.EntityKey, c.FirstName, c.MiddleInitial, c.LastName,
		c.Description, c.Position, c.Email, c.Phone, c.SecondaryEmail, c.SecondaryPhone,
		c.MatrixUserID, c.WebURL, c.AvatarURL, strs(c.SocialURLs), c.AddressPrimary,
		c.AddressUnit, c.City, c.State, c.ZipCode, c.Country, c.Updated,
	)
	return affected("update contact", tag, err)
}

func (q *Queries) DeleteContact(ctx context.Context, key uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM contacts WHERE key = $1`, key)
	return affected("delete contact", tag, err)
}

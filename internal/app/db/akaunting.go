package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kinbrio/internal/app/model"
)

const akauntingColumns = `key, organization_key, owner_key, user_name, user_pass, akaunting_domain,
	akaunting_company_id, organization_data, employee_data, client_data, vendor_data, item_data,
	invoice_data, allow_post, last_sync, created, updated`

func scanAkauntingOptions(row pgx.Row) (model.AkauntingOptions, error) {
	var o model.AkauntingOptions
	err := row.Scan(
		&o.Key, &o.OrganizationKey, &o.OwnerKey, &o.UserName, &o.UserPass, &o.AkauntingDomain,
		&o.AkauntingCompanyID, &o.OrganizationData, &o.EmployeeData, &o.ClientData, &o.VendorData, &o.ItemData,
		&o.InvoiceData, &o.AllowPost, &o.LastSync, &o.Created, &o.Updated,
	)
	return o, err
}

// GetAkauntingOptions returns the single options row of an organization.
func (q *Queries) GetAkauntingOptions(ctx context.Context, organizationKey uuid.UUID) (model.AkauntingOptions, error) {
	o, err := scanAkauntingOptions(q.db.QueryRow(ctx,
		`SELECT `+akauntingColumns+` FROM akaunting_options WHERE organization_key = $1`, organizationKey))
	return o, wrap("get akaunting options", err)
}

func (q *Queries) InsertAkauntingOptions(ctx context.Context, o model.AkauntingOptions) error {
	_, err := q.db.Exec(ctx, `INSERT INTO akaunting_options (`+akauntingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		o.Key, o.OrganizationKey, o.OwnerKey, o.UserName, o.UserPass, o.AkauntingDomain,
		o.AkauntingCompanyID, o.OrganizationData, o.EmployeeData, o.ClientData, o.VendorData, o.ItemData,
		o.InvoiceData, o.AllowPost, o.LastSync, o.Created, o.Updated,
	)
	return wrap("insert akaunting options", err)
}

func (q *Queries) UpdateAkauntingOptions(ctx context.Context, o model.AkauntingOptions) error {
	tag, err := q.db.Exec(ctx, `UPDATE akaunting_options SET
		user_name = $2, user_pass = $3, akaunting_domain = $4, akaunting_company_id = $5,
		organization_data = $6, employee_data = $7, client_data = $8, vendor_data = $9, item_data = $10,
		invoice_data = $11, allow_post = $12, last_sync = $13, updated = $14
		WHERE key = $1`,
		o.Key, o.UserName, o.UserPass, o.AkauntingDomain, o.AkauntingCompanyID,
		o.OrganizationData, o.EmployeeData, o.ClientData, o.VendorData, o.ItemData,
		o.InvoiceData, o.AllowPost, o.LastSync, o.Updated,
	)
	return affected("update akaunting options", tag, err)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"kinbrio/internal/app/accounting"
	"kinbrio/internal/app/db"
	"kinbrio/internal/app/model"
	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
)

// AkauntingView is everything the accounting page shows.
type AkauntingView struct {
	Options      model.AkauntingOptions `json:"options"`
	Organization model.Organization     `json:"organization"`
	Companies    []accounting.Company   `json:"companies"`
	Items        []accounting.Item      `json:"items"`
	Invoices     []accounting.Invoice   `json:"invoices"`
	Customers    []accounting.Customer  `json:"customers"`
	Users        []accounting.User      `json:"users"`
}

// AkauntingOptions returns the organization's options, creating the default row first
// when there is none. An empty domain is reported as the configured default.
func (s *Service) AkauntingOptions(ctx context.Context, actor Actor) (model.AkauntingOptions, error) {
	opts, err := s.store.GetAkauntingOptions(ctx, actor.OrganizationKey)
	if errors.Is(err, db.ErrNotFound) {
		opts = model.DefaultAkauntingOptions(actor.OrganizationKey, actor.UserKey)
		opts.Key = uuid.New()
		opts.Created = s.now()
		err = s.store.InsertAkauntingOptions(ctx, opts)
	}
	if err != nil {
		return model.AkauntingOptions{}, err
	}
	if opts.AkauntingDomain == "" {
		opts.AkauntingDomain = s.cfg.DefaultAkauntingDomain
	}
	return opts, nil
}

func (s *Service) accountingClient(opts model.AkauntingOptions) *accounting.Client {
	return accounting.NewClient(s.cfg.HTTPClient, opts)
}

func (s *Service) AkauntingView(ctx context.Context, actor Actor) (AkauntingView, error) {
	opts, err := s.AkauntingOptions(ctx, actor)
	if err != nil {
		return AkauntingView{}, err
	}
	v := AkauntingView{Options: opts}
	if v.Organization, err = s.store.GetOrganization(ctx, actor.OrganizationKey); err != nil {
		return AkauntingView{}, err
	}
	if err := s.loadAccountingData(ctx, s.accountingClient(opts), &v); err != nil {
		return AkauntingView{}, accountingError(err)
	}
	v.Options.UserPass = ""
	return v, nil
}

func (s *Service) loadAccountingData(ctx context.Context, client *accounting.Client, v *AkauntingView) error {
	companies, err := client.ListCompanies(ctx)
	if err != nil {
		return err
	}
	items, err := client.ListItems(ctx)
	if err != nil {
		return err
	}
	invoices, err := client.ListInvoices(ctx)
	if err != nil {
		return err
	}
	customers, err := client.ListCustomers(ctx)
	if err != nil {
		return err
	}
	users, err := client.ListUsers(ctx)
	if err != nil {
		return err
	}
	v.Companies, v.Items, v.Invoices = companies.Data, items.Data, invoices.Data
	v.Customers, v.Users = customers.Data, users.Data
	return nil
}

// SaveAkauntingOptions stores opts, then copies the matching remote company onto the
// organization. The name is always copied; contact email, accounting URL and id only when
// the options already existed. An empty password on update keeps the stored one. Views
// never carry the password.
func (s *Service) SaveAkauntingOptions(ctx context.Context, actor Actor, opts model.AkauntingOptions) (AkauntingView, error) {
	opts.OrganizationKey = actor.OrganizationKey
	inserted := s.stamp(&opts.Key, &opts.Created, &opts.Updated)
	if inserted {
		opts.OwnerKey = actor.UserKey
		if err := s.store.InsertAkauntingOptions(ctx, opts); err != nil {
			return AkauntingView{}, err
		}
	} else {
		existing, err := s.store.GetAkauntingOptions(ctx, actor.OrganizationKey)
		if err != nil {
			return AkauntingView{}, err
		}
		if existing.Key != opts.Key {
			return AkauntingView{}, db.ErrNotFound
		}
		opts.OwnerKey, opts.Created = existing.OwnerKey, existing.Created
		if opts.UserPass == "" {
			opts.UserPass = existing.UserPass
		}
		if err := s.store.UpdateAkauntingOptions(ctx, opts); err != nil {
			return AkauntingView{}, err
		}
	}

	org, err := s.store.GetOrganization(ctx, actor.OrganizationKey)
	if err != nil {
		return AkauntingView{}, err
	}

	remote := opts
	if remote.AkauntingDomain == "" {
		remote.AkauntingDomain = s.cfg.DefaultAkauntingDomain
	}
	companies, err := s.accountingClient(remote).ListCompanies(ctx)
	if err != nil {
		return AkauntingView{}, accountingError(err)
	}
	for _, c := range companies.Data {
		if c.ID.String() != opts.AkauntingCompanyID {
			continue
		}
		org.Name = c.Name
		if !inserted {
			org.ContactEmail = c.Email
			org.ExternalAccountingURL = remote.AkauntingDomain
			org.ExternalAccountingID = c.ID.String()
		}
		org.Updated = s.now()
		if err := s.store.UpdateOrganization(ctx, org); err != nil {
			return AkauntingView{}, err
		}
		break
	}

	opts.UserPass = ""
	return AkauntingView{Options: opts, Organization: org, Companies: companies.Data}, nil
}

// ImportItem copies one remote item into a new ServiceItem. Importing the same id twice
// creates two rows.
func (s *Service) ImportItem(ctx context.Context, actor Actor, importID string) (model.ServiceItem, error) {
	if importID == "" {
		return model.ServiceItem{}, errs.NewError(errs.ErrBadImportID)
	}
	opts, err := s.AkauntingOptions(ctx, actor)
	if err != nil {
		return model.ServiceItem{}, err
	}
	item, err := s.accountingClient(opts).GetItem(ctx, importID)
	if err != nil {
		return model.ServiceItem{}, accountingError(err)
	}

	itemType := model.ServiceItemItem
	if item.Data.Type == "Service" {
		itemType = model.ServiceItemService
	}

	si := model.ServiceItem{
		OrganizationKey:      actor.OrganizationKey,
		ExternalAccountingID: importID,
		OwnerKey:             actor.UserKey,
		Name:                 item.Data.Name,
		Description:          item.Data.Description,
		Value:                int64(math.Trunc(item.Data.SalePrice)),
		Currency:             "USD",
		ServiceItemType:      itemType,
		ServiceValueType:     model.ServiceValueFull,
	}
	s.stamp(&si.Key, &si.Created, &si.Updated)
	if err := s.store.InsertServiceItem(ctx, si); err != nil {
		return model.ServiceItem{}, err
	}
	logx.Info("Imported accounting item", "organization_key", actor.OrganizationKey.String(), "import_id", importID)
	return si, nil
}

// ImportCustomer copies one remote customer into a new client Entity.
func (s *Service) ImportCustomer(ctx context.Context, actor Actor, importID string) (model.Entity, error) {
	if importID == "" {
		return model.Entity{}, errs.NewError(errs.ErrBadImportID)
	}
	opts, err := s.AkauntingOptions(ctx, actor)
	if err != nil {
		return model.Entity{}, err
	}
	customer, err := s.accountingClient(opts).GetCustomer(ctx, importID)
	if err != nil {
		return model.Entity{}, accountingError(err)
	}

	e := model.Entity{
		OrganizationKey:      actor.OrganizationKey,
		ExternalAccountingID: importID,
		OwnerKey:             actor.UserKey,
		EntityType:           model.EntityClient,
		Name:                 customer.Data.Name,
		WebURL:               customer.Data.Website,
		AddressPrimary:       customer.Data.Address,
	}
	s.stamp(&e.Key, &e.Created, &e.Updated)
	if err := s.store.InsertEntity(ctx, e); err != nil {
		return model.Entity{}, err
	}
	logx.Info("Imported accounting customer", "organization_key", actor.OrganizationKey.String(), "import_id", importID)
	return e, nil
}

// EntityInvoices lists the remote invoices billed to externalID.
func (s *Service) EntityInvoices(ctx context.Context, actor Actor, entityKey uuid.UUID, externalID string) ([]accounting.Invoice, error) {
	if _, err := s.GetEntity(ctx, actor, entityKey); err != nil {
		return nil, err
	}
	opts, err := s.AkauntingOptions(ctx, actor)
	if err != nil {
		return nil, err
	}
	invoices, err := s.accountingClient(opts).ListInvoices(ctx)
	if err != nil {
		return nil, accountingError(err)
	}
	return invoices.ForContact(externalID), nil
}

// accountingError surfaces the remote message of an accounting failure to the client.
func accountingError(err error) error {
	var apiErr *accounting.APIError
	if errors.As(err, &apiErr) {
		return errs.NewError(errs.ErrAccountingUpstream, apiErr.Message)
	}
	if errs.KindOf(err) == errs.KindUpstream {
		logx.Warn("Accounting call failed", "error", err.Error())
		return errs.NewError(errs.ErrAccountingUpstream, "unreachable")
	}
	return fmt.Errorf("accounting: %w", err)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Now returns the current Unix time in seconds, the unit of every created/updated column.
func Now() int64 {
	return time.Now().Unix()
}

type Organization struct {
	Key                      uuid.UUID `json:"key"`
	ExternalAccountingID     string    `json:"external_accounting_id"`
	ExternalAccountingURL    string    `json:"external_accounting_url"`
	OwnerKey                 uuid.UUID `json:"owner_key"`
	Name                     string    `json:"name"`
	Description              string    `json:"description"`
	MatrixHomeServer         string    `json:"matrix_home_server"`
	MatrixLiveSupportRoomURL string    `json:"matrix_live_support_room_url"`
	MatrixGeneralRoomURL     string    `json:"matrix_general_room_url"`
	Domain                   string    `json:"domain"`
	ContactEmail             string    `json:"contact_email"`
	Created                  int64     `json:"created"`
	Updated                  int64     `json:"updated"`
}

// HasExternalAccounting reports whether the organization is linked to an accounting company.
func (o Organization) HasExternalAccounting() bool {
	return o.ExternalAccountingID != ""
}

type Project struct {
	Key                  uuid.UUID `json:"key"`
	OrganizationKey      uuid.UUID `json:"organization_key"`
	OwnerKey             uuid.UUID `json:"owner_key"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Tags                 string    `json:"tags"`
	EstimatedQuarterDays int32     `json:"estimated_quarter_days"`
	Start                int64     `json:"start"`
	Due                  int64     `json:"due"`
	Created              int64     `json:"created"`
	Updated              int64     `json:"updated"`
}

type Task struct {
	Key                  uuid.UUID  `json:"key"`
	OrganizationKey      uuid.UUID  `json:"organization_key"`
	ProjectKey           uuid.UUID  `json:"project_key"`
	OwnerKey             uuid.UUID  `json:"owner_key"`
	AssigneeKey          uuid.UUID  `json:"assignee_key"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	Tags                 string     `json:"tags"`
	Status               TaskStatus `json:"status"`
	EstimatedQuarterDays int32      `json:"estimated_quarter_days"`
	Start                int64      `json:"start"`
	Due                  int64      `json:"due"`
	Created              int64      `json:"created"`
	Updated              int64      `json:"updated"`
}

// EstimatedDays converts quarter-day estimates to days.
func (t Task) EstimatedDays() float64 {
	return float64(t.EstimatedQuarterDays) * 0.25
}

type Board struct {
	Key             uuid.UUID `json:"key"`
	OrganizationKey uuid.UUID `json:"organization_key"`
	OwnerKey        uuid.UUID `json:"owner_key"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Columns         []string  `json:"columns"`
	Lanes           []string  `json:"lanes"`
	Filter          string    `json:"filter"`
	Created         int64     `json:"created"`
	Updated         int64     `json:"updated"`
}

type Milestone struct {
	Key                  uuid.UUID `json:"key"`
	OrganizationKey      uuid.UUID `json:"organization_key"`
	OwnerKey             uuid.UUID `json:"owner_key"`
	ProjectKey           uuid.UUID `json:"project_key"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Tags                 string    `json:"tags"`
	EstimatedQuarterDays int32     `json:"estimated_quarter_days"`
	Start                int64     `json:"start"`
	Due                  int64     `json:"due"`
	Created              int64     `json:"created"`
	Updated              int64     `json:"updated"`
}

// Entity is a client or supplier of an organization.
type Entity struct {
	Key                  uuid.UUID  `json:"key"`
	OrganizationKey      uuid.UUID  `json:"organization_key"`
	ExternalAccountingID string     `json:"external_accounting_id"`
	OwnerKey             uuid.UUID  `json:"owner_key"`
	MatrixRoomURL        string     `json:"matrix_room_url"`
	WebURL               string     `json:"web_url"`
	AvatarURL            string     `json:"avatar_url"`
	EntityType           EntityType `json:"entity_type"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	AddressPrimary       string     `json:"address_primary"`
	AddressUnit          string     `json:"address_unit"`
	City                 string     `json:"city"`
	State                string     `json:"state"`
	ZipCode              string     `json:"zip_code"`
	Country              string     `json:"country"`
	Created              int64      `json:"created"`
	Updated              int64      `json:"updated"`
}

// Contact is a person working for an Entity.
type Contact struct {
	Key                  uuid.UUID `json:"key"`
	ExternalAccountingID string    `json:"external_accounting_id"`
	EntityKey            uuid.UUID `json:"entity_key"`
	FirstName            string    `json:"first_name"`
	MiddleInitial        string    `json:"middle_initial"`
	LastName             string    `json:"last_name"`
	Description          string    `json:"description"`
	Position             string    `json:"position"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	SecondaryEmail       string    `json:"secondary_email"`
	SecondaryPhone       string    `json:"secondary_phone"`
	MatrixUserID         string    `json:"matrix_user_id"`
	WebURL               string    `json:"web_url"`
	AvatarURL            string    `json:"avatar_url"`
	SocialURLs           []string  `json:"social_urls"`
	AddressPrimary       string    `json:"address_primary"`
	AddressUnit          string    `json:"address_unit"`
	City                 string    `json:"city"`
	State                string    `json:"state"`
	ZipCode              string    `json:"zip_code"`
	Country              string    `json:"country"`
	Created              int64     `json:"created"`
	Updated              int64     `json:"updated"`
}

type Note struct {
	Key             uuid.UUID       `json:"key"`
	OrganizationKey uuid.UUID       `json:"organization_key"`
	OwnerKey        uuid.UUID       `json:"owner_key"`
	AssociationType AssociationType `json:"association_type"`
	AssociationKey  uuid.UUID       `json:"association_key"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	URL             string          `json:"url"`
	Created         int64           `json:"created"`
	Updated         int64           `json:"updated"`
}

// File is the metadata of an object kept in the association's bucket.
type File struct {
	Key             uuid.UUID       `json:"key"`
	OwnerKey        uuid.UUID       `json:"owner_key"`
	OrganizationKey uuid.UUID       `json:"organization_key"`
	AssociationType AssociationType `json:"association_type"`
	AssociationKey  uuid.UUID       `json:"association_key"`
	URL             string          `json:"url"`
	Hash            string          `json:"hash"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Tags            string          `json:"tags"`
	Format          string          `json:"format"`
	Size            int64           `json:"size"`
	Created         int64           `json:"created"`
	Updated         int64           `json:"updated"`
}

type ServiceItem struct {
	Key                  uuid.UUID        `json:"key"`
	OrganizationKey      uuid.UUID        `json:"organization_key"`
	ExternalAccountingID string           `json:"external_accounting_id"`
	OwnerKey             uuid.UUID        `json:"owner_key"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	Value                int64            `json:"value"`
	Currency             string           `json:"currency"`
	ServiceItemType      ServiceItemType  `json:"service_item_type"`
	ServiceValueType     ServiceValueType `json:"service_value_type"`
	Expenses             []uuid.UUID      `json:"expenses"`
	Created              int64            `json:"created"`
	Updated              int64            `json:"updated"`
}

type User struct {
	Key              uuid.UUID `json:"key"`
	OrganizationKey  uuid.UUID `json:"organization_key"`
	Email            string    `json:"email"`
	MatrixUserID     string    `json:"matrix_user_id"`
	MatrixHomeServer string    `json:"matrix_home_server"`
	Created          int64     `json:"created"`
	Updated          int64     `json:"updated"`
}

// Room is a standing subscription of a chat room to one notification category of an
// organization.
type Room struct {
	Key             uuid.UUID            `json:"key"`
	OwnerKey        uuid.UUID            `json:"owner_key"`
	OrganizationKey uuid.UUID            `json:"organization_key"`
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	MatrixRoomURL   string               `json:"matrix_room_url"`
	MatrixRoomID    string               `json:"matrix_room_id"`
	MessageTypes    NotificationCategory `json:"message_types"`
	AlertLevel      int16                `json:"alert_level"`
	Created         int64                `json:"created"`
	Updated         int64                `json:"updated"`
}

// AkauntingOptions holds an organization's accounting credentials and sync toggles.
type AkauntingOptions struct {
	Key                uuid.UUID `json:"key"`
	OrganizationKey    uuid.UUID `json:"organization_key"`
	OwnerKey           uuid.UUID `json:"owner_key"`
	UserName           string    `json:"user_name"`
	UserPass           string    `json:"user_pass"`
	AkauntingDomain    string    `json:"akaunting_domain"`
	AkauntingCompanyID string    `json:"akaunting_company_id"`
	OrganizationData   bool      `json:"organization_data"`
	EmployeeData       bool      `json:"employee_data"`
	ClientData         bool      `json:"client_data"`
	VendorData         bool      `json:"vendor_data"`
	ItemData           bool      `json:"item_data"`
	InvoiceData        bool      `json:"invoice_data"`
	AllowPost          bool      `json:"allow_post"`
	LastSync           int64     `json:"last_sync"`
	Created            int64     `json:"created"`
	Updated            int64     `json:"updated"`
}

// DefaultAkauntingOptions is the row created for an organization that has none yet:
// every toggle on, no credentials.
func DefaultAkauntingOptions(organizationKey, ownerKey uuid.UUID) AkauntingOptions {
	return AkauntingOptions{
		OrganizationKey:  organizationKey,
		OwnerKey:         ownerKey,
		OrganizationData: true,
		EmployeeData:     true,
		ClientData:       true,
		VendorData:       true,
		ItemData:         true,
		InvoiceData:      true,
		AllowPost:        true,
	}
}

// Outbox statuses.
const (
	OutboxPending   = "pending"
	OutboxDelivered = "delivered"
	OutboxDead      = "dead"
)

// OutboxMessage is a notification persisted with the record that caused it and delivered
// asynchronously.
type OutboxMessage struct {
	Key               uuid.UUID            `json:"key"`
	OrganizationKey   uuid.UUID            `json:"organization_key"`
	Category          NotificationCategory `json:"category"`
	Body              string               `json:"body"`
	MatrixUserID      string               `json:"matrix_user_id"`
	MatrixAccessToken string               `json:"-"`
	MatrixHomeServer  string               `json:"matrix_home_server"`
	DeliveredRooms    []uuid.UUID          `json:"delivered_rooms"`
	Attempts          int32                `json:"attempts"`
	Status            string               `json:"status"`
	LastError         string               `json:"last_error"`
	NextAttemptAt     int64                `json:"next_attempt_at"`
	Created           int64                `json:"created"`
	Updated           int64                `json:"updated"`
}

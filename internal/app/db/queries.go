package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"kinbrio/internal/app/model"
)

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier lists every accessor. Insert methods write the record exactly as given; key
// generation and timestamps are the caller's job.
type Querier interface {
	GetOrganization(ctx context.Context, key uuid.UUID) (model.Organization, error)
	ListOrganizationsByOwner(ctx context.Context, ownerKey uuid.UUID) ([]model.Organization, error)
	InsertOrganization(ctx context.Context, o model.Organization) error
	UpdateOrganization(ctx context.Context, o model.Organization) error
	DeleteOrganization(ctx context.Context, ownerKey, key uuid.UUID) error

	GetProject(ctx context.Context, key uuid.UUID) (model.Project, error)
	ListProjectsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Project, error)
	InsertProject(ctx context.Context, p model.Project) error
	UpdateProject(ctx context.Context, p model.Project) error
	DeleteProject(ctx context.Context, ownerKey, key uuid.UUID) error

	GetTask(ctx context.Context, key uuid.UUID) (model.Task, error)
	ListTasksByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Task, error)
	ListTasksByProject(ctx context.Context, projectKey uuid.UUID) ([]model.Task, error)
	InsertTask(ctx context.Context, t model.Task) error
	UpdateTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, ownerKey, key uuid.UUID) error

	GetBoard(ctx context.Context, key uuid.UUID) (model.Board, error)
	ListBoardsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Board, error)
	ListBoardsByOwner(ctx context.Context, ownerKey uuid.UUID) ([]model.Board, error)
	InsertBoard(ctx context.Context, b model.Board) error
	UpdateBoard(ctx context.Context, b model.Board) error
	DeleteBoard(ctx context.Context, ownerKey, key uuid.UUID) error

	GetMilestone(ctx context.Context, key uuid.UUID) (model.Milestone, error)
	ListMilestonesByProject(ctx context.Context, projectKey uuid.UUID) ([]model.Milestone, error)
	InsertMilestone(ctx context.Context, m model.Milestone) error
	UpdateMilestone(ctx context.Context, m model.Milestone) error
	DeleteMilestone(ctx context.Context, ownerKey, key uuid.UUID) error

	GetEntity(ctx context.Context, key uuid.UUID) (model.Entity, error)
	ListEntitiesByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Entity, error)
	InsertEntity(ctx context.Context, e model.Entity) error
	UpdateEntity(ctx context.Context, e model.Entity) error
	DeleteEntity(ctx context.Context, ownerKey, key uuid.UUID) error

	GetContact(ctx context.Context, key uuid.UUID) (model.Contact, error)
	ListContactsByEntity(ctx context.Context, entityKey uuid.UUID) ([]model.Contact, error)
	ListContactsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Contact, error)
	InsertContact(ctx context.Context, c model.Contact) error
	UpdateContact(ctx context.Context, c model.Contact) error
	DeleteContact(ctx context.Context, key uuid.UUID) error

	GetNote(ctx context.Context, key uuid.UUID) (model.Note, error)
	ListAssociatedNotes(ctx context.Context, associationType model.AssociationType, associationKey uuid.UUID) ([]model.Note, error)
	InsertNote(ctx context.Context, n model.Note) error
	UpdateNote(ctx context.Context, n model.Note) error
	DeleteNote(ctx context.Context, ownerKey, key uuid.UUID) error

	GetFile(ctx context.Context, key uuid.UUID) (model.File, error)
	ListAssociatedFiles(ctx context.Context, associationType model.AssociationType, associationKey uuid.UUID) ([]model.File, error)
	InsertFile(ctx context.Context, f model.File) error
	UpdateFile(ctx context.Context, f model.File) error
	DeleteFile(ctx context.Context, ownerKey, key uuid.UUID) error

	GetServiceItem(ctx context.Context, key uuid.UUID) (model.ServiceItem, error)
	ListServiceItemsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.ServiceItem, error)
	ListServiceItemsByExternalID(ctx context.Context, organizationKey uuid.UUID, externalID string) ([]model.ServiceItem, error)
	InsertServiceItem(ctx context.Context, s model.ServiceItem) error
	UpdateServiceItem(ctx context.Context, s model.ServiceItem) error
	DeleteServiceItem(ctx context.Context, ownerKey, key uuid.UUID) error

	GetUser(ctx context.Context, key uuid.UUID) (model.User, error)
	GetUserByMatrixID(ctx context.Context, matrixUserID string) (model.User, error)
	ListUsersByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.User, error)
	InsertUser(ctx context.Context, u model.User) error
	UpdateUser(ctx context.Context, u model.User) error
	DeleteUser(ctx context.Context, key uuid.UUID) error

	GetRoom(ctx context.Context, key uuid.UUID) (model.Room, error)
	ListRoomsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Room, error)
	InsertRoom(ctx context.Context, r model.Room) error
	UpdateRoom(ctx context.Context, r model.Room) error
	DeleteRoom(ctx context.Context, ownerKey, key uuid.UUID) error

	GetAkauntingOptions(ctx context.Context, organizationKey uuid.UUID) (model.AkauntingOptions, error)
	InsertAkauntingOptions(ctx context.Context, o model.AkauntingOptions) error
	UpdateAkauntingOptions(ctx context.Context, o model.AkauntingOptions) error

	EnqueueNotification(ctx context.Context, m model.OutboxMessage) error
	ClaimDueNotifications(ctx context.Context, now, leaseUntil int64, limit int) ([]model.OutboxMessage, error)
	MarkNotificationDelivered(ctx context.Context, key uuid.UUID, deliveredRooms []uuid.UUID, now int64) error
	MarkNotificationFailed(ctx context.Context, m model.OutboxMessage) error
}

// Store is a Querier that can also run a function inside one transaction.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(q Querier) error) error
}

// Queries implements Querier on top of a DBTX.
type Queries struct {
	db DBTX
}

// New binds accessors to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

var _ Querier = (*Queries)(nil)

// SQLStore is the pgxpool-backed Store.
type SQLStore struct {
	*Queries
	pool *pgxpool.Pool
}

// NewStore builds a Store on pool.
func NewStore(pool *pgxpool.Pool) *SQLStore {
	return &SQLStore{Queries: New(pool), pool: pool}
}

// ExecTx runs fn inside a transaction, committing when fn returns nil.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(q Querier) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(New(tx))
	})
}

func strs(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func uuids(v []uuid.UUID) []uuid.UUID {
	if v == nil {
		return []uuid.UUID{}
	}
	return v
}

package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"kinbrio/internal/app/db"
	"kinbrio/internal/app/model"
	"kinbrio/internal/app/notify"
	"kinbrio/internal/app/storage"
)

// memStore keeps just the tables these tests touch. Calling any other accessor panics on
// the nil embedded Querier.
type memStore struct {
	db.Querier

	orgs     map[uuid.UUID]model.Organization
	users    map[uuid.UUID]model.User
	projects map[uuid.UUID]model.Project
	tasks    map[uuid.UUID]model.Task
	entities map[uuid.UUID]model.Entity
	files    map[uuid.UUID]model.File
	items    []model.ServiceItem
	options  map[uuid.UUID]model.AkauntingOptions
	outbox   []model.OutboxMessage
	txs      int

	// failFileWrite, when set, fails every file insert and update.
	failFileWrite error
}

func newMemStore() *memStore {
	return &memStore{
		orgs:     map[uuid.UUID]model.Organization{},
		users:    map[uuid.UUID]model.User{},
		projects: map[uuid.UUID]model.Project{},
		tasks:    map[uuid.UUID]model.Task{},
		entities: map[uuid.UUID]model.Entity{},
		files:    map[uuid.UUID]model.File{},
		options:  map[uuid.UUID]model.AkauntingOptions{},
	}
}

func (m *memStore) ExecTx(_ context.Context, fn func(q db.Querier) error) error {
	m.txs++
	return fn(m)
}

func get[T any](rows map[uuid.UUID]T, key uuid.UUID) (T, error) {
	v, ok := rows[key]
	if !ok {
		var zero T
		return zero, db.ErrNotFound
	}
	return v, nil
}

func (m *memStore) GetOrganization(_ context.Context, key uuid.UUID) (model.Organization, error) {
	return get(m.orgs, key)
}

func (m *memStore) InsertOrganization(_ context.Context, o model.Organization) error {
	m.orgs[o.Key] = o
	return nil
}

func (m *memStore) UpdateOrganization(_ context.Context, o model.Organization) error {
	if _, ok := m.orgs[o.Key]; !ok {
		return db.ErrNotFound
	}
	m.orgs[o.Key] = o
	return nil
}

func (m *memStore) GetUserByMatrixID(_ context.Context, id string) (model.User, error) {
	for _, u := range m.users {
		if u.MatrixUserID == id {
			return u, nil
		}
	}
	return model.User{}, db.ErrNotFound
}

func (m *memStore) InsertUser(_ context.Context, u model.User) error {
	m.users[u.Key] = u
	return nil
}

func (m *memStore) GetProject(_ context.Context, key uuid.UUID) (model.Project, error) {
	return get(m.projects, key)
}

func (m *memStore) InsertProject(_ context.Context, p model.Project) error {
	m.projects[p.Key] = p
	return nil
}

func (m *memStore) GetTask(_ context.Context, key uuid.UUID) (model.Task, error) {
	return get(m.tasks, key)
}

func (m *memStore) InsertTask(_ context.Context, t model.Task) error {
	m.tasks[t.Key] = t
	return nil
}

func (m *memStore) UpdateTask(_ context.Context, t model.Task) error {
	if _, ok := m.tasks[t.Key]; !ok {
		return db.ErrNotFound
	}
	m.tasks[t.Key] = t
	return nil
}

func (m *memStore) GetEntity(_ context.Context, key uuid.UUID) (model.Entity, error) {
	return get(m.entities, key)
}

func (m *memStore) InsertEntity(_ context.Context, e model.Entity) error {
	m.entities[e.Key] = e
	return nil
}

func (m *memStore) GetFile(_ context.Context, key uuid.UUID) (model.File, error) {
	return get(m.files, key)
}

func (m *memStore) InsertFile(_ context.Context, f model.File) error {
	if m.failFileWrite != nil {
		return m.failFileWrite
	}
	m.files[f.Key] = f
	return nil
}

func (m *memStore) UpdateFile(_ context.Context, f model.File) error {
	if m.failFileWrite != nil {
		return m.failFileWrite
	}
	if _, ok := m.files[f.Key]; !ok {
		return db.ErrNotFound
	}
	m.files[f.Key] = f
	return nil
}

func (m *memStore) DeleteFile(_ context.Context, owner, key uuid.UUID) error {
	f, ok := m.files[key]
	if !ok || f.OwnerKey != owner {
		return db.ErrNotFound
	}
	delete(m.files, key)
	return nil
}

func (m *memStore) InsertServiceItem(_ context.Context, s model.ServiceItem) error {
	m.items = append(m.items, s)
	return nil
}

func (m *memStore) GetAkauntingOptions(_ context.Context, org uuid.UUID) (model.AkauntingOptions, error) {
	return get(m.options, org)
}

func (m *memStore) InsertAkauntingOptions(_ context.Context, o model.AkauntingOptions) error {
	m.options[o.OrganizationKey] = o
	return nil
}

func (m *memStore) UpdateAkauntingOptions(_ context.Context, o model.AkauntingOptions) error {
	m.options[o.OrganizationKey] = o
	return nil
}

func (m *memStore) EnqueueNotification(_ context.Context, msg model.OutboxMessage) error {
	m.outbox = append(m.outbox, msg)
	return nil
}

type fakeChat struct {
	session notify.Session
	err     error
	email   string
}

func (c *fakeChat) LoginPassword(context.Context, string, string, string) (notify.Session, error) {
	return c.session, c.err
}

func (c *fakeChat) LoginToken(context.Context, string, string) (notify.Session, error) {
	return c.session, c.err
}

func (c *fakeChat) ContactAddress(context.Context, string, string) (string, error) {
	return c.email, nil
}

func (c *fakeChat) LoginChoices(_ context.Context, redirectURL string) ([]notify.LoginChoice, error) {
	if c.err != nil {
		return nil, c.err
	}
	return []notify.LoginChoice{{Display: "SSO", URL: "https://hs/sso?redirectUrl=" + redirectURL}}, nil
}

// HomeServer resolves like MatrixClient with "https://hs" configured.
func (c *fakeChat) HomeServer(hs string) string {
	if hs == "" {
		return "https://hs"
	}
	return hs
}

type memObjects struct {
	buckets map[string]bool
	objects map[string][]byte
	deleted []string
}

func newMemObjects() *memObjects {
	return &memObjects{buckets: map[string]bool{}, objects: map[string][]byte{}}
}

func (o *memObjects) EnsureBucket(_ context.Context, bucket string) error {
	o.buckets[bucket] = true
	return nil
}

func (o *memObjects) Upload(_ context.Context, bucket, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	o.objects[bucket+"/"+key] = data
	return nil
}

func (o *memObjects) Download(_ context.Context, bucket, key string) (*storage.Object, error) {
	data, ok := o.objects[bucket+"/"+key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(data)), ContentLength: int64(len(data))}, nil
}

func (o *memObjects) Delete(_ context.Context, bucket, key string) error {
	o.deleted = append(o.deleted, bucket+"/"+key)
	delete(o.objects, bucket+"/"+key)
	return nil
}

func (o *memObjects) PresignDownload(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + bucket + "/" + key + "?sig=1", nil
}

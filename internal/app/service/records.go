package service

import (
	"context"

	"github.com/google/uuid"

	"kinbrio/internal/app/db"
	"kinbrio/internal/app/model"
)

func (s *Service) GetProject(ctx context.Context, actor Actor, key uuid.UUID) (model.Project, error) {
	p, err := s.store.GetProject(ctx, key)
	if err != nil {
		return model.Project{}, err
	}
	return p, guard(actor, p.OrganizationKey)
}

func (s *Service) SaveProject(ctx context.Context, actor Actor, p model.Project) (model.Project, error) {
	p.OrganizationKey = actor.OrganizationKey
	if s.stamp(&p.Key, &p.Created, &p.Updated) {
		p.OwnerKey = actor.UserKey
		err := s.insertAndNotify(ctx, actor, s.templates.Project(p), func(q db.Querier) error {
			return q.InsertProject(ctx, p)
		})
		return p, err
	}

	existing, err := s.GetProject(ctx, actor, p.Key)
	if err != nil {
		return model.Project{}, err
	}
	p.OwnerKey, p.Created = existing.OwnerKey, existing.Created
	return p, s.store.UpdateProject(ctx, p)
}

func (s *Service) DeleteProject(ctx context.Context, actor Actor, key uuid.UUID) error {
	return s.store.DeleteProject(ctx, actor.UserKey, key)
}

func (s *Service) GetTask(ctx context.Context, actor Actor, key uuid.UUID) (model.Task, error) {
	t, err := s.store.GetTask(ctx, key)
	if err != nil {
		return model.Task{}, err
	}
	return t, guard(actor, t.OrganizationKey)
}

// SaveTask inserts new tasks as Todo whatever status the caller sent.
func (s *Service) SaveTask(ctx context.Context, actor Actor, t model.Task) (model.Task, error) {
	t.OrganizationKey = actor.OrganizationKey
	if err := s.checkProject(ctx, actor, t.ProjectKey); err != nil {
		return model.Task{}, err
	}
	if s.stamp(&t.Key, &t.Created, &t.Updated) {
		t.OwnerKey = actor.UserKey
		t.Status = model.TaskTodo
		err := s.insertAndNotify(ctx, actor, s.templates.Task(t), func(q db.Querier) error {
			return q.InsertTask(ctx, t)
		})
		return t, err
	}

	existing, err := s.GetTask(ctx, actor, t.Key)
	if err != nil {
		return model.Task{}, err
	}
	t.OwnerKey, t.Created = existing.OwnerKey, existing.Created
	return t, s.store.UpdateTask(ctx, t)
}

func (s *Service) DeleteTask(ctx context.Context, actor Actor, key uuid.UUID) error {
	return s.store.DeleteTask(ctx, actor.UserKey, key)
}

// checkProject accepts an unset project or one of the actor's organization.
func (s *Service) checkProject(ctx context.Context, actor Actor, key uuid.UUID) error {
	if key == uuid.Nil {
		return nil
	}
	_, err := s.GetProject(ctx, actor, key)
	return err
}

func (s *Service) GetBoard(ctx context.Context, actor Actor, key uuid.UUID) (model.Board, error) {
	b, err := s.store.GetBoard(ctx, key)
	if err != nil {
		return model.Board{}, err
	}
	return b, guard(actor, b.OrganizationKey)
}

func (s *Service) SaveBoard(ctx context.Context, actor Actor, b model.Board) (model.Board, error) {
	b.OrganizationKey = actor.OrganizationKey
	if s.stamp(&b.Key, &b.Created, &b.Updated) {
		b.OwnerKey = actor.UserKey
		err := s.insertAndNotify(ctx, actor, s.templates.Board(b), func(q db.Querier) error {
			return q.InsertBoard(ctx, b)
		})
		return b, err
	}

	existing, err := s.GetBoard(ctx, actor, b.Key)
	if err != nil {
		return model.Board{}, err
	}
	b.OwnerKey, b.Created = existing.OwnerKey, existing.Created
	return b, s.store.UpdateBoard(ctx, b)
}

func (s *Service) DeleteBoard(ctx context.Context, actor Actor, key uuid.UUID) error {
	return s.store.DeleteBoard(ctx, actor.UserKey, key)
}

func (s *Service) GetMilestone(ctx context.Context, actor Actor, key uuid.UUID) (model.Milestone, error) {
	m, err := s.store.GetMilestone(ctx, key)
	if err != nil {
		return model.Milestone{}, err
	}
	return m, guard(actor, m.OrganizationKey)
}

func (s *Service) SaveMilestone(ctx context.Context, actor Actor, m model.Milestone) (model.Milestone, error) {
	m.OrganizationKey = actor.OrganizationKey
	if err := s.checkProject(ctx, actor, m.ProjectKey); err != nil {
		return model.Milestone{}, err
	}
	if s.stamp(&m.Key, &m.Created, &m.Updated) {
		m.OwnerKey = actor.UserKey
		err := s.insertAndNotify(ctx, actor, s.templates.Milestone(m), func(q db.Querier) error {
			return q.InsertMilestone(ctx, m)
		})
		return m, err
	}

	existing, err := s.GetMilestone(ctx, actor, m.Key)
	if err != nil {
		return model.Milestone{}, err
	}
	m.OwnerKey, m.Created = existing.OwnerKey, existing.Created
	return m, s.store.UpdateMilestone(ctx, m)
}

func (s *Service) DeleteMilestone(ctx context.Context, actor Actor, key uuid.UUID) error {
	return s.store.DeleteMilestone(ctx, actor.UserKey, key)
}

func (s *Service) GetEntity(ctx context.Context, actor Actor, key uuid.UUID) (model.Entity, error) {
	e, err := s.store.GetEntity(ctx, key)
	if err != nil {
		return model.Entity{}, err
	}
	return e, guard(actor, e.OrganizationKey)
}

func (s *Service) SaveEntity(ctx context.Context, actor Actor, e model.Entity) (model.Entity, error) {
	e.OrganizationKey = actor.OrganizationKey
	if s.stamp(&e.Key, &e.Created, &e.Updated) {
		e.OwnerKey = actor.UserKey
		err := s.insertAndNotify(ctx, actor, s.templates.Entity(e), func(q db.Querier) error {
			return q.InsertEntity(ctx, e)
		})
		return e, err
	}

	existing, err := s.GetEntity(ctx, actor, e.Key)
	if err != nil {
		return model.Entity{}, err
	}
	e.OwnerKey, e.Created = existing.OwnerKey, existing.Created
	return e, s.store.UpdateEntity(ctx, e)
}

func (s *Service) DeleteEntity(ctx context.Context, actor Actor, key uuid.UUID) error {
	return s.store.DeleteEntity(ctx, actor.UserKey, key)
}

// Contacts carry no organization of their own; their entity decides access.
func (s *Service) GetContact(ctx context.Context, actor Actor, key uuid.UUID) (model.Contact, error) {
	c, err := s.store.GetContact(ctx, key)
	if err != nil {
		return model.Contact{}, err
	}
	if _, err := s.GetEntity(ctx, actor, c.EntityKey); err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

func (s *Service) SaveContact(ctx context.Context, actor Actor, c model.Contact) (model.Contact, error) {
	if _, err := s.GetEntity(ctx, actor, c.EntityKey); err != nil {
		return model.Contact{}, err
	}
	if s.stamp(&c.Key, &c.Created, &c.Updated) {
		err := s.insertAndNotify(ctx, actor, s.templates.Contact(c), func(q db.Querier) error {
			return q.InsertContact(ctx, c)
		})
		return c, err
	}

	existing, err := s.GetContact(ctx, actor, c.Key)
	if err != nil {
		return model.Contact{}, err
	}
	c.Created = existing.Created
	return c, s.store.UpdateContact(ctx, c)
}

func (s *Service) DeleteContact(ctx context.Context, actor Actor, key uuid.UUID) error {
	if _, err := s.GetContact(ctx, actor, key); err != nil {
		return err
	}
	return s.store.DeleteContact(ctx, key)
}

func (s *Service) GetNote(ctx context.Context, actor Actor, key uuid.UUID) (model.Note, error) {
	n, err := s.store.GetNote(ctx, key)
	if err != nil {
		return model.Note{}, err
	}
	return n, guard(actor, n.OrganizationKey)
}

func (s *Service) SaveNote(ctx context.Context, actor Actor, n model.Note) (model.Note, error) {
	n.OrganizationKey = actor.OrganizationKey
	if s.stamp(&n.Key, &n.Created, &n.Updated) {
		n.OwnerKey = actor.UserKey
		err := s.insertAndNotify(ctx, actor, s.templates.Note(n), func(q db.Querier) error {
			return q.InsertNote(ctx, n)
		})
		return n, err
	}

	existing, err := s.GetNote(ctx, actor, n.Key)
	if err != nil {
		return model.Note{}, err
	}
	n.OwnerKey, n.Created = existing.OwnerKey, existing.Created
	return n, s.store.UpdateNote(ctx, n)
}

func (s *Service) DeleteNote(ctx context.Context, actor Actor, key uuid.UUID) error {
	return s.store.DeleteNote(ctx, actor.UserKey, key)
}

func (s *Service) GetServiceItem(ctx context.Context, actor Actor, key uuid.UUID) (model.ServiceItem, error) {
	item, err := s.store.GetServiceItem(ctx, key)
	if err != nil {
		return model.ServiceItem{}, err
	}
	return item, guard(actor, item.OrganizationKey)
}

// SaveServiceItem never notifies.
func (s *Service) SaveServiceItem(ctx context.Context, actor Actor, item model.ServiceItem) (model.ServiceItem, error) {
	item.OrganizationKey = actor.OrganizationKey
	if s.stamp(&item.Key, &item.Created, &item.Updated) {
		item.OwnerKey = actor.UserKey
		return item, s.store.InsertServiceItem(ctx, item)
	}

	existing, err := s.GetServiceItem(ctx, actor, item.Key)
	if err != nil {
		return model.ServiceItem{}, err
	}
	item.OwnerKey, item.Created = existing.OwnerKey, existing.Created
	return item, s.store.UpdateServiceItem(ctx, item)
}

func (s *Service) DeleteServiceItem(ctx context.Context, actor Actor, key uuid.UUID) error {
	return s.store.DeleteServiceItem(ctx, actor.UserKey, key)
}

func (s *Service) ListServiceItems(ctx context.Context, actor Actor) ([]model.ServiceItem, error) {
	return s.store.ListServiceItemsByOrganization(ctx, actor.OrganizationKey)
}

func (s *Service) GetRoom(ctx context.Context, actor Actor, key uuid.UUID) (model.Room, error) {
	r, err := s.store.GetRoom(ctx, key)
	if err != nil {
		return model.Room{}, err
	}
	return r, guard(actor, r.OrganizationKey)
}

func (s *Service) SaveRoom(ctx context.Context, actor Actor, r model.Room) (model.Room, error) {
	r.OrganizationKey = actor.OrganizationKey
	if s.stamp(&r.Key, &r.Created, &r.Updated) {
		r.OwnerKey = actor.UserKey
		err := s.insertAndNotify(ctx, actor, s.templates.Room(r), func(q db.Querier) error {
			return q.InsertRoom(ctx, r)
		})
		return r, err
	}

	existing, err := s.GetRoom(ctx, actor, r.Key)
	if err != nil {
		return model.Room{}, err
	}
	r.OwnerKey, r.Created = existing.OwnerKey, existing.Created
	return r, s.store.UpdateRoom(ctx, r)
}

func (s *Service) DeleteRoom(ctx context.Context, actor Actor, key uuid.UUID) error {
	return s.store.DeleteRoom(ctx, actor.UserKey, key)
}

func (s *Service) ListRooms(ctx context.Context, actor Actor) ([]model.Room, error) {
	return s.store.ListRoomsByOrganization(ctx, actor.OrganizationKey)
}

func (s *Service) GetUser(ctx context.Context, actor Actor, key uuid.UUID) (model.User, error) {
	u, err := s.store.GetUser(ctx, key)
	if err != nil {
		return model.User{}, err
	}
	return u, guard(actor, u.OrganizationKey)
}

// SaveUser adds or edits a member of the actor's organization. Users never notify.
func (s *Service) SaveUser(ctx context.Context, actor Actor, u model.User) (model.User, error) {
	u.OrganizationKey = actor.OrganizationKey
	if s.stamp(&u.Key, &u.Created, &u.Updated) {
		return u, s.store.InsertUser(ctx, u)
	}

	existing, err := s.GetUser(ctx, actor, u.Key)
	if err != nil {
		return model.User{}, err
	}
	u.Created = existing.Created
	return u, s.store.UpdateUser(ctx, u)
}

func (s *Service) DeleteUser(ctx context.Context, actor Actor, key uuid.UUID) error {
	if _, err := s.GetUser(ctx, actor, key); err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, key)
}

func (s *Service) ListUsers(ctx context.Context, actor Actor) ([]model.User, error) {
	return s.store.ListUsersByOrganization(ctx, actor.OrganizationKey)
}

// GetOrganization returns the actor's organization or one the actor owns.
func (s *Service) GetOrganization(ctx context.Context, actor Actor, key uuid.UUID) (model.Organization, error) {
	o, err := s.store.GetOrganization(ctx, key)
	if err != nil {
		return model.Organization{}, err
	}
	if o.Key != actor.OrganizationKey && o.OwnerKey != actor.UserKey {
		return model.Organization{}, db.ErrNotFound
	}
	return o, nil
}

// SaveOrganization never notifies.
func (s *Service) SaveOrganization(ctx context.Context, actor Actor, o model.Organization) (model.Organization, error) {
	if s.stamp(&o.Key, &o.Created, &o.Updated) {
		o.OwnerKey = actor.UserKey
		return o, s.store.InsertOrganization(ctx, o)
	}

	existing, err := s.GetOrganization(ctx, actor, o.Key)
	if err != nil {
		return model.Organization{}, err
	}
	o.OwnerKey, o.Created = existing.OwnerKey, existing.Created
	return o, s.store.UpdateOrganization(ctx, o)
}

func (s *Service) DeleteOrganization(ctx context.Context, actor Actor, key uuid.UUID) error {
	return s.store.DeleteOrganization(ctx, actor.UserKey, key)
}

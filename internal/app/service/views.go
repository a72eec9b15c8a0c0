package service

import (
	"context"

	"github.com/google/uuid"

	"kinbrio/internal/app/model"
)

type Dashboard struct {
	Organization model.Organization `json:"organization"`
	Projects     []model.Project    `json:"projects"`
	Tasks        []model.Task       `json:"tasks"`
	Boards       []model.Board      `json:"boards"`
}

func (s *Service) Dashboard(ctx context.Context, actor Actor) (Dashboard, error) {
	var d Dashboard
	var err error
	if d.Organization, err = s.store.GetOrganization(ctx, actor.OrganizationKey); err != nil {
		return Dashboard{}, err
	}
	if d.Projects, err = s.store.ListProjectsByOrganization(ctx, actor.OrganizationKey); err != nil {
		return Dashboard{}, err
	}
	if d.Tasks, err = s.store.ListTasksByOrganization(ctx, actor.OrganizationKey); err != nil {
		return Dashboard{}, err
	}
	if d.Boards, err = s.store.ListBoardsByOrganization(ctx, actor.OrganizationKey); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

type Account struct {
	User          model.User           `json:"user"`
	Organization  model.Organization   `json:"organization"`
	Organizations []model.Organization `json:"organizations"`
}

func (s *Service) Account(ctx context.Context, actor Actor) (Account, error) {
	var a Account
	var err error
	if a.User, err = s.store.GetUser(ctx, actor.UserKey); err != nil {
		return Account{}, err
	}
	if a.Organization, err = s.store.GetOrganization(ctx, actor.OrganizationKey); err != nil {
		return Account{}, err
	}
	if a.Organizations, err = s.store.ListOrganizationsByOwner(ctx, actor.UserKey); err != nil {
		return Account{}, err
	}
	return a, nil
}

type ProjectView struct {
	Project    model.Project     `json:"project"`
	Tasks      []model.Task      `json:"tasks"`
	Milestones []model.Milestone `json:"milestones"`
}

func (s *Service) ProjectView(ctx context.Context, actor Actor, key uuid.UUID) (ProjectView, error) {
	var v ProjectView
	var err error
	if v.Project, err = s.GetProject(ctx, actor, key); err != nil {
		return ProjectView{}, err
	}
	if v.Tasks, err = s.store.ListTasksByProject(ctx, key); err != nil {
		return ProjectView{}, err
	}
	if v.Milestones, err = s.store.ListMilestonesByProject(ctx, key); err != nil {
		return ProjectView{}, err
	}
	return v, nil
}

type EntityView struct {
	Entity   model.Entity    `json:"entity"`
	Contacts []model.Contact `json:"contacts"`
	Notes    []model.Note    `json:"notes"`
	Files    []model.File    `json:"files"`
}

func (s *Service) EntityView(ctx context.Context, actor Actor, key uuid.UUID) (EntityView, error) {
	var v EntityView
	var err error
	if v.Entity, err = s.GetEntity(ctx, actor, key); err != nil {
		return EntityView{}, err
	}
	if v.Contacts, err = s.store.ListContactsByEntity(ctx, key); err != nil {
		return EntityView{}, err
	}
	if v.Notes, err = s.store.ListAssociatedNotes(ctx, model.AssociationEntity, key); err != nil {
		return EntityView{}, err
	}
	if v.Files, err = s.store.ListAssociatedFiles(ctx, model.AssociationEntity, key); err != nil {
		return EntityView{}, err
	}
	return v, nil
}

type TaskView struct {
	Task  model.Task   `json:"task"`
	Notes []model.Note `json:"notes"`
	Files []model.File `json:"files"`
}

func (s *Service) TaskView(ctx context.Context, actor Actor, key uuid.UUID) (TaskView, error) {
	var v TaskView
	var err error
	if v.Task, err = s.GetTask(ctx, actor, key); err != nil {
		return TaskView{}, err
	}
	if v.Notes, err = s.store.ListAssociatedNotes(ctx, model.AssociationTask, key); err != nil {
		return TaskView{}, err
	}
	if v.Files, err = s.store.ListAssociatedFiles(ctx, model.AssociationTask, key); err != nil {
		return TaskView{}, err
	}
	return v, nil
}

// Lookups lists what creation forms pick from.
type Lookups struct {
	Projects []model.Project `json:"projects"`
	Users    []model.User    `json:"users"`
	Entities []model.Entity  `json:"entities"`
}

func (s *Service) Lookups(ctx context.Context, actor Actor) (Lookups, error) {
	var l Lookups
	var err error
	if l.Projects, err = s.store.ListProjectsByOrganization(ctx, actor.OrganizationKey); err != nil {
		return Lookups{}, err
	}
	if l.Users, err = s.store.ListUsersByOrganization(ctx, actor.OrganizationKey); err != nil {
		return Lookups{}, err
	}
	if l.Entities, err = s.store.ListEntitiesByOrganization(ctx, actor.OrganizationKey); err != nil {
		return Lookups{}, err
	}
	return l, nil
}

package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"kinbrio/internal/app/db"
	"kinbrio/internal/app/model"
	"kinbrio/internal/app/storage"
	"kinbrio/internal/pkg/logx"
)

const downloadLinkTTL = 15 * time.Minute

func fileBucket(f model.File) string {
	return storage.BucketName(f.AssociationType.String(), f.AssociationKey.String())
}

func (s *Service) GetFile(ctx context.Context, actor Actor, key uuid.UUID) (model.File, error) {
	f, err := s.store.GetFile(ctx, key)
	if err != nil {
		return model.File{}, err
	}
	return f, guard(actor, f.OrganizationKey)
}

// SaveFile checks the row being edited and the organization of the record it is attached
// to, stores body when given, and then saves the metadata row. An object newly written for
// a row that fails to save is removed again. Without a body the row keeps the stored
// object's name, size, format and association.
func (s *Service) SaveFile(ctx context.Context, actor Actor, f model.File, body io.Reader) (model.File, error) {
	f.OrganizationKey = actor.OrganizationKey

	var existing model.File
	update := f.Key != uuid.Nil
	if update {
		var err error
		if existing, err = s.GetFile(ctx, actor, f.Key); err != nil {
			return model.File{}, err
		}
		if body == nil {
			f.Name, f.Size, f.Format = existing.Name, existing.Size, existing.Format
			f.AssociationType, f.AssociationKey = existing.AssociationType, existing.AssociationKey
		}
	}
	if err := s.guardAssociation(ctx, actor, f.AssociationType, f.AssociationKey); err != nil {
		return model.File{}, err
	}

	moved := update && (fileBucket(f) != fileBucket(existing) || f.Name != existing.Name)
	if body != nil {
		bucket := fileBucket(f)
		if err := s.files.EnsureBucket(ctx, bucket); err != nil {
			return model.File{}, err
		}
		if err := s.files.Upload(ctx, bucket, f.Name, body, storage.ContentType(f.Format)); err != nil {
			return model.File{}, err
		}
	}

	var err error
	if s.stamp(&f.Key, &f.Created, &f.Updated) {
		f.OwnerKey = actor.UserKey
		err = s.insertAndNotify(ctx, actor, s.templates.File(f), func(q db.Querier) error {
			return q.InsertFile(ctx, f)
		})
	} else {
		f.OwnerKey, f.Created = existing.OwnerKey, existing.Created
		err = s.store.UpdateFile(ctx, f)
	}

	switch {
	case err != nil && body != nil && (!update || moved):
		s.removeObject(ctx, f)
		return model.File{}, err
	case err != nil:
		return model.File{}, err
	case body != nil && moved:
		s.removeObject(ctx, existing)
	}
	return f, nil
}

func (s *Service) removeObject(ctx context.Context, f model.File) {
	if err := s.files.Delete(ctx, fileBucket(f), f.Name); err != nil {
		logx.Warn("Stored object not removed", "file_key", f.Key.String(), "error", err.Error())
	}
}

// guardAssociation fails with db.ErrNotFound unless the record a file is attached to
// belongs to the actor's organization.
func (s *Service) guardAssociation(ctx context.Context, actor Actor, t model.AssociationType, key uuid.UUID) error {
	var err error
	switch t {
	case model.AssociationOrganization:
		err = guard(actor, key)
	case model.AssociationProject:
		_, err = s.GetProject(ctx, actor, key)
	case model.AssociationTask:
		_, err = s.GetTask(ctx, actor, key)
	case model.AssociationEntity:
		_, err = s.GetEntity(ctx, actor, key)
	case model.AssociationContact:
		_, err = s.GetContact(ctx, actor, key)
	case model.AssociationMilestone:
		_, err = s.GetMilestone(ctx, actor, key)
	case model.AssociationUser:
		_, err = s.GetUser(ctx, actor, key)
	default:
		err = db.ErrNotFound
	}
	return err
}

// DeleteFile removes the row, then the stored object. A failed object delete is logged
// and otherwise ignored.
func (s *Service) DeleteFile(ctx context.Context, actor Actor, key uuid.UUID) error {
	f, err := s.GetFile(ctx, actor, key)
	if err != nil {
		return err
	}
	if err := s.store.DeleteFile(ctx, actor.UserKey, key); err != nil {
		return err
	}
	s.removeObject(ctx, f)
	return nil
}

// OpenFile streams a stored object. organizationKey must be the actor's.
func (s *Service) OpenFile(ctx context.Context, actor Actor, format string, organizationKey uuid.UUID, associationType model.AssociationType, associationKey uuid.UUID, name string) (*storage.Object, error) {
	if err := guard(actor, organizationKey); err != nil {
		return nil, err
	}
	bucket := storage.BucketName(associationType.String(), associationKey.String())
	obj, err := s.files.Download(ctx, bucket, name)
	if err != nil {
		return nil, err
	}
	obj.ContentType = storage.ContentType(format)
	return obj, nil
}

// FileView is a file row with a short-lived direct download link.
type FileView struct {
	File        model.File `json:"file"`
	DownloadURL string     `json:"download_url"`
}

func (s *Service) FileView(ctx context.Context, actor Actor, key uuid.UUID) (FileView, error) {
	f, err := s.GetFile(ctx, actor, key)
	if err != nil {
		return FileView{}, err
	}
	link, err := s.files.PresignDownload(ctx, fileBucket(f), f.Name, downloadLinkTTL)
	if err != nil {
		return FileView{}, err
	}
	return FileView{File: f, DownloadURL: link}, nil
}

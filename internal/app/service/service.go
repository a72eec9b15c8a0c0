/*
Package service holds the record rules shared by every route: key and timestamp stamping on
save, the organization guard on reads and writes, and the transactional outbox write that
accompanies every notifying insert.
*/
package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"kinbrio/internal/app/db"
	"kinbrio/internal/app/model"
	"kinbrio/internal/app/notify"
	"kinbrio/internal/app/storage"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserKey         uuid.UUID
	OrganizationKey uuid.UUID
	Chat            notify.Credentials
}

// ChatLogin is the part of the chat client used to sign users in.
type ChatLogin interface {
	LoginPassword(ctx context.Context, homeServer, user, password string) (notify.Session, error)
	LoginToken(ctx context.Context, homeServer, token string) (notify.Session, error)
	ContactAddress(ctx context.Context, homeServer, token string) (string, error)
	LoginChoices(ctx context.Context, redirectURL string) ([]notify.LoginChoice, error)
	HomeServer(hs string) string
}

type Config struct {
	// BaseURL prefixes deep links in notifications.
	BaseURL string

	// DefaultAkauntingDomain is applied to options that name no domain.
	DefaultAkauntingDomain string

	// HTTPClient is used for accounting calls.
	HTTPClient *http.Client
}

type Service struct {
	store     db.Store
	files     storage.StorageService
	chat      ChatLogin
	templates notify.Templates
	cfg       Config
	now       func() int64
}

func New(store db.Store, files storage.StorageService, chat ChatLogin, cfg Config) *Service {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Service{
		store:     store,
		files:     files,
		chat:      chat,
		templates: notify.Templates{BaseURL: cfg.BaseURL},
		cfg:       cfg,
		now:       model.Now,
	}
}

// stamp applies the save rule: a nil key means insert with a fresh key, created=now and
// updated=0; anything else is an update with updated=now. It reports whether this is an
// insert.
func (s *Service) stamp(key *uuid.UUID, created, updated *int64) bool {
	now := s.now()
	if *key == uuid.Nil {
		*key = uuid.New()
		*created = now
		*updated = 0
		return true
	}
	*updated = now
	return false
}

// guard hides rows of other organizations behind the not-found error.
func guard(actor Actor, organizationKey uuid.UUID) error {
	if organizationKey != actor.OrganizationKey {
		return db.ErrNotFound
	}
	return nil
}

// insertAndNotify runs insert and queues msg for delivery in the same transaction.
func (s *Service) insertAndNotify(ctx context.Context, actor Actor, msg notify.Message, insert func(q db.Querier) error) error {
	return s.store.ExecTx(ctx, func(q db.Querier) error {
		if err := insert(q); err != nil {
			return err
		}
		now := s.now()
		return q.EnqueueNotification(ctx, model.OutboxMessage{
			Key:               uuid.New(),
			OrganizationKey:   actor.OrganizationKey,
			Category:          msg.Category,
			Body:              msg.Body,
			MatrixUserID:      actor.Chat.UserID,
			MatrixAccessToken: actor.Chat.AccessToken,
			MatrixHomeServer:  actor.Chat.HomeServer,
			Status:            model.OutboxPending,
			NextAttemptAt:     now,
			Created:           now,
		})
	})
}

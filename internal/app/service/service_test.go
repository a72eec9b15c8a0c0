package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinbrio/internal/app/db"
	"kinbrio/internal/app/model"
	"kinbrio/internal/app/notify"
	"kinbrio/internal/pkg/errs"
)

func newTestService(store *memStore) (*Service, Actor) {
	s := New(store, newMemObjects(), &fakeChat{}, Config{BaseURL: "https://kinbrio.test", DefaultAkauntingDomain: "https://akaunting.test/api"})
	s.now = func() int64 { return 1000 }

	actor := Actor{
		UserKey:         uuid.New(),
		OrganizationKey: uuid.New(),
		Chat:            notify.Credentials{UserID: "@ana:hs", AccessToken: "syt", HomeServer: "https://hs"},
	}
	store.orgs[actor.OrganizationKey] = model.Organization{Key: actor.OrganizationKey, OwnerKey: actor.UserKey, Name: "Acme"}
	return s, actor
}

func TestTaskInsertForcesTodo(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)

	saved, err := s.SaveTask(context.Background(), actor, model.Task{
		Name:                 "Write docs",
		Status:               model.TaskComplete,
		EstimatedQuarterDays: 6,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, saved.Key)
	assert.Equal(t, model.TaskTodo, saved.Status)
	assert.Equal(t, int64(1000), saved.Created)
	assert.Zero(t, saved.Updated)
	assert.Equal(t, actor.UserKey, saved.OwnerKey)
	assert.Equal(t, model.TaskTodo, store.tasks[saved.Key].Status)

	require.Len(t, store.outbox, 1)
	msg := store.outbox[0]
	assert.Equal(t, 1, store.txs)
	assert.Equal(t, model.CategoryTask, msg.Category)
	assert.Equal(t, actor.OrganizationKey, msg.OrganizationKey)
	assert.Equal(t, "syt", msg.MatrixAccessToken)
	assert.Equal(t, model.OutboxPending, msg.Status)
	assert.Contains(t, msg.Body, "1.5 day(s) Task: Write docs")
	assert.Contains(t, msg.Body, "https://kinbrio.test/task/"+saved.Key.String())
}

func TestTaskUpdateKeepsCreatedAndStatus(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)

	saved, err := s.SaveTask(context.Background(), actor, model.Task{Name: "a"})
	require.NoError(t, err)

	s.now = func() int64 { return 2000 }
	saved.Status = model.TaskInProgress
	saved.Created = 1
	updated, err := s.SaveTask(context.Background(), actor, saved)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), updated.Created)
	assert.Equal(t, int64(2000), updated.Updated)
	assert.Equal(t, model.TaskInProgress, store.tasks[saved.Key].Status)
	assert.Len(t, store.outbox, 1, "updates do not notify")
}

func TestOtherOrganizationIsNotFound(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)

	foreign := model.Task{Key: uuid.New(), OrganizationKey: uuid.New(), Name: "theirs"}
	store.tasks[foreign.Key] = foreign

	_, err := s.GetTask(context.Background(), actor, foreign.Key)
	require.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	foreign.Name = "mine now"
	_, err = s.SaveTask(context.Background(), actor, foreign)
	require.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, "theirs", store.tasks[foreign.Key].Name)

	_, err = s.SaveTask(context.Background(), actor, model.Task{Name: "x", ProjectKey: uuid.New()})
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Empty(t, store.outbox)
}

func TestLoginProvisionsFirstTimeUser(t *testing.T) {
	store := newMemStore()
	s, _ := newTestService(store)
	s.chat = &fakeChat{
		session: notify.Session{UserID: "@bo:hs", AccessToken: "tok", HomeServer: "https://hs"},
		email:   "bo@example.test",
	}

	u, session, err := s.LoginPassword(context.Background(), "https://hs", "bo", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, "@bo:hs", u.MatrixUserID)
	assert.Equal(t, "bo@example.test", u.Email)

	org := store.orgs[u.OrganizationKey]
	assert.Equal(t, WelcomeOrganizationName, org.Name)
	assert.Equal(t, u.Key, org.OwnerKey)

	again, _, err := s.LoginToken(context.Background(), "login-token")
	require.NoError(t, err)
	assert.Equal(t, u.Key, again.Key)
	assert.Len(t, store.users, 1)
}

func TestLoginRejectedByChatServer(t *testing.T) {
	store := newMemStore()
	s, _ := newTestService(store)
	s.chat = &fakeChat{err: errs.WithKind(errs.KindUnauthorized, io.EOF)}

	_, _, err := s.LoginPassword(context.Background(), "", "bo", "wrong")
	require.Error(t, err)
	assert.Equal(t, errs.ErrChatLoginFailed, errs.From(err).Code)
	assert.Empty(t, store.users)
}

func TestLoginRejectsUserIDNotServedByHomeServer(t *testing.T) {
	store := newMemStore()
	victim := model.User{Key: uuid.New(), OrganizationKey: uuid.New(), MatrixUserID: "@victim:matrix.org",
		MatrixHomeServer: "https://hs"}
	store.users[victim.Key] = victim

	s, _ := newTestService(store)
	s.chat = &fakeChat{session: notify.Session{UserID: "@victim:matrix.org", AccessToken: "evil", HomeServer: "https://evil.test"}}

	_, _, err := s.LoginPassword(context.Background(), "https://evil.test", "victim", "any")
	require.Error(t, err)
	assert.Equal(t, errs.ErrChatLoginFailed, errs.From(err).Code)

	s.chat = &fakeChat{session: notify.Session{UserID: "@newcomer:matrix.org", AccessToken: "evil", HomeServer: "https://evil.test"}}
	_, _, err = s.LoginPassword(context.Background(), "https://evil.test", "newcomer", "any")
	require.Error(t, err)

	assert.Len(t, store.users, 1)
	assert.Equal(t, victim, store.users[victim.Key])
}

func TestLoginRejectsExistingUserOnAnotherHomeServer(t *testing.T) {
	store := newMemStore()
	existing := model.User{Key: uuid.New(), OrganizationKey: uuid.New(), MatrixUserID: "@bo:bo.test",
		MatrixHomeServer: "https://hs"}
	store.users[existing.Key] = existing

	s, _ := newTestService(store)
	s.chat = &fakeChat{session: notify.Session{UserID: "@bo:bo.test", AccessToken: "tok", HomeServer: "https://bo.test"}}

	_, _, err := s.LoginPassword(context.Background(), "https://bo.test", "bo", "pw")
	require.Error(t, err)
	assert.Equal(t, errs.ErrChatLoginFailed, errs.From(err).Code)
}

func TestLoginOnSelfHostedHomeServer(t *testing.T) {
	store := newMemStore()
	s, _ := newTestService(store)
	s.chat = &fakeChat{session: notify.Session{UserID: "@cy:cy.test", AccessToken: "tok", HomeServer: "https://cy.test"}}

	u, _, err := s.LoginPassword(context.Background(), "https://cy.test", "cy", "pw")
	require.NoError(t, err)
	assert.Equal(t, "https://cy.test", u.MatrixHomeServer)

	again, _, err := s.LoginPassword(context.Background(), "https://cy.test", "cy", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.Key, again.Key)
}

func TestLoginChoicesReturnToTokenLogin(t *testing.T) {
	s, _ := newTestService(newMemStore())

	choices, err := s.LoginChoices(context.Background())
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Equal(t, "https://hs/sso?redirectUrl=https://kinbrio.test/login_matrix", choices[0].URL)

	s.chat = &fakeChat{err: errs.WithKind(errs.KindUpstream, io.EOF)}
	_, err = s.LoginChoices(context.Background())
	assert.Equal(t, errs.ErrChatUpstream, errs.From(err).Code)
}

func akauntingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/items/42":
			_, _ = w.Write([]byte(`{"data":{"id":42,"name":"Consulting","description":"hourly","sale_price":120.75,"type":"Service"}}`))
		case r.URL.Path == "/api/contacts/7":
			_, _ = w.Write([]byte(`{"data":{"id":7,"name":"Globex","address":"1 Main St","website":"https://globex.test"}}`))
		case r.URL.Path == "/api/companies":
			_, _ = w.Write([]byte(`{"data":[{"id":3,"name":"Acme Holdings","email":"books@acme.test"}]}`))
		case r.URL.Path == "/api/documents":
			_, _ = w.Write([]byte(`{"data":[{"id":1,"contact_id":7},{"id":2,"contact_id":9}]}`))
		case strings.HasPrefix(r.URL.Path, "/api/"):
			_, _ = w.Write([]byte(`{"data":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func withAkaunting(store *memStore, actor Actor, domain string) {
	opts := model.DefaultAkauntingOptions(actor.OrganizationKey, actor.UserKey)
	opts.Key = uuid.New()
	opts.AkauntingDomain = domain
	opts.UserName = "u"
	opts.UserPass = "p"
	opts.AkauntingCompanyID = "3"
	store.options[actor.OrganizationKey] = opts
}

func TestImportItemTwiceCreatesTwoRows(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)
	withAkaunting(store, actor, akauntingServer(t).URL+"/api")

	first, err := s.ImportItem(context.Background(), actor, "42")
	require.NoError(t, err)
	second, err := s.ImportItem(context.Background(), actor, "42")
	require.NoError(t, err)

	require.Len(t, store.items, 2)
	assert.NotEqual(t, first.Key, second.Key)
	for _, item := range store.items {
		assert.Equal(t, "42", item.ExternalAccountingID)
		assert.Equal(t, "Consulting", item.Name)
		assert.Equal(t, int64(120), item.Value)
		assert.Equal(t, "USD", item.Currency)
		assert.Equal(t, model.ServiceItemService, item.ServiceItemType)
		assert.Equal(t, model.ServiceValueFull, item.ServiceValueType)
	}
	assert.Empty(t, store.outbox)
}

func TestImportRequiresID(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)

	_, err := s.ImportItem(context.Background(), actor, "")
	require.Error(t, err)
	assert.Equal(t, errs.ErrBadImportID, errs.From(err).Code)
	assert.Equal(t, "bad import_id", errs.From(err).Message)

	_, err = s.ImportCustomer(context.Background(), actor, "")
	assert.Equal(t, errs.ErrBadImportID, errs.From(err).Code)
}

func TestImportCustomer(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)
	withAkaunting(store, actor, akauntingServer(t).URL+"/api")

	e, err := s.ImportCustomer(context.Background(), actor, "7")
	require.NoError(t, err)
	assert.Equal(t, model.EntityClient, e.EntityType)
	assert.Equal(t, "Globex", e.Name)
	assert.Equal(t, "https://globex.test", e.WebURL)
	assert.Equal(t, "1 Main St", e.AddressPrimary)
	assert.Equal(t, "7", e.ExternalAccountingID)

	invoices, err := s.EntityInvoices(context.Background(), actor, e.Key, "7")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "1", invoices[0].ID.String())
}

func TestAkauntingOptionsCreatedWithDefaults(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)

	view, err := s.AkauntingView(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, "https://akaunting.test/api", view.Options.AkauntingDomain)
	assert.True(t, view.Options.InvoiceData)
	assert.Empty(t, view.Companies)

	stored := store.options[actor.OrganizationKey]
	assert.NotEqual(t, uuid.Nil, stored.Key)
	assert.Equal(t, "", stored.AkauntingDomain)
}

func TestSaveAkauntingOptionsCopiesCompany(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)
	srv := akauntingServer(t)
	withAkaunting(store, actor, srv.URL+"/api")

	opts := store.options[actor.OrganizationKey]
	view, err := s.SaveAkauntingOptions(context.Background(), actor, opts)
	require.NoError(t, err)

	org := store.orgs[actor.OrganizationKey]
	assert.Equal(t, "Acme Holdings", org.Name)
	assert.Equal(t, "books@acme.test", org.ContactEmail)
	assert.Equal(t, "3", org.ExternalAccountingID)
	assert.Equal(t, srv.URL+"/api", org.ExternalAccountingURL)
	assert.Equal(t, org, view.Organization)
}

func TestAkauntingViewsOmitPassword(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)
	srv := akauntingServer(t)
	withAkaunting(store, actor, srv.URL+"/api")

	view, err := s.AkauntingView(context.Background(), actor)
	require.NoError(t, err)
	assert.Empty(t, view.Options.UserPass)
	assert.Equal(t, "u", view.Options.UserName)

	// Saving the options as shown keeps the stored password.
	saved, err := s.SaveAkauntingOptions(context.Background(), actor, view.Options)
	require.NoError(t, err)
	assert.Empty(t, saved.Options.UserPass)
	assert.Equal(t, "p", store.options[actor.OrganizationKey].UserPass)

	_, err = s.ImportItem(context.Background(), actor, "42")
	require.NoError(t, err)
}

func TestSaveFileUploadsAndNotifies(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)
	objects := s.files.(*memObjects)

	assoc := uuid.New()
	store.entities[assoc] = model.Entity{Key: assoc, OrganizationKey: actor.OrganizationKey}
	f, err := s.SaveFile(context.Background(), actor, model.File{
		Name:            "logo.png",
		Format:          "png",
		AssociationType: model.AssociationEntity,
		AssociationKey:  assoc,
	}, strings.NewReader("PNG"))
	require.NoError(t, err)

	bucket := "entity-" + assoc.String() + "-fs"
	assert.True(t, objects.buckets[bucket])
	assert.Equal(t, []byte("PNG"), objects.objects[bucket+"/logo.png"])
	require.Len(t, store.outbox, 1)
	assert.Equal(t, model.CategoryFile, store.outbox[0].Category)

	obj, err := s.OpenFile(context.Background(), actor, "png", actor.OrganizationKey, model.AssociationEntity, assoc, "logo.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)
	_ = obj.Body.Close()

	_, err = s.OpenFile(context.Background(), actor, "png", uuid.New(), model.AssociationEntity, assoc, "logo.png")
	assert.ErrorIs(t, err, db.ErrNotFound)

	require.NoError(t, s.DeleteFile(context.Background(), actor, f.Key))
	assert.Equal(t, []string{bucket + "/logo.png"}, objects.deleted)
	assert.Empty(t, store.files)
}

func TestSaveFileForeignRowLeavesObjectUntouched(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)
	objects := s.files.(*memObjects)

	victimOrg, victimEntity := uuid.New(), uuid.New()
	store.entities[victimEntity] = model.Entity{Key: victimEntity, OrganizationKey: victimOrg}
	victimFile := model.File{Key: uuid.New(), OrganizationKey: victimOrg, Name: "contract.pdf", Format: "pdf",
		AssociationType: model.AssociationEntity, AssociationKey: victimEntity}
	store.files[victimFile.Key] = victimFile
	object := "entity-" + victimEntity.String() + "-fs/contract.pdf"
	objects.objects[object] = []byte("signed")

	overwrite := victimFile
	_, err := s.SaveFile(context.Background(), actor, overwrite, strings.NewReader("forged"))
	require.ErrorIs(t, err, db.ErrNotFound)

	overwrite.Key = uuid.Nil
	_, err = s.SaveFile(context.Background(), actor, overwrite, strings.NewReader("forged"))
	require.ErrorIs(t, err, db.ErrNotFound)

	assert.Equal(t, []byte("signed"), objects.objects[object])
	assert.Empty(t, objects.buckets)
	assert.Equal(t, victimFile, store.files[victimFile.Key])
	assert.Empty(t, store.outbox)
}

func TestSaveFileMetadataUpdateKeepsObject(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)
	objects := s.files.(*memObjects)

	project := uuid.New()
	store.projects[project] = model.Project{Key: project, OrganizationKey: actor.OrganizationKey}
	f, err := s.SaveFile(context.Background(), actor, model.File{
		Name:            "plan.pdf",
		Format:          "pdf",
		Size:            4,
		AssociationType: model.AssociationProject,
		AssociationKey:  project,
	}, strings.NewReader("PLAN"))
	require.NoError(t, err)

	updated, err := s.SaveFile(context.Background(), actor, model.File{
		Key:             f.Key,
		Name:            "renamed.pdf",
		Description:     "Q3 plan",
		AssociationType: model.AssociationOrganization,
		AssociationKey:  actor.OrganizationKey,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Q3 plan", updated.Description)
	assert.Equal(t, "plan.pdf", updated.Name)
	assert.Equal(t, int64(4), updated.Size)
	assert.Equal(t, "pdf", updated.Format)
	assert.Equal(t, model.AssociationProject, updated.AssociationType)
	assert.Equal(t, project, updated.AssociationKey)
	assert.Equal(t, f.Created, updated.Created)
	assert.Equal(t, updated, store.files[f.Key])

	view, err := s.FileView(context.Background(), actor, f.Key)
	require.NoError(t, err)
	assert.Contains(t, view.DownloadURL, "project-"+project.String()+"-fs/plan.pdf")
	assert.Equal(t, []byte("PLAN"), objects.objects["project-"+project.String()+"-fs/plan.pdf"])
}

func TestSaveFileReplacementMovesObject(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)
	objects := s.files.(*memObjects)

	f, err := s.SaveFile(context.Background(), actor, model.File{
		Name:            "old.txt",
		AssociationType: model.AssociationOrganization,
		AssociationKey:  actor.OrganizationKey,
	}, strings.NewReader("v1"))
	require.NoError(t, err)
	bucket := "organization-" + actor.OrganizationKey.String() + "-fs"

	f.Name = "new.txt"
	_, err = s.SaveFile(context.Background(), actor, f, strings.NewReader("v2"))
	require.NoError(t, err)

	assert.Equal(t, []byte("v2"), objects.objects[bucket+"/new.txt"])
	assert.NotContains(t, objects.objects, bucket+"/old.txt")
	assert.Equal(t, "new.txt", store.files[f.Key].Name)
}

func TestSaveFileRemovesObjectWhenRowWriteFails(t *testing.T) {
	store := newMemStore()
	s, actor := newTestService(store)
	objects := s.files.(*memObjects)
	store.failFileWrite = io.ErrUnexpectedEOF

	_, err := s.SaveFile(context.Background(), actor, model.File{
		Name:            "logo.png",
		AssociationType: model.AssociationOrganization,
		AssociationKey:  actor.OrganizationKey,
	}, strings.NewReader("PNG"))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	object := "organization-" + actor.OrganizationKey.String() + "-fs/logo.png"
	assert.NotContains(t, objects.objects, object)
	assert.Equal(t, []string{object}, objects.deleted)
	assert.Empty(t, store.files)
}

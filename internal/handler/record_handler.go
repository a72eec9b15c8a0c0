/*
Package handler provides HTTP handler functions for the organization's records.

Save, get, list and delete share one shape for every record type, so they are built from the
service method they call. The add routes answer a blank record pre-filled for the caller.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"kinbrio/internal/app/model"
	"kinbrio/internal/app/notify"
	"kinbrio/internal/app/service"
	"kinbrio/internal/pkg/auth/jwt"
	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/req"
	"kinbrio/internal/pkg/resp"
)

// actorHandler is a handler that runs for an authenticated caller.
type actorHandler func(w http.ResponseWriter, r *http.Request, actor service.Actor)

func withActor(h actorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := jwt.SessionFromContext(r.Context())
		if claims == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		h(w, r, actorFromClaims(claims))
	}
}

func actorFromClaims(claims *jwt.SessionClaims) service.Actor {
	return service.Actor{
		UserKey:         claims.Key,
		OrganizationKey: claims.OrganizationKey,
		Chat: notify.Credentials{
			UserID:      claims.MatrixUserID,
			AccessToken: claims.MatrixAccessToken,
			HomeServer:  claims.MatrixHomeServer,
		},
	}
}

// HandleSave decodes a record from the JSON body and saves it. A record without a key is
// inserted; one with a key updates the stored row.
func HandleSave[T any](save func(context.Context, service.Actor, T) (T, error)) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		var record T
		if customErr := req.BindJSON(r, &record); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		saved, err := save(r.Context(), actor, record)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, saved)
	})
}

// HandleGet answers the record addressed by the {id} path parameter.
func HandleGet[T any](get func(context.Context, service.Actor, uuid.UUID) (T, error)) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		key, customErr := req.URLParamUUID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		record, err := get(r.Context(), actor, key)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, record)
	})
}

func HandleList[T any](list func(context.Context, service.Actor) ([]T, error)) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		records, err := list(r.Context(), actor)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		if records == nil {
			records = []T{}
		}
		resp.RespondSuccess(w, r, records)
	})
}

// HandleDelete removes the record addressed by the {id} path parameter.
func HandleDelete(del func(context.Context, service.Actor, uuid.UUID) error) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		key, customErr := req.URLParamUUID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := del(r.Context(), actor, key); err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]string{"deleted": key.String()})
	})
}

func HandleAddProject(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		resp.RespondSuccess(w, r, model.Project{OrganizationKey: actor.OrganizationKey, OwnerKey: actor.UserKey})
	})
}

// HandleAddTask pre-fills the project from ?project_key and assigns the task to the caller.
func HandleAddTask(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		projectKey, customErr := req.QueryUUID(r, "project_key")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, model.Task{
			OrganizationKey: actor.OrganizationKey,
			ProjectKey:      projectKey,
			OwnerKey:        actor.UserKey,
			AssigneeKey:     actor.UserKey,
			Status:          model.TaskTodo,
		})
	})
}

func HandleAddMilestone(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		projectKey, customErr := req.QueryUUID(r, "project_key")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, model.Milestone{
			OrganizationKey: actor.OrganizationKey,
			OwnerKey:        actor.UserKey,
			ProjectKey:      projectKey,
		})
	})
}

func HandleAddEntity(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		entityType := model.EntityClient
		if raw := r.URL.Query().Get("entity_type"); raw != "" {
			code, customErr := req.FormInt64(r, "entity_type")
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
			parsed, err := model.ParseEntityType(code)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknownEnumValue, err.Error()))
				return
			}
			entityType = parsed
		}
		resp.RespondSuccess(w, r, model.Entity{
			OrganizationKey: actor.OrganizationKey,
			OwnerKey:        actor.UserKey,
			EntityType:      entityType,
		})
	})
}

// HandleAddContact checks the entity is visible to the caller before answering a contact
// bound to it.
func HandleAddContact(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		entityKey, customErr := req.URLParamUUID(r, "entity_id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if _, err := deps.Service.GetEntity(r.Context(), actor, entityKey); err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, model.Contact{EntityKey: entityKey})
	})
}

func HandleAddBoard(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		resp.RespondSuccess(w, r, model.Board{
			OrganizationKey: actor.OrganizationKey,
			OwnerKey:        actor.UserKey,
			Columns:         []string{},
			Lanes:           []string{},
		})
	})
}

func HandleAddNote(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		associationType, associationKey, customErr := queryAssociation(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, model.Note{
			OrganizationKey: actor.OrganizationKey,
			OwnerKey:        actor.UserKey,
			AssociationType: associationType,
			AssociationKey:  associationKey,
		})
	})
}

func HandleAddServiceItem(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		resp.RespondSuccess(w, r, model.ServiceItem{
			OrganizationKey: actor.OrganizationKey,
			OwnerKey:        actor.UserKey,
			Currency:        "USD",
			Expenses:        []uuid.UUID{},
		})
	})
}

func HandleAddOrganization(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		resp.RespondSuccess(w, r, model.Organization{OwnerKey: actor.UserKey})
	})
}

func HandleAddRoom(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		resp.RespondSuccess(w, r, model.Room{
			OrganizationKey: actor.OrganizationKey,
			OwnerKey:        actor.UserKey,
			MessageTypes:    model.CategoryAll,
		})
	})
}

func HandleAddFile(_ *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		associationType, associationKey, customErr := queryAssociation(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, model.File{
			OrganizationKey: actor.OrganizationKey,
			OwnerKey:        actor.UserKey,
			AssociationType: associationType,
			AssociationKey:  associationKey,
		})
	})
}

// HandleSaveUser saves the user addressed by the path, so the body's key is ignored.
func HandleSaveUser(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		key, customErr := req.URLParamUUID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var user model.User
		if customErr := req.BindJSON(r, &user); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		user.Key = key

		saved, err := deps.Service.SaveUser(r.Context(), actor, user)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, saved)
	})
}

// queryAssociation reads ?association_type (name or code) and ?association_key.
func queryAssociation(r *http.Request) (model.AssociationType, uuid.UUID, *errs.CustomError) {
	associationType := model.AssociationOrganization
	if raw := r.URL.Query().Get("association_type"); raw != "" {
		parsed, err := model.ParseAssociationTypeName(raw)
		if err != nil {
			return 0, uuid.Nil, errs.NewError(errs.ErrUnknownEnumValue, err.Error())
		}
		associationType = parsed
	}

	associationKey, customErr := req.QueryUUID(r, "association_key")
	if customErr != nil {
		return 0, uuid.Nil, customErr
	}
	return associationType, associationKey, nil
}

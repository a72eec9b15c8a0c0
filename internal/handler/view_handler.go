package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"kinbrio/internal/app/service"
	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/req"
	"kinbrio/internal/pkg/resp"
)

func HandleDashboard(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		view, err := deps.Service.Dashboard(r.Context(), actor)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, view)
	})
}

func HandleAccount(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		view, err := deps.Service.Account(r.Context(), actor)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, view)
	})
}

// HandleLookups answers the option lists edit forms pick from.
func HandleLookups(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		lookups, err := deps.Service.Lookups(r.Context(), actor)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, lookups)
	})
}

func HandleProjectView(deps *AppDeps) http.HandlerFunc {
	return HandleGet(deps.Service.ProjectView)
}

func HandleTaskView(deps *AppDeps) http.HandlerFunc {
	return HandleGet(deps.Service.TaskView)
}

func HandleEntityView(deps *AppDeps) http.HandlerFunc {
	return HandleGet(deps.Service.EntityView)
}

// HandleEntityInvoices answers the accounting invoices billed to an entity's remote
// customer id.
func HandleEntityInvoices(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		entityKey, customErr := req.URLParamUUID(r, "entity_id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		externalID := strings.TrimSpace(chi.URLParam(r, "external_id"))
		if externalID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		invoices, err := deps.Service.EntityInvoices(r.Context(), actor, entityKey, externalID)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, invoices)
	})
}

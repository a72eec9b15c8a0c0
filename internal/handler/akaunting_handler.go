package handler

import (
	"context"
	"net/http"
	"strings"

	"kinbrio/internal/app/model"
	"kinbrio/internal/app/service"
	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/req"
	"kinbrio/internal/pkg/resp"
)

// ImportResult is the imported record together with the refreshed accounting page.
type ImportResult[T any] struct {
	Imported  T                     `json:"imported"`
	Akaunting service.AkauntingView `json:"akaunting"`
}

func HandleAkaunting(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		view, err := deps.Service.AkauntingView(r.Context(), actor)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, view)
	})
}

func HandleSaveAkaunting(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		var opts model.AkauntingOptions
		if customErr := req.BindJSON(r, &opts); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		view, err := deps.Service.SaveAkauntingOptions(r.Context(), actor, opts)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, view)
	})
}

func HandleImportItem(deps *AppDeps) http.HandlerFunc {
	return handleImport(deps, deps.Service.ImportItem)
}

func HandleImportCustomer(deps *AppDeps) http.HandlerFunc {
	return handleImport(deps, deps.Service.ImportCustomer)
}

// handleImport reads the remote id from the import_id form field.
func handleImport[T any](deps *AppDeps, run func(context.Context, service.Actor, string) (T, error)) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		importID := strings.TrimSpace(r.FormValue("import_id"))
		if importID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrBadImportID))
			return
		}

		imported, err := run(r.Context(), actor, importID)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		view, err := deps.Service.AkauntingView(r.Context(), actor)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, ImportResult[T]{Imported: imported, Akaunting: view})
	})
}

package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kinbrio/internal/app/model"
	"kinbrio/internal/app/service"
	"kinbrio/internal/app/storage"
	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
	"kinbrio/internal/pkg/req"
	"kinbrio/internal/pkg/resp"
)

// HandleSaveFile saves file metadata from a multipart form. The "file" part is optional
// on update; when present it replaces the stored object.
func HandleSaveFile(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		f, customErr := fileFromForm(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var body io.Reader
		part, header, err := r.FormFile("file")
		switch {
		case err == nil:
			defer part.Close()
			if f.Name == "" {
				f.Name = header.Filename
			}
			if err := storage.ValidateUpload(f.Name, header.Size); err != nil {
				resp.RespondErr(w, r, err)
				return
			}
			f.Size = header.Size
			f.Format = storage.FormatOf(f.Name, f.Format)
			body = part
		case errors.Is(err, http.ErrMissingFile):
			if f.Key == uuid.Nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}

		saved, err := deps.Service.SaveFile(r.Context(), actor, f, body)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, saved)
	})
}

func fileFromForm(r *http.Request) (model.File, *errs.CustomError) {
	var f model.File

	key, customErr := req.FormUUID(r, "key")
	if customErr != nil {
		return f, customErr
	}
	associationKey, customErr := req.FormUUID(r, "association_key")
	if customErr != nil {
		return f, customErr
	}

	associationType := model.AssociationOrganization
	if raw := r.FormValue("association_type"); raw != "" {
		parsed, err := model.ParseAssociationTypeName(raw)
		if err != nil {
			return f, errs.NewError(errs.ErrUnknownEnumValue, err.Error())
		}
		associationType = parsed
	}

	f.Key = key
	f.AssociationType = associationType
	f.AssociationKey = associationKey
	f.Name = strings.TrimSpace(r.FormValue("name"))
	f.Description = r.FormValue("description")
	f.Tags = r.FormValue("tags")
	f.URL = r.FormValue("url")
	f.Hash = r.FormValue("hash")
	f.Format = strings.TrimSpace(r.FormValue("format"))
	return f, nil
}

func HandleFileView(deps *AppDeps) http.HandlerFunc {
	return HandleGet(deps.Service.FileView)
}

// HandleDownloadFile streams a stored object through the server.
func HandleDownloadFile(deps *AppDeps) http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, actor service.Actor) {
		organizationKey, customErr := req.URLParamUUID(r, "organization_id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		associationKey, customErr := req.URLParamUUID(r, "association_id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		associationType, err := model.ParseAssociationTypeName(chi.URLParam(r, "association_type"))
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotFound))
			return
		}

		obj, err := deps.Service.OpenFile(r.Context(), actor, chi.URLParam(r, "format"), organizationKey, associationType, associationKey, chi.URLParam(r, "name"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		defer obj.Body.Close()

		w.Header().Set("Content-Type", obj.ContentType)
		if obj.ContentLength > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, obj.Body); err != nil {
			logx.Warn("File stream interrupted", "name", chi.URLParam(r, "name"), "error", err.Error())
		}
	})
}

/*
Package req provides helper functions for HTTP request parsing and data binding.

It covers JSON bodies, multipart forms and the UUID path, query and form values used to
address records.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kinbrio/internal/pkg/errs"
)

const (
	// MaxFormMemory is the memory ParseMultipartForm may use before spilling file parts to disk.
	MaxFormMemory int64 = 32 << 20 // 32 MB

	// MaxRequestFileSize caps the whole multipart request body.
	MaxRequestFileSize int64 = 64 << 20 // 64 MB
)

// BindJSON decodes the JSON request body into dst, rejecting other content types,
// unknown fields and trailing data.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errs.KindOf(err) == errs.KindValidation {
			return errs.NewError(errs.ErrUnknownEnumValue, err.Error())
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// SetupMultipart parses a multipart or URL-encoded form with the body size capped.
func SetupMultipart(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestFileSize)

	if err := r.ParseMultipartForm(MaxFormMemory); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}

// URLParamUUID reads a chi path parameter as a UUID.
func URLParamUUID(r *http.Request, name string) (uuid.UUID, *errs.CustomError) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errs.NewError(errs.ErrNotFound)
	}
	return id, nil
}

// QueryUUID reads an optional query parameter as a UUID. An absent value yields uuid.Nil.
func QueryUUID(r *http.Request, name string) (uuid.UUID, *errs.CustomError) {
	return parseOptionalUUID(r.URL.Query().Get(name))
}

// FormUUID reads an optional form value as a UUID. An absent value yields uuid.Nil.
func FormUUID(r *http.Request, name string) (uuid.UUID, *errs.CustomError) {
	return parseOptionalUUID(r.FormValue(name))
}

// FormInt64 reads an optional form value as an integer. An absent value yields 0.
func FormInt64(r *http.Request, name string) (int64, *errs.CustomError) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}
	return n, nil
}

func parseOptionalUUID(raw string) (uuid.UUID, *errs.CustomError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewError(errs.ErrInvalidParams)
	}
	return id, nil
}

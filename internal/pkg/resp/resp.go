/*
Package resp provides helper functions for constructing and sending standardized HTTP JSON responses.

Every response shares the {code, message, data} envelope. Errors carry the status derived
from their errs.Kind, so handlers never choose status codes themselves.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
)

// JSONResponse defines the standardized JSON response structure returned by the application to clients.
type JSONResponse struct {
	// Code is 0 for success, otherwise an errs code.
	Code int `json:"code"`

	// Message is the client-friendly status description or error message.
	Message string `json:"message"`

	// Data is the optional response payload.
	Data any `json:"data,omitempty"`
}

// RespondJSON sets the Content-Type and writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
			"request_uri", r.RequestURI,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	_, _ = w.Write(response)
}

// RespondSuccess sends a 200 response wrapping data.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondError sends customErr with its status. A nil customErr is reported as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	status := customErr.Status
	if status == 0 {
		status = customErr.Kind.Status()
	}

	RespondJSON(w, r, status, JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}

// RespondErr classifies err with errs.From and sends it.
func RespondErr(w http.ResponseWriter, r *http.Request, err error) {
	RespondError(w, r, errs.From(err))
}

/*
Package errs provides custom error types and application-level error code constants.

This file defines CustomError, the error taxonomy (Kind) and the single place where a Kind
becomes an HTTP status. Lower layers tag their errors with WithKind; handlers turn any error
into a CustomError with From.
*/
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"kinbrio/internal/pkg/logx"
)

// Kind classifies an error by how the caller should react to it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindUpstream
	KindRateLimited
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failed"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstream:
		return "upstream_unavailable"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// CustomError is the error returned to HTTP clients.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the HTTP status code, derived from Kind.
	Status int

	// Kind is the taxonomy bucket of the error.
	Kind Kind
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError constructs a *CustomError from a predefined code. details are printf arguments
// for messages containing verbs; for ErrUnknown the first detail, if an error, is logged.
// An unknown code yields ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)
		templateErr = errorMap[ErrUnknown]
	}

	customErr := templateErr
	customErr.Status = customErr.Kind.Status()

	if customErr.Code == ErrUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			logx.Error(originalErr, "Handling ErrUnknown with underlying error")
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn("Details provided for error, but message template has no formatting placeholders. Details ignored.")
		}
	}

	return &customErr
}

// KindError attaches a Kind to an underlying error.
type KindError struct {
	Kind Kind
	Err  error
}

func (e *KindError) Error() string { return e.Err.Error() }

func (e *KindError) Unwrap() error { return e.Err }

// WithKind tags err with kind. A nil err stays nil.
func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal when there is none.
func KindOf(err error) Kind {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindInternal
}

// From converts any error into a *CustomError. Errors without a Kind are logged and
// reported as ErrUnknown.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}

	switch KindOf(err) {
	case KindValidation:
		return NewError(ErrInvalidParams)
	case KindNotFound:
		return NewError(ErrNotFound)
	case KindUnauthorized:
		return NewError(ErrUnauthorized)
	case KindUpstream:
		logx.Warn("Upstream dependency failed", "error", err.Error())
		return NewError(ErrUpstreamUnavailable)
	case KindRateLimited:
		return NewError(ErrRateLimitExceeded)
	default:
		return NewError(ErrUnknown, err)
	}
}

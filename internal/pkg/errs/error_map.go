/*
Package errs provides custom error types and application-level error code constants.

This file maps every error code to its user message and Kind. The HTTP status is never set
per code; it always comes from the Kind.
*/
package errs

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Kind: KindValidation},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Kind: KindValidation},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "invalid json body", Kind: KindValidation},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Kind: KindValidation},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "invalid form body", Kind: KindValidation},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Kind: KindValidation},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Kind: KindRateLimited},
	ErrBadImportID:           {Code: ErrBadImportID, Message: "bad import_id", Kind: KindValidation},
	ErrUnknownEnumValue:      {Code: ErrUnknownEnumValue, Message: "Unknown value: %s.", Kind: KindValidation},

	// 2xxx: Domain Errors
	ErrNotFound:     {Code: ErrNotFound, Message: "Not found.", Kind: KindNotFound},
	ErrConflict:     {Code: ErrConflict, Message: "Record already exists.", Kind: KindValidation},
	ErrFileNotFound: {Code: ErrFileNotFound, Message: "File not found.", Kind: KindNotFound},

	// 3xxx: Session Errors
	ErrUnauthorized:    {Code: ErrUnauthorized, Message: "UNAUTHORIZED", Kind: KindUnauthorized},
	ErrChatLoginFailed: {Code: ErrChatLoginFailed, Message: "Chat sign-in failed.", Kind: KindUnauthorized},

	// 4xxx: Upstream Errors
	ErrUpstreamUnavailable: {Code: ErrUpstreamUnavailable, Message: "A remote service is unavailable. Please try again later.", Kind: KindUpstream},
	ErrAccountingUpstream:  {Code: ErrAccountingUpstream, Message: "Accounting service error: %s", Kind: KindUpstream},
	ErrChatUpstream:        {Code: ErrChatUpstream, Message: "Chat server is unavailable.", Kind: KindUpstream},
	ErrFileStorageFailed:   {Code: ErrFileStorageFailed, Message: "File storage failed. Please try again.", Kind: KindUpstream},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Kind: KindInternal},
}

/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific request, domain, session and upstream failures both
inside the server and in the JSON envelope returned to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrBadImportID indicates an accounting import request without an import_id.
	ErrBadImportID = 1008

	// ErrUnknownEnumValue indicates a code or name outside a closed enum.
	ErrUnknownEnumValue = 1009
)

// 2xxx: Domain Errors
const (
	// ErrNotFound indicates the addressed record does not exist or belongs to another organization.
	ErrNotFound = 2001

	// ErrConflict indicates a uniqueness constraint was violated.
	ErrConflict = 2002

	// ErrFileNotFound indicates the requested stored object does not exist.
	ErrFileNotFound = 2003
)

// 3xxx: Session Errors
const (
	// ErrUnauthorized covers a missing, malformed, expired or revoked session.
	ErrUnauthorized = 3001

	// ErrChatLoginFailed indicates the chat homeserver rejected the supplied credentials.
	ErrChatLoginFailed = 3002
)

// 4xxx: Upstream Errors
const (
	// ErrUpstreamUnavailable is the generic failure of a remote dependency.
	ErrUpstreamUnavailable = 4001

	// ErrAccountingUpstream indicates the accounting service returned an error.
	ErrAccountingUpstream = 4002

	// ErrChatUpstream indicates the chat homeserver could not be reached or refused a call.
	ErrChatUpstream = 4003

	// ErrFileStorageFailed indicates the object store failed to store or return a file.
	ErrFileStorageFailed = 4004
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)

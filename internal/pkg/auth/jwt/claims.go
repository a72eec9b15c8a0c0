package jwt

import (
	"errors"

	"github.com/google/uuid"
)

var errMissingIdentity = errors.New("session: missing user or organization")

// SessionClaims is the signed content of a session cookie. It carries the user's identity
// and the chat credentials used to post notifications on the user's behalf.
type SessionClaims struct {
	// ID is the token id used for server-side revocation.
	ID string `json:"jti"`

	Key             uuid.UUID `json:"key"`
	OrganizationKey uuid.UUID `json:"organization_key"`
	Email           string    `json:"email"`

	MatrixUserID       string `json:"matrix_user_id"`
	MatrixAccessToken  string `json:"matrix_access_token"`
	MatrixDeviceID     string `json:"matrix_device_id"`
	MatrixRefreshToken string `json:"matrix_refresh_token"`
	MatrixHomeServer   string `json:"matrix_home_server"`

	Created   int64 `json:"created"`
	Updated   int64 `json:"updated"`
	ExpiresAt int64 `json:"exp"`
}

// Valid is the structural check run on every parsed token. Expiry is checked separately
// by Expired so that Validate can accept an expired but well-formed token.
func (c *SessionClaims) Valid() error {
	if c.Key == uuid.Nil || c.OrganizationKey == uuid.Nil {
		return errMissingIdentity
	}
	return nil
}

// Expired reports whether the session has run out at unix time now.
func (c *SessionClaims) Expired(now int64) bool {
	return c.ExpiresAt <= now
}

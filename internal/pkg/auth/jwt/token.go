package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"kinbrio/internal/app/model"
	"kinbrio/internal/pkg/errs"
)

// DefaultSessionTTL is how long a session cookie stays valid.
const DefaultSessionTTL = 2 * time.Hour

// ErrUnauthenticated covers a missing, malformed, expired or revoked session.
var ErrUnauthenticated = errs.WithKind(errs.KindUnauthorized, errors.New("session: unauthenticated"))

// ChatSession holds the chat credentials a session is issued with.
type ChatSession struct {
	AccessToken  string
	DeviceID     string
	RefreshToken string
}

// Manager issues and checks HS512-signed session tokens.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

// NewManager builds a Manager. A nil revoker disables revocation.
func NewManager(secret string, ttl time.Duration, revoker Revoker) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if revoker == nil {
		revoker = NopRevoker{}
	}
	return &Manager{secret: []byte(secret), ttl: ttl, revoker: revoker, now: time.Now}
}

// TTL is the lifetime of issued sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a session for user.
func (m *Manager) Issue(user model.User, chat ChatSession) (string, error) {
	issued := m.now()
	now := issued.Unix()
	claims := &SessionClaims{
		ID:                 uuid.NewString(),
		Key:                user.Key,
		OrganizationKey:    user.OrganizationKey,
		Email:              user.Email,
		MatrixUserID:       user.MatrixUserID,
		MatrixAccessToken:  chat.AccessToken,
		MatrixDeviceID:     chat.DeviceID,
		MatrixRefreshToken: chat.RefreshToken,
		MatrixHomeServer:   user.MatrixHomeServer,
		Created:            now,
		Updated:            now,
		ExpiresAt:          issued.Add(m.ttl).Unix(),
	}
	if err := claims.Valid(); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(m.secret)
}

// Validate checks the signature and structure of token. It does not look at expiry.
func (m *Manager) Validate(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS512.Alg()},
		SkipClaimsValidation: true,
	}

	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("session: invalid token")
	}
	if err := claims.Valid(); err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireSession is Validate plus the expiry and revocation checks. Every failure is
// reported as ErrUnauthenticated; a revocation store outage is returned as is.
func (m *Manager) RequireSession(ctx context.Context, token string, now time.Time) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := m.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if claims.Expired(now.Unix()) {
		return nil, ErrUnauthenticated
	}
	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Revoke blocks claims' token until it would have expired anyway.
func (m *Manager) Revoke(ctx context.Context, claims *SessionClaims) error {
	return m.revoker.Revoke(ctx, claims.ID, time.Unix(claims.ExpiresAt, 0))
}

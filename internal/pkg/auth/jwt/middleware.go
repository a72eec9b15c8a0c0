package jwt

import (
	"context"
	"net/http"
	"time"

	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
	"kinbrio/internal/pkg/resp"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

type contextKey string

// ContextSessionKey stores the *SessionClaims of an authenticated request.
const ContextSessionKey contextKey = "session_claims"

// SetCookie writes token as the session cookie.
func SetCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the session cookie value, or "".
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// RequireSessionMiddleware rejects requests without a live session with 401 JSON and
// stores the claims in the request context otherwise.
func (m *Manager) RequireSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.RequireSession(r.Context(), TokenFromRequest(r), m.now())
		if err != nil {
			if errs.KindOf(err) != errs.KindUnauthorized {
				logx.Error(err, "Session check failed")
				resp.RespondErr(w, r, err)
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		logx.Annotate(r.Context(), map[string]string{
			"user_key":         claims.Key.String(),
			"organization_key": claims.OrganizationKey.String(),
		})

		ctx := context.WithValue(r.Context(), ContextSessionKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the claims stored by RequireSessionMiddleware, or nil.
func SessionFromContext(ctx context.Context) *SessionClaims {
	claims, ok := ctx.Value(ContextSessionKey).(*SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireSessionMiddleware(t *testing.T) {
	m := NewManager("secret", time.Hour, nil)
	user := testUser()

	var seen *SessionClaims
	handler := m.RequireSessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":3001`)
	assert.Nil(t, seen)

	token, err := m.Issue(user, ChatSession{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.Key, seen.Key)
}

func TestSetAndClearCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, "tok", 2*time.Hour, true)
	c := rec.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, "token", c[0].Name)
	assert.Equal(t, "tok", c[0].Value)
	assert.True(t, c[0].HttpOnly)
	assert.True(t, c[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, c[0].SameSite)
	assert.Equal(t, 7200, c[0].MaxAge)

	rec = httptest.NewRecorder()
	ClearCookie(rec, false)
	c = rec.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, "", c[0].Value)
	assert.Less(t, c[0].MaxAge, 0)
}

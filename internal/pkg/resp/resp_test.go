package resp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinbrio/internal/pkg/errs"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var body JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"k": "v"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, map[string]any{"k": "v"}, body.Data)
}

func TestRespondErrorUsesKindStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errs.NewError(errs.ErrUnauthorized))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, errs.ErrUnauthorized, body.Code)
	assert.Nil(t, body.Data)
}

func TestRespondErrClassifies(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErr(rec, httptest.NewRequest(http.MethodGet, "/", nil), errs.WithKind(errs.KindNotFound, errors.New("gone")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.ErrNotFound, decode(t, rec).Code)
}

func TestRespondErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

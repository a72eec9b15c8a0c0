package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"kinbrio/internal/pkg/errs"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, wrap("op", nil))
	assert.ErrorIs(t, wrap("op", pgx.ErrNoRows), ErrNotFound)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(wrap("op", pgx.ErrNoRows)))

	dup := &pgconn.PgError{Code: "23505"}
	err := wrap("insert user", dup)
	assert.True(t, IsUniqueViolation(err))
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	other := errors.New("boom")
	err = wrap("get user", other)
	assert.ErrorIs(t, err, other)
	assert.Contains(t, err.Error(), "get user")
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
}

func TestAffected(t *testing.T) {
	assert.ErrorIs(t, affected("update", pgconn.NewCommandTag("UPDATE 0"), nil), ErrNotFound)
	assert.NoError(t, affected("update", pgconn.NewCommandTag("UPDATE 1"), nil))
	assert.ErrorIs(t, affected("delete", pgconn.CommandTag{}, pgx.ErrNoRows), ErrNotFound)
}

func TestSliceNormalizers(t *testing.T) {
	assert.NotNil(t, strs(nil))
	assert.Empty(t, strs(nil))
	assert.Equal(t, []string{"a"}, strs([]string{"a"}))
	assert.NotNil(t, uuids(nil))
	assert.Empty(t, uuids(nil))
}

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
)

func TestKindStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:   http.StatusBadRequest,
		apperr.KindConflict:     http.StatusConflict,
		apperr.KindNotFound:     http.StatusNotFound,
		apperr.KindUnauthorized: http.StatusUnauthorized,
		apperr.KindForbidden:    http.StatusForbidden,
		apperr.KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		require.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestFromDB(t *testing.T) {
	err := apperr.FromDB(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), "taken", "missing")
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = apperr.FromDB(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), "taken", "missing")
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	err = apperr.FromDB(gorm.ErrRecordNotFound, "taken", "missing")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "missing", appErr.Message)

	err = apperr.FromDB(errors.New("connection reset"), "taken", "missing")
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	require.NoError(t, apperr.FromDB(nil, "taken", "missing"))
}

func TestKindOfPlainError(t *testing.T) {
	require.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("boom")))
	wrapped := fmt.Errorf("outer: %w", apperr.Forbidden("nope"))
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(wrapped))
}

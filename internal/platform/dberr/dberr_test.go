// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/certly/internal/platform/apperr"
	"github.com/taibuivan/certly/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil))
	assert.ErrorIs(t, dberr.Wrap(pgx.ErrNoRows), dberr.ErrNotFound)
	assert.ErrorIs(t, dberr.Wrap(&pgconn.PgError{Code: pgerrcode.UniqueViolation}), dberr.ErrConflict)

	cause := errors.New("connection reset")
	wrapped := dberr.Wrap(cause)

	appErr := apperr.As(wrapped)
	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.ErrorIs(t, wrapped, cause)
}

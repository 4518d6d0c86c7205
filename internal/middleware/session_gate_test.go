package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	user *models.User
	err  error
}

func (s stubResolver) CurrentUser(echo.Context) (*models.User, error) { return s.user, s.err }

func serve(t *testing.T, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, h(c))
	return rec
}

func TestRequire(t *testing.T) {
	ada := &models.User{Username: "ada"}
	handler := func(c echo.Context, me *models.User) error {
		return c.String(http.StatusOK, me.Username)
	}

	rec := serve(t, NewSessionGate(stubResolver{user: ada}).Require(handler))
	assert.Equal(t, "ada", rec.Body.String())

	for _, err := range []error{apperrors.ErrSessionInvalid, errors.New("database down")} {
		rec = serve(t, NewSessionGate(stubResolver{err: err}).Require(handler))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"session expired"}`, rec.Body.String())
	}
}

func TestOptional(t *testing.T) {
	handler := func(c echo.Context, me *models.User) error {
		if me == nil {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, me.Username)
	}

	rec := serve(t, NewSessionGate(stubResolver{user: &models.User{Username: "ada"}}).Optional(handler))
	assert.Equal(t, "ada", rec.Body.String())

	rec = serve(t, NewSessionGate(stubResolver{err: apperrors.ErrSessionInvalid}).Optional(handler))
	assert.Equal(t, "anonymous", rec.Body.String())
}

package middleware

import (
	"net/http"

	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/anonto42/community/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// AuthedHandler is an echo handler that receives the logged-in user
type AuthedHandler func(c echo.Context, me *models.User) error

// Resolver resolves the caller of a request; session.Manager implements it
type Resolver interface {
	CurrentUser(c echo.Context) (*models.User, error)
}

// SessionGate adapts AuthedHandlers to echo handlers
type SessionGate struct {
	resolver Resolver
}

func NewSessionGate(resolver Resolver) *SessionGate {
	return &SessionGate{resolver: resolver}
}

// Require rejects requests without a live session with {message:"session expired"}
func (g *SessionGate) Require(next AuthedHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		me, err := g.resolver.CurrentUser(c)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrSessionInvalid) {
				logger.Error().Err(err).Str("path", c.Path()).Msg("resolve session")
			}
			return c.JSON(http.StatusOK, echo.Map{"message": "session expired"})
		}
		return next(c, me)
	}
}

// Optional passes nil when the request carries no live session
func (g *SessionGate) Optional(next AuthedHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		me, err := g.resolver.CurrentUser(c)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrSessionInvalid) {
				logger.Error().Err(err).Str("path", c.Path()).Msg("resolve session")
			}
			me = nil
		}
		return next(c, me)
	}
}

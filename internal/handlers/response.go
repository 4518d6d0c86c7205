package handlers

import (
	"net/http"

	"github.com/anonto42/community/backend/internal/validators"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/anonto42/community/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgSuccess      = "success"
	msgTryLater     = "Please try again later."
	msgInvalidInput = "Invalid request payload"
)

// message answers a business outcome: always HTTP 200 with a human-readable message
func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// serverError logs an infrastructure failure and answers HTTP 500
func serverError(c echo.Context, err error) error {
	logger.Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": msgTryLater})
}

// bind decodes and validates the request body. When it returns false the
// response has already been written.
func bind(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, message(c, msgInvalidInput)
	}
	if err := c.Validate(req); err != nil {
		return false, message(c, validators.Message(err))
	}
	return true, nil
}

func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrInvalidID
	}
	return id, nil
}

// mustID parses ids that already passed the objectid validation rule
func mustID(hex string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(hex)
	return id
}

func isNotFound(err error) bool {
	return apperrors.Is(err, apperrors.ErrNotFound, apperrors.ErrInvalidID)
}

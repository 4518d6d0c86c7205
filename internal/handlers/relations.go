package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/community/backend/internal/relations"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// relationOp is Maintainer.Link or Maintainer.Unlink
type relationOp func(ctx context.Context, rel relations.Relation, left, right primitive.ObjectID) error

// respondWithUser reloads the caller after a relation change and answers
// {message:"success", user}
func respondWithUser(c echo.Context, users repositories.UserRepository, userID primitive.ObjectID) error {
	user, err := users.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "user": user.ToSessionUser()})
}

func nonNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}

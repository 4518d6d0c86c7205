package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/community/backend/internal/middleware"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile-related HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
	populate       *populator
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, communityRepo repositories.CommunityRepository) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		populate:       &populator{users: userRepo, communities: communityRepo},
	}
}

// RegisterProfileRoutes registers profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, gate *middleware.SessionGate) {
	g.POST("/editAvatar", gate.Require(h.EditAvatar))
	g.GET("/profile", gate.Require(h.GetProfile))
}

func (h *UserHandler) EditAvatar(c echo.Context, me *models.User) error {
	var req models.EditAvatarRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	user, err := h.userRepository.UpdateAvatar(c.Request().Context(), me.ID, req.AvatarURL)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "user": user.ToSessionUser()})
}

// GetProfile returns a user's public profile with the communities they belong to
func (h *UserHandler) GetProfile(c echo.Context, _ *models.User) error {
	ctx := c.Request().Context()

	id, err := parseID(c.QueryParam("userId"))
	if err != nil {
		return message(c, msgUserNotFound)
	}
	user, err := h.userRepository.GetUserByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgUserNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}

	communities, err := h.populate.communityList(ctx, user.CommunityIDs)
	if err != nil {
		return serverError(c, err)
	}
	data := models.UserProfile{
		ID:          user.ID,
		Username:    user.Username,
		AvatarURL:   user.AvatarURL,
		Email:       user.Email,
		Communities: communities,
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "data": data})
}

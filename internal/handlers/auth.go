package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/community/backend/internal/middleware"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgEmailTaken    = "An account with this email address already exists. Please log in or use a different email."
	msgUsernameTaken = "The username you have chosen is already taken. Please choose a different username."
	msgNoAccount     = "No account found with this email address. Please check the email or register for a new account."
	msgWrongPassword = "The password you entered is incorrect. Please try again."
)

// Sessions starts and ends login sessions; session.Manager implements it
type Sessions interface {
	Start(c echo.Context, user *models.User) error
	End(c echo.Context) error
}

// ChatTokens issues chat service tokens; chat.TokenIssuer implements it
type ChatTokens interface {
	CreateToken(userID string) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	sessions       Sessions
	chatTokens     ChatTokens
	bcryptCost     int
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, sessions Sessions, chatTokens ChatTokens, bcryptCost int) *AuthHandler {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		userRepository: userRepo,
		sessions:       sessions,
		chatTokens:     chatTokens,
		bcryptCost:     bcryptCost,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, gate *middleware.SessionGate) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/isAuthenticated", gate.Optional(h.IsAuthenticated))
	g.GET("/isAuthenticatedChat", gate.Optional(h.IsAuthenticatedChat))
	g.GET("/logout", gate.Optional(h.Logout))
}

// Register creates an account and logs it in
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	if msg, err := h.takenMessage(ctx, req.Email, req.Username); err != nil {
		return serverError(c, err)
	} else if msg != "" {
		return message(c, msg)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		return serverError(c, err)
	}

	user := &models.User{
		Email:    req.Email,
		Username: req.Username,
		Password: string(hash),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			if msg, lookupErr := h.takenMessage(ctx, req.Email, req.Username); lookupErr == nil && msg != "" {
				return message(c, msg)
			}
		}
		return serverError(c, err)
	}

	if err := h.sessions.Start(c, user); err != nil {
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

// takenMessage reports which unique field of a new account is already in use
func (h *AuthHandler) takenMessage(ctx context.Context, email, username string) (string, error) {
	if _, err := h.userRepository.GetUserByEmail(ctx, email); err == nil {
		return msgEmailTaken, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}
	if _, err := h.userRepository.GetUserByUsername(ctx, username); err == nil {
		return msgUsernameTaken, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}
	return "", nil
}

// Login authenticates by email and password. The email travels in the username field.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	user, err := h.Authenticate(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, apperrors.ErrNoSuchAccount):
		return message(c, msgNoAccount)
	case errors.Is(err, apperrors.ErrWrongPassword):
		return message(c, msgWrongPassword)
	case err != nil:
		return serverError(c, err)
	}

	if err := h.sessions.Start(c, user); err != nil {
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

// Authenticate checks an email and password against the stored bcrypt hash
func (h *AuthHandler) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := h.userRepository.GetUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrNoSuchAccount
	}
	if err != nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, apperrors.ErrWrongPassword
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (h *AuthHandler) IsAuthenticated(c echo.Context, me *models.User) error {
	if me == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": true, "user": me.ToSessionUser()})
}

// IsAuthenticatedChat is IsAuthenticated plus a chat service token for the user
func (h *AuthHandler) IsAuthenticatedChat(c echo.Context, me *models.User) error {
	if me == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": false})
	}
	if h.chatTokens == nil {
		return serverError(c, errors.New("chat tokens are not configured"))
	}
	token, err := h.chatTokens.CreateToken(me.ID.Hex())
	if err != nil {
		return serverError(c, err)
	}
	user := me.ToSessionUser()
	user.Token = token
	return c.JSON(http.StatusOK, echo.Map{"message": true, "user": user})
}

func (h *AuthHandler) Logout(c echo.Context, _ *models.User) error {
	if err := h.sessions.End(c); err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": true})
}

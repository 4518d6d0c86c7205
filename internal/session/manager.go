// Package session issues and resolves login sessions. The browser holds a signed
// cookie naming a server-side session row; the row decides whether the login is live.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CookieName is the name of the session cookie
const CookieName = "community.sid"

// Claims is the payload of the session cookie
type Claims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	jwt.RegisteredClaims
}

// Manager creates, resolves and ends sessions
type Manager struct {
	sessions repositories.SessionRepository
	users    repositories.UserRepository
	secret   []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time
}

// Option customizes a Manager
type Option func(*Manager)

// WithSecureCookie marks the cookie Secure (HTTPS only)
func WithSecureCookie(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(sessions repositories.SessionRepository, users repositories.UserRepository, secret string, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		sessions: sessions,
		users:    users,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start stores a new session for user and sets the cookie on the response
func (m *Manager) Start(c echo.Context, user *models.User) error {
	now := m.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID.Hex(),
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.sessions.CreateSession(c.Request().Context(), sess); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	token, err := m.sign(sess)
	if err != nil {
		return err
	}
	c.SetCookie(m.cookie(token, sess.ExpiresAt, int(m.ttl.Seconds())))
	return nil
}

// CurrentUser resolves the caller from the session cookie and loads a fresh copy
// of the user. Any missing, forged or expired session yields ErrSessionInvalid.
func (m *Manager) CurrentUser(c echo.Context) (*models.User, error) {
	ctx := c.Request().Context()

	claims, err := m.claimsFromRequest(c)
	if err != nil {
		return nil, err
	}
	sess, err := m.liveSession(ctx, claims)
	if err != nil {
		return nil, err
	}

	userID, err := primitive.ObjectIDFromHex(sess.UserID)
	if err != nil {
		return nil, apperrors.ErrSessionInvalid
	}
	user, err := m.users.GetUserByID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// End deletes the session row, if any, and clears the cookie
func (m *Manager) End(c echo.Context) error {
	claims, err := m.claimsFromRequest(c)
	if err == nil {
		if err := m.sessions.DeleteSession(c.Request().Context(), claims.SessionID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	c.SetCookie(m.cookie("", time.Unix(0, 0), -1))
	return nil
}

// PurgeExpired removes session rows that have passed their expiry
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.sessions.DeleteExpired(ctx, m.now())
}

func (m *Manager) liveSession(ctx context.Context, claims *Claims) (*models.Session, error) {
	sess, err := m.sessions.GetSession(ctx, claims.SessionID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Expired(m.now()) || sess.UserID != claims.UserID {
		return nil, apperrors.ErrSessionInvalid
	}
	return sess, nil
}

func (m *Manager) sign(sess *models.Session) (string, error) {
	claims := Claims{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return token, nil
}

func (m *Manager) claimsFromRequest(c echo.Context) (*Claims, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, apperrors.ErrSessionInvalid
	}

	claims := &Claims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ErrSessionInvalid
	}
	if claims.ExpiresAt == nil || !m.now().Before(claims.ExpiresAt.Time) {
		return nil, apperrors.ErrSessionInvalid
	}
	return claims, nil
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/repositories/memory"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type fixture struct {
	e       *echo.Echo
	store   *memory.Store
	clock   *clock
	manager *Manager
	user    *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	user := &models.User{Email: "ada@example.com", Username: "ada"}
	require.NoError(t, store.Users().CreateUser(context.Background(), user))

	return &fixture{
		e:       echo.New(),
		store:   store,
		clock:   clk,
		manager: NewManager(store.Sessions(), store.Users(), "secret", time.Hour, WithClock(clk.now), WithSecureCookie(true)),
		user:    user,
	}
}

func (f *fixture) context(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return f.e.NewContext(req, rec), rec
}

func (f *fixture) start(t *testing.T) *http.Cookie {
	t.Helper()
	c, rec := f.context(nil)
	require.NoError(t, f.manager.Start(c, f.user))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestStartSetsSessionCookie(t *testing.T) {
	f := newFixture(t)
	cookie := f.start(t)

	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.Equal(t, "/", cookie.Path)

	c, _ := f.context(cookie)
	me, err := f.manager.CurrentUser(c)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, me.ID)
}

func TestCurrentUserIsFreshlyLoaded(t *testing.T) {
	f := newFixture(t)
	cookie := f.start(t)

	_, err := f.store.Users().UpdateAvatar(context.Background(), f.user.ID, "https://images.test/new.png")
	require.NoError(t, err)

	c, _ := f.context(cookie)
	me, err := f.manager.CurrentUser(c)
	require.NoError(t, err)
	assert.Equal(t, "https://images.test/new.png", me.AvatarURL)
}

func TestSessionExpires(t *testing.T) {
	f := newFixture(t)
	cookie := f.start(t)

	f.clock.t = f.clock.t.Add(59 * time.Minute)
	c, _ := f.context(cookie)
	_, err := f.manager.CurrentUser(c)
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(time.Minute)
	c, _ = f.context(cookie)
	_, err = f.manager.CurrentUser(c)
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)

	purged, err := f.manager.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestRejectsForgedAndMissingCookies(t *testing.T) {
	f := newFixture(t)
	genuine := f.start(t)

	parsed := &Claims{}
	_, _, err := new(jwt.Parser).ParseUnverified(genuine.Value, parsed)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, parsed).SignedString([]byte("not-the-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, parsed).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, cookie := range map[string]*http.Cookie{
		"missing":  nil,
		"empty":    {Name: CookieName, Value: ""},
		"garbage":  {Name: CookieName, Value: "abc.def.ghi"},
		"forged":   {Name: CookieName, Value: forged},
		"unsigned": {Name: CookieName, Value: unsigned},
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := f.context(cookie)
			_, err := f.manager.CurrentUser(c)
			assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)
		})
	}
}

func TestSessionForDeletedRowIsInvalid(t *testing.T) {
	f := newFixture(t)
	cookie := f.start(t)

	parsed := &Claims{}
	_, _, err := new(jwt.Parser).ParseUnverified(cookie.Value, parsed)
	require.NoError(t, err)
	require.NoError(t, f.store.Sessions().DeleteSession(context.Background(), parsed.SessionID))

	c, _ := f.context(cookie)
	_, err = f.manager.CurrentUser(c)
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)
}

func TestEndDeletesSessionAndClearsCookie(t *testing.T) {
	f := newFixture(t)
	cookie := f.start(t)

	c, rec := f.context(cookie)
	require.NoError(t, f.manager.End(c))
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, CookieName, cleared[0].Name)
	assert.Empty(t, cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)

	c, _ = f.context(cookie)
	_, err := f.manager.CurrentUser(c)
	assert.True(t, errors.Is(err, apperrors.ErrSessionInvalid))

	// ending without a session still clears the cookie
	c, rec = f.context(nil)
	require.NoError(t, f.manager.End(c))
	assert.Len(t, rec.Result().Cookies(), 1)
}

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/community/backend/internal/handlers"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/relations"
	"github.com/anonto42/community/backend/internal/repositories/memory"
	"github.com/anonto42/community/backend/pkg/chat"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSessionSecret = "test-session-secret"
	testChatSecret    = "test-chat-secret"
)

type testApp struct {
	e      *echo.Echo
	store  *memory.Store
	images *fakeImageStore
}

type fakeImageStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
	types   map[string]string
}

func (f *fakeImageStore) Upload(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[name] = data
	f.types[name] = contentType
	return "https://images.test/" + name, nil
}

func newTestApp(t *testing.T, mode relations.Mode, withImages bool) *testApp {
	t.Helper()
	store := memory.NewStore()
	app := &testApp{e: echo.New(), store: store}

	deps := Dependencies{
		Users:         store.Users(),
		Communities:   store.Communities(),
		Posts:         store.Posts(),
		Comments:      store.Comments(),
		Events:        store.Events(),
		Items:         store.Items(),
		Notifications: store.Notifications(),
		Sessions:      store.Sessions(),
		RelationsMode: mode,
		SessionSecret: testSessionSecret,
		SessionTTL:    time.Hour,
		BcryptCost:    bcrypt.MinCost,
		ChatTokens:    chat.NewTokenIssuer(chat.Config{APISecret: testChatSecret}),
	}
	if withImages {
		app.images = &fakeImageStore{uploads: map[string][]byte{}, types: map[string]string{}}
		deps.Images = app.images
	}
	SetupRoutes(app.e, deps)
	return app
}

// client is a browser: it keeps the cookies the server sets
type client struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) client(t *testing.T) *client {
	return &client{t: t, app: a, cookies: map[string]*http.Cookie{}}
}

type response struct {
	Code int
	Body map[string]interface{}
}

func (c *client) do(method, path string, body interface{}) response {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return c.send(req)
}

func (c *client) send(req *http.Request) response {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.app.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}

	out := response{Code: rec.Code}
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out.Body), rec.Body.String())
	return out
}

func (c *client) get(path string) response { return c.do(http.MethodGet, path, nil) }

func (c *client) post(path string, body interface{}) response {
	return c.do(http.MethodPost, path, body)
}

// register creates an account and returns a logged-in client for it
func (a *testApp) register(t *testing.T, email, username string) (*client, *models.User) {
	t.Helper()
	c := a.client(t)
	res := c.post("/register", map[string]string{"email": email, "password": "pw-" + username, "username": username})
	require.Equal(t, "success", res.Body["message"])
	user, err := a.store.Users().GetUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return c, user
}

func (a *testApp) createCommunity(t *testing.T, admin *client, name string) *models.Community {
	t.Helper()
	res := admin.post("/createCommunity", map[string]string{"name": name, "description": name + " people"})
	require.Equal(t, "success", res.Body["message"])
	community, err := a.store.Communities().GetCommunityByName(context.Background(), name)
	require.NoError(t, err)
	return community
}

func (a *testApp) createPost(t *testing.T, author *client, community primitive.ObjectID, title string) *models.Post {
	t.Helper()
	res := author.post("/createPost", map[string]string{"title": title, "body": title + " body", "communityId": community.Hex()})
	require.Equal(t, "success", res.Body["message"])
	posts, err := a.store.Posts().GetPostsByCommunityIDs(context.Background(), []primitive.ObjectID{community})
	require.NoError(t, err)
	for i := range posts {
		if posts[i].Title == title {
			return &posts[i]
		}
	}
	t.Fatalf("post %q not stored", title)
	return nil
}

func (a *testApp) user(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := a.store.Users().GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (a *testApp) community(t *testing.T, id primitive.ObjectID) *models.Community {
	t.Helper()
	c, err := a.store.Communities().GetCommunityByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func count(ids []primitive.ObjectID, id primitive.ObjectID) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}

func asMap(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	m, ok := v.(map[string]interface{})
	require.True(t, ok, "expected object, got %T", v)
	return m
}

func asList(t *testing.T, v interface{}) []interface{} {
	t.Helper()
	l, ok := v.([]interface{})
	require.True(t, ok, "expected array, got %T", v)
	return l
}

var _ handlers.ImageStore = (*fakeImageStore)(nil)

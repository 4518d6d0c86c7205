package router

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/anonto42/community/backend/internal/relations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateCommunityMakesAdminAMember(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	admin, adminUser := app.register(t, "ada@example.com", "ada")

	res := admin.post("/createCommunity", map[string]string{"name": "Gardeners", "description": "Green thumbs"})
	require.Equal(t, "success", res.Body["message"])
	following := asList(t, asMap(t, res.Body["user"])["followingCommunityIDs"])
	require.Len(t, following, 1)

	community := app.community(t, mustObjectID(t, following[0]))
	assert.Equal(t, adminUser.ID, community.AdminID)
	assert.Equal(t, []primitive.ObjectID{adminUser.ID}, community.FollowingUserIDs)
	assert.NotEmpty(t, community.LogoURL)
	assert.NotEmpty(t, community.BannerURL)

	res = admin.post("/createCommunity", map[string]string{"name": "Gardeners"})
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "A community with this name already exists. Please use a different name.", res.Body["message"])
}

func TestJoinThenLeaveRestoresBothSides(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	admin, adminUser := app.register(t, "ada@example.com", "ada")
	member, memberUser := app.register(t, "bob@example.com", "bob")
	community := app.createCommunity(t, admin, "Gardeners")

	res := member.post("/joinCommunity", map[string]string{"communityId": community.ID.Hex()})
	require.Equal(t, "success", res.Body["message"])
	assert.Equal(t, []interface{}{community.ID.Hex()}, asMap(t, res.Body["user"])["followingCommunityIDs"])
	assert.Equal(t, []primitive.ObjectID{adminUser.ID, memberUser.ID}, app.community(t, community.ID).FollowingUserIDs)

	res = member.post("/leaveCommunity", map[string]string{"communityId": community.ID.Hex()})
	require.Equal(t, "success", res.Body["message"])
	assert.Empty(t, asMap(t, res.Body["user"])["followingCommunityIDs"])
	assert.Empty(t, app.user(t, memberUser.ID).CommunityIDs)
	assert.Equal(t, []primitive.ObjectID{adminUser.ID}, app.community(t, community.ID).FollowingUserIDs)
}

func TestJoinTwice(t *testing.T) {
	for mode, want := range map[relations.Mode]int{relations.ModeSet: 1, relations.ModeAppend: 2} {
		t.Run(string(mode), func(t *testing.T) {
			app := newTestApp(t, mode, false)
			admin, _ := app.register(t, "ada@example.com", "ada")
			member, memberUser := app.register(t, "bob@example.com", "bob")
			community := app.createCommunity(t, admin, "Gardeners")

			for i := 0; i < 2; i++ {
				res := member.post("/joinCommunity", map[string]string{"communityId": community.ID.Hex()})
				require.Equal(t, "success", res.Body["message"])
			}

			assert.Equal(t, want, count(app.user(t, memberUser.ID).CommunityIDs, community.ID))
			assert.Equal(t, want, count(app.community(t, community.ID).FollowingUserIDs, memberUser.ID))
		})
	}
}

func TestJoinUnknownCommunity(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	c, user := app.register(t, "ada@example.com", "ada")

	res := c.post("/joinCommunity", map[string]string{"communityId": primitive.NewObjectID().Hex()})
	assert.Equal(t, "Community not found", res.Body["message"])
	assert.Empty(t, app.user(t, user.ID).CommunityIDs)

	res = c.post("/joinCommunity", map[string]string{"communityId": "nope"})
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body["message"], "not a valid id")
}

func TestCommunityPage(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	admin, adminUser := app.register(t, "ada@example.com", "ada")
	community := app.createCommunity(t, admin, "Gardeners")
	app.createPost(t, admin, community.ID, "first")
	app.createPost(t, admin, community.ID, "second")

	res := admin.post("/createEvent", map[string]string{"communityId": community.ID.Hex(), "title": "Seed swap", "eventDate": "2026-05-01"})
	require.Equal(t, "success", res.Body["message"])
	res = admin.post("/createItem", map[string]interface{}{"communityId": community.ID.Hex(), "name": "Compost", "price": 4.5})
	require.Equal(t, "success", res.Body["message"])

	res = admin.get("/community/" + community.ID.Hex())
	data := asMap(t, res.Body["data"])
	assert.Equal(t, community.ID.Hex(), data["communityId"])
	assert.Equal(t, "Gardeners", data["name"])
	assert.Equal(t, adminUser.ID.Hex(), data["adminId"])
	assert.Regexp(t, regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`), data["createdAt"])

	members := asList(t, data["followingUsers"])
	require.Len(t, members, 1)
	assert.Equal(t, "ada", asMap(t, members[0])["username"])
	assert.NotContains(t, asMap(t, members[0]), "email")

	posts := asList(t, data["posts"])
	require.Len(t, posts, 2)
	assert.Equal(t, "second", asMap(t, posts[0])["title"])
	assert.Equal(t, "ada", asMap(t, asMap(t, posts[0])["userId"])["username"])

	assert.Len(t, asList(t, data["events"]), 1)
	items := asList(t, data["items"])
	require.Len(t, items, 1)
	assert.Equal(t, 4.5, asMap(t, items[0])["price"])
	assert.Empty(t, asList(t, data["merchantIds"]))

	assert.Equal(t, "Community not found", admin.get("/community/" + primitive.NewObjectID().Hex()).Body["message"])
	assert.Equal(t, "Community not found", admin.get("/community/garbage").Body["message"])
}

func TestFollowingCommunityDetails(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	admin, adminUser := app.register(t, "ada@example.com", "ada")
	app.createCommunity(t, admin, "Gardeners")
	app.createCommunity(t, admin, "Beekeepers")

	res := admin.post("/followingCommunityDetails", map[string]string{"id": adminUser.ID.Hex()})
	communities := asList(t, res.Body["communities"])
	require.Len(t, communities, 2)
	assert.Equal(t, "Gardeners", asMap(t, communities[0])["name"])
	assert.Equal(t, "Beekeepers", asMap(t, communities[1])["name"])

	res = admin.post("/followingCommunityDetails", map[string]string{"id": primitive.NewObjectID().Hex()})
	assert.Equal(t, "User not found", res.Body["message"])
}

func TestSearchIsCaseInsensitiveAndLiteral(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	admin, _ := app.register(t, "ada@example.com", "ada")
	app.createCommunity(t, admin, "C++ Devs")
	app.createCommunity(t, admin, "Gardeners")

	result := asList(t, admin.get("/search?q=c%2B%2B").Body["result"])
	require.Len(t, result, 1)
	assert.Equal(t, "C++ Devs", asMap(t, result[0])["name"])

	assert.Len(t, asList(t, admin.get("/search?q=GARDEN").Body["result"]), 1)
	app.createCommunity(t, admin, "Rooftop Gardens")
	result = asList(t, admin.get("/search?q=garden").Body["result"])
	require.Len(t, result, 2)
	assert.Equal(t, "Rooftop Gardens", asMap(t, result[0])["name"])
	assert.Equal(t, "Gardeners", asMap(t, result[1])["name"])

	assert.Empty(t, asList(t, admin.get("/search?q=.%2A").Body["result"]))
}

func mustObjectID(t *testing.T, v interface{}) primitive.ObjectID {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok)
	id, err := primitive.ObjectIDFromHex(s)
	require.NoError(t, err)
	return id
}

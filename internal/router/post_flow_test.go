package router

import (
	"context"
	"testing"

	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/relations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHomeShowsJoinedCommunitiesNewestFirst(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	ada, _ := app.register(t, "ada@example.com", "ada")
	bob, _ := app.register(t, "bob@example.com", "bob")
	gardeners := app.createCommunity(t, ada, "Gardeners")
	beekeepers := app.createCommunity(t, bob, "Beekeepers")

	app.createPost(t, ada, gardeners.ID, "g1")
	app.createPost(t, bob, beekeepers.ID, "b1")
	app.createPost(t, ada, gardeners.ID, "g2")

	titles := func(res response) []string {
		var out []string
		for _, p := range asList(t, res.Body["posts"]) {
			out = append(out, asMap(t, p)["title"].(string))
		}
		return out
	}

	assert.Equal(t, []string{"g2", "g1"}, titles(ada.get("/home")))
	assert.Equal(t, []string{"b1"}, titles(bob.get("/home")))

	require.Equal(t, "success", bob.post("/joinCommunity", map[string]string{"communityId": gardeners.ID.Hex()}).Body["message"])
	assert.Equal(t, []string{"g2", "b1", "g1"}, titles(bob.get("/home")))

	author := asMap(t, asList(t, bob.get("/home").Body["posts"])[0])["userId"]
	assert.Equal(t, map[string]interface{}{
		"_id":       asMap(t, author)["_id"],
		"username":  "ada",
		"avatarURL": models.DefaultImageURL,
	}, author)
}

func TestHomeWithoutCommunitiesIsEmpty(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	c, _ := app.register(t, "ada@example.com", "ada")
	assert.Empty(t, asList(t, c.get("/home").Body["posts"]))
}

func TestLikeAndUnlikePost(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	ada, _ := app.register(t, "ada@example.com", "ada")
	bob, bobUser := app.register(t, "bob@example.com", "bob")
	community := app.createCommunity(t, ada, "Gardeners")
	post := app.createPost(t, ada, community.ID, "tomatoes")

	res := bob.post("/likePost", map[string]string{"postId": post.ID.Hex()})
	require.Equal(t, "success", res.Body["message"])
	assert.Equal(t, []interface{}{post.ID.Hex()}, asMap(t, res.Body["user"])["likedPosts"])

	res = bob.get("/postLikes?postId=" + post.ID.Hex())
	assert.Equal(t, []interface{}{bobUser.ID.Hex()}, res.Body["likedUserIds"])

	res = bob.post("/unlikePost", map[string]string{"postId": post.ID.Hex()})
	require.Equal(t, "success", res.Body["message"])
	assert.Empty(t, asMap(t, res.Body["user"])["likedPosts"])
	assert.Empty(t, bob.get("/postLikes?postId=" + post.ID.Hex()).Body["likedUserIds"])

	assert.Equal(t, "Post not found", bob.post("/likePost", map[string]string{"postId": primitive.NewObjectID().Hex()}).Body["message"])
	assert.Equal(t, "Post not found", bob.get("/postLikes?postId=zzz").Body["message"])
}

func TestPostDetailOrdersCommentsNewestFirst(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	ada, adaUser := app.register(t, "ada@example.com", "ada")
	bob, bobUser := app.register(t, "bob@example.com", "bob")
	community := app.createCommunity(t, ada, "Gardeners")
	post := app.createPost(t, ada, community.ID, "tomatoes")

	for _, text := range []string{"first", "second", "third"} {
		res := bob.post("/createComment", map[string]string{"postId": post.ID.Hex(), "text": text})
		require.Equal(t, "success", res.Body["message"])
	}

	stored, err := app.store.Posts().GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, stored.CommentIDs, 3)

	res := ada.get("/post?postId=" + post.ID.Hex())
	require.Equal(t, "success", res.Body["message"])
	detail := asMap(t, res.Body["post"])
	assert.Equal(t, "tomatoes", detail["title"])
	assert.Equal(t, adaUser.ID.Hex(), asMap(t, detail["userId"])["_id"])
	assert.Equal(t, "Gardeners", asMap(t, detail["communityId"])["name"])

	var texts []string
	for _, cm := range asList(t, detail["commentIds"]) {
		comment := asMap(t, cm)
		texts = append(texts, comment["text"].(string))
		assert.Equal(t, bobUser.ID.Hex(), asMap(t, comment["userId"])["_id"])
	}
	assert.Equal(t, []string{"third", "second", "first"}, texts)

	assert.Equal(t, "Post not found", ada.get("/post?postId=" + primitive.NewObjectID().Hex()).Body["message"])
}

func TestCommentNotifiesPostAuthor(t *testing.T) {
	app := newTestApp(t, relations.ModeSet, false)
	ada, adaUser := app.register(t, "ada@example.com", "ada")
	bob, _ := app.register(t, "bob@example.com", "bob")
	community := app.createCommunity(t, ada, "Gardeners")
	post := app.createPost(t, ada, community.ID, "tomatoes")

	require.Equal(t, "success", bob.post("/createComment", map[string]string{"postId": post.ID.Hex(), "text": "nice"}).Body["message"])

	notifications := asList(t, ada.get("/notifications").Body["notifications"])
	require.Len(t, notifications, 1)
	n := asMap(t, notifications[0])
	assert.Equal(t, "Comment", n["type"])
	assert.Equal(t, adaUser.ID.Hex(), n["userId"])
	assert.Equal(t, post.ID.Hex(), n["postId"])
	assert.Equal(t, "bob", asMap(t, n["merchantId"])["username"])
	assert.Equal(t, true, n["unread"])
	assert.NotContains(t, n, "status")

	assert.Empty(t, asList(t, bob.get("/notifications").Body["notifications"]))
}

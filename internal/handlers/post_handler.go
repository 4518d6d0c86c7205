package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/community/backend/internal/middleware"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/relations"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgPostNotFound = "Post not found"

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postRepository      repositories.PostRepository
	userRepository      repositories.UserRepository
	communityRepository repositories.CommunityRepository
	maintainer          *relations.Maintainer
	graph               relations.Graph
	populate            *populator
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	communityRepo repositories.CommunityRepository,
	commentRepo repositories.CommentRepository,
	maintainer *relations.Maintainer,
	graph relations.Graph,
) *PostHandler {
	return &PostHandler{
		postRepository:      postRepo,
		userRepository:      userRepo,
		communityRepository: communityRepo,
		maintainer:          maintainer,
		graph:               graph,
		populate:            &populator{users: userRepo, communities: communityRepo, comments: commentRepo},
	}
}

// RegisterPostRoutes registers post and feed routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, gate *middleware.SessionGate) {
	g.POST("/createPost", gate.Require(h.CreatePost))
	g.GET("/home", gate.Require(h.Home))
	g.POST("/likePost", gate.Require(h.LikePost))
	g.POST("/unlikePost", gate.Require(h.UnlikePost))
	g.GET("/postLikes", gate.Require(h.PostLikes))
	g.GET("/post", gate.Require(h.GetPost))
}

func (h *PostHandler) CreatePost(c echo.Context, me *models.User) error {
	var req models.CreatePostRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	community, err := h.communityRepository.GetCommunityByID(ctx, mustID(req.CommunityID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgCommunityNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}

	post := &models.Post{
		Title:         req.Title,
		Body:          req.Body,
		CommunityID:   community.ID,
		UserID:        me.ID,
		AttachmentURL: req.AttachmentURL,
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

// Home returns the posts of every community the caller belongs to, newest first
func (h *PostHandler) Home(c echo.Context, me *models.User) error {
	ctx := c.Request().Context()

	posts, err := h.postRepository.GetPostsByCommunityIDs(ctx, me.CommunityIDs)
	if err != nil {
		return serverError(c, err)
	}
	populated, err := h.populate.posts(ctx, posts)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": populated})
}

func (h *PostHandler) LikePost(c echo.Context, me *models.User) error {
	return h.changeLike(c, me, h.maintainer.Link)
}

func (h *PostHandler) UnlikePost(c echo.Context, me *models.User) error {
	return h.changeLike(c, me, h.maintainer.Unlink)
}

func (h *PostHandler) changeLike(c echo.Context, me *models.User, apply relationOp) error {
	var req models.PostRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, mustID(req.PostID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgPostNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}

	if err := apply(ctx, h.graph.PostLike, post.ID, me.ID); err != nil {
		return serverError(c, err)
	}
	return respondWithUser(c, h.userRepository, me.ID)
}

func (h *PostHandler) PostLikes(c echo.Context, _ *models.User) error {
	post, err := h.lookupPost(c)
	if isNotFound(err) {
		return message(c, msgPostNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "likedUserIds": nonNil(post.LikedUserIDs)})
}

// GetPost returns a post with its author, community and comments (newest first)
func (h *PostHandler) GetPost(c echo.Context, _ *models.User) error {
	ctx := c.Request().Context()

	post, err := h.lookupPost(c)
	if isNotFound(err) {
		return message(c, msgPostNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}

	detail := models.PostDetail{Post: *post}

	authors, err := h.populate.usersByID(ctx, []primitive.ObjectID{post.UserID})
	if err != nil {
		return serverError(c, err)
	}
	if a, ok := authors[post.UserID]; ok {
		detail.UserID = &a
	}

	community, err := h.communityRepository.GetCommunityByID(ctx, post.CommunityID)
	switch {
	case err == nil:
		compact := community.ToCompact()
		detail.CommunityID = &compact
	case !errors.Is(err, apperrors.ErrNotFound):
		return serverError(c, err)
	}

	detail.CommentIDs, err = h.populate.commentList(ctx, post.CommentIDs)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "post": detail})
}

func (h *PostHandler) lookupPost(c echo.Context) (*models.Post, error) {
	id, err := parseID(c.QueryParam("postId"))
	if err != nil {
		return nil, err
	}
	return h.postRepository.GetPostByID(c.Request().Context(), id)
}

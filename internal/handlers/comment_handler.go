package handlers

import (
	"errors"

	"github.com/anonto42/community/backend/internal/middleware"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/relations"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
	maintainer             *relations.Maintainer
	graph                  relations.Graph
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	notificationRepo repositories.NotificationRepository,
	maintainer *relations.Maintainer,
	graph relations.Graph,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		postRepository:         postRepo,
		notificationRepository: notificationRepo,
		maintainer:             maintainer,
		graph:                  graph,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, gate *middleware.SessionGate) {
	g.POST("/createComment", gate.Require(h.CreateComment))
}

// CreateComment stores the comment, appends it to the post and notifies the post author
func (h *CommentHandler) CreateComment(c echo.Context, me *models.User) error {
	var req models.CreateCommentRequest
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

	comment := &models.Comment{
		UserID: me.ID,
		PostID: post.ID,
		Text:   req.Text,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return serverError(c, err)
	}
	if err := h.maintainer.Link(ctx, h.graph.PostComment, post.ID, comment.ID); err != nil {
		return serverError(c, err)
	}

	postID := post.ID
	notification := &models.Notification{
		UserID:     post.UserID,
		PostID:     &postID,
		MerchantID: me.ID,
		Type:       models.NotificationTypeComment,
		Unread:     true,
	}
	if err := h.notificationRepository.CreateNotification(ctx, notification); err != nil {
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/community/backend/internal/middleware"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/relations"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/anonto42/community/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgNotificationNotFound = "Notification not found"
	msgNotARequest          = "This notification is not a request."
	msgAlreadyAccepted      = "This request has already been accepted."
	msgCannotAccept         = "This request cannot be accepted."
	msgNotAddressee         = "This notification is addressed to another user."
	msgRequestAlreadySent   = "Request already sent."
)

// NotificationHandler handles notifications and the merchant request workflow
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	communityRepository    repositories.CommunityRepository
	maintainer             *relations.Maintainer
	graph                  relations.Graph
	populate               *populator
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(
	notifRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	communityRepo repositories.CommunityRepository,
	maintainer *relations.Maintainer,
	graph relations.Graph,
) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
		communityRepository:    communityRepo,
		maintainer:             maintainer,
		graph:                  graph,
		populate:               &populator{users: userRepo, communities: communityRepo},
	}
}

// RegisterNotificationRoutes registers notification and request routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, gate *middleware.SessionGate) {
	g.GET("/notifications", gate.Require(h.GetNotifications))
	g.GET("/unreadNotifications", gate.Require(h.GetUnreadCount))
	g.POST("/readNotifications", gate.Require(h.MarkAllAsRead))
	g.POST("/deleteNotification", gate.Require(h.DeleteNotification))
	g.POST("/request", gate.Require(h.Request))
	g.GET("/requestStatus", gate.Require(h.RequestStatus))
	g.POST("/acceptRequest", gate.Require(h.AcceptRequest))
}

// GetNotifications returns the caller's notifications, newest first, with actor and community resolved
func (h *NotificationHandler) GetNotifications(c echo.Context, me *models.User) error {
	ctx := c.Request().Context()

	notifications, err := h.notificationRepository.GetByRecipientID(ctx, me.ID)
	if err != nil {
		return serverError(c, err)
	}
	populated, err := h.enrich(ctx, notifications)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "notifications": populated})
}

func (h *NotificationHandler) enrich(ctx context.Context, notifications []models.Notification) ([]models.PopulatedNotification, error) {
	actorIDs := make([]primitive.ObjectID, 0, len(notifications))
	communityIDs := make([]primitive.ObjectID, 0, len(notifications))
	for _, n := range notifications {
		actorIDs = append(actorIDs, n.MerchantID)
		if n.CommunityID != nil {
			communityIDs = append(communityIDs, *n.CommunityID)
		}
	}

	actors, err := h.populate.usersByID(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	communities, err := h.populate.communityList(ctx, communityIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]models.CommunityName, len(communities))
	for i := range communities {
		names[communities[i].ID] = communities[i].ToName()
	}

	out := make([]models.PopulatedNotification, 0, len(notifications))
	for _, n := range notifications {
		pn := models.PopulatedNotification{Notification: n}
		if a, ok := actors[n.MerchantID]; ok {
			pn.MerchantID = &a
		}
		if n.CommunityID != nil {
			if name, ok := names[*n.CommunityID]; ok {
				pn.CommunityID = &name
			}
		}
		out = append(out, pn)
	}
	return out, nil
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context, me *models.User) error {
	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), me.ID)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "count": count})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context, me *models.User) error {
	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), me.ID); err != nil {
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

// DeleteNotification removes one of the caller's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context, me *models.User) error {
	var req models.NotificationRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	n, err := h.notificationRepository.GetNotificationByID(ctx, mustID(req.NotificationID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgNotificationNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}
	if err := n.CheckAddressee(me.ID); errors.Is(err, apperrors.ErrNotAddressee) {
		return message(c, msgNotAddressee)
	}

	err = h.notificationRepository.DeleteNotification(ctx, n.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgNotificationNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

// Request asks the community admin to make the caller a merchant
func (h *NotificationHandler) Request(c echo.Context, me *models.User) error {
	var req models.CommunityRequest
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

	if _, err := h.notificationRepository.FindRequest(ctx, community.ID, me.ID); err == nil {
		return message(c, msgRequestAlreadySent)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return serverError(c, err)
	}

	communityID := community.ID
	notification := &models.Notification{
		UserID:      community.AdminID,
		CommunityID: &communityID,
		MerchantID:  me.ID,
		Type:        models.NotificationTypeRequest,
		Status:      models.RequestStatusPending,
		Unread:      true,
	}
	if err := h.notificationRepository.CreateNotification(ctx, notification); err != nil {
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

// RequestStatus reports "Not sent" or the status of the caller's request to a community
func (h *NotificationHandler) RequestStatus(c echo.Context, me *models.User) error {
	communityID, err := parseID(c.QueryParam("communityId"))
	if err != nil {
		return message(c, msgCommunityNotFound)
	}

	n, err := h.notificationRepository.FindRequest(c.Request().Context(), communityID, me.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"status": models.RequestStatusNotSent})
	}
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": n.Status})
}

// AcceptRequest moves a pending request to Accepted and grants the merchant status.
// Only the addressee, the community admin, may accept. When the grant fails the
// request is reopened.
func (h *NotificationHandler) AcceptRequest(c echo.Context, me *models.User) error {
	var req models.NotificationRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	n, err := h.notificationRepository.GetNotificationByID(ctx, mustID(req.NotificationID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgNotificationNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}
	if err := n.CheckAddressee(me.ID); errors.Is(err, apperrors.ErrNotAddressee) {
		return message(c, msgNotAddressee)
	}

	accepted, err := h.notificationRepository.AcceptRequest(ctx, n.ID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return message(c, msgNotificationNotFound)
	case errors.Is(err, apperrors.ErrNotARequest):
		return message(c, msgNotARequest)
	case errors.Is(err, apperrors.ErrAlreadyAccepted):
		return message(c, msgAlreadyAccepted)
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return message(c, msgCannotAccept)
	case err != nil:
		return serverError(c, err)
	}

	if accepted.CommunityID == nil {
		return serverError(c, errors.New("accepted request has no community"))
	}
	if err := h.maintainer.Link(ctx, h.graph.MerchantGrant, *accepted.CommunityID, accepted.MerchantID); err != nil {
		// leave the request Pending so a retry can record the grant
		if reopenErr := h.notificationRepository.ReopenRequest(ctx, accepted.ID); reopenErr != nil {
			logger.Error().Err(reopenErr).Str("notification", accepted.ID.Hex()).
				Msg("request left Accepted without merchant grant")
		}
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/community/backend/internal/middleware"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/relations"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/labstack/echo/v4"
)

const (
	msgEventNotFound = "Event not found"
	msgInvalidDate   = "Dates must look like 2006-01-02, 2006-01-02T15:04 or an RFC 3339 timestamp."
)

// layouts accepted for event dates, most specific first
var eventDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventRepository     repositories.EventRepository
	userRepository      repositories.UserRepository
	communityRepository repositories.CommunityRepository
	maintainer          *relations.Maintainer
	graph               relations.Graph
	populate            *populator
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	communityRepo repositories.CommunityRepository,
	maintainer *relations.Maintainer,
	graph relations.Graph,
) *EventHandler {
	return &EventHandler{
		eventRepository:     eventRepo,
		userRepository:      userRepo,
		communityRepository: communityRepo,
		maintainer:          maintainer,
		graph:               graph,
		populate:            &populator{users: userRepo, communities: communityRepo},
	}
}

// RegisterEventRoutes registers event-related routes
func (h *EventHandler) RegisterEventRoutes(g *echo.Group, gate *middleware.SessionGate) {
	g.POST("/createEvent", gate.Require(h.CreateEvent))
	g.POST("/likeEvent", gate.Require(h.LikeEvent))
	g.POST("/unlikeEvent", gate.Require(h.UnlikeEvent))
	g.GET("/event", gate.Require(h.GetEvent))
	g.POST("/registerEvent", gate.Require(h.RegisterEvent))
	g.GET("/eventParticipants", gate.Require(h.EventParticipants))
}

func (h *EventHandler) CreateEvent(c echo.Context, me *models.User) error {
	var req models.CreateEventRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	eventDate, err := parseEventDate(req.EventDate)
	if err != nil {
		return message(c, msgInvalidDate)
	}
	lastDate, err := parseEventDate(req.LastDate)
	if err != nil {
		return message(c, msgInvalidDate)
	}

	community, err := h.communityRepository.GetCommunityByID(ctx, mustID(req.CommunityID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgCommunityNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}

	event := &models.Event{
		UserID:        me.ID,
		CommunityID:   community.ID,
		Title:         req.Title,
		Description:   req.Description,
		AttachmentURL: req.AttachmentURL,
		EventDate:     eventDate,
		LastDate:      lastDate,
	}
	if err := h.eventRepository.CreateEvent(ctx, event); err != nil {
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

// LikeEvent records the like on the event only; users keep no list of liked events
func (h *EventHandler) LikeEvent(c echo.Context, me *models.User) error {
	return h.changeEventRelation(c, me, h.graph.EventLike, h.maintainer.Link, false)
}

func (h *EventHandler) UnlikeEvent(c echo.Context, me *models.User) error {
	return h.changeEventRelation(c, me, h.graph.EventLike, h.maintainer.Unlink, false)
}

// RegisterEvent adds the caller to the event participants
func (h *EventHandler) RegisterEvent(c echo.Context, me *models.User) error {
	return h.changeEventRelation(c, me, h.graph.EventParticipation, h.maintainer.Link, true)
}

func (h *EventHandler) changeEventRelation(c echo.Context, me *models.User, rel relations.Relation, apply relationOp, withUser bool) error {
	var req models.EventRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	event, err := h.eventRepository.GetEventByID(ctx, mustID(req.EventID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgEventNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}

	if err := apply(ctx, rel, event.ID, me.ID); err != nil {
		return serverError(c, err)
	}
	if withUser {
		return respondWithUser(c, h.userRepository, me.ID)
	}
	return message(c, msgSuccess)
}

// GetEvent returns the event with its participants and community resolved
func (h *EventHandler) GetEvent(c echo.Context, _ *models.User) error {
	ctx := c.Request().Context()

	event, err := h.lookupEvent(c)
	if isNotFound(err) {
		return message(c, msgEventNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}

	detail := models.EventDetail{Event: *event}
	detail.ParticipatingUserIDs, err = h.populate.userList(ctx, event.ParticipatingUserIDs)
	if err != nil {
		return serverError(c, err)
	}

	community, err := h.communityRepository.GetCommunityByID(ctx, event.CommunityID)
	switch {
	case err == nil:
		view := community.ToAdminView()
		detail.CommunityID = &view
	case !errors.Is(err, apperrors.ErrNotFound):
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "event": detail})
}

func (h *EventHandler) EventParticipants(c echo.Context, _ *models.User) error {
	event, err := h.lookupEvent(c)
	if isNotFound(err) {
		return message(c, msgEventNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "data": nonNil(event.ParticipatingUserIDs)})
}

func (h *EventHandler) lookupEvent(c echo.Context) (*models.Event, error) {
	id, err := parseID(c.QueryParam("eventId"))
	if err != nil {
		return nil, err
	}
	return h.eventRepository.GetEventByID(c.Request().Context(), id)
}

// parseEventDate returns nil for an empty value
func parseEventDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", value)
}

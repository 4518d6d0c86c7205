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

const (
	msgCommunityTaken    = "A community with this name already exists. Please use a different name."
	msgCommunityNotFound = "Community not found"
	msgUserNotFound      = "User not found"

	// community creation dates render as M/D/YYYY
	communityDateLayout = "1/2/2006"
)

// CommunityHandler handles community-related HTTP requests
type CommunityHandler struct {
	userRepository      repositories.UserRepository
	communityRepository repositories.CommunityRepository
	postRepository      repositories.PostRepository
	eventRepository     repositories.EventRepository
	itemRepository      repositories.ItemRepository
	maintainer          *relations.Maintainer
	graph               relations.Graph
	populate            *populator
}

// NewCommunityHandler creates a new CommunityHandler
func NewCommunityHandler(
	userRepo repositories.UserRepository,
	communityRepo repositories.CommunityRepository,
	postRepo repositories.PostRepository,
	eventRepo repositories.EventRepository,
	itemRepo repositories.ItemRepository,
	commentRepo repositories.CommentRepository,
	maintainer *relations.Maintainer,
	graph relations.Graph,
) *CommunityHandler {
	return &CommunityHandler{
		userRepository:      userRepo,
		communityRepository: communityRepo,
		postRepository:      postRepo,
		eventRepository:     eventRepo,
		itemRepository:      itemRepo,
		maintainer:          maintainer,
		graph:               graph,
		populate:            &populator{users: userRepo, communities: communityRepo, comments: commentRepo},
	}
}

// RegisterCommunityRoutes registers community-related routes
func (h *CommunityHandler) RegisterCommunityRoutes(g *echo.Group, gate *middleware.SessionGate) {
	g.POST("/createCommunity", gate.Require(h.CreateCommunity))
	g.POST("/followingCommunityDetails", gate.Require(h.FollowingCommunityDetails))
	g.GET("/community/:communityId", gate.Require(h.GetCommunity))
	g.POST("/joinCommunity", gate.Require(h.JoinCommunity))
	g.POST("/leaveCommunity", gate.Require(h.LeaveCommunity))
	g.GET("/search", gate.Require(h.Search))
}

// CreateCommunity creates a community administered by the caller, who becomes its first member
func (h *CommunityHandler) CreateCommunity(c echo.Context, me *models.User) error {
	var req models.CreateCommunityRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.communityRepository.GetCommunityByName(ctx, req.Name); err == nil {
		return message(c, msgCommunityTaken)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return serverError(c, err)
	}

	community := &models.Community{
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		BannerURL:   req.BannerURL,
		AdminID:     me.ID,
	}
	if err := h.communityRepository.CreateCommunity(ctx, community); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			return message(c, msgCommunityTaken)
		}
		return serverError(c, err)
	}

	if err := h.maintainer.Link(ctx, h.graph.Membership, me.ID, community.ID); err != nil {
		return serverError(c, err)
	}
	return h.respondWithUser(c, me.ID)
}

// FollowingCommunityDetails returns the full records of the communities a user belongs to
func (h *CommunityHandler) FollowingCommunityDetails(c echo.Context, _ *models.User) error {
	var req models.FollowingCommunitiesRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, mustID(req.ID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgUserNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}

	communities, err := h.populate.communityList(ctx, user.CommunityIDs)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"communities": communities})
}

// GetCommunity assembles the community page: members, posts, events and items
func (h *CommunityHandler) GetCommunity(c echo.Context, _ *models.User) error {
	ctx := c.Request().Context()

	id, err := parseID(c.Param("communityId"))
	if err != nil {
		return message(c, msgCommunityNotFound)
	}
	community, err := h.communityRepository.GetCommunityByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return message(c, msgCommunityNotFound)
	}
	if err != nil {
		return serverError(c, err)
	}

	members, err := h.populate.userList(ctx, community.FollowingUserIDs)
	if err != nil {
		return serverError(c, err)
	}
	posts, err := h.postRepository.GetPostsByCommunityIDs(ctx, []primitive.ObjectID{community.ID})
	if err != nil {
		return serverError(c, err)
	}
	populated, err := h.populate.posts(ctx, posts)
	if err != nil {
		return serverError(c, err)
	}
	events, err := h.eventRepository.GetEventsByCommunityID(ctx, community.ID)
	if err != nil {
		return serverError(c, err)
	}
	items, err := h.itemRepository.GetItemsByCommunityID(ctx, community.ID)
	if err != nil {
		return serverError(c, err)
	}

	data := models.CommunityPage{
		CommunityID:    community.ID,
		BannerURL:      community.BannerURL,
		LogoURL:        community.LogoURL,
		Name:           community.Name,
		Description:    community.Description,
		AdminID:        community.AdminID,
		FollowingUsers: members,
		CreatedAt:      community.CreatedAt.Format(communityDateLayout),
		Posts:          populated,
		Events:         events,
		MerchantIDs:    nonNil(community.MerchantIDs),
		Items:          items,
	}
	return c.JSON(http.StatusOK, echo.Map{"data": data})
}

func (h *CommunityHandler) JoinCommunity(c echo.Context, me *models.User) error {
	return h.changeMembership(c, me, h.maintainer.Link)
}

func (h *CommunityHandler) LeaveCommunity(c echo.Context, me *models.User) error {
	return h.changeMembership(c, me, h.maintainer.Unlink)
}

func (h *CommunityHandler) changeMembership(c echo.Context, me *models.User, apply relationOp) error {
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

	if err := apply(ctx, h.graph.Membership, me.ID, community.ID); err != nil {
		return serverError(c, err)
	}
	return h.respondWithUser(c, me.ID)
}

// Search finds communities whose name contains q, ignoring case
func (h *CommunityHandler) Search(c echo.Context, _ *models.User) error {
	result, err := h.communityRepository.SearchCommunities(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": result})
}

func (h *CommunityHandler) respondWithUser(c echo.Context, userID primitive.ObjectID) error {
	return respondWithUser(c, h.userRepository, userID)
}

package handlers

import (
	"errors"

	"github.com/anonto42/community/backend/internal/middleware"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/labstack/echo/v4"
)

// ItemHandler handles merchant item listings
type ItemHandler struct {
	itemRepository      repositories.ItemRepository
	communityRepository repositories.CommunityRepository
}

func NewItemHandler(itemRepo repositories.ItemRepository, communityRepo repositories.CommunityRepository) *ItemHandler {
	return &ItemHandler{itemRepository: itemRepo, communityRepository: communityRepo}
}

func (h *ItemHandler) RegisterItemRoutes(g *echo.Group, gate *middleware.SessionGate) {
	g.POST("/createItem", gate.Require(h.CreateItem))
}

// CreateItem lists an item in a community with the caller as merchant
func (h *ItemHandler) CreateItem(c echo.Context, me *models.User) error {
	var req models.CreateItemRequest
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

	item := &models.Item{
		MerchantID:    me.ID,
		CommunityID:   community.ID,
		Name:          req.Name,
		Description:   req.Description,
		AttachmentURL: req.AttachmentURL,
		Price:         req.Price,
	}
	if err := h.itemRepository.CreateItem(ctx, item); err != nil {
		return serverError(c, err)
	}
	return message(c, msgSuccess)
}

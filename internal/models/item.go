package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is something a merchant offers inside a community
type Item struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	MerchantID    primitive.ObjectID `json:"merchantId" bson:"merchantId"`
	CommunityID   primitive.ObjectID `json:"communityId" bson:"communityId"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	AttachmentURL string             `json:"attachmentURL" bson:"attachmentURL"`
	Price         float64            `json:"price" bson:"price"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateItemRequest defines the request body for listing an item
type CreateItemRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	Description   string  `json:"description" validate:"max=5000"`
	CommunityID   string  `json:"communityId" validate:"required,objectid"`
	Price         float64 `json:"price" validate:"gte=0"`
	AttachmentURL string  `json:"attachmentURL"`
}

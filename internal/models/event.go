package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a dated happening inside a community
type Event struct {
	ID                   primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	UserID               primitive.ObjectID   `json:"userId" bson:"userId"`
	CommunityID          primitive.ObjectID   `json:"communityId" bson:"communityId"`
	Title                string               `json:"title" bson:"title"`
	Description          string               `json:"description" bson:"description"`
	AttachmentURL        string               `json:"attachmentURL" bson:"attachmentURL"`
	ParticipatingUserIDs []primitive.ObjectID `json:"participatingUserids" bson:"participatingUserids"`
	LikedUserIDs         []primitive.ObjectID `json:"likedUserIds" bson:"likedUserIds"`
	EventDate            *time.Time           `json:"eventDate,omitempty" bson:"eventDate,omitempty"`
	LastDate             *time.Time           `json:"lastDate,omitempty" bson:"lastDate,omitempty"`
	CreatedAt            time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// EventDetail is an event with its participants and community resolved
type EventDetail struct {
	Event
	ParticipatingUserIDs []UserCompact       `json:"participatingUserids"`
	CommunityID          *CommunityAdminView `json:"communityId"`
}

// CreateEventRequest defines the request body for creating an event.
// Dates accept RFC 3339 timestamps as well as plain HTML date/datetime-local values.
type CreateEventRequest struct {
	CommunityID   string `json:"communityId" validate:"required,objectid"`
	Title         string `json:"title" validate:"required,min=1,max=300"`
	Description   string `json:"description" validate:"max=5000"`
	EventDate     string `json:"eventDate"`
	LastDate      string `json:"lastDate"`
	AttachmentURL string `json:"attachmentURL"`
}

// EventRequest carries a single event id (like, unlike, register)
type EventRequest struct {
	EventID string `json:"eventId" validate:"required,objectid"`
}

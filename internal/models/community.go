package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Community is a group of users with exactly one admin
type Community struct {
	ID               primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name             string               `json:"name" bson:"name"`
	Description      string               `json:"description" bson:"description"`
	AdminID          primitive.ObjectID   `json:"adminId" bson:"adminId"`
	LogoURL          string               `json:"logoURL" bson:"logoURL"`
	BannerURL        string               `json:"bannerURL" bson:"bannerURL"`
	FollowingUserIDs []primitive.ObjectID `json:"followingUserIDs" bson:"followingUserIDs"`
	MerchantIDs      []primitive.ObjectID `json:"merchantIds" bson:"merchantIds"`
	CreatedAt        time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// CommunityCompact is the projection used when a community is populated into a post
type CommunityCompact struct {
	ID      primitive.ObjectID `json:"_id"`
	Name    string             `json:"name"`
	LogoURL string             `json:"logoURL"`
}

// CommunityAdminView is the projection used when a community is populated into an event
type CommunityAdminView struct {
	ID      primitive.ObjectID `json:"_id"`
	Name    string             `json:"name"`
	LogoURL string             `json:"logoURL"`
	AdminID primitive.ObjectID `json:"adminId"`
}

// CommunityName is the projection used when a community is populated into a notification
type CommunityName struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

func (c *Community) ToCompact() CommunityCompact {
	return CommunityCompact{ID: c.ID, Name: c.Name, LogoURL: c.LogoURL}
}

func (c *Community) ToAdminView() CommunityAdminView {
	return CommunityAdminView{ID: c.ID, Name: c.Name, LogoURL: c.LogoURL, AdminID: c.AdminID}
}

func (c *Community) ToName() CommunityName {
	return CommunityName{ID: c.ID, Name: c.Name}
}

// IsAdmin reports whether the user owns the community
func (c *Community) IsAdmin(userID primitive.ObjectID) bool {
	return c.AdminID == userID
}

// CreateCommunityRequest defines the request body for creating a community
type CreateCommunityRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=2000"`
	LogoURL     string `json:"logoURL"`
	BannerURL   string `json:"bannerURL"`
}

// CommunityRequest carries a single community id (join, leave, merchant request)
type CommunityRequest struct {
	CommunityID string `json:"communityId" validate:"required,objectid"`
}

// CommunityPage is the payload of GET /community/:communityId
type CommunityPage struct {
	CommunityID    primitive.ObjectID   `json:"communityId"`
	BannerURL      string               `json:"bannerURL"`
	LogoURL        string               `json:"logoURL"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	AdminID        primitive.ObjectID   `json:"adminId"`
	FollowingUsers []UserCompact        `json:"followingUsers"`
	CreatedAt      string               `json:"createdAt"`
	Posts          []PopulatedPost      `json:"posts"`
	Events         []Event              `json:"events"`
	MerchantIDs    []primitive.ObjectID `json:"merchantIds"`
	Items          []Item               `json:"items"`
}

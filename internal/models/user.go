package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultImageURL is used for avatars, logos and banners that were never uploaded.
const DefaultImageURL = "https://t4.ftcdn.net/jpg/04/10/43/77/360_F_410437733_hdq4Q3QOH9uwh0mcqAhRFzOKfrCR24Ta.jpg"

// User is an account stored in the users collection
type User struct {
	ID                    primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Email                 string               `json:"email" bson:"email"`
	Username              string               `json:"username" bson:"username"`
	Password              string               `json:"-" bson:"password"` // bcrypt hash
	AvatarURL             string               `json:"avatarURL" bson:"avatarURL"`
	CommunityIDs          []primitive.ObjectID `json:"communityIDs" bson:"communityIDs"`
	LikedPosts            []primitive.ObjectID `json:"likedPosts" bson:"likedPosts"`
	ParticipatingEventIDs []primitive.ObjectID `json:"participatingEventIds" bson:"participatingEventIds"`
	CreatedAt             time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserCompact is the projection used when a user is populated into another record
type UserCompact struct {
	ID        primitive.ObjectID `json:"_id"`
	Username  string             `json:"username"`
	AvatarURL string             `json:"avatarURL"`
}

// ToCompact projects the user to {_id, username, avatarURL}
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// SessionUser is the view of the logged-in user returned by the auth and relation endpoints
type SessionUser struct {
	ID                    primitive.ObjectID   `json:"id"`
	Email                 string               `json:"email"`
	Username              string               `json:"username"`
	AvatarURL             string               `json:"avatarURL"`
	FollowingCommunityIDs []primitive.ObjectID `json:"followingCommunityIDs"`
	ParticipatingEventIDs []primitive.ObjectID `json:"participatingEventIds"`
	LikedPosts            []primitive.ObjectID `json:"likedPosts"`
	Token                 string               `json:"token,omitempty"`
}

// ToSessionUser builds the session view of the user
func (u *User) ToSessionUser() SessionUser {
	return SessionUser{
		ID:                    u.ID,
		Email:                 u.Email,
		Username:              u.Username,
		AvatarURL:             u.AvatarURL,
		FollowingCommunityIDs: nonNilIDs(u.CommunityIDs),
		ParticipatingEventIDs: nonNilIDs(u.ParticipatingEventIDs),
		LikedPosts:            nonNilIDs(u.LikedPosts),
	}
}

// RegisterRequest defines the request body for creating an account
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Username string `json:"username" validate:"required,min=1,max=50"`
}

// LoginRequest defines the request body for logging in. Username carries the email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// EditAvatarRequest defines the request body for changing the avatar
type EditAvatarRequest struct {
	AvatarURL string `json:"avatarURL" validate:"required"`
}

// FollowingCommunitiesRequest asks for the populated communities of a user
type FollowingCommunitiesRequest struct {
	ID string `json:"id" validate:"required,objectid"`
}

func nonNilIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}

// UserProfile is the payload of GET /profile
type UserProfile struct {
	ID          primitive.ObjectID `json:"id"`
	Username    string             `json:"username"`
	AvatarURL   string             `json:"avatarURL"`
	Email       string             `json:"email"`
	Communities []Community        `json:"communities"`
}

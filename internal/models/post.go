package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a community post stored in MongoDB
type Post struct {
	ID            primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Title         string               `json:"title" bson:"title"`
	CommunityID   primitive.ObjectID   `json:"communityId" bson:"communityId"`
	UserID        primitive.ObjectID   `json:"userId" bson:"userId"`
	Body          string               `json:"body" bson:"body"`
	AttachmentURL string               `json:"attachmentURL" bson:"attachmentURL"`
	LikedUserIDs  []primitive.ObjectID `json:"likedUserIds" bson:"likedUserIds"`
	CommentIDs    []primitive.ObjectID `json:"commentIds" bson:"commentIds"` // insertion order
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// PopulatedPost is a post whose author has been resolved
type PopulatedPost struct {
	Post
	UserID *UserCompact `json:"userId"`
}

// PostDetail is a post with author, community and comments resolved.
// Comments are ordered newest first.
type PostDetail struct {
	Post
	UserID      *UserCompact       `json:"userId"`
	CommunityID *CommunityCompact  `json:"communityId"`
	CommentIDs  []PopulatedComment `json:"commentIds"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title         string `json:"title" validate:"required,min=1,max=300"`
	Body          string `json:"body" validate:"max=10000"`
	CommunityID   string `json:"communityId" validate:"required,objectid"`
	AttachmentURL string `json:"attachmentURL"`
}

// PostRequest carries a single post id (like, unlike)
type PostRequest struct {
	PostID string `json:"postId" validate:"required,objectid"`
}

package models

import (
	"time"

	"github.com/anonto42/community/backend/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType distinguishes activity alerts from merchant requests
type NotificationType string

const (
	NotificationTypeComment NotificationType = "Comment"
	NotificationTypeRequest NotificationType = "Request"
)

// RequestStatus is the state of a Request notification. Pending moves to Accepted once.
type RequestStatus string

const (
	RequestStatusNotSent  RequestStatus = "Not sent" // never stored, reported when no request exists
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusAccepted RequestStatus = "Accepted"
)

// CanAccept reports whether a request in this status may move to Accepted
func (s RequestStatus) CanAccept() bool {
	return s == RequestStatusPending
}

// Notification is a directed fact addressed to UserID
type Notification struct {
	ID          primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID  `json:"userId" bson:"userId"`
	CommunityID *primitive.ObjectID `json:"communityId,omitempty" bson:"communityId,omitempty"`
	PostID      *primitive.ObjectID `json:"postId,omitempty" bson:"postId,omitempty"`
	MerchantID  primitive.ObjectID  `json:"merchantId" bson:"merchantId"` // the acting user
	Type        NotificationType    `json:"type" bson:"type"`
	Status      RequestStatus       `json:"status,omitempty" bson:"status,omitempty"`
	Unread      bool                `json:"unread" bson:"unread"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// PopulatedNotification has the actor and community resolved
type PopulatedNotification struct {
	Notification
	MerchantID  *UserCompact   `json:"merchantId"`
	CommunityID *CommunityName `json:"communityId,omitempty"`
}

// NotificationRequest carries a single notification id (delete, accept)
type NotificationRequest struct {
	NotificationID string `json:"notificationId" validate:"required,objectid"`
}

// CheckAccept returns why the notification cannot move to Accepted, or nil if it can
func (n *Notification) CheckAccept() error {
	if n.Type != NotificationTypeRequest {
		return apperrors.ErrNotARequest
	}
	if n.Status == RequestStatusAccepted {
		return apperrors.ErrAlreadyAccepted
	}
	if !n.Status.CanAccept() {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

// CheckAddressee returns ErrNotAddressee unless userID is the recipient
func (n *Notification) CheckAddressee(userID primitive.ObjectID) error {
	if n.UserID != userID {
		return apperrors.ErrNotAddressee
	}
	return nil
}

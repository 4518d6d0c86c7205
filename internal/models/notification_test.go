package models

import (
	"testing"

	"github.com/anonto42/community/backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCheckAccept(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
		want error
	}{
		{"pending request", Notification{Type: NotificationTypeRequest, Status: RequestStatusPending}, nil},
		{"accepted request", Notification{Type: NotificationTypeRequest, Status: RequestStatusAccepted}, apperrors.ErrAlreadyAccepted},
		{"request without status", Notification{Type: NotificationTypeRequest}, apperrors.ErrInvalidTransition},
		{"comment", Notification{Type: NotificationTypeComment}, apperrors.ErrNotARequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.n.CheckAccept())
		})
	}
}

func TestCheckAddressee(t *testing.T) {
	admin := primitive.NewObjectID()
	n := Notification{UserID: admin}
	assert.NoError(t, n.CheckAddressee(admin))
	assert.ErrorIs(t, n.CheckAddressee(primitive.NewObjectID()), apperrors.ErrNotAddressee)
}

func TestSessionExpired(t *testing.T) {
	s := Session{}
	s.ExpiresAt = s.CreatedAt.Add(1)
	assert.False(t, s.Expired(s.CreatedAt))
	assert.True(t, s.Expired(s.ExpiresAt))
}

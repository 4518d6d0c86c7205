package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID) ([]models.Notification, error)
	// FindRequest returns the Request notification sent by merchantID to communityID, or ErrNotFound
	FindRequest(ctx context.Context, communityID, merchantID primitive.ObjectID) (*models.Notification, error)
	// AcceptRequest moves a Pending request to Accepted and returns the updated notification
	AcceptRequest(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	// ReopenRequest moves an Accepted request back to Pending when the merchant grant could not be recorded
	ReopenRequest(ctx context.Context, id primitive.ObjectID) error
	DeleteNotification(ctx context.Context, id primitive.ObjectID) error
	GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection("notifications")}
}

func (r *mongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	now := time.Now()
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = now
	notification.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", translateErr(err))
	}
	return nil
}

func (r *mongoNotificationRepository) GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return nil, translateErr(err)
	}
	return &n, nil
}

func (r *mongoNotificationRepository) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID) ([]models.Notification, error) {
	return findAll[models.Notification](ctx, r.collection, bson.M{"userId": recipientID}, newestFirst())
}

func (r *mongoNotificationRepository) FindRequest(ctx context.Context, communityID, merchantID primitive.ObjectID) (*models.Notification, error) {
	filter := bson.M{
		"communityId": communityID,
		"merchantId":  merchantID,
		"type":        models.NotificationTypeRequest,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var n models.Notification
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&n); err != nil {
		return nil, translateErr(err)
	}
	return &n, nil
}

// AcceptRequest only matches a Pending request, so two concurrent accepts cannot both succeed
func (r *mongoNotificationRepository) AcceptRequest(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	filter := bson.M{
		"_id":    id,
		"type":   models.NotificationTypeRequest,
		"status": models.RequestStatusPending,
	}
	update := bson.M{"$set": bson.M{
		"status":    models.RequestStatusAccepted,
		"unread":    false,
		"updatedAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n)
	if err == nil {
		return &n, nil
	}
	if translateErr(err) != apperrors.ErrNotFound {
		return nil, fmt.Errorf("accept request %s: %w", id.Hex(), err)
	}

	current, getErr := r.GetNotificationByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if checkErr := current.CheckAccept(); checkErr != nil {
		return nil, checkErr
	}
	return nil, apperrors.ErrInvalidTransition
}

func (r *mongoNotificationRepository) ReopenRequest(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{
		"_id":    id,
		"type":   models.NotificationTypeRequest,
		"status": models.RequestStatusAccepted,
	}
	update := bson.M{"$set": bson.M{
		"status":    models.RequestStatusPending,
		"unread":    true,
		"updatedAt": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reopen request %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

func (r *mongoNotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete notification %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepository) GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": recipientID, "unread": true})
}

func (r *mongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"userId": recipientID, "unread": true},
		bson.M{"$set": bson.M{"unread": false, "updatedAt": time.Now()}},
	)
	return err
}

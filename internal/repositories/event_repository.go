package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/community/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Reference array fields of the events collection
const (
	EventParticipatingUserIDs = "participatingUserids"
	EventLikedUserIDs         = "likedUserIds"
)

// EventRepository defines the interface for event data operations
type EventRepository interface {
	RefArrays
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	GetEventsByCommunityID(ctx context.Context, communityID primitive.ObjectID) ([]models.Event, error)
}

// MongoEventRepository implements EventRepository for MongoDB
type MongoEventRepository struct {
	mongoRefs
	collection *mongo.Collection
}

func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	collection := db.Collection("events")
	return &MongoEventRepository{
		mongoRefs:  newMongoRefs(collection, EventParticipatingUserIDs, EventLikedUserIDs),
		collection: collection,
	}
}

func (r *MongoEventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	now := time.Now()
	event.ID = primitive.NewObjectID()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.ParticipatingUserIDs = emptyIfNil(event.ParticipatingUserIDs)
	event.LikedUserIDs = emptyIfNil(event.LikedUserIDs)

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", translateErr(err))
	}
	return nil
}

func (r *MongoEventRepository) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		return nil, translateErr(err)
	}
	return &event, nil
}

// GetEventsByCommunityID returns the events of a community, newest first
func (r *MongoEventRepository) GetEventsByCommunityID(ctx context.Context, communityID primitive.ObjectID) ([]models.Event, error) {
	return findAll[models.Event](ctx, r.collection, bson.M{"communityId": communityID}, newestFirst())
}

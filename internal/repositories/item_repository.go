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

// ItemRepository defines the interface for merchant item operations
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemsByCommunityID(ctx context.Context, communityID primitive.ObjectID) ([]models.Item, error)
}

type MongoItemRepository struct {
	collection *mongo.Collection
}

func NewMongoItemRepository(db *mongo.Database) *MongoItemRepository {
	return &MongoItemRepository{collection: db.Collection("items")}
}

func (r *MongoItemRepository) CreateItem(ctx context.Context, item *models.Item) error {
	now := time.Now()
	item.ID = primitive.NewObjectID()
	item.CreatedAt = now
	item.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("create item: %w", translateErr(err))
	}
	return nil
}

func (r *MongoItemRepository) GetItemsByCommunityID(ctx context.Context, communityID primitive.ObjectID) ([]models.Item, error) {
	return findAll[models.Item](ctx, r.collection, bson.M{"communityId": communityID}, newestFirst())
}

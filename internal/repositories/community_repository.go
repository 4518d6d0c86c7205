package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/anonto42/community/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Reference array fields of the communities collection
const (
	CommunityFollowingUserIDs = "followingUserIDs"
	CommunityMerchantIDs      = "merchantIds"
)

// CommunityRepository defines the interface for community data operations
type CommunityRepository interface {
	RefArrays
	CreateCommunity(ctx context.Context, community *models.Community) error
	GetCommunityByID(ctx context.Context, id primitive.ObjectID) (*models.Community, error)
	GetCommunityByName(ctx context.Context, name string) (*models.Community, error)
	GetCommunitiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Community, error)
	SearchCommunities(ctx context.Context, query string) ([]models.Community, error)
}

// MongoCommunityRepository implements CommunityRepository for MongoDB
type MongoCommunityRepository struct {
	mongoRefs
	collection *mongo.Collection
}

// NewMongoCommunityRepository creates a new MongoCommunityRepository
func NewMongoCommunityRepository(db *mongo.Database) *MongoCommunityRepository {
	collection := db.Collection("communities")
	return &MongoCommunityRepository{
		mongoRefs:  newMongoRefs(collection, CommunityFollowingUserIDs, CommunityMerchantIDs),
		collection: collection,
	}
}

// CreateCommunity inserts a new community; a taken name yields ErrDuplicateKey
func (r *MongoCommunityRepository) CreateCommunity(ctx context.Context, community *models.Community) error {
	now := time.Now()
	community.ID = primitive.NewObjectID()
	community.CreatedAt = now
	community.UpdatedAt = now
	if community.LogoURL == "" {
		community.LogoURL = models.DefaultImageURL
	}
	if community.BannerURL == "" {
		community.BannerURL = models.DefaultImageURL
	}
	community.FollowingUserIDs = emptyIfNil(community.FollowingUserIDs)
	community.MerchantIDs = emptyIfNil(community.MerchantIDs)

	if _, err := r.collection.InsertOne(ctx, community); err != nil {
		return fmt.Errorf("create community: %w", translateErr(err))
	}
	return nil
}

func (r *MongoCommunityRepository) GetCommunityByID(ctx context.Context, id primitive.ObjectID) (*models.Community, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoCommunityRepository) GetCommunityByName(ctx context.Context, name string) (*models.Community, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *MongoCommunityRepository) GetCommunitiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Community, error) {
	if len(ids) == 0 {
		return []models.Community{}, nil
	}
	return findAll[models.Community](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

// SearchCommunities matches query as a case-insensitive literal substring of the name, newest first
func (r *MongoCommunityRepository) SearchCommunities(ctx context.Context, query string) ([]models.Community, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}}
	return findAll[models.Community](ctx, r.collection, filter, newestFirst())
}

func (r *MongoCommunityRepository) findOne(ctx context.Context, filter bson.M) (*models.Community, error) {
	var community models.Community
	if err := r.collection.FindOne(ctx, filter).Decode(&community); err != nil {
		return nil, translateErr(err)
	}
	return &community, nil
}

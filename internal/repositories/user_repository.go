package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/community/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Reference array fields of the users collection
const (
	UserCommunityIDs          = "communityIDs"
	UserLikedPosts            = "likedPosts"
	UserParticipatingEventIDs = "participatingEventIds"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	RefArrays
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) (*models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	mongoRefs
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	collection := db.Collection("users")
	return &MongoUserRepository{
		mongoRefs:  newMongoRefs(collection, UserCommunityIDs, UserLikedPosts, UserParticipatingEventIDs),
		collection: collection,
	}
}

// CreateUser inserts a new user; a taken email or username yields ErrDuplicateKey
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.AvatarURL == "" {
		user.AvatarURL = models.DefaultImageURL
	}
	user.CommunityIDs = emptyIfNil(user.CommunityIDs)
	user.LikedPosts = emptyIfNil(user.LikedPosts)
	user.ParticipatingEventIDs = emptyIfNil(user.ParticipatingEventIDs)

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", translateErr(err))
	}
	return nil
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetUsersByIDs returns the users found among ids, in no particular order
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

// UpdateAvatar sets the avatar and returns the updated user
func (r *MongoUserRepository) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) (*models.User, error) {
	update := bson.M{"$set": bson.M{"avatarURL": avatarURL, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("update avatar of user %s: %w", id.Hex(), translateErr(err))
	}
	return &user, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

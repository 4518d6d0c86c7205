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

// Reference array fields of the posts collection
const (
	PostLikedUserIDs = "likedUserIds"
	PostCommentIDs   = "commentIds"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	RefArrays
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostsByCommunityIDs(ctx context.Context, communityIDs []primitive.ObjectID) ([]models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	mongoRefs
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	collection := db.Collection("posts")
	return &MongoPostRepository{
		mongoRefs:  newMongoRefs(collection, PostLikedUserIDs, PostCommentIDs),
		collection: collection,
	}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.LikedUserIDs = emptyIfNil(post.LikedUserIDs)
	post.CommentIDs = emptyIfNil(post.CommentIDs)

	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("create post: %w", translateErr(err))
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, translateErr(err)
	}
	return &post, nil
}

// GetPostsByCommunityIDs returns every post of the given communities, newest first
func (r *MongoPostRepository) GetPostsByCommunityIDs(ctx context.Context, communityIDs []primitive.ObjectID) ([]models.Post, error) {
	if len(communityIDs) == 0 {
		return []models.Post{}, nil
	}
	filter := bson.M{"communityId": bson.M{"$in": communityIDs}}
	return findAll[models.Post](ctx, r.collection, filter, newestFirst())
}

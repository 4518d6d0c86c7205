package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/community/backend/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RefArrays is implemented by collections whose documents hold arrays of references
// to other documents (members, likes, participants, comments).
type RefArrays interface {
	// AddRef appends ref to the array field of document id. With unique set the
	// append is skipped when ref is already present.
	AddRef(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID, unique bool) error
	// RemoveRef removes every occurrence of ref from the array field of document id.
	RemoveRef(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error
}

// mongoRefs implements RefArrays on a single collection
type mongoRefs struct {
	collection *mongo.Collection
	fields     map[string]bool
}

func newMongoRefs(collection *mongo.Collection, fields ...string) mongoRefs {
	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}
	return mongoRefs{collection: collection, fields: allowed}
}

func (r mongoRefs) AddRef(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID, unique bool) error {
	if !r.fields[field] {
		return fmt.Errorf("%s: unknown reference field %q", r.collection.Name(), field)
	}
	op := "$push"
	if unique {
		op = "$addToSet"
	}
	update := bson.M{
		op:     bson.M{field: ref},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	return r.update(ctx, id, update)
}

func (r mongoRefs) RemoveRef(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error {
	if !r.fields[field] {
		return fmt.Errorf("%s: unknown reference field %q", r.collection.Name(), field)
	}
	update := bson.M{
		"$pull": bson.M{field: ref},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.update(ctx, id, update)
}

func (r mongoRefs) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("%s: update %s: %w", r.collection.Name(), id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", r.collection.Name(), id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// newestFirst sorts by creation time, falling back to _id for records created in the same millisecond
func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}

// translateErr maps driver errors onto the store's sentinel errors
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicateKey, err)
	default:
		return err
	}
}

func emptyIfNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}

func findAll[T any](ctx context.Context, collection *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

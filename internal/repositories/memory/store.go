// Package memory provides in-process implementations of the repository interfaces
// for tests. All repositories built from one Store share the same data and lock.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection in memory
type Store struct {
	mu   sync.Mutex
	last time.Time

	users         map[primitive.ObjectID]*models.User
	communities   map[primitive.ObjectID]*models.Community
	posts         map[primitive.ObjectID]*models.Post
	comments      map[primitive.ObjectID]*models.Comment
	events        map[primitive.ObjectID]*models.Event
	items         map[primitive.ObjectID]*models.Item
	notifications map[primitive.ObjectID]*models.Notification
	sessions      map[string]*models.Session

	// FailRefs makes AddRef and RemoveRef fail for the named collection
	FailRefs map[string]error
}

func NewStore() *Store {
	return &Store{
		users:         map[primitive.ObjectID]*models.User{},
		communities:   map[primitive.ObjectID]*models.Community{},
		posts:         map[primitive.ObjectID]*models.Post{},
		comments:      map[primitive.ObjectID]*models.Comment{},
		events:        map[primitive.ObjectID]*models.Event{},
		items:         map[primitive.ObjectID]*models.Item{},
		notifications: map[primitive.ObjectID]*models.Notification{},
		sessions:      map[string]*models.Session{},
		FailRefs:      map[string]error{},
	}
}

// now is strictly increasing so creation order is always observable
func (s *Store) now() time.Time {
	t := time.Now().Truncate(time.Millisecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Millisecond)
	}
	s.last = t
	return t
}

// refArray resolves the array field of a record; it is called with the lock held
func (s *Store) refArray(collection string, id primitive.ObjectID, field string) (*[]primitive.ObjectID, *time.Time, error) {
	notFound := fmt.Errorf("%s %s: %w", collection, id.Hex(), apperrors.ErrNotFound)
	switch collection {
	case "users":
		u, ok := s.users[id]
		if !ok {
			return nil, nil, notFound
		}
		switch field {
		case repositories.UserCommunityIDs:
			return &u.CommunityIDs, &u.UpdatedAt, nil
		case repositories.UserLikedPosts:
			return &u.LikedPosts, &u.UpdatedAt, nil
		case repositories.UserParticipatingEventIDs:
			return &u.ParticipatingEventIDs, &u.UpdatedAt, nil
		}
	case "communities":
		c, ok := s.communities[id]
		if !ok {
			return nil, nil, notFound
		}
		switch field {
		case repositories.CommunityFollowingUserIDs:
			return &c.FollowingUserIDs, &c.UpdatedAt, nil
		case repositories.CommunityMerchantIDs:
			return &c.MerchantIDs, &c.UpdatedAt, nil
		}
	case "posts":
		p, ok := s.posts[id]
		if !ok {
			return nil, nil, notFound
		}
		switch field {
		case repositories.PostLikedUserIDs:
			return &p.LikedUserIDs, &p.UpdatedAt, nil
		case repositories.PostCommentIDs:
			return &p.CommentIDs, &p.UpdatedAt, nil
		}
	case "events":
		e, ok := s.events[id]
		if !ok {
			return nil, nil, notFound
		}
		switch field {
		case repositories.EventParticipatingUserIDs:
			return &e.ParticipatingUserIDs, &e.UpdatedAt, nil
		case repositories.EventLikedUserIDs:
			return &e.LikedUserIDs, &e.UpdatedAt, nil
		}
	}
	return nil, nil, fmt.Errorf("%s: unknown reference field %q", collection, field)
}

// refs implements repositories.RefArrays for one collection of a Store
type refs struct {
	store      *Store
	collection string
}

func (r refs) AddRef(_ context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID, unique bool) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailRefs[r.collection]; err != nil {
		return err
	}
	arr, updated, err := s.refArray(r.collection, id, field)
	if err != nil {
		return err
	}
	if unique && contains(*arr, ref) {
		return nil
	}
	*arr = append(*arr, ref)
	*updated = s.now()
	return nil
}

func (r refs) RemoveRef(_ context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailRefs[r.collection]; err != nil {
		return err
	}
	arr, updated, err := s.refArray(r.collection, id, field)
	if err != nil {
		return err
	}
	kept := make([]primitive.ObjectID, 0, len(*arr))
	for _, v := range *arr {
		if v != ref {
			kept = append(kept, v)
		}
	}
	*arr = kept
	*updated = s.now()
	return nil
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func copyIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

// newestFirst orders by creation time descending, then id descending
func newestFirst[T any](list []T, key func(T) (time.Time, primitive.ObjectID)) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, ii := key(list[i])
		tj, ij := key(list[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return strings.Compare(ii.Hex(), ij.Hex()) > 0
	})
}

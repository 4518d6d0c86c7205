package memory

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users returns a UserRepository backed by the store
func (s *Store) Users() repositories.UserRepository { return &userRepo{refs{s, "users"}} }

// Communities returns a CommunityRepository backed by the store
func (s *Store) Communities() repositories.CommunityRepository {
	return &communityRepo{refs{s, "communities"}}
}

// Posts returns a PostRepository backed by the store
func (s *Store) Posts() repositories.PostRepository { return &postRepo{refs{s, "posts"}} }

// Events returns an EventRepository backed by the store
func (s *Store) Events() repositories.EventRepository { return &eventRepo{refs{s, "events"}} }

func (s *Store) Comments() repositories.CommentRepository { return &commentRepo{s} }

func (s *Store) Items() repositories.ItemRepository { return &itemRepo{s} }

func (s *Store) Notifications() repositories.NotificationRepository { return &notificationRepo{s} }

func (s *Store) Sessions() repositories.SessionRepository { return &sessionRepo{s} }

func cloneUser(u *models.User) *models.User {
	c := *u
	c.CommunityIDs = copyIDs(u.CommunityIDs)
	c.LikedPosts = copyIDs(u.LikedPosts)
	c.ParticipatingEventIDs = copyIDs(u.ParticipatingEventIDs)
	return &c
}

func cloneCommunity(cm *models.Community) *models.Community {
	c := *cm
	c.FollowingUserIDs = copyIDs(cm.FollowingUserIDs)
	c.MerchantIDs = copyIDs(cm.MerchantIDs)
	return &c
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.LikedUserIDs = copyIDs(p.LikedUserIDs)
	c.CommentIDs = copyIDs(p.CommentIDs)
	return &c
}

func cloneEvent(e *models.Event) *models.Event {
	c := *e
	c.ParticipatingUserIDs = copyIDs(e.ParticipatingUserIDs)
	c.LikedUserIDs = copyIDs(e.LikedUserIDs)
	return &c
}

type userRepo struct{ refs }

func (r *userRepo) CreateUser(_ context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return apperrors.ErrDuplicateKey
		}
	}
	now := s.now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.AvatarURL == "" {
		user.AvatarURL = models.DefaultImageURL
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *userRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *userRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *userRepo) find(match func(*models.User) bool) (*models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *userRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (r *userRepo) UpdateAvatar(_ context.Context, id primitive.ObjectID, avatarURL string) (*models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u.AvatarURL = avatarURL
	u.UpdatedAt = s.now()
	return cloneUser(u), nil
}

type communityRepo struct{ refs }

func (r *communityRepo) CreateCommunity(_ context.Context, community *models.Community) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.communities {
		if c.Name == community.Name {
			return apperrors.ErrDuplicateKey
		}
	}
	now := s.now()
	community.ID = primitive.NewObjectID()
	community.CreatedAt, community.UpdatedAt = now, now
	if community.LogoURL == "" {
		community.LogoURL = models.DefaultImageURL
	}
	if community.BannerURL == "" {
		community.BannerURL = models.DefaultImageURL
	}
	s.communities[community.ID] = cloneCommunity(community)
	return nil
}

func (r *communityRepo) GetCommunityByID(_ context.Context, id primitive.ObjectID) (*models.Community, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.communities[id]; ok {
		return cloneCommunity(c), nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *communityRepo) GetCommunityByName(_ context.Context, name string) (*models.Community, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.communities {
		if c.Name == name {
			return cloneCommunity(c), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *communityRepo) GetCommunitiesByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Community, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Community{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if c, ok := s.communities[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *cloneCommunity(c))
		}
	}
	return out, nil
}

func (r *communityRepo) SearchCommunities(_ context.Context, query string) ([]models.Community, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	out := []models.Community{}
	for _, c := range s.communities {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, *cloneCommunity(c))
		}
	}
	newestFirst(out, func(c models.Community) (time.Time, primitive.ObjectID) { return c.CreatedAt, c.ID })
	return out, nil
}

type postRepo struct{ refs }

func (r *postRepo) CreatePost(_ context.Context, post *models.Post) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt, post.UpdatedAt = now, now
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (r *postRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[id]; ok {
		return clonePost(p), nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *postRepo) GetPostsByCommunityIDs(_ context.Context, communityIDs []primitive.ObjectID) ([]models.Post, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Post{}
	for _, p := range s.posts {
		if contains(communityIDs, p.CommunityID) {
			out = append(out, *clonePost(p))
		}
	}
	newestFirst(out, func(p models.Post) (time.Time, primitive.ObjectID) { return p.CreatedAt, p.ID })
	return out, nil
}

type eventRepo struct{ refs }

func (r *eventRepo) CreateEvent(_ context.Context, event *models.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	event.ID = primitive.NewObjectID()
	event.CreatedAt, event.UpdatedAt = now, now
	s.events[event.ID] = cloneEvent(event)
	return nil
}

func (r *eventRepo) GetEventByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[id]; ok {
		return cloneEvent(e), nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *eventRepo) GetEventsByCommunityID(_ context.Context, communityID primitive.ObjectID) ([]models.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Event{}
	for _, e := range s.events {
		if e.CommunityID == communityID {
			out = append(out, *cloneEvent(e))
		}
	}
	newestFirst(out, func(e models.Event) (time.Time, primitive.ObjectID) { return e.CreatedAt, e.ID })
	return out, nil
}

type commentRepo struct{ store *Store }

func (r *commentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt, comment.UpdatedAt = now, now
	c := *comment
	s.comments[c.ID] = &c
	return nil
}

func (r *commentRepo) GetCommentsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if c, ok := s.comments[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *c)
		}
	}
	return out, nil
}

type itemRepo struct{ store *Store }

func (r *itemRepo) CreateItem(_ context.Context, item *models.Item) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	item.ID = primitive.NewObjectID()
	item.CreatedAt, item.UpdatedAt = now, now
	c := *item
	s.items[c.ID] = &c
	return nil
}

func (r *itemRepo) GetItemsByCommunityID(_ context.Context, communityID primitive.ObjectID) ([]models.Item, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Item{}
	for _, it := range s.items {
		if it.CommunityID == communityID {
			out = append(out, *it)
		}
	}
	newestFirst(out, func(it models.Item) (time.Time, primitive.ObjectID) { return it.CreatedAt, it.ID })
	return out, nil
}

type notificationRepo struct{ store *Store }

func (r *notificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n.ID = primitive.NewObjectID()
	n.CreatedAt, n.UpdatedAt = now, now
	c := *n
	s.notifications[c.ID] = &c
	return nil
}

func (r *notificationRepo) GetNotificationByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.notifications[id]; ok {
		c := *n
		return &c, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *notificationRepo) GetByRecipientID(_ context.Context, recipientID primitive.ObjectID) ([]models.Notification, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.UserID == recipientID {
			out = append(out, *n)
		}
	}
	newestFirst(out, func(n models.Notification) (time.Time, primitive.ObjectID) { return n.CreatedAt, n.ID })
	return out, nil
}

func (r *notificationRepo) FindRequest(_ context.Context, communityID, merchantID primitive.ObjectID) (*models.Notification, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Notification
	for _, n := range s.notifications {
		if n.Type != models.NotificationTypeRequest || n.MerchantID != merchantID {
			continue
		}
		if n.CommunityID == nil || *n.CommunityID != communityID {
			continue
		}
		if found == nil || n.CreatedAt.After(found.CreatedAt) {
			found = n
		}
	}
	if found == nil {
		return nil, apperrors.ErrNotFound
	}
	c := *found
	return &c, nil
}

func (r *notificationRepo) AcceptRequest(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if err := n.CheckAccept(); err != nil {
		return nil, err
	}
	n.Status = models.RequestStatusAccepted
	n.Unread = false
	n.UpdatedAt = s.now()
	c := *n
	return &c, nil
}

func (r *notificationRepo) ReopenRequest(_ context.Context, id primitive.ObjectID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if n.Type != models.NotificationTypeRequest || n.Status != models.RequestStatusAccepted {
		return apperrors.ErrInvalidTransition
	}
	n.Status = models.RequestStatusPending
	n.Unread = true
	n.UpdatedAt = s.now()
	return nil
}

func (r *notificationRepo) DeleteNotification(_ context.Context, id primitive.ObjectID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (r *notificationRepo) GetUnreadCount(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.UserID == recipientID && n.Unread {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepo) MarkAllAsRead(_ context.Context, recipientID primitive.ObjectID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.UserID == recipientID && n.Unread {
			n.Unread = false
			n.UpdatedAt = s.now()
		}
	}
	return nil
}

type sessionRepo struct{ store *Store }

func (r *sessionRepo) CreateSession(_ context.Context, session *models.Session) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return apperrors.ErrDuplicateKey
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	c := *session
	s.sessions[c.ID] = &c
	return nil
}

func (r *sessionRepo) GetSession(_ context.Context, id string) (*models.Session, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		c := *sess
		return &c, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *sessionRepo) DeleteSession(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (r *sessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

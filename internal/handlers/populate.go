package handlers

import (
	"context"
	"sort"
	"strings"

	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// populator resolves stored references into compact projections with one
// batch lookup per referenced collection
type populator struct {
	users       repositories.UserRepository
	communities repositories.CommunityRepository
	comments    repositories.CommentRepository
}

func (p *populator) usersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserCompact, error) {
	users, err := p.users.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.UserCompact, len(users))
	for i := range users {
		out[users[i].ID] = users[i].ToCompact()
	}
	return out, nil
}

// userList keeps the order of ids and skips references to missing users
func (p *populator) userList(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error) {
	byID, err := p.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserCompact, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (p *populator) communityList(ctx context.Context, ids []primitive.ObjectID) ([]models.Community, error) {
	communities, err := p.communities.GetCommunitiesByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Community, len(communities))
	for _, c := range communities {
		byID[c.ID] = c
	}
	out := make([]models.Community, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// posts resolves the author of each post; a missing author is rendered as null
func (p *populator) posts(ctx context.Context, posts []models.Post) ([]models.PopulatedPost, error) {
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.UserID)
	}
	authors, err := p.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.PopulatedPost, 0, len(posts))
	for _, post := range posts {
		pp := models.PopulatedPost{Post: post}
		if a, ok := authors[post.UserID]; ok {
			pp.UserID = &a
		}
		out = append(out, pp)
	}
	return out, nil
}

// commentList resolves the comments of a post with their authors, newest first
func (p *populator) commentList(ctx context.Context, ids []primitive.ObjectID) ([]models.PopulatedComment, error) {
	comments, err := p.comments.GetCommentsByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.UserID)
	}
	authors, err := p.usersByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.PopulatedComment, 0, len(comments))
	for _, c := range comments {
		pc := models.PopulatedComment{Comment: c}
		if a, ok := authors[c.UserID]; ok {
			pc.UserID = &a
		}
		out = append(out, pc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return strings.Compare(out[i].ID.Hex(), out[j].ID.Hex()) > 0
	})
	return out, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

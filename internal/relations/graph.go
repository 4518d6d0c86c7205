package relations

import "github.com/anonto42/community/backend/internal/repositories"

// Graph is the set of relations between the stored entities
type Graph struct {
	// Membership: user.communityIDs <-> community.followingUserIDs (user first)
	Membership Relation
	// PostLike: post.likedUserIds <-> user.likedPosts (post first)
	PostLike Relation
	// EventParticipation: event.participatingUserids <-> user.participatingEventIds (event first)
	EventParticipation Relation
	// EventLike: event.likedUserIds only
	EventLike Relation
	// MerchantGrant: community.merchantIds only
	MerchantGrant Relation
	// PostComment: post.commentIds only, in insertion order
	PostComment Relation
}

// NewGraph wires the relations onto the repositories
func NewGraph(users repositories.UserRepository, communities repositories.CommunityRepository,
	posts repositories.PostRepository, events repositories.EventRepository) Graph {
	return Graph{
		Membership: Relation{
			Name:  "membership",
			Left:  Side{Store: users, Field: repositories.UserCommunityIDs},
			Right: &Side{Store: communities, Field: repositories.CommunityFollowingUserIDs},
		},
		PostLike: Relation{
			Name:  "post-like",
			Left:  Side{Store: posts, Field: repositories.PostLikedUserIDs},
			Right: &Side{Store: users, Field: repositories.UserLikedPosts},
		},
		EventParticipation: Relation{
			Name:  "event-participation",
			Left:  Side{Store: events, Field: repositories.EventParticipatingUserIDs},
			Right: &Side{Store: users, Field: repositories.UserParticipatingEventIDs},
		},
		EventLike: Relation{
			Name: "event-like",
			Left: Side{Store: events, Field: repositories.EventLikedUserIDs},
		},
		MerchantGrant: Relation{
			Name: "merchant-grant",
			Left: Side{Store: communities, Field: repositories.CommunityMerchantIDs},
		},
		PostComment: Relation{
			Name: "post-comment",
			Left: Side{Store: posts, Field: repositories.PostCommentIDs},
		},
	}
}

package event

// Actor holds the denormalized actor fields producers attach to payloads so
// consumers can render messages without a user lookup.
type Actor struct {
	Username    string `json:"actorUsername,omitempty"`
	DisplayName string `json:"actorDisplayName,omitempty"`
}

// Name returns the best human-readable actor name, falling back to fallback.
func (a Actor) Name(fallback string) string {
	switch {
	case a.DisplayName != "":
		return a.DisplayName
	case a.Username != "":
		return a.Username
	default:
		return fallback
	}
}

// FollowPayload is carried by user.follow.
type FollowPayload struct {
	Actor
}

// PostCreatedPayload is carried by post.create. Followers is the recipient
// candidate set resolved by the producer.
type PostCreatedPayload struct {
	Actor
	PostID    string   `json:"postId,omitempty"`
	PostTitle string   `json:"postTitle,omitempty"`
	Followers []string `json:"followers,omitempty"`
}

// PostLikedPayload is carried by post.like. Producers have used both owner
// field names; Owner resolves them.
type PostLikedPayload struct {
	Actor
	PostID       string `json:"postId,omitempty"`
	PostTitle    string `json:"postTitle,omitempty"`
	PostOwnerID  string `json:"postOwnerId,omitempty"`
	PostAuthorID string `json:"postAuthorId,omitempty"`
}

// Owner returns the id of the liked post's owner.
func (p PostLikedPayload) Owner() string {
	if p.PostOwnerID != "" {
		return p.PostOwnerID
	}
	return p.PostAuthorID
}

// PostCommentedPayload is carried by post.comment.
type PostCommentedPayload struct {
	PostLikedPayload
	CommentID string `json:"commentId,omitempty"`
}

// PostMentionPayload is carried by post.mention.
type PostMentionPayload struct {
	Actor
	PostID           string   `json:"postId,omitempty"`
	PostTitle        string   `json:"postTitle,omitempty"`
	MentionedUserIDs []string `json:"mentionedUserIds,omitempty"`
}

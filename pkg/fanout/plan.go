package fanout

import (
	"strings"

	"github.com/dmitrymomot/pulse/pkg/event"
	"github.com/dmitrymomot/pulse/pkg/notifications"
)

// candidate is a notification that will be created if it passes the gate
// (when gated) and is not a duplicate.
type candidate struct {
	n     notifications.Notification
	gated bool
}

// silentTypes are valid events that never notify anyone.
var silentTypes = map[event.Type]struct{}{
	event.UserUnfollow:        {},
	event.UserProfileUpdate:   {},
	event.PostUnlike:          {},
	event.NotificationCreated: {},
	event.NotificationRead:    {},
	event.NotificationReadAll: {},
}

// plan expands env into candidates. It assumes env is valid.
func plan(env event.Envelope) ([]candidate, error) {
	switch env.EventType {
	case event.UserFollow:
		return planFollow(env)
	case event.PostCreate:
		return planPostCreate(env)
	case event.PostLike:
		return planPostLike(env)
	case event.PostComment:
		return planPostComment(env)
	case event.PostMention:
		return planPostMention(env)
	}
	return nil, nil
}

func planFollow(env event.Envelope) ([]candidate, error) {
	p, err := event.DecodePayload[event.FollowPayload](env)
	if err != nil {
		return nil, err
	}
	if env.TargetID == env.ActorID {
		return nil, nil
	}
	return []candidate{{
		n: base(env, env.TargetID, notifications.TypeFollow,
			followMessage(p.Name(env.ActorID)), notifications.RefUser, env.ActorID),
	}}, nil
}

func planPostCreate(env event.Envelope) ([]candidate, error) {
	p, err := event.DecodePayload[event.PostCreatedPayload](env)
	if err != nil {
		return nil, err
	}
	postID := firstNonEmpty(p.PostID, env.TargetID)
	msg := newPostMessage(p.Name(env.ActorID), p.PostTitle)

	recipients := uniqueRecipients(p.Followers, env.ActorID)
	out := make([]candidate, 0, len(recipients))
	for _, r := range recipients {
		n := base(env, r, notifications.TypeNewPost, msg, notifications.RefPost, postID)
		n.Metadata = withTitle(n.Metadata, p.PostTitle)
		out = append(out, candidate{n: n, gated: true})
	}
	return out, nil
}

func planPostLike(env event.Envelope) ([]candidate, error) {
	p, err := event.DecodePayload[event.PostLikedPayload](env)
	if err != nil {
		return nil, err
	}
	owner := p.Owner()
	if owner == "" {
		return nil, ErrMissingPostOwner
	}
	if owner == env.ActorID {
		return nil, nil
	}
	n := base(env, owner, notifications.TypePostLike,
		postLikeMessage(p.Name(env.ActorID), p.PostTitle),
		notifications.RefPost, firstNonEmpty(p.PostID, env.TargetID))
	n.Metadata = withTitle(n.Metadata, p.PostTitle)
	return []candidate{{n: n}}, nil
}

func planPostComment(env event.Envelope) ([]candidate, error) {
	p, err := event.DecodePayload[event.PostCommentedPayload](env)
	if err != nil {
		return nil, err
	}
	owner := p.Owner()
	if owner == "" {
		return nil, ErrMissingPostOwner
	}
	if owner == env.ActorID {
		return nil, nil
	}

	ref, refID := notifications.RefPost, firstNonEmpty(p.PostID, env.TargetID)
	if p.CommentID != "" {
		ref, refID = notifications.RefComment, p.CommentID
	}
	n := base(env, owner, notifications.TypeComment,
		commentMessage(p.Name(env.ActorID), p.PostTitle), ref, refID)
	if p.CommentID != "" {
		// Each comment on a post notifies; redelivery of the same one does not.
		n.DedupKey = notifications.DedupKey(string(env.EventType), env.ActorID, env.TargetID+"/"+p.CommentID, owner)
	}
	n.Metadata = withTitle(n.Metadata, p.PostTitle)
	if p.PostID != "" {
		n.Metadata["postId"] = p.PostID
	}
	return []candidate{{n: n}}, nil
}

func planPostMention(env event.Envelope) ([]candidate, error) {
	p, err := event.DecodePayload[event.PostMentionPayload](env)
	if err != nil {
		return nil, err
	}
	postID := firstNonEmpty(p.PostID, env.TargetID)
	msg := mentionMessage(p.Name(env.ActorID), p.PostTitle)

	recipients := uniqueRecipients(p.MentionedUserIDs, env.ActorID)
	out := make([]candidate, 0, len(recipients))
	for _, r := range recipients {
		n := base(env, r, notifications.TypeMention, msg, notifications.RefPost, postID)
		n.Metadata = withTitle(n.Metadata, p.PostTitle)
		out = append(out, candidate{n: n})
	}
	return out, nil
}

func base(env event.Envelope, recipient string, typ notifications.Type, msg string, ref notifications.RefModel, refID string) notifications.Notification {
	return notifications.Notification{
		Recipient: recipient,
		Sender:    env.ActorID,
		Type:      typ,
		Message:   msg,
		RefID:     refID,
		RefModel:  ref,
		DedupKey:  notifications.DedupKey(string(env.EventType), env.ActorID, env.TargetID, recipient),
		Metadata: map[string]any{
			"eventType": string(env.EventType),
		},
	}
}

// uniqueRecipients drops blanks, the actor and repeats, keeping first-seen order.
func uniqueRecipients(ids []string, actor string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == actor {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func withTitle(m map[string]any, title string) map[string]any {
	if title != "" {
		m["postTitle"] = title
	}
	return m
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

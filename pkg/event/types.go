package event

// Type is the event type tag.
type Type string

const (
	UserFollow        Type = "user.follow"
	UserUnfollow      Type = "user.unfollow"
	UserProfileUpdate Type = "user.profile.update"

	PostCreate  Type = "post.create"
	PostLike    Type = "post.like"
	PostUnlike  Type = "post.unlike"
	PostComment Type = "post.comment"
	PostMention Type = "post.mention"

	NotificationCreated Type = "notification.created"
	NotificationRead    Type = "notification.read"
	NotificationReadAll Type = "notification.read_all"
)

var knownTypes = map[Type]Topic{
	UserFollow:          TopicUserEvents,
	UserUnfollow:        TopicUserEvents,
	UserProfileUpdate:   TopicUserEvents,
	PostCreate:          TopicPostEvents,
	PostLike:            TopicPostEvents,
	PostUnlike:          TopicPostEvents,
	PostComment:         TopicPostEvents,
	PostMention:         TopicPostEvents,
	NotificationCreated: TopicNotificationEvents,
	NotificationRead:    TopicNotificationEvents,
	NotificationReadAll: TopicNotificationEvents,
}

// Known reports whether t is one of the event types the system emits.
func (t Type) Known() bool {
	_, ok := knownTypes[t]
	return ok
}

// TargetType is the kind of entity an event is about.
type TargetType string

const (
	TargetUser         TargetType = "User"
	TargetPost         TargetType = "Post"
	TargetComment      TargetType = "Comment"
	TargetNotification TargetType = "Notification"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetUser, TargetPost, TargetComment, TargetNotification:
		return true
	}
	return false
}

// Topic is a logical bus topic.
type Topic string

const (
	TopicUserEvents         Topic = "user-events"
	TopicPostEvents         Topic = "post-events"
	TopicNotificationEvents Topic = "notification-events"
)

// Topics lists every topic in a stable order.
func Topics() []Topic {
	return []Topic{TopicUserEvents, TopicPostEvents, TopicNotificationEvents}
}

// TopicFor returns the topic an event type is published on.
// Unknown types return an empty topic.
func TopicFor(t Type) Topic {
	return knownTypes[t]
}

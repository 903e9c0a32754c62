package notifications

import (
	"strings"
	"time"
)

// Type is the kind of notification shown to the recipient.
type Type string

const (
	TypeFollow   Type = "follow"
	TypeLike     Type = "like"
	TypeComment  Type = "comment"
	TypeMention  Type = "mention"
	TypePost     Type = "post"
	TypeSystem   Type = "system"
	TypeNewPost  Type = "new_post"
	TypePostLike Type = "post_like"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFollow, TypeLike, TypeComment, TypeMention, TypePost, TypeSystem, TypeNewPost, TypePostLike:
		return true
	}
	return false
}

// RefModel names the collection RefID points into.
type RefModel string

const (
	RefPost    RefModel = "Post"
	RefUser    RefModel = "User"
	RefComment RefModel = "Comment"
)

func (m RefModel) Valid() bool {
	switch m {
	case RefPost, RefUser, RefComment:
		return true
	}
	return false
}

const (
	MinRelevanceScore     = 0.0
	MaxRelevanceScore     = 100.0
	DefaultRelevanceScore = 50.0
)

// Notification is a persisted, per-recipient message derived from an event.
// RelevanceScore and CreatedAt never change after creation.
type Notification struct {
	ID             string         `json:"id" bson:"_id"`
	Recipient      string         `json:"recipient" bson:"recipient"`
	Sender         string         `json:"sender,omitempty" bson:"sender,omitempty"`
	Type           Type           `json:"type" bson:"type"`
	Message        string         `json:"message" bson:"message"`
	RefID          string         `json:"refId,omitempty" bson:"ref_id,omitempty"`
	RefModel       RefModel       `json:"refModel,omitempty" bson:"ref_model,omitempty"`
	IsRead         bool           `json:"isRead" bson:"is_read"`
	ReadAt         *time.Time     `json:"readAt,omitempty" bson:"read_at,omitempty"`
	RelevanceScore float64        `json:"relevanceScore" bson:"relevance_score"`
	Metadata       map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	DedupKey       string         `json:"-" bson:"dedup_key,omitempty"`
	CreatedAt      time.Time      `json:"createdAt" bson:"created_at"`
}

// Validate checks the fields storage relies on.
func (n Notification) Validate() error {
	if strings.TrimSpace(n.Recipient) == "" {
		return ErrMissingRecipient
	}
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	if n.Message == "" {
		return ErrMissingMessage
	}
	if n.RefModel != "" && !n.RefModel.Valid() {
		return ErrInvalidRefModel
	}
	if n.RelevanceScore < MinRelevanceScore || n.RelevanceScore > MaxRelevanceScore {
		return ErrScoreOutOfRange
	}
	return nil
}

// MarkAsRead flags the notification read at t. Already-read notifications
// keep their original ReadAt.
func (n *Notification) MarkAsRead(t time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = &t
}

// DedupKey identifies the notification a given event produces for a given
// recipient.
func DedupKey(eventType, actorID, targetID, recipient string) string {
	return strings.Join([]string{eventType, actorID, targetID, recipient}, "|")
}

package notifications

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDuplicate            = errors.New("notification already exists")
	ErrMissingID            = errors.New("notification id is required")
	ErrMissingRecipient     = errors.New("notification recipient is required")
	ErrMissingMessage       = errors.New("notification message is required")
	ErrInvalidType          = errors.New("invalid notification type")
	ErrInvalidRefModel      = errors.New("invalid notification reference model")
	ErrScoreOutOfRange      = errors.New("relevance score out of range")
	ErrStorageFailed        = errors.New("notification storage failed")
)

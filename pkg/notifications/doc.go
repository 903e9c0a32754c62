// Package notifications holds the notification model together with its
// storage and the manager that persists and delivers notifications.
//
// The Manager always persists first and delivers second. Delivery is best
// effort: a failed push is logged and the stored notification stays
// available for listing.
//
// Every notification created from a bus event carries a deduplication key
// built from the event and the recipient. Storage refuses a second
// notification with the same key and reports ErrDuplicate, so replaying an
// event never produces a second record or a second push.
//
//	storage := notifications.NewMongoStorage(db)
//	_ = storage.EnsureIndexes(ctx)
//	manager := notifications.NewManager(storage, bridge)
//
//	n, err := manager.Send(ctx, notifications.Notification{
//		Recipient: "u2",
//		Sender:    "u1",
//		Type:      notifications.TypeFollow,
//		Message:   "alice started following you",
//		DedupKey:  notifications.DedupKey("user.follow", "u1", "u2", "u2"),
//	})
package notifications

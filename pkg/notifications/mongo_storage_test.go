package notifications

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pulsemongo "github.com/dmitrymomot/pulse/pkg/mongo"
)

func newMongoStorage(t *testing.T) *MongoStorage {
	t.Helper()

	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL not set")
	}

	ctx := context.Background()
	client, err := pulsemongo.New(ctx, pulsemongo.Config{
		ConnectionURL:  url,
		ConnectTimeout: 5 * time.Second,
		RetryAttempts:  1,
		MaxPoolSize:    10,
	})
	require.NoError(t, err)

	db := client.Database("pulse_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := NewMongoStorage(db)
	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func TestMongoStorage_Lifecycle(t *testing.T) {
	s := newMongoStorage(t)
	ctx := context.Background()

	n := followNotification()
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, s.Create(ctx, n))

	dup := n
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, s.Create(ctx, dup), ErrDuplicate)

	got, err := s.Get(ctx, "u2", n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.Message, got.Message)
	assert.Equal(t, n.DedupKey, got.DedupKey)

	unread, err := s.CountUnread(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	read, changed, err := s.MarkRead(ctx, "u2", n.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	again, changed, err := s.MarkRead(ctx, "u2", n.ID)
	require.NoError(t, err)
	assert.False(t, changed, "already read")
	assert.True(t, again.IsRead)

	_, changed, err = s.MarkRead(ctx, "u2", "missing")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.False(t, changed)

	items, err := s.List(ctx, "u2", ListOptions{Types: []Type{TypeFollow}, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	count, err := s.MarkAllRead(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, count)
}

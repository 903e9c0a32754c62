package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRooms_PublishCountsMembers(t *testing.T) {
	t.Parallel()

	r := NewRooms()
	a, b, c := newConn("a", 4), newConn("b", 4), newConn("c", 4)
	r.join(a, "user:1")
	r.join(b, "user:1")
	r.join(c, "user:2")

	assert.Equal(t, 2, r.publish("user:1", []byte("x")))
	assert.Equal(t, 1, r.publish("user:2", []byte("y")))
	assert.Equal(t, 0, r.publish("user:3", []byte("z")))

	assert.Equal(t, []byte("x"), <-a.send)
	assert.Equal(t, []byte("x"), <-b.send)
	assert.Equal(t, []byte("y"), <-c.send)
	assert.Equal(t, 2, r.Count())
}

func TestRooms_SlowConnectionIsDropped(t *testing.T) {
	t.Parallel()

	r := NewRooms()
	slow := newConn("slow", 1)
	fast := newConn("fast", 8)
	r.join(slow, "room")
	r.join(slow, "other")
	r.join(fast, "room")

	assert.Equal(t, 2, r.publish("room", []byte("1")))
	assert.Equal(t, 1, r.publish("room", []byte("2")))

	assert.Equal(t, 1, r.Size("room"))
	assert.Zero(t, r.Size("other"), "dropped connection leaves every room")
	select {
	case <-slow.done:
	default:
		t.Fatal("slow connection was not closed")
	}
	assert.False(t, slow.enqueue([]byte("3")))
}

func TestRooms_RemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	r := NewRooms()
	c := newConn("a", 1)
	r.join(c, "room")
	r.remove(c)
	r.remove(c)
	assert.Zero(t, r.Size("room"))
	assert.Zero(t, r.Count())
}

func TestUserRoom(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user:42", UserRoom("42"))
}

func TestStringArg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42", stringArg([]byte(`"42"`), "userId"))
	assert.Equal(t, "42", stringArg([]byte(`{"userId":"42"}`), "userId"))
	assert.Equal(t, "42", stringArg([]byte(`{"userId":42}`), "userId"))
	assert.Empty(t, stringArg([]byte(`{"other":"x"}`), "userId"))
	assert.Empty(t, stringArg(nil, "userId"))
}

package realtime

import "sync"

// conn is one client-port connection as seen by the room registry.
type conn struct {
	id    string
	send  chan []byte
	done  chan struct{}
	once  sync.Once
	rooms map[string]struct{} // guarded by Rooms.mu
}

func newConn(id string, buffer int) *conn {
	return &conn{
		id:    id,
		send:  make(chan []byte, max(buffer, 1)),
		done:  make(chan struct{}),
		rooms: make(map[string]struct{}),
	}
}

// enqueue queues msg without blocking. It reports false when the connection
// is gone or its buffer is full.
func (c *conn) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *conn) close() {
	c.once.Do(func() { close(c.done) })
}

// Rooms tracks which connections are in which room. Publishing never blocks
// on a connection: one whose buffer is full is removed and closed.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]map[*conn]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[string]map[*conn]struct{})}
}

func (r *Rooms) join(c *conn, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*conn]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// remove takes c out of every room and closes it.
func (r *Rooms) remove(c *conn) {
	r.mu.Lock()
	for room := range c.rooms {
		if members, ok := r.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(r.rooms, room)
			}
		}
	}
	clear(c.rooms)
	r.mu.Unlock()

	c.close()
}

// publish queues msg for every member of room and returns how many accepted it.
func (r *Rooms) publish(room string, msg []byte) int {
	var slow []*conn
	delivered := 0

	r.mu.RLock()
	for c := range r.rooms[room] {
		if c.enqueue(msg) {
			delivered++
		} else {
			slow = append(slow, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range slow {
		r.remove(c)
	}
	return delivered
}

// Size returns the number of connections in room.
func (r *Rooms) Size(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Count returns the number of non-empty rooms.
func (r *Rooms) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

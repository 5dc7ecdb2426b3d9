package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mklatt/ontrack/internal/session"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 16),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// Broadcaster fans session snapshots out to connected dashboard clients.
// Publishes are throttled so a burst of renders coalesces into one frame.
type Broadcaster struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	throttle time.Duration

	flushMu    sync.Mutex
	pending    *session.Snapshot
	flushTimer *time.Timer

	latestMu sync.RWMutex
	latest   *session.Snapshot
}

func NewBroadcaster(throttle time.Duration) *Broadcaster {
	if throttle <= 0 {
		throttle = 100 * time.Millisecond
	}
	return &Broadcaster{
		clients:  make(map[*client]bool),
		throttle: throttle,
	}
}

// AddClient registers a connection and immediately sends it the latest
// snapshot, if any.
func (b *Broadcaster) AddClient(conn *websocket.Conn) *client {
	c := newClient(conn)

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	if snap := b.Latest(); snap != nil {
		data, err := json.Marshal(Message{Type: MsgSnapshot, Payload: SnapshotPayload{Session: *snap}})
		if err == nil {
			select {
			case c.send <- data:
			default:
				// Client too slow; it will catch up on the next publish.
			}
		}
	}

	return c
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

// Latest returns the most recently published snapshot, or nil.
func (b *Broadcaster) Latest() *session.Snapshot {
	b.latestMu.RLock()
	defer b.latestMu.RUnlock()
	return b.latest
}

// Publish queues a snapshot for broadcast. Later publishes within the
// throttle window replace earlier ones.
func (b *Broadcaster) Publish(snap session.Snapshot) {
	b.latestMu.Lock()
	b.latest = &snap
	b.latestMu.Unlock()

	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	b.pending = &snap
	if b.flushTimer == nil {
		b.flushTimer = time.AfterFunc(b.throttle, b.flush)
	}
}

func (b *Broadcaster) flush() {
	b.flushMu.Lock()
	snap := b.pending
	b.pending = nil
	b.flushTimer = nil
	b.flushMu.Unlock()

	if snap == nil {
		return
	}

	data, err := json.Marshal(Message{Type: MsgSnapshot, Payload: SnapshotPayload{Session: *snap}})
	if err != nil {
		log.Printf("[ws] broadcast marshal error: %v", err)
		return
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			// Client can't keep up, disconnect it.
			log.Printf("[ws] client too slow, disconnecting")
			b.RemoveClient(c)
		}
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

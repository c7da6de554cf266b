package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// sendBuffer is the per-connection outbound queue. A connection that
	// falls this far behind is shut down instead of blocking pushes.
	sendBuffer = 16

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// socket is the subset of *websocket.Conn the hub uses. Tests substitute a
// fake.
type socket interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// connection is one authenticated websocket of one user. Its lifecycle is
// Connecting (before register) -> Authenticated (registered in the hub) ->
// Disconnected (unregistered, socket closed); the last state is terminal.
type connection struct {
	hub    *Hub
	sock   socket
	userID string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newConnection(hub *Hub, sock socket, userID string) *connection {
	return &connection{
		hub:    hub,
		sock:   sock,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// enqueue places a payload on the outbound queue without blocking. Returns
// false when the connection is gone or its buffer is full.
func (c *connection) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// shutdown transitions the connection to Disconnected: it is removed from
// the registry and the socket is closed. Safe to call more than once.
func (c *connection) shutdown() {
	c.once.Do(func() {
		close(c.done)
		c.hub.unregister(c)
		_ = c.sock.Close()
	})
}

// writePump drains the outbound queue onto the socket and keeps the
// connection alive with pings. Runs on its own goroutine per connection so a
// slow client only ever stalls itself.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump consumes inbound frames until the peer disconnects. The protocol
// is push-only; reads exist to observe the close and service pongs.
func (c *connection) readPump() {
	defer c.shutdown()
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.sock.ReadMessage(); err != nil {
			return
		}
	}
}

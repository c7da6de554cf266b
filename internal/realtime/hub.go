// Package realtime fans capability events out to a user's live websocket
// connections. The registry is process-local and ephemeral: it is rebuilt
// empty on restart, and delivery is advisory. Durable notification is the
// dispatcher's job.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"salonhub/internal/domain"
)

var _ domain.RealtimePusher = (*Hub)(nil)

// Hub is the connection registry: a forward map from user id to that user's
// live connections and a reverse map from connection to user id. All access
// goes through one mutex; registry operations are O(1) amortized.
type Hub struct {
	mu     sync.RWMutex
	byUser map[string]map[*connection]struct{}
	users  map[*connection]string
	logger *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		byUser: make(map[string]map[*connection]struct{}),
		users:  make(map[*connection]string),
		logger: logger,
	}
}

// Push delivers ev to every live connection of the user. With zero
// registered connections it is a silent no-op. Delivery is per-connection
// buffered and never blocks: a connection whose buffer is full is dropped
// rather than allowed to stall the caller.
func (h *Hub) Push(userID string, ev domain.CapabilityEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal capability event", "error", err)
		return
	}

	h.mu.RLock()
	conns := make([]*connection, 0, len(h.byUser[userID]))
	for c := range h.byUser[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if !c.enqueue(payload) {
			h.logger.Warn("dropping stalled realtime connection", "user_id", userID)
			c.shutdown()
		}
	}
}

// ConnectionCount returns the number of live connections of a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// register adds an authenticated connection to both map directions.
func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.byUser[c.userID]
	if !ok {
		set = make(map[*connection]struct{})
		h.byUser[c.userID] = set
	}
	set[c] = struct{}{}
	h.users[c] = c.userID
}

// unregister removes a connection from both map directions, dropping the
// user entry when its last connection goes.
func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID, ok := h.users[c]
	if !ok {
		return
	}
	delete(h.users, c)
	set := h.byUser[userID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.byUser, userID)
	}
}

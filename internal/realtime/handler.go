package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// Authenticator validates a handshake credential and returns the user id it
// belongs to. A non-nil error rejects the connection before registration.
type Authenticator func(credential string) (userID string, err error)

// Handler upgrades HTTP requests to websockets and runs the connection
// lifecycle against a Hub.
type Handler struct {
	hub      *Hub
	auth     Authenticator
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler. checkOrigin follows the server's
// CORS policy; nil allows same-origin only (the gorilla default).
func NewHandler(hub *Hub, auth Authenticator, checkOrigin func(r *http.Request) bool) *Handler {
	return &Handler{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP performs the handshake. The credential arrives in the "token"
// query parameter (browsers cannot set headers on websocket dials). A failed
// credential tears the connection down without it ever reaching the registry.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	credential := r.URL.Query().Get("token")
	userID, err := h.auth(credential)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	c := newConnection(h.hub, sock, userID)
	h.hub.register(c)
	go c.writePump()
	go c.readPump()
}

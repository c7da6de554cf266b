package domain

import "time"

// Capability event types pushed to live connections.
const (
	EventGranted = "granted"
	EventRevoked = "revoked"
)

// CapabilityEvent is the payload fanned out to a user's live connections
// after a capability change. Delivery is advisory: there is no queue and no
// retry, durable notification goes through the NotificationDispatcher.
type CapabilityEvent struct {
	Type            string    `json:"type"`
	CapabilityCodes []string  `json:"capabilityCodes"`
	TenantID        string    `json:"tenantId"`
	TenantName      string    `json:"tenantName,omitempty"`
	At              time.Time `json:"at"`
	ActorID         string    `json:"actorId,omitempty"`
}

// RealtimePusher fans an event out to the user's currently-registered
// connections. Pushing to a user with no connections is a silent no-op.
type RealtimePusher interface {
	Push(userID string, ev CapabilityEvent)
}

package domain

import "context"

// Notification kinds understood by the dispatcher.
const (
	NotifyCapabilityGranted = "capability_granted"
	NotifyCapabilityRevoked = "capability_revoked"
)

// NotificationContext carries the who/what of a capability change. The
// dispatcher formats it for delivery; this core treats the content as final.
type NotificationContext struct {
	UserID          string
	TenantID        string
	TenantName      string
	Capabilities    []string // human-readable labels
	CapabilityCodes []string
	ActorID         string
}

// NotificationOptions are delivery hints (channels, priority) passed through
// to the dispatcher opaquely.
type NotificationOptions struct {
	Channels []string
	Priority string
}

// NotificationDispatcher delivers a structured notification. Delivery channel
// and formatting live outside this core; callers treat a dispatch failure as
// best-effort and never let it affect ledger state.
type NotificationDispatcher interface {
	Notify(ctx context.Context, kind string, nc NotificationContext, opts NotificationOptions) error
}

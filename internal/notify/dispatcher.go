// Package notify provides the in-process notification dispatcher binding.
// Delivery channels (push, email, in-app) live outside this service; the
// default dispatcher records the structured call so a delivery worker can be
// attached without touching the capability core.
package notify

import (
	"context"
	"log/slog"

	"salonhub/internal/domain"
)

var _ domain.NotificationDispatcher = (*LogDispatcher)(nil)

// LogDispatcher implements domain.NotificationDispatcher by emitting a
// structured log record per notification.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Notify records the notification.
func (d *LogDispatcher) Notify(ctx context.Context, kind string, nc domain.NotificationContext, opts domain.NotificationOptions) error {
	d.logger.InfoContext(ctx, "notification dispatched",
		"kind", kind,
		"user_id", nc.UserID,
		"tenant_id", nc.TenantID,
		"tenant_name", nc.TenantName,
		"capabilities", nc.Capabilities,
		"codes", nc.CapabilityCodes,
		"actor_id", nc.ActorID,
		"channels", opts.Channels,
		"priority", opts.Priority,
	)
	return nil
}

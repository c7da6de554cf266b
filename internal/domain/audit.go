package domain

import "time"

// AuditEntry records a capability-changing operation. Writes are best-effort
// from the caller's point of view but the entry itself is never rewritten.
type AuditEntry struct {
	ID           int64
	ActorID      string
	Action       string // "GRANT", "REVOKE", "CLEANUP"
	TenantID     string
	EmploymentID string
	Detail       string
	RequestID    string
	CreatedAt    time.Time
}

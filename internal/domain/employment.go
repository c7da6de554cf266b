package domain

import "time"

// Employment links a user to a tenant (salon). Its lifecycle is owned by the
// staff-management side of the platform; the capability core only reads it.
type Employment struct {
	ID              string
	UserID          string
	TenantID        string
	IsActive        bool
	TerminationDate *time.Time
	CreatedAt       time.Time
}

// Eligible reports whether the employment can receive capability grants:
// active, and not terminated as of now.
func (e *Employment) Eligible(now time.Time) bool {
	if !e.IsActive {
		return false
	}
	return e.TerminationDate == nil || e.TerminationDate.After(now)
}

// EmploymentSummary is a per-tenant row used when resolving a principal's
// default tenant: the count of active capabilities drives the tie-break.
type EmploymentSummary struct {
	EmploymentID       string
	TenantID           string
	ActiveCapabilities int64
	CreatedAt          time.Time
}

package domain

import "context"

// CapabilityLedger is the append-only store of capability-grant records.
// It carries no business rules: typed CRUD and set-membership queries only.
// Uniqueness of the active row per (employment, tenant, code) tuple is
// enforced at the storage layer.
type CapabilityLedger interface {
	// Insert appends a new active grant row. A storage-level conflict on the
	// active-row projection surfaces as a ConflictError.
	Insert(ctx context.Context, g *CapabilityGrant) (*CapabilityGrant, error)

	// HasActive reports whether an active row exists for the tuple.
	HasActive(ctx context.Context, employmentID, tenantID, code string) (bool, error)

	// ListActiveForEmployment returns the active grants of one employment.
	ListActiveForEmployment(ctx context.Context, employmentID, tenantID string) ([]CapabilityGrant, error)

	// ListActive returns every currently-active grant row (sweep input).
	ListActive(ctx context.Context) ([]CapabilityGrant, error)

	// ListForEmployment returns the full grant history (active and revoked)
	// of one employment, newest first.
	ListForEmployment(ctx context.Context, employmentID, tenantID string, page PageRequest) ([]CapabilityGrant, int64, error)

	// RevokeActive flips the matching active rows to inactive, stamping the
	// revocation fields, and returns the rows that were actually flipped.
	// Rows with no active match are skipped silently. The grant fields of the
	// flipped rows are left untouched.
	RevokeActive(ctx context.Context, employmentID, tenantID string, codes []string, revokedBy string, notes *string) ([]CapabilityGrant, error)
}

// EmploymentRepository reads (and, for the staff surface, writes) the
// user-to-tenant employment records the capability rules depend on.
type EmploymentRepository interface {
	Create(ctx context.Context, e *Employment) (*Employment, error)
	Find(ctx context.Context, employmentID, tenantID string) (*Employment, error)
	FindByID(ctx context.Context, employmentID string) (*Employment, error)
	ListForUser(ctx context.Context, userID string) ([]Employment, error)
	// ListSummariesForUser returns one row per tenant the user is actively
	// employed in, with the count of active capability grants per employment.
	ListSummariesForUser(ctx context.Context, userID string) ([]EmploymentSummary, error)
	Terminate(ctx context.Context, employmentID, tenantID string) error
}

// TenantRepository reads and writes salons, and resolves the owning tenant
// of related entities for the resolver's entity-derived fallback step.
type TenantRepository interface {
	Create(ctx context.Context, t *Tenant) (*Tenant, error)
	Get(ctx context.Context, id string) (*Tenant, error)
	List(ctx context.Context, page PageRequest) ([]Tenant, int64, error)
	// OwningTenant returns the tenant id that owns the entity of the given
	// kind, or a NotFoundError.
	OwningTenant(ctx context.Context, entityKind, entityID string) (string, error)
}

// AuditRepository appends and lists audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	ListForTenant(ctx context.Context, tenantID string, page PageRequest) ([]AuditEntry, int64, error)
}

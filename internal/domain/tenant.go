package domain

import "time"

// Tenant is a salon: an isolated organizational unit whose data and
// permissions are scoped separately from other tenants. OwnerUserID is the
// granting authority for capability changes within the tenant.
type Tenant struct {
	ID          string
	Name        string
	OwnerUserID string
	CreatedAt   time.Time
}

// Entity kinds the tenant-context resolver can derive an owning tenant from.
const (
	EntityAppointment = "appointment"
	EntityService     = "service"
	EntityCustomer    = "customer"
	EntityExpense     = "expense"
)

// DefaultEntityOrder is the priority order in which entity-derived candidates
// are tried during tenant resolution. The order is configuration, not a rule:
// callers may supply their own.
var DefaultEntityOrder = []string{
	EntityAppointment,
	EntityService,
	EntityCustomer,
	EntityExpense,
}

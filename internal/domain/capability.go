package domain

import "time"

// Capability code constants. The set is closed: a code outside this list is
// rejected at the service boundary, never stored.
const (
	CapManageAppointments = "MANAGE_APPOINTMENTS"
	CapManageCustomers    = "MANAGE_CUSTOMERS"
	CapManageServices     = "MANAGE_SERVICES"
	CapManageEmployees    = "MANAGE_EMPLOYEES"
	CapManageExpenses     = "MANAGE_EXPENSES"
	CapViewReports        = "VIEW_REPORTS"
	CapManageInventory    = "MANAGE_INVENTORY"
	CapManageSalon        = "MANAGE_SALON"
)

// SystemActor is the actor recorded on grants revoked by the consistency
// sweep rather than by a user.
const SystemActor = "system"

// capabilityLabels maps each code to its human-readable label, used in
// notification payloads.
var capabilityLabels = map[string]string{
	CapManageAppointments: "Manage appointments",
	CapManageCustomers:    "Manage customers",
	CapManageServices:     "Manage services",
	CapManageEmployees:    "Manage employees",
	CapManageExpenses:     "Manage expenses",
	CapViewReports:        "View reports",
	CapManageInventory:    "Manage inventory",
	CapManageSalon:        "Manage salon settings",
}

// AllCapabilityCodes returns the closed capability enumeration in a stable order.
func AllCapabilityCodes() []string {
	return []string{
		CapManageAppointments,
		CapManageCustomers,
		CapManageServices,
		CapManageEmployees,
		CapManageExpenses,
		CapViewReports,
		CapManageInventory,
		CapManageSalon,
	}
}

// ValidCapabilityCode reports whether code is a member of the closed enumeration.
func ValidCapabilityCode(code string) bool {
	_, ok := capabilityLabels[code]
	return ok
}

// CapabilityLabel returns the human-readable label for a code. Unknown codes
// fall back to the code itself.
func CapabilityLabel(code string) string {
	if label, ok := capabilityLabels[code]; ok {
		return label
	}
	return code
}

// CapabilityGrant is one row of the append-only capability ledger. A grant is
// created active and is only ever mutated to flip IsActive off and stamp the
// revocation fields; re-granting after a revoke creates a new row.
type CapabilityGrant struct {
	ID           string
	EmploymentID string // employee-in-tenant reference
	TenantID     string
	Code         string
	GrantedBy    string
	GrantedAt    time.Time
	RevokedBy    *string
	RevokedAt    *time.Time
	IsActive     bool
	Notes        *string
	Metadata     map[string]string
}

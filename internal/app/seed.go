package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"salonhub/internal/db/repository"
	"salonhub/internal/domain"
	"salonhub/internal/service"
)

// seedDev populates the database with a demo salon, an owner, a stylist with
// a starter capability set, and a handful of entities the tenant resolver can
// derive context from. Idempotent — checks if data already exists.
func seedDev(
	ctx context.Context,
	writeDB *sql.DB,
	tenants *service.TenantService,
	employments *service.EmploymentService,
	capabilities *service.CapabilityService,
	logger *slog.Logger,
) error {
	existing, _, err := tenants.List(ctx, domain.PageRequest{MaxResults: 1})
	if err != nil {
		return fmt.Errorf("check existing tenants: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	salon, err := tenants.Create(ctx, "Demo Salon", "owner-demo")
	if err != nil {
		return fmt.Errorf("create demo salon: %w", err)
	}

	stylist, err := employments.Hire(ctx, salon.ID, "stylist-demo", "owner-demo")
	if err != nil {
		return fmt.Errorf("hire stylist: %w", err)
	}

	_, err = capabilities.Grant(ctx, salon.ID, stylist.ID,
		[]string{domain.CapManageAppointments, domain.CapManageCustomers},
		"owner-demo", nil, nil)
	if err != nil {
		return fmt.Errorf("grant starter capabilities: %w", err)
	}

	tenantRepo := repository.NewTenantRepo(writeDB)
	for kind, id := range map[string]string{
		domain.EntityAppointment: "appt-demo",
		domain.EntityService:     "svc-demo",
		domain.EntityCustomer:    "cust-demo",
	} {
		if err := tenantRepo.InsertEntity(ctx, kind, id, salon.ID); err != nil {
			return fmt.Errorf("seed %s: %w", kind, err)
		}
	}

	logger.Info("seeded demo data", "tenant_id", salon.ID, "employment_id", stylist.ID)
	return nil
}

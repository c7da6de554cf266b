package service

import (
	"context"

	"salonhub/internal/domain"
)

// EmploymentService manages staff records. The capability core reads these;
// terminations feed the cleanup sweep.
type EmploymentService struct {
	employments domain.EmploymentRepository
	tenants     domain.TenantRepository
	audit       domain.AuditRepository
}

// NewEmploymentService creates an EmploymentService.
func NewEmploymentService(employments domain.EmploymentRepository, tenants domain.TenantRepository, audit domain.AuditRepository) *EmploymentService {
	return &EmploymentService{employments: employments, tenants: tenants, audit: audit}
}

// Hire creates an active employment of userID in the tenant. Only the tenant
// owner may hire.
func (s *EmploymentService) Hire(ctx context.Context, tenantID, userID, actorID string) (*domain.Employment, error) {
	if userID == "" {
		return nil, domain.ErrValidation("user id is required")
	}

	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if actorID != tenant.OwnerUserID {
		return nil, domain.ErrAccessDenied("only the owner of %s can hire staff", tenant.Name)
	}

	emp, err := s.employments.Create(ctx, &domain.Employment{
		UserID:   userID,
		TenantID: tenantID,
		IsActive: true,
	})
	if err != nil {
		return nil, err
	}

	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		ActorID:      actorID,
		Action:       "HIRE",
		TenantID:     tenantID,
		EmploymentID: emp.ID,
		Detail:       userID,
		RequestID:    domain.RequestIDFromContext(ctx),
	})
	return emp, nil
}

// Terminate deactivates an employment and stamps its termination date. The
// next cleanup sweep revokes any capabilities it still holds.
func (s *EmploymentService) Terminate(ctx context.Context, tenantID, employmentID, actorID string) error {
	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	if actorID != tenant.OwnerUserID {
		return domain.ErrAccessDenied("only the owner of %s can terminate staff", tenant.Name)
	}

	if err := s.employments.Terminate(ctx, employmentID, tenantID); err != nil {
		return err
	}

	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		ActorID:      actorID,
		Action:       "TERMINATE",
		TenantID:     tenantID,
		EmploymentID: employmentID,
		RequestID:    domain.RequestIDFromContext(ctx),
	})
	return nil
}

// ListForUser returns all employments of a user.
func (s *EmploymentService) ListForUser(ctx context.Context, userID string) ([]domain.Employment, error) {
	return s.employments.ListForUser(ctx, userID)
}

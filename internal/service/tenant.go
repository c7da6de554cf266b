package service

import (
	"context"

	"salonhub/internal/domain"
)

// TenantService manages salons.
type TenantService struct {
	tenants domain.TenantRepository
	audit   domain.AuditRepository
}

// NewTenantService creates a TenantService.
func NewTenantService(tenants domain.TenantRepository, audit domain.AuditRepository) *TenantService {
	return &TenantService{tenants: tenants, audit: audit}
}

// Create registers a new salon owned by ownerUserID.
func (s *TenantService) Create(ctx context.Context, name, ownerUserID string) (*domain.Tenant, error) {
	if name == "" {
		return nil, domain.ErrValidation("tenant name is required")
	}
	if ownerUserID == "" {
		return nil, domain.ErrValidation("owner user id is required")
	}

	tenant, err := s.tenants.Create(ctx, &domain.Tenant{Name: name, OwnerUserID: ownerUserID})
	if err != nil {
		return nil, err
	}

	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		ActorID:   ownerUserID,
		Action:    "TENANT_CREATE",
		TenantID:  tenant.ID,
		Detail:    name,
		RequestID: domain.RequestIDFromContext(ctx),
	})
	return tenant, nil
}

// Get returns the tenant with the given id.
func (s *TenantService) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.tenants.Get(ctx, id)
}

// List returns a paginated list of tenants.
func (s *TenantService) List(ctx context.Context, page domain.PageRequest) ([]domain.Tenant, int64, error) {
	return s.tenants.List(ctx, page)
}

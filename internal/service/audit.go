package service

import (
	"context"

	"salonhub/internal/domain"
)

// AuditService exposes the audit trail read surface.
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService creates an AuditService.
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// ListForTenant returns a tenant's audit entries, newest first.
func (s *AuditService) ListForTenant(ctx context.Context, tenantID string, page domain.PageRequest) ([]domain.AuditEntry, int64, error) {
	return s.repo.ListForTenant(ctx, tenantID, page)
}

package repository

import (
	"context"
	"database/sql"

	"salonhub/internal/domain"
)

var _ domain.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implements domain.AuditRepository using SQLite.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert appends an audit entry.
func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (actor_id, action, tenant_id, employment_id, detail, request_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ActorID, e.Action, e.TenantID, e.EmploymentID, e.Detail, e.RequestID)
	return err
}

// ListForTenant returns a tenant's audit entries, newest first.
func (r *AuditRepo) ListForTenant(ctx context.Context, tenantID string, page domain.PageRequest) ([]domain.AuditEntry, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM audit_log WHERE tenant_id = ?
	`, tenantID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, actor_id, action, tenant_id, employment_id, detail, request_id, created_at
		FROM audit_log
		WHERE tenant_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, tenantID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TenantID, &e.EmploymentID, &e.Detail, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

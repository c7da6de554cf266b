package repository

import (
	"context"
	"database/sql"
	"time"

	"salonhub/internal/domain"
)

var _ domain.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implements domain.TenantRepository using SQLite.
type TenantRepo struct {
	db *sql.DB
}

// NewTenantRepo creates a new TenantRepo.
func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

// Create inserts a new tenant.
func (r *TenantRepo) Create(ctx context.Context, t *domain.Tenant) (*domain.Tenant, error) {
	id := t.ID
	if id == "" {
		id = domain.NewID()
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, owner_user_id, created_at)
		VALUES (?, ?, ?, ?)
	`, id, t.Name, t.OwnerUserID, createdAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	out := *t
	out.ID = id
	out.CreatedAt = createdAt
	return &out, nil
}

// Get returns the tenant with the given id.
func (r *TenantRepo) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, owner_user_id, created_at FROM tenants WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.OwnerUserID, &t.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &t, nil
}

// List returns a paginated list of tenants.
func (r *TenantRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Tenant, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, owner_user_id, created_at FROM tenants
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerUserID, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// entityTables maps resolver entity kinds to their backing tables. The map is
// the closed set of kinds OwningTenant accepts; anything else is NotFound.
var entityTables = map[string]string{
	domain.EntityAppointment: "appointments",
	domain.EntityService:     "services",
	domain.EntityCustomer:    "customers",
	domain.EntityExpense:     "expenses",
}

// OwningTenant returns the tenant owning the entity of the given kind.
func (r *TenantRepo) OwningTenant(ctx context.Context, entityKind, entityID string) (string, error) {
	table, ok := entityTables[entityKind]
	if !ok {
		return "", domain.ErrNotFound("unknown entity kind %q", entityKind)
	}

	var tenantID string
	err := r.db.QueryRowContext(ctx, `SELECT tenant_id FROM `+table+` WHERE id = ?`, entityID).Scan(&tenantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", domain.ErrNotFound("%s %s not found", entityKind, entityID)
		}
		return "", err
	}
	return tenantID, nil
}

// InsertEntity records a related entity's tenant ownership. Used by seeding
// and tests; full entity records are managed elsewhere.
func (r *TenantRepo) InsertEntity(ctx context.Context, entityKind, entityID, tenantID string) error {
	table, ok := entityTables[entityKind]
	if !ok {
		return domain.ErrValidation("unknown entity kind %q", entityKind)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO `+table+` (id, tenant_id) VALUES (?, ?)
	`, entityID, tenantID)
	return mapDBError(err)
}

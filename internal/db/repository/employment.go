package repository

import (
	"context"
	"database/sql"
	"time"

	"salonhub/internal/domain"
)

var _ domain.EmploymentRepository = (*EmploymentRepo)(nil)

// EmploymentRepo implements domain.EmploymentRepository using SQLite.
type EmploymentRepo struct {
	db *sql.DB
}

// NewEmploymentRepo creates a new EmploymentRepo.
func NewEmploymentRepo(db *sql.DB) *EmploymentRepo {
	return &EmploymentRepo{db: db}
}

const employmentColumns = `id, user_id, tenant_id, is_active, termination_date, created_at`

// Create inserts a new employment record.
func (r *EmploymentRepo) Create(ctx context.Context, e *domain.Employment) (*domain.Employment, error) {
	id := e.ID
	if id == "" {
		id = domain.NewID()
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var termination sql.NullTime
	if e.TerminationDate != nil {
		termination = sql.NullTime{Time: *e.TerminationDate, Valid: true}
	}
	active := 0
	if e.IsActive {
		active = 1
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employments (id, user_id, tenant_id, is_active, termination_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, e.UserID, e.TenantID, active, termination, createdAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	out := *e
	out.ID = id
	out.CreatedAt = createdAt
	return &out, nil
}

// Find returns the employment with the given id scoped to a tenant.
func (r *EmploymentRepo) Find(ctx context.Context, employmentID, tenantID string) (*domain.Employment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+employmentColumns+` FROM employments
		WHERE id = ? AND tenant_id = ?
	`, employmentID, tenantID)
	return scanEmployment(row)
}

// FindByID returns the employment with the given id regardless of tenant.
func (r *EmploymentRepo) FindByID(ctx context.Context, employmentID string) (*domain.Employment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+employmentColumns+` FROM employments WHERE id = ?
	`, employmentID)
	return scanEmployment(row)
}

// ListForUser returns all employments of a user, newest first.
func (r *EmploymentRepo) ListForUser(ctx context.Context, userID string) ([]domain.Employment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+employmentColumns+` FROM employments
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Employment
	for rows.Next() {
		e, err := scanEmploymentRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// ListSummariesForUser returns one row per active employment of the user with
// its active capability count. The aggregate join makes the default-tenant
// tie-break a single query, at a read cost proportional to membership count.
func (r *EmploymentRepo) ListSummariesForUser(ctx context.Context, userID string) ([]domain.EmploymentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.tenant_id, COUNT(g.id), e.created_at
		FROM employments e
		LEFT JOIN capability_grants g
			ON g.employment_id = e.id AND g.is_active = 1
		WHERE e.user_id = ? AND e.is_active = 1
		GROUP BY e.id, e.tenant_id, e.created_at
		ORDER BY COUNT(g.id) DESC, e.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmploymentSummary
	for rows.Next() {
		var s domain.EmploymentSummary
		if err := rows.Scan(&s.EmploymentID, &s.TenantID, &s.ActiveCapabilities, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Terminate deactivates an employment and stamps its termination date.
func (r *EmploymentRepo) Terminate(ctx context.Context, employmentID, tenantID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE employments SET is_active = 0, termination_date = ?
		WHERE id = ? AND tenant_id = ? AND is_active = 1
	`, time.Now().UTC(), employmentID, tenantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("active employment %s not found in tenant %s", employmentID, tenantID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployment(row rowScanner) (*domain.Employment, error) {
	e, err := scanEmploymentRows(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return e, nil
}

func scanEmploymentRows(row rowScanner) (*domain.Employment, error) {
	var (
		e           domain.Employment
		active      int64
		termination sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.TenantID, &active, &termination, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.IsActive = active == 1
	if termination.Valid {
		t := termination.Time
		e.TerminationDate = &t
	}
	return &e, nil
}

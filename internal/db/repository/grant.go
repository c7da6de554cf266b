package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"salonhub/internal/domain"
)

var _ domain.CapabilityLedger = (*GrantRepo)(nil)

// GrantRepo implements domain.CapabilityLedger using SQLite. The table is
// append-only: rows are inserted active and only ever updated to flip
// is_active off and stamp the revocation fields.
type GrantRepo struct {
	db *sql.DB
}

// NewGrantRepo creates a new GrantRepo.
func NewGrantRepo(db *sql.DB) *GrantRepo {
	return &GrantRepo{db: db}
}

const grantColumns = `id, employment_id, tenant_id, capability_code, granted_by, granted_at,
	revoked_by, revoked_at, is_active, notes, metadata`

// Insert appends a new active grant row. The partial unique index on the
// active tuple turns a concurrent duplicate insert into a ConflictError.
func (r *GrantRepo) Insert(ctx context.Context, g *domain.CapabilityGrant) (*domain.CapabilityGrant, error) {
	id := g.ID
	if id == "" {
		id = domain.NewID()
	}
	grantedAt := g.GrantedAt
	if grantedAt.IsZero() {
		grantedAt = time.Now().UTC()
	}

	metadata := g.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal grant metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO capability_grants (id, employment_id, tenant_id, capability_code,
			granted_by, granted_at, is_active, notes, metadata)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
	`, id, g.EmploymentID, g.TenantID, g.Code, g.GrantedBy, grantedAt, nullString(g.Notes), string(metaJSON))
	if err != nil {
		return nil, mapDBError(err)
	}

	out := *g
	out.ID = id
	out.GrantedAt = grantedAt
	out.IsActive = true
	out.Metadata = metadata
	return &out, nil
}

// HasActive reports whether an active row exists for the tuple.
func (r *GrantRepo) HasActive(ctx context.Context, employmentID, tenantID, code string) (bool, error) {
	var cnt int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM capability_grants
		WHERE employment_id = ? AND tenant_id = ? AND capability_code = ? AND is_active = 1
	`, employmentID, tenantID, code).Scan(&cnt)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// ListActiveForEmployment returns the active grants of one employment.
func (r *GrantRepo) ListActiveForEmployment(ctx context.Context, employmentID, tenantID string) ([]domain.CapabilityGrant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+grantColumns+` FROM capability_grants
		WHERE employment_id = ? AND tenant_id = ? AND is_active = 1
		ORDER BY granted_at
	`, employmentID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// ListActive returns every currently-active grant row.
func (r *GrantRepo) ListActive(ctx context.Context) ([]domain.CapabilityGrant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+grantColumns+` FROM capability_grants
		WHERE is_active = 1
		ORDER BY granted_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// ListForEmployment returns the full grant history of one employment, newest first.
func (r *GrantRepo) ListForEmployment(ctx context.Context, employmentID, tenantID string, page domain.PageRequest) ([]domain.CapabilityGrant, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM capability_grants
		WHERE employment_id = ? AND tenant_id = ?
	`, employmentID, tenantID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+grantColumns+` FROM capability_grants
		WHERE employment_id = ? AND tenant_id = ?
		ORDER BY granted_at DESC
		LIMIT ? OFFSET ?
	`, employmentID, tenantID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	grants, err := scanGrants(rows)
	if err != nil {
		return nil, 0, err
	}
	return grants, total, nil
}

// RevokeActive flips matching active rows to inactive and returns the rows
// that were flipped, with the revocation fields stamped. Select-then-update
// runs in one transaction on the single-connection write pool, so the
// returned set is exactly the set that was flipped.
func (r *GrantRepo) RevokeActive(ctx context.Context, employmentID, tenantID string, codes []string, revokedBy string, notes *string) ([]domain.CapabilityGrant, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	args := []interface{}{employmentID, tenantID}
	for _, c := range codes {
		args = append(args, c)
	}
	rows, err := tx.QueryContext(ctx, `
		SELECT `+grantColumns+` FROM capability_grants
		WHERE employment_id = ? AND tenant_id = ? AND capability_code IN (`+placeholders(len(codes))+`) AND is_active = 1
	`, args...)
	if err != nil {
		return nil, err
	}
	matched, err := scanGrants(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, tx.Commit()
	}

	revokedAt := time.Now().UTC()
	updateArgs := []interface{}{revokedBy, revokedAt, nullString(notes)}
	for _, g := range matched {
		updateArgs = append(updateArgs, g.ID)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE capability_grants
		SET is_active = 0, revoked_by = ?, revoked_at = ?,
			notes = COALESCE(?, notes)
		WHERE id IN (`+placeholders(len(matched))+`)
	`, updateArgs...)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	for i := range matched {
		matched[i].IsActive = false
		matched[i].RevokedBy = &revokedBy
		at := revokedAt
		matched[i].RevokedAt = &at
		if notes != nil {
			matched[i].Notes = notes
		}
	}
	return matched, nil
}

func scanGrants(rows *sql.Rows) ([]domain.CapabilityGrant, error) {
	var out []domain.CapabilityGrant
	for rows.Next() {
		var (
			g         domain.CapabilityGrant
			revokedBy sql.NullString
			revokedAt sql.NullTime
			notes     sql.NullString
			metaJSON  string
			active    int64
		)
		if err := rows.Scan(&g.ID, &g.EmploymentID, &g.TenantID, &g.Code, &g.GrantedBy, &g.GrantedAt,
			&revokedBy, &revokedAt, &active, &notes, &metaJSON); err != nil {
			return nil, err
		}
		g.RevokedBy = stringPtr(revokedBy)
		if revokedAt.Valid {
			t := revokedAt.Time
			g.RevokedAt = &t
		}
		g.Notes = stringPtr(notes)
		g.IsActive = active == 1
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &g.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal grant metadata: %w", err)
			}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

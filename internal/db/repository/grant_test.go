package repository

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "salonhub/internal/db"
	"salonhub/internal/domain"
)

func setupGrantTest(t *testing.T) (*GrantRepo, *EmploymentRepo, *TenantRepo) {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewGrantRepo(writeDB), NewEmploymentRepo(writeDB), NewTenantRepo(writeDB)
}

func seedEmployment(t *testing.T, tenants *TenantRepo, employments *EmploymentRepo) (*domain.Tenant, *domain.Employment) {
	t.Helper()
	ctx := context.Background()

	tenant, err := tenants.Create(ctx, &domain.Tenant{Name: "Salon One", OwnerUserID: "owner-1"})
	require.NoError(t, err)

	emp, err := employments.Create(ctx, &domain.Employment{
		UserID:   "stylist-1",
		TenantID: tenant.ID,
		IsActive: true,
	})
	require.NoError(t, err)
	return tenant, emp
}

func TestGrantRepo_InsertAndHasActive(t *testing.T) {
	grants, employments, tenants := setupGrantTest(t)
	tenant, emp := seedEmployment(t, tenants, employments)
	ctx := context.Background()

	g, err := grants.Insert(ctx, &domain.CapabilityGrant{
		EmploymentID: emp.ID,
		TenantID:     tenant.ID,
		Code:         domain.CapManageAppointments,
		GrantedBy:    "owner-1",
		Metadata:     map[string]string{"source": "test"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.True(t, g.IsActive)
	assert.False(t, g.GrantedAt.IsZero())

	active, err := grants.HasActive(ctx, emp.ID, tenant.ID, domain.CapManageAppointments)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = grants.HasActive(ctx, emp.ID, tenant.ID, domain.CapManageExpenses)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestGrantRepo_DuplicateActiveTupleConflicts(t *testing.T) {
	grants, employments, tenants := setupGrantTest(t)
	tenant, emp := seedEmployment(t, tenants, employments)
	ctx := context.Background()

	_, err := grants.Insert(ctx, &domain.CapabilityGrant{
		EmploymentID: emp.ID, TenantID: tenant.ID,
		Code: domain.CapManageCustomers, GrantedBy: "owner-1",
	})
	require.NoError(t, err)

	_, err = grants.Insert(ctx, &domain.CapabilityGrant{
		EmploymentID: emp.ID, TenantID: tenant.ID,
		Code: domain.CapManageCustomers, GrantedBy: "owner-1",
	})
	require.Error(t, err)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestGrantRepo_RevokeActiveKeepsHistory(t *testing.T) {
	grants, employments, tenants := setupGrantTest(t)
	tenant, emp := seedEmployment(t, tenants, employments)
	ctx := context.Background()

	_, err := grants.Insert(ctx, &domain.CapabilityGrant{
		EmploymentID: emp.ID, TenantID: tenant.ID,
		Code: domain.CapManageAppointments, GrantedBy: "owner-1",
	})
	require.NoError(t, err)
	_, err = grants.Insert(ctx, &domain.CapabilityGrant{
		EmploymentID: emp.ID, TenantID: tenant.ID,
		Code: domain.CapManageCustomers, GrantedBy: "owner-1",
	})
	require.NoError(t, err)

	flipped, err := grants.RevokeActive(ctx, emp.ID, tenant.ID, []string{domain.CapManageAppointments}, "owner-1", nil)
	require.NoError(t, err)
	require.Len(t, flipped, 1)
	assert.Equal(t, domain.CapManageAppointments, flipped[0].Code)
	assert.False(t, flipped[0].IsActive)
	require.NotNil(t, flipped[0].RevokedBy)
	assert.Equal(t, "owner-1", *flipped[0].RevokedBy)
	assert.NotNil(t, flipped[0].RevokedAt)

	// The revoked row stays in history; nothing is deleted.
	history, total, err := grants.ListForEmployment(ctx, emp.ID, tenant.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, history, 2)

	// Only the untouched grant is still active.
	active, err := grants.ListActiveForEmployment(ctx, emp.ID, tenant.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.CapManageCustomers, active[0].Code)
}

func TestGrantRepo_RevokeActiveNoMatches(t *testing.T) {
	grants, employments, tenants := setupGrantTest(t)
	tenant, emp := seedEmployment(t, tenants, employments)
	ctx := context.Background()

	flipped, err := grants.RevokeActive(ctx, emp.ID, tenant.ID, []string{domain.CapManageSalon}, "owner-1", nil)
	require.NoError(t, err)
	assert.Empty(t, flipped)
}

func TestGrantRepo_RegrantAfterRevoke(t *testing.T) {
	grants, employments, tenants := setupGrantTest(t)
	tenant, emp := seedEmployment(t, tenants, employments)
	ctx := context.Background()

	_, err := grants.Insert(ctx, &domain.CapabilityGrant{
		EmploymentID: emp.ID, TenantID: tenant.ID,
		Code: domain.CapViewReports, GrantedBy: "owner-1",
	})
	require.NoError(t, err)

	_, err = grants.RevokeActive(ctx, emp.ID, tenant.ID, []string{domain.CapViewReports}, "owner-1", nil)
	require.NoError(t, err)

	// The partial index only covers active rows, so a fresh grant of the
	// same code is allowed after revocation.
	_, err = grants.Insert(ctx, &domain.CapabilityGrant{
		EmploymentID: emp.ID, TenantID: tenant.ID,
		Code: domain.CapViewReports, GrantedBy: "owner-1",
	})
	require.NoError(t, err)

	history, total, err := grants.ListForEmployment(ctx, emp.ID, tenant.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, history, 2)
}

func TestGrantRepo_ListForEmploymentPagination(t *testing.T) {
	grants, employments, tenants := setupGrantTest(t)
	tenant, emp := seedEmployment(t, tenants, employments)
	ctx := context.Background()

	for _, code := range []string{domain.CapManageAppointments, domain.CapManageCustomers, domain.CapManageServices} {
		_, err := grants.Insert(ctx, &domain.CapabilityGrant{
			EmploymentID: emp.ID, TenantID: tenant.ID, Code: code, GrantedBy: "owner-1",
		})
		require.NoError(t, err)
	}

	page, total, err := grants.ListForEmployment(ctx, emp.ID, tenant.ID, domain.PageRequest{MaxResults: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	rest, _, err := grants.ListForEmployment(ctx, emp.ID, tenant.ID, domain.PageRequest{MaxResults: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

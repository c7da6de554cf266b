package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "salonhub/internal/db"
	"salonhub/internal/db/repository"
	"salonhub/internal/domain"
	"salonhub/internal/service"
)

type tenantCtxFixture struct {
	resolver    *service.TenantContextResolver
	tenants     *repository.TenantRepo
	employments *repository.EmploymentRepo
}

func newTenantCtxFixture(t *testing.T) *tenantCtxFixture {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	tenants := repository.NewTenantRepo(writeDB)
	employments := repository.NewEmploymentRepo(writeDB)
	return &tenantCtxFixture{
		resolver: service.NewTenantContextResolver(
			tenants, employments, nil,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		),
		tenants:     tenants,
		employments: employments,
	}
}

// serve runs a request through a chi router wired the way the server wires
// TenantContext and returns the resolution the handler observed. Path-scoped
// routes attach the middleware inside the {tenantID} subrouter: the parent
// router populates the param when it matches the subtree, so it is visible
// there but not in middleware installed ahead of routing.
func (f *tenantCtxFixture) serve(t *testing.T, req *http.Request) service.Resolution {
	t.Helper()
	var res service.Resolution
	var ok bool

	handler := func(w http.ResponseWriter, r *http.Request) {
		res, ok = ResolutionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	r := chi.NewRouter()
	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Use(TenantContext(f.resolver))
		r.HandleFunc("/appointments", handler)
	})
	r.With(TenantContext(f.resolver)).HandleFunc("/appointments", handler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok, "resolution missing from context")
	return res
}

func TestTenantContext_PathParam(t *testing.T) {
	f := newTenantCtxFixture(t)
	tenantID := domain.NewID()

	req := httptest.NewRequest(http.MethodGet, "/tenants/"+tenantID+"/appointments", nil)
	res := f.serve(t, req)
	assert.Equal(t, service.Resolution{TenantID: tenantID, Source: service.SourcePath}, res)
}

func TestTenantContext_PathParamWinsOverMembership(t *testing.T) {
	f := newTenantCtxFixture(t)
	ctx := context.Background()

	// The caller has an active membership elsewhere; the tenant named in the
	// path must still win over that fallback.
	home, err := f.tenants.Create(ctx, &domain.Tenant{Name: "Home Salon", OwnerUserID: "owner-1"})
	require.NoError(t, err)
	_, err = f.employments.Create(ctx, &domain.Employment{
		UserID: "stylist-1", TenantID: home.ID, IsActive: true,
	})
	require.NoError(t, err)

	var res service.Resolution
	r := chi.NewRouter()
	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Use(TenantContext(f.resolver))
		r.Get("/appointments", func(w http.ResponseWriter, r *http.Request) {
			res, _ = ResolutionFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	})

	pathTenant := domain.NewID()
	req := httptest.NewRequest(http.MethodGet, "/tenants/"+pathTenant+"/appointments", nil)
	req = req.WithContext(domain.WithPrincipal(req.Context(), domain.ContextPrincipal{UserID: "stylist-1"}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.Resolution{TenantID: pathTenant, Source: service.SourcePath}, res)
}

func TestTenantContext_BodyPeekRestoresBody(t *testing.T) {
	f := newTenantCtxFixture(t)
	tenantID := domain.NewID()
	body := `{"tenantId":"` + tenantID + `","title":"Cut and color"}`

	var seenBody string
	r := chi.NewRouter()
	r.With(TenantContext(f.resolver)).Post("/appointments", func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seenBody = string(raw)
		res, _ := ResolutionFromContext(r.Context())
		assert.Equal(t, service.Resolution{TenantID: tenantID, Source: service.SourceBody}, res)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// The handler sees the body exactly as sent despite the peek.
	assert.Equal(t, body, seenBody)
}

func TestTenantContext_QueryParam(t *testing.T) {
	f := newTenantCtxFixture(t)
	tenantID := domain.NewID()

	req := httptest.NewRequest(http.MethodGet, "/appointments?tenant_id="+tenantID, nil)
	res := f.serve(t, req)
	assert.Equal(t, service.Resolution{TenantID: tenantID, Source: service.SourceQuery}, res)
}

func TestTenantContext_EntityQueryParam(t *testing.T) {
	f := newTenantCtxFixture(t)
	ctx := context.Background()

	tenant, err := f.tenants.Create(ctx, &domain.Tenant{Name: "Salon One", OwnerUserID: "owner-1"})
	require.NoError(t, err)
	apptID := domain.NewID()
	require.NoError(t, f.tenants.InsertEntity(ctx, domain.EntityAppointment, apptID, tenant.ID))

	req := httptest.NewRequest(http.MethodGet, "/appointments?appointment_id="+apptID, nil)
	res := f.serve(t, req)
	assert.Equal(t, tenant.ID, res.TenantID)
	assert.Equal(t, service.EntitySource(domain.EntityAppointment), res.Source)
}

func TestTenantContext_NonJSONBodyIgnored(t *testing.T) {
	f := newTenantCtxFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments", strings.NewReader("tenantId=whatever"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := f.serve(t, req)
	assert.Equal(t, service.SourceNotFound, res.Source)
}

func TestTenantContext_NeverFailsRequest(t *testing.T) {
	f := newTenantCtxFixture(t)

	// Malformed JSON body, no other candidates: request still reaches the
	// handler with a not-found resolution.
	req := httptest.NewRequest(http.MethodGet, "/appointments", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	res := f.serve(t, req)
	assert.Equal(t, service.SourceNotFound, res.Source)
}

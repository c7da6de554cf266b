// Package api provides HTTP handlers for the salon capability REST API.
package api

import (
	"github.com/go-chi/chi/v5"

	"salonhub/internal/domain"
	"salonhub/internal/middleware"
	"salonhub/internal/service"
)

// Handler bundles the services behind the REST surface.
type Handler struct {
	tenants      *service.TenantService
	employments  *service.EmploymentService
	capabilities *service.CapabilityService
	audit        *service.AuditService
	resolver     *service.TenantContextResolver
}

// NewHandler creates a Handler with all required service dependencies.
func NewHandler(
	tenants *service.TenantService,
	employments *service.EmploymentService,
	capabilities *service.CapabilityService,
	audit *service.AuditService,
	resolver *service.TenantContextResolver,
) *Handler {
	return &Handler{
		tenants:      tenants,
		employments:  employments,
		capabilities: capabilities,
		audit:        audit,
		resolver:     resolver,
	}
}

// Routes mounts the API onto a chi router. The caller wraps the mount point
// in auth middleware; capability routes add their own guard requirements on
// top. Tenant-context resolution is attached per subrouter rather than at the
// mount point: chi runs router-level middleware before matching that router's
// own patterns, so the tenantID path param only exists once the {tenantID}
// subtree has been entered.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/capabilities", h.listCapabilityCatalog)
	r.Get("/users/me/employments", h.listMyEmployments)
	r.With(middleware.TenantContext(h.resolver)).Get("/context/tenant", h.resolveTenantContext)

	r.Route("/tenants", func(r chi.Router) {
		r.Post("/", h.createTenant)
		r.Get("/", h.listTenants)

		r.Route("/{tenantID}", func(r chi.Router) {
			r.Use(middleware.TenantContext(h.resolver))
			r.Get("/", h.getTenant)

			r.With(middleware.Guard(h.capabilities, middleware.RequireTenantOwner())).
				Post("/employments", h.hireEmployee)
			r.With(middleware.Guard(h.capabilities, middleware.RequireTenantOwner())).
				Delete("/employments/{employmentID}", h.terminateEmployment)

			r.Route("/employments/{employmentID}/capabilities", func(r chi.Router) {
				r.With(middleware.Guard(h.capabilities, middleware.RequireTenantOwner())).
					Post("/", h.grantCapabilities)
				r.With(middleware.Guard(h.capabilities, middleware.RequireTenantOwner())).
					Delete("/", h.revokeCapabilities)
				r.Get("/", h.listGrants)
				r.Get("/check", h.checkPermission)
				r.Post("/validate", h.validateForGrant)
			})

			r.With(middleware.Guard(h.capabilities, middleware.RequireCapability(domain.CapViewReports))).
				Get("/audit", h.listAudit)
		})
	})

	r.Post("/admin/cleanup", h.runCleanup)
}

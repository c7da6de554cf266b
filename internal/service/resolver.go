package service

import (
	"context"
	"log/slog"

	"salonhub/internal/domain"
)

// Source names where a resolved tenant id came from. Part of the resolver's
// contract: callers rely on it for audit and debugging.
type Source string

// Resolution sources, in chain priority order.
const (
	SourcePath              Source = "path"
	SourceBody              Source = "body"
	SourceQuery             Source = "query"
	SourceDefaultMembership Source = "default_membership"
	SourceNotFound          Source = "not_found"
)

// EntitySource names an entity-derived resolution, e.g. "entity_appointment".
func EntitySource(kind string) Source {
	return Source("entity_" + kind)
}

// RequestContext is the bag of candidate identifiers the HTTP-binding layer
// extracts before the core is invoked: explicit tenant ids from the path,
// body, and query string, plus foreign keys of related entities the tenant
// can be derived from.
type RequestContext struct {
	PathTenantID  string
	BodyTenantID  string
	QueryTenantID string
	// EntityRefs maps an entity kind (domain.EntityAppointment, ...) to a
	// candidate entity id.
	EntityRefs map[string]string
}

// Resolution is the resolver's result. TenantID is empty when Source is
// SourceNotFound.
type Resolution struct {
	TenantID string
	Source   Source
}

// TenantContextResolver determines which tenant an inbound operation
// concerns. It is read-only: resolving twice against unchanged state yields
// the same result and source tag.
type TenantContextResolver struct {
	tenants     domain.TenantRepository
	employments domain.EmploymentRepository
	entityOrder []string
	logger      *slog.Logger
}

// NewTenantContextResolver creates a resolver. entityOrder controls the
// priority of entity-derived lookups; nil uses domain.DefaultEntityOrder.
func NewTenantContextResolver(tenants domain.TenantRepository, employments domain.EmploymentRepository, entityOrder []string, logger *slog.Logger) *TenantContextResolver {
	if entityOrder == nil {
		entityOrder = domain.DefaultEntityOrder
	}
	return &TenantContextResolver{
		tenants:     tenants,
		employments: employments,
		entityOrder: entityOrder,
		logger:      logger,
	}
}

// Resolve walks the fallback chain and returns the first hit:
//
//  1. path-scoped tenant id
//  2. body-supplied tenant id
//  3. query-string tenant id
//  4. tenant derived from a related entity, tried in entityOrder
//  5. the principal's default employment (single tenant, else the one with
//     the most active capabilities, ties broken by most recent employment)
//
// Explicit candidates only count when syntactically well-formed; lookup
// failures in steps 4 and 5 are swallowed and the chain continues. Resolve
// never returns an error: the only failure mode is SourceNotFound.
func (r *TenantContextResolver) Resolve(ctx context.Context, rc RequestContext, principal domain.ContextPrincipal) Resolution {
	if domain.ValidID(rc.PathTenantID) {
		return Resolution{TenantID: rc.PathTenantID, Source: SourcePath}
	}
	if domain.ValidID(rc.BodyTenantID) {
		return Resolution{TenantID: rc.BodyTenantID, Source: SourceBody}
	}
	if domain.ValidID(rc.QueryTenantID) {
		return Resolution{TenantID: rc.QueryTenantID, Source: SourceQuery}
	}

	for _, kind := range r.entityOrder {
		entityID := rc.EntityRefs[kind]
		if !domain.ValidID(entityID) {
			continue
		}
		tenantID, err := r.tenants.OwningTenant(ctx, kind, entityID)
		if err != nil {
			r.logger.Debug("entity tenant lookup failed", "kind", kind, "entity_id", entityID, "error", err)
			continue
		}
		return Resolution{TenantID: tenantID, Source: EntitySource(kind)}
	}

	if principal.UserID != "" {
		summaries, err := r.employments.ListSummariesForUser(ctx, principal.UserID)
		if err != nil {
			r.logger.Debug("default membership lookup failed", "user_id", principal.UserID, "error", err)
		} else if len(summaries) > 0 {
			// Summaries arrive ordered by active capability count, then by
			// most recent employment, so the head is the default tenant.
			return Resolution{TenantID: summaries[0].TenantID, Source: SourceDefaultMembership}
		}
	}

	return Resolution{Source: SourceNotFound}
}

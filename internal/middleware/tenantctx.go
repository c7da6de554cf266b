package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"salonhub/internal/domain"
	"salonhub/internal/service"
)

type resolutionKey struct{}

// ResolutionFromContext extracts the tenant resolution stored by TenantContext.
func ResolutionFromContext(ctx context.Context) (service.Resolution, bool) {
	res, ok := ctx.Value(resolutionKey{}).(service.Resolution)
	return res, ok
}

// bodyCandidates are the loosely-typed body fields the resolver may consult,
// mapped to where they land in the request context bag.
var bodyEntityKeys = map[string]string{
	"appointmentId": domain.EntityAppointment,
	"serviceId":     domain.EntityService,
	"customerId":    domain.EntityCustomer,
	"expenseId":     domain.EntityExpense,
}

var queryEntityKeys = map[string]string{
	"appointment_id": domain.EntityAppointment,
	"service_id":     domain.EntityService,
	"customer_id":    domain.EntityCustomer,
	"expense_id":     domain.EntityExpense,
}

// TenantContext returns a middleware that gathers candidate identifiers from
// the request (path, JSON body, query string, related-entity references),
// resolves the tenant the operation concerns, and stores the resolution in
// the request context. Resolution never fails the request: routes that need
// a tenant reject SourceNotFound themselves.
func TenantContext(resolver *service.TenantContextResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := service.RequestContext{
				PathTenantID:  chi.URLParam(r, "tenantID"),
				QueryTenantID: r.URL.Query().Get("tenant_id"),
				EntityRefs:    map[string]string{},
			}

			for key, kind := range queryEntityKeys {
				if v := r.URL.Query().Get(key); v != "" {
					rc.EntityRefs[kind] = v
				}
			}

			peekBodyCandidates(r, &rc)

			principal, _ := domain.PrincipalFromContext(r.Context())
			res := resolver.Resolve(r.Context(), rc, principal)

			ctx := context.WithValue(r.Context(), resolutionKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// peekBodyCandidates reads identifier fields out of a JSON body and restores
// the body for the downstream handler. Bodies that are absent, oversized, or
// not JSON objects are ignored.
func peekBodyCandidates(r *http.Request, rc *service.RequestContext) {
	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return
	}

	const peekLimit = 1 << 20
	raw, err := io.ReadAll(io.LimitReader(r.Body, peekLimit))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return
	}

	if v := stringField(fields, "tenantId"); v != "" {
		rc.BodyTenantID = v
	}
	for key, kind := range bodyEntityKeys {
		if _, seen := rc.EntityRefs[kind]; seen {
			continue
		}
		if v := stringField(fields, key); v != "" {
			rc.EntityRefs[kind] = v
		}
	}
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

package middleware

import (
	"encoding/json"
	"net/http"

	"salonhub/internal/domain"
	"salonhub/internal/service"
)

// Requirement is a tagged access rule evaluated by the Guard dispatcher
// before a handler runs. Rules are declared at route-wiring time instead of
// as ad hoc checks inside handlers.
type Requirement struct {
	kind string
	code string
}

// RequireCapability requires the caller to hold an active grant of code in
// the resolved tenant.
func RequireCapability(code string) Requirement {
	return Requirement{kind: "capability", code: code}
}

// RequireTenantOwner requires the caller to be the resolved tenant's owner.
func RequireTenantOwner() Requirement {
	return Requirement{kind: "owner"}
}

// Guard returns a middleware that evaluates a Requirement against the
// authenticated principal and the resolved tenant. The tenant owner passes
// capability requirements implicitly: ownership is the granting authority,
// so it subsumes every capability it could grant.
func Guard(caps *service.CapabilityService, req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, ok := domain.PrincipalFromContext(ctx)
			if !ok {
				writeGuardError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			res, ok := ResolutionFromContext(ctx)
			if !ok || res.Source == service.SourceNotFound {
				writeGuardError(w, http.StatusBadRequest, "could not determine the salon this operation concerns")
				return
			}

			owner, err := caps.IsTenantOwner(ctx, principal.UserID, res.TenantID)
			if err != nil {
				writeGuardError(w, http.StatusNotFound, err.Error())
				return
			}

			switch req.kind {
			case "owner":
				if !owner {
					writeGuardError(w, http.StatusForbidden, "only the salon owner may perform this operation")
					return
				}
			case "capability":
				if owner {
					break
				}
				emp, err := caps.EmploymentForUser(ctx, principal.UserID, res.TenantID)
				if err != nil {
					writeGuardError(w, http.StatusForbidden, "you are not employed in this salon")
					return
				}
				allowed, err := caps.HasPermission(ctx, emp.ID, res.TenantID, req.code)
				if err != nil {
					writeGuardError(w, http.StatusInternalServerError, "permission check failed")
					return
				}
				if !allowed {
					writeGuardError(w, http.StatusForbidden, "missing capability "+req.code)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeGuardError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

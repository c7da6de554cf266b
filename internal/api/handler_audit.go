package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonhub/internal/domain"
	"salonhub/internal/middleware"
)

type auditEntryResponse struct {
	ID           int64     `json:"id"`
	ActorID      string    `json:"actorId"`
	Action       string    `json:"action"`
	TenantID     string    `json:"tenantId"`
	EmploymentID string    `json:"employmentId,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	RequestID    string    `json:"requestId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	entries, total, err := h.audit.ListForTenant(r.Context(), tenantID, pageFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = auditEntryResponse{
			ID:           e.ID,
			ActorID:      e.ActorID,
			Action:       e.Action,
			TenantID:     e.TenantID,
			EmploymentID: e.EmploymentID,
			Detail:       e.Detail,
			RequestID:    e.RequestID,
			CreatedAt:    e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": items,
		"total":   total,
	})
}

// resolveTenantContext reports which tenant the current request resolved to
// and through which source. Useful for clients debugging ambiguous requests.
func (h *Handler) resolveTenantContext(w http.ResponseWriter, r *http.Request) {
	res, ok := middleware.ResolutionFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrValidation("no tenant context available"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tenantId": res.TenantID,
		"source":   string(res.Source),
	})
}

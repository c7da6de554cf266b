package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonhub/internal/domain"
)

type tenantResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID string    `json:"ownerUserId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func tenantToResponse(t *domain.Tenant) tenantResponse {
	return tenantResponse{ID: t.ID, Name: t.Name, OwnerUserID: t.OwnerUserID, CreatedAt: t.CreatedAt}
}

func (h *Handler) createTenant(w http.ResponseWriter, r *http.Request) {
	principal, _ := domain.PrincipalFromContext(r.Context())

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}

	tenant, err := h.tenants.Create(r.Context(), body.Name, principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tenantToResponse(tenant))
}

func (h *Handler) getTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.Get(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenantToResponse(tenant))
}

func (h *Handler) listTenants(w http.ResponseWriter, r *http.Request) {
	tenants, total, err := h.tenants.List(r.Context(), pageFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]tenantResponse, len(tenants))
	for i := range tenants {
		items[i] = tenantToResponse(&tenants[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tenants": items,
		"total":   total,
	})
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonhub/internal/domain"
)

type capabilityDescriptor struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type grantResponse struct {
	ID           string            `json:"id"`
	EmploymentID string            `json:"employmentId"`
	TenantID     string            `json:"tenantId"`
	Code         string            `json:"code"`
	GrantedBy    string            `json:"grantedBy"`
	GrantedAt    time.Time         `json:"grantedAt"`
	RevokedBy    *string           `json:"revokedBy,omitempty"`
	RevokedAt    *time.Time        `json:"revokedAt,omitempty"`
	IsActive     bool              `json:"isActive"`
	Notes        *string           `json:"notes,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func grantToResponse(g *domain.CapabilityGrant) grantResponse {
	return grantResponse{
		ID:           g.ID,
		EmploymentID: g.EmploymentID,
		TenantID:     g.TenantID,
		Code:         g.Code,
		GrantedBy:    g.GrantedBy,
		GrantedAt:    g.GrantedAt,
		RevokedBy:    g.RevokedBy,
		RevokedAt:    g.RevokedAt,
		IsActive:     g.IsActive,
		Notes:        g.Notes,
		Metadata:     g.Metadata,
	}
}

func grantsToResponse(grants []domain.CapabilityGrant) []grantResponse {
	out := make([]grantResponse, len(grants))
	for i := range grants {
		out[i] = grantToResponse(&grants[i])
	}
	return out
}

func (h *Handler) listCapabilityCatalog(w http.ResponseWriter, r *http.Request) {
	codes := domain.AllCapabilityCodes()
	items := make([]capabilityDescriptor, len(codes))
	for i, code := range codes {
		items[i] = capabilityDescriptor{Code: code, Label: domain.CapabilityLabel(code)}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"capabilities": items})
}

func (h *Handler) grantCapabilities(w http.ResponseWriter, r *http.Request) {
	principal, _ := domain.PrincipalFromContext(r.Context())
	tenantID := chi.URLParam(r, "tenantID")
	employmentID := chi.URLParam(r, "employmentID")

	var body struct {
		Codes    []string          `json:"codes"`
		Notes    *string           `json:"notes"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}
	if len(body.Codes) == 0 {
		writeValidationError(w, "codes must not be empty")
		return
	}

	created, err := h.capabilities.Grant(r.Context(), tenantID, employmentID, body.Codes, principal.UserID, body.Notes, body.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"granted": grantsToResponse(created),
		"skipped": len(body.Codes) - len(created),
	})
}

func (h *Handler) revokeCapabilities(w http.ResponseWriter, r *http.Request) {
	principal, _ := domain.PrincipalFromContext(r.Context())
	tenantID := chi.URLParam(r, "tenantID")
	employmentID := chi.URLParam(r, "employmentID")

	var body struct {
		Codes []string `json:"codes"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}
	if len(body.Codes) == 0 {
		writeValidationError(w, "codes must not be empty")
		return
	}

	if err := h.capabilities.Revoke(r.Context(), tenantID, employmentID, body.Codes, principal.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGrants(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	employmentID := chi.URLParam(r, "employmentID")

	grants, total, err := h.capabilities.ListGrants(r.Context(), tenantID, employmentID, pageFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"grants": grantsToResponse(grants),
		"total":  total,
	})
}

func (h *Handler) checkPermission(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	employmentID := chi.URLParam(r, "employmentID")

	code := r.URL.Query().Get("code")
	if !domain.ValidCapabilityCode(code) {
		writeValidationError(w, "unknown capability code")
		return
	}

	ok, err := h.capabilities.HasPermission(r.Context(), employmentID, tenantID, code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"code": code, "granted": ok})
}

func (h *Handler) validateForGrant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	employmentID := chi.URLParam(r, "employmentID")

	v, err := h.capabilities.ValidateForGrant(r.Context(), tenantID, employmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  v.Valid,
		"reason": v.Reason,
	})
}

func (h *Handler) runCleanup(w http.ResponseWriter, r *http.Request) {
	report, err := h.capabilities.CleanupOrphanedPermissions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cleanedCount": report.CleanedCount,
		"reasons":      report.Reasons,
	})
}

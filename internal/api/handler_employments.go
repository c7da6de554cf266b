package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonhub/internal/domain"
)

type employmentResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	TenantID        string     `json:"tenantId"`
	IsActive        bool       `json:"isActive"`
	TerminationDate *time.Time `json:"terminationDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func employmentToResponse(e *domain.Employment) employmentResponse {
	return employmentResponse{
		ID:              e.ID,
		UserID:          e.UserID,
		TenantID:        e.TenantID,
		IsActive:        e.IsActive,
		TerminationDate: e.TerminationDate,
		CreatedAt:       e.CreatedAt,
	}
}

func (h *Handler) hireEmployee(w http.ResponseWriter, r *http.Request) {
	principal, _ := domain.PrincipalFromContext(r.Context())
	tenantID := chi.URLParam(r, "tenantID")

	var body struct {
		UserID string `json:"userId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeValidationError(w, "invalid JSON body")
		return
	}

	emp, err := h.employments.Hire(r.Context(), tenantID, body.UserID, principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, employmentToResponse(emp))
}

func (h *Handler) terminateEmployment(w http.ResponseWriter, r *http.Request) {
	principal, _ := domain.PrincipalFromContext(r.Context())
	tenantID := chi.URLParam(r, "tenantID")
	employmentID := chi.URLParam(r, "employmentID")

	if err := h.employments.Terminate(r.Context(), tenantID, employmentID, principal.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMyEmployments(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrAccessDenied("authentication required"))
		return
	}

	emps, err := h.employments.ListForUser(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]employmentResponse, len(emps))
	for i := range emps {
		items[i] = employmentToResponse(&emps[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"employments": items})
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"salonhub/internal/domain"
)

// errorBody is the uniform error envelope.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := httpStatusFromDomainError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal detail stays in the logs.
		message = "internal server error"
	}
	writeJSON(w, status, errorBody{Code: status, Message: message})
}

func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: message})
}

// pageFromQuery extracts limit/offset pagination from max_results/page params.
func pageFromQuery(r *http.Request) domain.PageRequest {
	p := domain.PageRequest{}
	if v := r.URL.Query().Get("max_results"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.MaxResults = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Page = n
		}
	}
	return p
}

// decodeBody unmarshals a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close() //nolint:errcheck
	return json.NewDecoder(r.Body).Decode(v)
}

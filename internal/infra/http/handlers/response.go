package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/agency-leads/internal/usecase"
)

type ErrorResponse struct {
	Success       bool                      `json:"success"`
	Error         string                    `json:"error"`
	Code          string                    `json:"code,omitempty"`
	Fields        []usecase.ValidationError `json:"fields,omitempty"`
	CorrelationID string                    `json:"correlationId,omitempty"`
}

// InternalErrorResponse is the 500 body. It deliberately carries no success flag.
type InternalErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeUseCaseError maps a domain error to 400 (404 for NOT_FOUND) and anything else to 500.
// It reports whether the error was a client error.
func writeUseCaseError(w http.ResponseWriter, err error, correlationID string) bool {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		if de.Code == usecase.CodeNotFound {
			status = http.StatusNotFound
		}
		writeJSON(w, status, ErrorResponse{
			Success:       false,
			Error:         de.Message,
			Code:          de.Code,
			Fields:        de.Fields,
			CorrelationID: correlationID,
		})
		return true
	}

	writeJSON(w, http.StatusInternalServerError, InternalErrorResponse{
		Error:         "Internal server error",
		CorrelationID: correlationID,
	})
	return false
}

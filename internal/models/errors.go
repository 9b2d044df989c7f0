package models

import (
	"encoding/json"
	"net/http"

	"github.com/aitools/aitools/internal/tools"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Message: message,
		Code:    code,
	})
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// StatusForKind maps an invocation error kind to an HTTP status.
func StatusForKind(kind tools.ErrorKind) int {
	switch kind {
	case tools.KindValidation:
		return http.StatusBadRequest
	case tools.KindNotFound:
		return http.StatusNotFound
	case tools.KindUpstream:
		return http.StatusBadGateway
	case tools.KindExecution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

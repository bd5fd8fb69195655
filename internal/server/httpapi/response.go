package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkazakov/taskdeck/internal/common"
)

// errorBody is the wire shape of every error response. Only the message
// crosses the boundary; internal detail stays in the logs.
type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// writeServiceError maps service-layer sentinels onto stable status codes.
// Anything unrecognized collapses into a generic 500 so raw storage errors
// never leak to clients.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, common.ErrorDuplicateUser):
		writeError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, "No token provided")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusForbidden, "Invalid or expired token")
	case errors.Is(err, common.ErrorUserNotFound):
		writeError(w, http.StatusForbidden, "User not found")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

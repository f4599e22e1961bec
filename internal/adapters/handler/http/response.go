package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lunchvote/api/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeServiceError maps domain sentinel errors to HTTP statuses. Anything
// unrecognized is treated as a persistence failure and surfaced generically.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrVoteClosed),
		errors.Is(err, domain.ErrInvalidSelection):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrBadCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrRestaurantNotFound),
		errors.Is(err, domain.ErrVoteNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrActiveVoteExists),
		errors.Is(err, domain.ErrEmailTaken):
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = domain.ErrInternal.Error()
	}
	writeJSON(w, status, errorResponse{Error: message})
}

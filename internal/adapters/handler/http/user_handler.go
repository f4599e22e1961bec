package http

import (
	"net/http"

	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
		return
	}

	user, err := h.service.GetByID(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		writeServiceError(w, domain.ErrUserNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/ports"
)

type RestaurantHandler struct {
	service ports.RestaurantService
}

func NewRestaurantHandler(service ports.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{
		service: service,
	}
}

type menuRequest struct {
	Name        string `json:"name"`
	Price       *int64 `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
}

type restaurantRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Menus       []menuRequest `json:"menus"`
}

func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *RestaurantHandler) Menus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid restaurant id"})
		return
	}

	restaurant, err := h.service.Menus(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
		return
	}

	var req restaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	restaurant, err := h.service.Create(r.Context(), ports.CreateRestaurantInput{
		Name:        req.Name,
		Description: req.Description,
		Menus:       toMenuInputs(req.Menus),
		Caller:      caller,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, restaurant)
}

func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid restaurant id"})
		return
	}

	var req restaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	err = h.service.Update(r.Context(), ports.UpdateRestaurantInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Menus:       toMenuInputs(req.Menus),
		Caller:      caller,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "restaurant updated"})
}

func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid restaurant id"})
		return
	}

	if err := h.service.Delete(r.Context(), id, caller); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "restaurant deleted"})
}

func toMenuInputs(menus []menuRequest) []ports.MenuInput {
	inputs := make([]ports.MenuInput, 0, len(menus))
	for _, m := range menus {
		inputs = append(inputs, ports.MenuInput{
			Name:        m.Name,
			Price:       m.Price,
			Description: m.Description,
		})
	}
	return inputs
}

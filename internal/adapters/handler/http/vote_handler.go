package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type createVoteRequest struct {
	Title        string      `json:"title"`
	RestaurantID uuid.UUID   `json:"restaurantId"`
	MenuIDs      []uuid.UUID `json:"menuIds"`
	EndTime      string      `json:"endTime"`
}

type castBallotRequest struct {
	MenuID uuid.UUID `json:"menuId"`
}

func (h *VoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
		return
	}

	var req createVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	_, err := h.service.Create(r.Context(), ports.CreateVoteInput{
		Title:        req.Title,
		RestaurantID: req.RestaurantID,
		MenuIDs:      req.MenuIDs,
		EndTime:      req.EndTime,
		Caller:       caller,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "vote created"})
}

func (h *VoteHandler) Current(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
		return
	}

	vote, err := h.service.Current(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// No active vote renders as a JSON null, matching the client contract.
	writeJSON(w, http.StatusOK, vote)
}

func (h *VoteHandler) History(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
		return
	}

	limit := 0 // service default
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if raw == "all" {
			limit = -1
		} else {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer or 'all'"})
				return
			}
			limit = n
		}
	}

	votes, err := h.service.History(r.Context(), ports.VoteHistoryInput{
		UserID: caller.ID,
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, votes)
}

func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
		return
	}

	voteID, err := uuid.Parse(chi.URLParam(r, "voteId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vote id"})
		return
	}

	var req castBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	changed, err := h.service.Cast(r.Context(), ports.CastBallotInput{
		VoteID: voteID,
		MenuID: req.MenuID,
		UserID: caller.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message := "vote recorded"
	if changed {
		message = "vote changed"
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (h *VoteHandler) End(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
		return
	}

	voteID, err := uuid.Parse(chi.URLParam(r, "voteId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vote id"})
		return
	}

	if err := h.service.End(r.Context(), voteID, caller); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "vote closed"})
}

func (h *VoteHandler) Voters(w http.ResponseWriter, r *http.Request) {
	voteID, err := uuid.Parse(chi.URLParam(r, "voteId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vote id"})
		return
	}

	menuID, err := uuid.Parse(r.URL.Query().Get("menuId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid menu id"})
		return
	}

	voters, err := h.service.Voters(r.Context(), voteID, menuID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if voters == nil {
		voters = []domain.Voter{}
	}
	writeJSON(w, http.StatusOK, voters)
}

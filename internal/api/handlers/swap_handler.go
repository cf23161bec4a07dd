package handlers

import (
	"net/http"

	"github.com/skillswap/backend/internal/api/loaders"
	"github.com/skillswap/backend/internal/application/services"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

// SwapHandler handles swap request creation and lifecycle commands
type SwapHandler struct {
	swaps *services.SwapService
	users *services.UserService
	store *store.Store
}

// NewSwapHandler creates a new swap handler
func NewSwapHandler(swaps *services.SwapService, users *services.UserService, st *store.Store) *SwapHandler {
	return &SwapHandler{swaps: swaps, users: users, store: st}
}

type createSwapRequest struct {
	ToUserID     string `json:"to_user_id" validate:"required"`
	SkillOffered string `json:"skill_offered" validate:"required,max=80"`
	SkillWanted  string `json:"skill_wanted" validate:"required,max=80"`
	Message      string `json:"message" validate:"max=500"`
}

// CreateSwap handles POST /api/swaps
func (h *SwapHandler) CreateSwap(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req createSwapRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	swap, err := h.swaps.Create(r.Context(), entities.CreateSwapRequest{
		FromUserID:   actor,
		ToUserID:     req.ToUserID,
		SkillOffered: req.SkillOffered,
		SkillWanted:  req.SkillWanted,
		Message:      req.Message,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, swap)
}

// GetSwap handles GET /api/swaps/{id}. Participants and admins can read a
// swap together with its feedback.
func (h *SwapHandler) GetSwap(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	swap, err := h.swaps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if !swap.IsParticipant(actor) {
		if _, err := h.users.RequireAdmin(r.Context(), actor); err != nil {
			respondWithAppError(w, r, apperrors.NewUnauthorizedError("only participants can view this swap request"))
			return
		}
	}

	views := loaders.For(r.Context(), h.store).SwapViews(r.Context(), []*entities.SwapRequest{swap}, true)
	respondWithJSON(w, http.StatusOK, views[0])
}

// ApplyCommand handles POST /api/swaps/{id}/{action}
func (h *SwapHandler) ApplyCommand(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	action := r.PathValue("action")
	cmd, ok := entities.NewSwapCommand(action, r.PathValue("id"), actor)
	if !ok {
		respondWithError(w, http.StatusNotFound, "unknown swap action "+action)
		return
	}

	swap, err := h.swaps.Apply(r.Context(), cmd)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, swap)
}

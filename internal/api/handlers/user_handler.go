package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/skillswap/backend/internal/api/loaders"
	"github.com/skillswap/backend/internal/application/services"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	querysvc "github.com/skillswap/backend/internal/query/services"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

// UserHandler handles member profile, search and dashboard requests
type UserHandler struct {
	users    *services.UserService
	search   *querysvc.UserSearchService
	swaps    *services.SwapService
	feedback *services.FeedbackService
	store    *store.Store
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	users *services.UserService,
	search *querysvc.UserSearchService,
	swaps *services.SwapService,
	feedback *services.FeedbackService,
	st *store.Store,
) *UserHandler {
	return &UserHandler{
		users:    users,
		search:   search,
		swaps:    swaps,
		feedback: feedback,
		store:    st,
	}
}

type registerUserRequest struct {
	Name          string   `json:"name" validate:"required,max=120"`
	Email         string   `json:"email" validate:"required,email,max=254"`
	Location      string   `json:"location" validate:"max=120"`
	ProfilePhoto  string   `json:"profile_photo" validate:"omitempty,url"`
	SkillsOffered []string `json:"skills_offered" validate:"max=50,dive,max=80"`
	SkillsWanted  []string `json:"skills_wanted" validate:"max=50,dive,max=80"`
	Availability  []string `json:"availability"`
	IsPublic      *bool    `json:"is_public"`
}

type updateProfileRequest struct {
	Name          *string   `json:"name" validate:"omitempty,max=120"`
	Location      *string   `json:"location" validate:"omitempty,max=120"`
	ProfilePhoto  *string   `json:"profile_photo"`
	SkillsOffered *[]string `json:"skills_offered" validate:"omitempty,max=50,dive,max=80"`
	SkillsWanted  *[]string `json:"skills_wanted" validate:"omitempty,max=50,dive,max=80"`
	Availability  *[]string `json:"availability"`
	IsPublic      *bool     `json:"is_public"`
}

// Register handles POST /api/users. Accounts created here always get the
// user role.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), entities.RegisterUser{
		Name:          req.Name,
		Email:         req.Email,
		Location:      req.Location,
		ProfilePhoto:  req.ProfilePhoto,
		SkillsOffered: req.SkillsOffered,
		SkillsWanted:  req.SkillsWanted,
		Availability:  toAvailability(req.Availability),
		IsPublic:      req.IsPublic,
		Role:          entities.RoleUser,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

// Search handles GET /api/users/search
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := queryInt(r, "limit")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if limit < 0 || offset < 0 {
		respondWithError(w, http.StatusBadRequest, "limit and offset must not be negative")
		return
	}

	filters := querysvc.UserFilters{
		Location: query.Get("location"),
	}
	if raw := query.Get("min_rating"); raw != "" {
		minRating, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(minRating) || minRating < 0 || minRating > 5 {
			respondWithError(w, http.StatusBadRequest, "min_rating must be a number between 0 and 5")
			return
		}
		filters.MinRating = &minRating
	}
	if raw := query.Get("availability"); raw != "" {
		availability := entities.Availability(raw)
		if !availability.IsValid() {
			respondWithError(w, http.StatusBadRequest, "unknown availability "+strconv.Quote(raw))
			return
		}
		filters.Availability = availability
	}

	result := h.search.Search(r.Context(), querysvc.SearchParams{
		Query:   query.Get("q"),
		Filters: filters,
		Limit:   limit,
		Offset:  offset,
	})
	for i, u := range result.Users {
		result.Users[i] = publicView(u)
	}

	respondWithJSON(w, http.StatusOK, result)
}

// Suggest handles GET /api/users/suggest
func (h *UserHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	suggestions := h.search.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// GetUser handles GET /api/users/{id}. The owner and admins see the full
// record; anybody else only sees discoverable profiles without the email.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if h.canSeePrivate(r, id) {
		respondWithJSON(w, http.StatusOK, user)
		return
	}
	if !user.IsDiscoverable() {
		respondWithAppError(w, r, apperrors.NewNotFoundError("user "+id+" not found"))
		return
	}
	respondWithJSON(w, http.StatusOK, publicView(user))
}

// UpdateProfile handles PATCH /api/users/{id}
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cmd := entities.UpdateProfile{
		UserID:        r.PathValue("id"),
		ActorID:       actor,
		Name:          req.Name,
		Location:      req.Location,
		ProfilePhoto:  req.ProfilePhoto,
		SkillsOffered: req.SkillsOffered,
		SkillsWanted:  req.SkillsWanted,
		IsPublic:      req.IsPublic,
	}
	if req.Availability != nil {
		availability := toAvailability(*req.Availability)
		cmd.Availability = &availability
	}

	user, err := h.users.UpdateProfile(r.Context(), cmd)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// ListFeedback handles GET /api/users/{id}/feedback
func (h *UserHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.feedback.ListForUser(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"feedback": feedback,
		"count":    len(feedback),
	})
}

// SwapDashboard handles GET /api/users/{id}/swaps. Only the user and admins
// can read it.
func (h *UserHandler) SwapDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if actor != id {
		if _, err := h.users.RequireAdmin(r.Context(), actor); err != nil {
			respondWithAppError(w, r, apperrors.NewUnauthorizedError("only the user or an admin can view this dashboard"))
			return
		}
	}

	incoming, outgoing, err := h.swaps.ListForUser(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	l := loaders.For(r.Context(), h.store)
	respondWithJSON(w, http.StatusOK, entities.SwapDashboard{
		Incoming: l.SwapViews(r.Context(), incoming, false),
		Outgoing: l.SwapViews(r.Context(), outgoing, false),
	})
}

func (h *UserHandler) canSeePrivate(r *http.Request, userID string) bool {
	actor := strings.TrimSpace(r.Header.Get(ActorHeader))
	if actor == "" {
		return false
	}
	if actor == userID {
		return true
	}
	_, err := h.users.RequireAdmin(r.Context(), actor)
	return err == nil
}

// publicView strips contact details from a user shown to other members
func publicView(u *entities.User) *entities.User {
	c := u.Clone()
	c.Email = ""
	return c
}

func toAvailability(values []string) []entities.Availability {
	out := make([]entities.Availability, 0, len(values))
	for _, v := range values {
		out = append(out, entities.Availability(v))
	}
	return out
}

package handlers

import (
	"net/http"

	"github.com/skillswap/backend/internal/api/loaders"
	"github.com/skillswap/backend/internal/application/services"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	querysvc "github.com/skillswap/backend/internal/query/services"
)

// AdminHandler serves the moderation and reporting endpoints. Every route is
// mounted behind the AdminOnly middleware.
type AdminHandler struct {
	users     *services.UserService
	swaps     *services.SwapService
	messages  *services.AdminMessageService
	search    *querysvc.UserSearchService
	analytics *querysvc.AnalyticsService
	store     *store.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	users *services.UserService,
	swaps *services.SwapService,
	messages *services.AdminMessageService,
	search *querysvc.UserSearchService,
	analytics *querysvc.AnalyticsService,
	st *store.Store,
) *AdminHandler {
	return &AdminHandler{
		users:     users,
		swaps:     swaps,
		messages:  messages,
		search:    search,
		analytics: analytics,
		store:     st,
	}
}

type adminMessageRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content  *string `json:"content" validate:"omitempty,min=1,max=5000"`
	Type     *string `json:"type" validate:"omitempty,oneof=info warning maintenance"`
	IsActive *bool   `json:"is_active"`
}

func (req adminMessageRequest) input() entities.AdminMessageInput {
	in := entities.AdminMessageInput{
		Title:    req.Title,
		Content:  req.Content,
		IsActive: req.IsActive,
	}
	if req.Type != nil {
		t := entities.AdminMessageType(*req.Type)
		in.Type = &t
	}
	return in
}

// Analytics handles GET /api/admin/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// Activity handles GET /api/admin/activity?days=
func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	report, err := h.analytics.Activity(r.Context(), days)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"days":     len(report),
		"activity": report,
	})
}

// SearchUsers handles GET /api/admin/users?q=
func (h *AdminHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users := h.search.AdminSearch(r.Context(), r.URL.Query().Get("q"))
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

// BanUser handles POST /api/admin/users/{id}/ban
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// UnbanUser handles POST /api/admin/users/{id}/unban
func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var (
		user *entities.User
		err  error
	)
	if active {
		user, err = h.users.Unban(r.Context(), actor, r.PathValue("id"))
	} else {
		user, err = h.users.Ban(r.Context(), actor, r.PathValue("id"))
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// ListSwaps handles GET /api/admin/swaps?status=
func (h *AdminHandler) ListSwaps(w http.ResponseWriter, r *http.Request) {
	swaps, err := h.swaps.List(r.Context(), entities.SwapStatus(r.URL.Query().Get("status")))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	views := loaders.For(r.Context(), h.store).SwapViews(r.Context(), swaps, false)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"swaps": views,
		"count": len(views),
	})
}

// ListMessages handles GET /api/admin/messages
func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages := h.messages.List(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// CreateMessage handles POST /api/admin/messages
func (h *AdminHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	var req adminMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.messages.Create(r.Context(), actor, req.input())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}

// UpdateMessage handles PATCH /api/admin/messages/{id}
func (h *AdminHandler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	var req adminMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.messages.Update(r.Context(), actor, r.PathValue("id"), req.input())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, msg)
}

// DeleteMessage handles DELETE /api/admin/messages/{id}
func (h *AdminHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := h.messages.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

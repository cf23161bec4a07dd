package handlers

import (
	"net/http"

	"github.com/skillswap/backend/internal/application/services"
)

// MessageHandler serves the announcements shown to members
type MessageHandler struct {
	messages *services.AdminMessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messages *services.AdminMessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// ListActive handles GET /api/messages
func (h *MessageHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"messages": h.messages.ListActive(r.Context()),
	})
}

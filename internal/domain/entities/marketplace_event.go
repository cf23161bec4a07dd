package entities

import (
	"time"

	"github.com/google/uuid"
)

// MarketplaceEventType represents the type of marketplace event
type MarketplaceEventType string

const (
	EventTypeSwapCreated      MarketplaceEventType = "swap_created"
	EventTypeSwapAccepted     MarketplaceEventType = "swap_accepted"
	EventTypeSwapRejected     MarketplaceEventType = "swap_rejected"
	EventTypeSwapCancelled    MarketplaceEventType = "swap_cancelled"
	EventTypeSwapCompleted    MarketplaceEventType = "swap_completed"
	EventTypeFeedbackRecorded MarketplaceEventType = "feedback_recorded"
	EventTypeUserRegistered   MarketplaceEventType = "user_registered"
	EventTypeUserUpdated      MarketplaceEventType = "user_updated"
	EventTypeUserBanned       MarketplaceEventType = "user_banned"
	EventTypeUserUnbanned     MarketplaceEventType = "user_unbanned"
	EventTypeMessageChanged   MarketplaceEventType = "admin_message_changed"
)

// SwapEventType returns the event emitted when a swap enters status
func SwapEventType(status SwapStatus) MarketplaceEventType {
	switch status {
	case SwapStatusAccepted:
		return EventTypeSwapAccepted
	case SwapStatusRejected:
		return EventTypeSwapRejected
	case SwapStatusCancelled:
		return EventTypeSwapCancelled
	case SwapStatusCompleted:
		return EventTypeSwapCompleted
	}
	return EventTypeSwapCreated
}

// MarketplaceEvent is published after a state change has been persisted
type MarketplaceEvent struct {
	ID            string                 `json:"id"`
	EventType     MarketplaceEventType   `json:"event_type"`
	SwapRequestID string                 `json:"swap_request_id,omitempty"`
	UserIDs       []string               `json:"user_ids,omitempty"`
	ActorID       string                 `json:"actor_id,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields,omitempty"`
}

// NewMarketplaceEvent creates a new event stamped with the current time
func NewMarketplaceEvent(eventType MarketplaceEventType, actorID string, userIDs []string, changedFields map[string]interface{}) *MarketplaceEvent {
	return &MarketplaceEvent{
		ID:            uuid.New().String(),
		EventType:     eventType,
		UserIDs:       userIDs,
		ActorID:       actorID,
		Timestamp:     time.Now().UTC(),
		ChangedFields: changedFields,
	}
}

// Concerns reports whether userID is one of the users the event is about
func (e *MarketplaceEvent) Concerns(userID string) bool {
	for _, id := range e.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

package entities

import "time"

// SwapStatus is the lifecycle state of a swap request
type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusAccepted  SwapStatus = "accepted"
	SwapStatusRejected  SwapStatus = "rejected"
	SwapStatusCompleted SwapStatus = "completed"
	SwapStatusCancelled SwapStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s SwapStatus) IsValid() bool {
	switch s {
	case SwapStatusPending, SwapStatusAccepted, SwapStatusRejected, SwapStatusCompleted, SwapStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusRejected || s == SwapStatusCompleted || s == SwapStatusCancelled
}

// SwapRequest is a proposal to exchange one skill for another between two users.
// Requests are never deleted; rejection and cancellation are terminal states.
type SwapRequest struct {
	ID           string     `json:"id" db:"id"`
	FromUserID   string     `json:"from_user_id" db:"from_user_id"`
	ToUserID     string     `json:"to_user_id" db:"to_user_id"`
	SkillOffered string     `json:"skill_offered" db:"skill_offered"`
	SkillWanted  string     `json:"skill_wanted" db:"skill_wanted"`
	Message      string     `json:"message,omitempty" db:"message"`
	Status       SwapStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsParticipant reports whether userID is the requester or the recipient
func (s *SwapRequest) IsParticipant(userID string) bool {
	return userID != "" && (s.FromUserID == userID || s.ToUserID == userID)
}

// Counterpart returns the other participant's id, or "" when userID is not a participant
func (s *SwapRequest) Counterpart(userID string) string {
	switch userID {
	case s.FromUserID:
		return s.ToUserID
	case s.ToUserID:
		return s.FromUserID
	}
	return ""
}

// Clone returns a copy of the request
func (s *SwapRequest) Clone() *SwapRequest {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// SwapView is a swap request enriched with participant cards and its feedback
type SwapView struct {
	*SwapRequest
	FromUser *UserSummary `json:"from_user,omitempty"`
	ToUser   *UserSummary `json:"to_user,omitempty"`
	Feedback []*Feedback  `json:"feedback,omitempty"`
}

// SwapDashboard groups a user's requests by direction
type SwapDashboard struct {
	Incoming []*SwapView `json:"incoming"`
	Outgoing []*SwapView `json:"outgoing"`
}

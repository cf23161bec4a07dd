package entities

import (
	"fmt"
	"strings"

	apperrors "github.com/skillswap/backend/pkg/errors"
)

// SwapCommand is a validated request to move a swap to another status.
// The set of implementations is closed: AcceptSwap, RejectSwap, CancelSwap, CompleteSwap.
type SwapCommand interface {
	SwapID() string
	Actor() string
	TargetStatus() SwapStatus
	swapCommand()
}

// AcceptSwap is issued by the recipient of a pending request
type AcceptSwap struct {
	SwapRequestID string
	ActorID       string
}

// RejectSwap is issued by the recipient of a pending request
type RejectSwap struct {
	SwapRequestID string
	ActorID       string
}

// CancelSwap is issued by the requester of a pending request, or by an admin
type CancelSwap struct {
	SwapRequestID string
	ActorID       string
}

// CompleteSwap is issued by either participant of an accepted request
type CompleteSwap struct {
	SwapRequestID string
	ActorID       string
}

func (c AcceptSwap) SwapID() string { return c.SwapRequestID }
func (c AcceptSwap) Actor() string { return c.ActorID }
func (c AcceptSwap) TargetStatus() SwapStatus { return SwapStatusAccepted }
func (AcceptSwap) swapCommand() {}
func (c RejectSwap) SwapID() string { return c.SwapRequestID }
func (c RejectSwap) Actor() string { return c.ActorID }
func (c RejectSwap) TargetStatus() SwapStatus { return SwapStatusRejected }
func (RejectSwap) swapCommand() {}
func (c CancelSwap) SwapID() string { return c.SwapRequestID }
func (c CancelSwap) Actor() string { return c.ActorID }
func (c CancelSwap) TargetStatus() SwapStatus { return SwapStatusCancelled }
func (CancelSwap) swapCommand() {}
func (c CompleteSwap) SwapID() string { return c.SwapRequestID }
func (c CompleteSwap) Actor() string { return c.ActorID }
func (c CompleteSwap) TargetStatus() SwapStatus { return SwapStatusCompleted }
func (CompleteSwap) swapCommand() {}

// NewSwapCommand maps an action name ("accept", "reject", "cancel", "complete") to its command.
func NewSwapCommand(action, swapID, actorID string) (SwapCommand, bool) {
	switch action {
	case "accept":
		return AcceptSwap{SwapRequestID: swapID, ActorID: actorID}, true
	case "reject":
		return RejectSwap{SwapRequestID: swapID, ActorID: actorID}, true
	case "cancel":
		return CancelSwap{SwapRequestID: swapID, ActorID: actorID}, true
	case "complete":
		return CompleteSwap{SwapRequestID: swapID, ActorID: actorID}, true
	}
	return nil, false
}

// CreateSwapRequest opens a new pending swap
type CreateSwapRequest struct {
	FromUserID   string
	ToUserID     string
	SkillOffered string
	SkillWanted  string
	Message      string
}

// RecordFeedback reviews the counterpart of a completed swap.
// ToUserID is optional; when set it must name the other participant.
type RecordFeedback struct {
	SwapRequestID string
	FromUserID    string
	ToUserID      string
	Rating        int
	Comment       string
}

// RegisterUser creates a new member account
type RegisterUser struct {
	Name          string
	Email         string
	Location      string
	ProfilePhoto  string
	SkillsOffered []string
	SkillsWanted  []string
	Availability  []Availability
	IsPublic      *bool
	Role          Role
}

// UpdateProfile changes the self-editable fields of a user. Nil fields are left unchanged.
type UpdateProfile struct {
	UserID        string
	ActorID       string
	Name          *string
	Location      *string
	ProfilePhoto  *string
	SkillsOffered *[]string
	SkillsWanted  *[]string
	Availability  *[]Availability
	IsPublic      *bool
}

// IsEmpty reports whether the command changes nothing
func (u UpdateProfile) IsEmpty() bool {
	return u.Name == nil && u.Location == nil && u.ProfilePhoto == nil &&
		u.SkillsOffered == nil && u.SkillsWanted == nil && u.Availability == nil && u.IsPublic == nil
}

// Validate checks the fields that are being changed
func (u UpdateProfile) Validate() error {
	if strings.TrimSpace(u.UserID) == "" {
		return apperrors.NewValidationError("user id is required")
	}
	if u.IsEmpty() {
		return apperrors.NewValidationError("no profile fields to update")
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return apperrors.NewValidationError("name cannot be empty")
	}
	if u.Availability != nil {
		for _, a := range *u.Availability {
			if !a.IsValid() {
				return apperrors.NewValidationError(fmt.Sprintf("unknown availability %q", a))
			}
		}
	}
	return nil
}

// AdminMessageInput carries the fields of an admin broadcast; nil fields are left unchanged on update.
type AdminMessageInput struct {
	Title    *string
	Content  *string
	Type     *AdminMessageType
	IsActive *bool
}

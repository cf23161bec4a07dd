package services

import (
	"fmt"
	"time"

	"github.com/skillswap/backend/internal/domain/entities"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

type actorRule int

const (
	actorRecipient actorRule = iota
	actorRequester
	actorParticipant
	actorAdmin
)

// transitionRules lists, per edge, which actors may take it. Edges absent
// from the table do not exist.
var transitionRules = map[entities.SwapStatus]map[entities.SwapStatus][]actorRule{
	entities.SwapStatusPending: {
		entities.SwapStatusAccepted:  {actorRecipient},
		entities.SwapStatusRejected:  {actorRecipient},
		entities.SwapStatusCancelled: {actorRequester, actorAdmin},
	},
	entities.SwapStatusAccepted: {
		entities.SwapStatusCompleted: {actorParticipant},
		entities.SwapStatusCancelled: {actorAdmin},
	},
}

// ValidateTransition checks that actor may move swap to target
func ValidateTransition(swap *entities.SwapRequest, target entities.SwapStatus, actor *entities.User) error {
	if swap == nil {
		return apperrors.NewNotFoundError("swap request not found")
	}
	if actor == nil {
		return apperrors.NewInvalidTransitionError("an acting user is required")
	}
	if !actor.IsActive {
		return apperrors.NewInvalidTransitionError(fmt.Sprintf("user %s is not active", actor.ID))
	}

	edges, ok := transitionRules[swap.Status]
	if !ok {
		return apperrors.NewInvalidTransitionError(
			fmt.Sprintf("swap request %s is %s; no further transitions are allowed", swap.ID, swap.Status))
	}
	rules, ok := edges[target]
	if !ok {
		return apperrors.NewInvalidTransitionError(
			fmt.Sprintf("cannot move swap request %s from %s to %s", swap.ID, swap.Status, target))
	}

	for _, rule := range rules {
		if actorMatches(rule, swap, actor) {
			return nil
		}
	}
	return apperrors.NewInvalidTransitionError(
		fmt.Sprintf("user %s may not move swap request %s from %s to %s", actor.ID, swap.ID, swap.Status, target))
}

func actorMatches(rule actorRule, swap *entities.SwapRequest, actor *entities.User) bool {
	switch rule {
	case actorRecipient:
		return actor.ID == swap.ToUserID
	case actorRequester:
		return actor.ID == swap.FromUserID
	case actorParticipant:
		return swap.IsParticipant(actor.ID)
	case actorAdmin:
		return actor.IsAdmin()
	}
	return false
}

// applyTransition sets the new status; updatedAt never moves backwards
func applyTransition(swap *entities.SwapRequest, target entities.SwapStatus, now time.Time) {
	swap.Status = target
	if now.After(swap.UpdatedAt) {
		swap.UpdatedAt = now
	}
}

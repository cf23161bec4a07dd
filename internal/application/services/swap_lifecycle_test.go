package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/domain/entities"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

func TestValidateTransition(t *testing.T) {
	requester := &entities.User{ID: "from", Role: entities.RoleUser, IsActive: true}
	recipient := &entities.User{ID: "to", Role: entities.RoleUser, IsActive: true}
	stranger := &entities.User{ID: "other", Role: entities.RoleUser, IsActive: true}
	admin := &entities.User{ID: "admin", Role: entities.RoleAdmin, IsActive: true}
	bannedRecipient := &entities.User{ID: "to", Role: entities.RoleUser}
	bannedRequester := &entities.User{ID: "from", Role: entities.RoleUser}

	tests := []struct {
		name    string
		from    entities.SwapStatus
		to      entities.SwapStatus
		actor   *entities.User
		allowed bool
	}{
		{"recipient accepts pending", entities.SwapStatusPending, entities.SwapStatusAccepted, recipient, true},
		{"recipient rejects pending", entities.SwapStatusPending, entities.SwapStatusRejected, recipient, true},
		{"requester cancels pending", entities.SwapStatusPending, entities.SwapStatusCancelled, requester, true},
		{"admin cancels pending", entities.SwapStatusPending, entities.SwapStatusCancelled, admin, true},
		{"requester completes accepted", entities.SwapStatusAccepted, entities.SwapStatusCompleted, requester, true},
		{"recipient completes accepted", entities.SwapStatusAccepted, entities.SwapStatusCompleted, recipient, true},
		{"admin force cancels accepted", entities.SwapStatusAccepted, entities.SwapStatusCancelled, admin, true},

		{"requester cannot accept", entities.SwapStatusPending, entities.SwapStatusAccepted, requester, false},
		{"requester cannot reject", entities.SwapStatusPending, entities.SwapStatusRejected, requester, false},
		{"admin cannot accept", entities.SwapStatusPending, entities.SwapStatusAccepted, admin, false},
		{"recipient cannot cancel pending", entities.SwapStatusPending, entities.SwapStatusCancelled, recipient, false},
		{"stranger cannot cancel", entities.SwapStatusPending, entities.SwapStatusCancelled, stranger, false},
		{"pending cannot complete", entities.SwapStatusPending, entities.SwapStatusCompleted, recipient, false},
		{"admin cannot complete", entities.SwapStatusAccepted, entities.SwapStatusCompleted, admin, false},
		{"stranger cannot complete", entities.SwapStatusAccepted, entities.SwapStatusCompleted, stranger, false},
		{"participant cannot cancel accepted", entities.SwapStatusAccepted, entities.SwapStatusCancelled, requester, false},
		{"accepted cannot be rejected", entities.SwapStatusAccepted, entities.SwapStatusRejected, recipient, false},
		{"completed is terminal", entities.SwapStatusCompleted, entities.SwapStatusCompleted, recipient, false},
		{"completed cannot be cancelled", entities.SwapStatusCompleted, entities.SwapStatusCancelled, admin, false},
		{"rejected is terminal", entities.SwapStatusRejected, entities.SwapStatusAccepted, recipient, false},
		{"cancelled is terminal", entities.SwapStatusCancelled, entities.SwapStatusPending, requester, false},
		{"banned recipient cannot accept", entities.SwapStatusPending, entities.SwapStatusAccepted, bannedRecipient, false},
		{"banned requester cannot complete", entities.SwapStatusAccepted, entities.SwapStatusCompleted, bannedRequester, false},
		{"no self loop on pending", entities.SwapStatusPending, entities.SwapStatusPending, recipient, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			swap := &entities.SwapRequest{ID: "s1", FromUserID: "from", ToUserID: "to", Status: tt.from}
			err := ValidateTransition(swap, tt.to, tt.actor)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidTransition), err.Error())
		})
	}
}

func TestValidateTransition_MissingActor(t *testing.T) {
	swap := &entities.SwapRequest{ID: "s1", FromUserID: "from", ToUserID: "to", Status: entities.SwapStatusPending}
	err := ValidateTransition(swap, entities.SwapStatusAccepted, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidTransition))
}

func TestApplyTransition_UpdatedAtNeverDecreases(t *testing.T) {
	later := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)

	swap := &entities.SwapRequest{Status: entities.SwapStatusPending, UpdatedAt: later}
	applyTransition(swap, entities.SwapStatusAccepted, earlier)
	assert.Equal(t, entities.SwapStatusAccepted, swap.Status)
	assert.Equal(t, later, swap.UpdatedAt)

	applyTransition(swap, entities.SwapStatusCompleted, later.Add(time.Minute))
	assert.Equal(t, later.Add(time.Minute), swap.UpdatedAt)
}

func TestAggregateRating(t *testing.T) {
	fb := func(to string, rating int) *entities.Feedback {
		return &entities.Feedback{ToUserID: to, Rating: rating}
	}

	assert.Equal(t, 5.0, AggregateRating(nil, "a"))
	assert.Equal(t, 5.0, AggregateRating([]*entities.Feedback{fb("b", 1)}, "a"))
	assert.Equal(t, 4.5, AggregateRating([]*entities.Feedback{fb("a", 4), fb("a", 5)}, "a"))
	assert.Equal(t, 4.0, AggregateRating([]*entities.Feedback{fb("a", 4), fb("a", 5), fb("a", 3)}, "a"))
	assert.Equal(t, 4.3, AggregateRating([]*entities.Feedback{fb("a", 4), fb("a", 4), fb("a", 5)}, "a"))
	assert.Equal(t, 1.0, AggregateRating([]*entities.Feedback{fb("a", 1), fb("b", 5)}, "a"))
}

package mocks

import (
	"time"

	"github.com/skillswap/backend/internal/domain/entities"
)

// FixedTime is the reference instant used by fixtures
var FixedTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// Clock returns a time source that starts at FixedTime and advances one second per call
func Clock() func() time.Time {
	current := FixedTime
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

// NewUser returns an active, public, regular user offering skills
func NewUser(id, name string, skills ...string) *entities.User {
	return &entities.User{
		ID:            id,
		Name:          name,
		Email:         id + "@example.com",
		SkillsOffered: skills,
		SkillsWanted:  []string{},
		Availability:  []entities.Availability{},
		IsPublic:      true,
		Role:          entities.RoleUser,
		Rating:        entities.DefaultRating,
		IsActive:      true,
		JoinDate:      FixedTime.Truncate(24 * time.Hour),
		CreatedAt:     FixedTime,
		UpdatedAt:     FixedTime,
	}
}

// NewAdmin returns an admin user
func NewAdmin(id string) *entities.User {
	u := NewUser(id, "Admin "+id)
	u.Role = entities.RoleAdmin
	return u
}

// NewSwap returns a swap request between two users in the given status
func NewSwap(id, from, to, offered, wanted string, status entities.SwapStatus) *entities.SwapRequest {
	return &entities.SwapRequest{
		ID:           id,
		FromUserID:   from,
		ToUserID:     to,
		SkillOffered: offered,
		SkillWanted:  wanted,
		Status:       status,
		CreatedAt:    FixedTime,
		UpdatedAt:    FixedTime,
	}
}

// NewFeedback returns a feedback entry on a swap
func NewFeedback(id, swapID, from, to string, rating int) *entities.Feedback {
	return &entities.Feedback{
		ID:            id,
		SwapRequestID: swapID,
		FromUserID:    from,
		ToUserID:      to,
		Rating:        rating,
		Comment:       "thanks",
		CreatedAt:     FixedTime,
	}
}

package repositories

import (
	"context"

	"github.com/skillswap/backend/internal/domain/entities"
)

// FeedbackRepository defines the interface for feedback operations.
type FeedbackRepository interface {
	List(ctx context.Context) ([]*entities.Feedback, error)
	Create(ctx context.Context, feedback *entities.Feedback) error
}

package repositories

import (
	"context"

	"github.com/skillswap/backend/internal/domain/entities"
)

// SwapRequestRepository defines persistence for swap requests. There is no Delete:
// requests end in a terminal status instead.
type SwapRequestRepository interface {
	List(ctx context.Context) ([]*entities.SwapRequest, error)
	GetByID(ctx context.Context, id string) (*entities.SwapRequest, error)
	Create(ctx context.Context, swap *entities.SwapRequest) error
	Update(ctx context.Context, swap *entities.SwapRequest) error
}

package repositories

import (
	"context"

	"github.com/skillswap/backend/internal/domain/entities"
)

// AdminMessageRepository defines persistence for admin broadcasts
type AdminMessageRepository interface {
	List(ctx context.Context) ([]*entities.AdminMessage, error)
	Create(ctx context.Context, message *entities.AdminMessage) error
	Update(ctx context.Context, message *entities.AdminMessage) error
	Delete(ctx context.Context, id string) error
}

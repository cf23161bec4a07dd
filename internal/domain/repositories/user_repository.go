package repositories

import (
	"context"

	"github.com/skillswap/backend/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// List returns every user ordered by join date, oldest first
	List(ctx context.Context) ([]*entities.User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// Update replaces the stored user
	Update(ctx context.Context, user *entities.User) error
}

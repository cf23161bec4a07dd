package providers

import (
	"context"

	"github.com/skillswap/backend/internal/domain/entities"
)

// UserSuggestion is a typeahead hit from the search index
type UserSuggestion struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	SkillsOffered []string `json:"skills_offered"`
	Rating        float64  `json:"rating"`
}

// UserIndex is a secondary full-text index over discoverable users
type UserIndex interface {
	// InitSchema ensures the backing collection exists
	InitSchema(ctx context.Context) error

	// Index upserts the user; users that are not discoverable are removed instead
	Index(ctx context.Context, user *entities.User) error

	// Delete removes a user from the index
	Delete(ctx context.Context, id string) error

	// Suggest returns up to limit prefix matches on name and offered skills
	Suggest(ctx context.Context, query string, limit int) ([]UserSuggestion, error)
}

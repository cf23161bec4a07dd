package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	tsclient "github.com/skillswap/backend/internal/infrastructure/clients/typesense"
)

// TypesenseUserIndex implements the user search index using Typesense
type TypesenseUserIndex struct {
	client *tsclient.Client
}

// Ensure TypesenseUserIndex implements UserIndex
var _ providers.UserIndex = (*TypesenseUserIndex)(nil)

// NewTypesenseUserIndex creates a new Typesense user index
func NewTypesenseUserIndex(client *tsclient.Client) *TypesenseUserIndex {
	return &TypesenseUserIndex{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseUserIndex) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// BuildUserDocument maps a user to its index document. Email, role and
// moderation flags never leave the database.
func BuildUserDocument(u *entities.User) map[string]interface{} {
	availability := make([]string, 0, len(u.Availability))
	for _, v := range u.Availability {
		availability = append(availability, string(v))
	}
	skillsOffered := u.SkillsOffered
	if skillsOffered == nil {
		skillsOffered = []string{}
	}
	skillsWanted := u.SkillsWanted
	if skillsWanted == nil {
		skillsWanted = []string{}
	}

	return map[string]interface{}{
		"id":             u.ID,
		"name":           u.Name,
		"skills_offered": skillsOffered,
		"skills_wanted":  skillsWanted,
		"location":       u.Location,
		"availability":   availability,
		"rating":         u.Rating,
		"total_swaps":    u.TotalSwaps,
		"join_date":      u.JoinDate.Unix(),
	}
}

// Index upserts a discoverable user and removes any other user from the index
func (a *TypesenseUserIndex) Index(ctx context.Context, user *entities.User) error {
	if !user.IsDiscoverable() {
		return a.Delete(ctx, user.ID)
	}

	_, err := a.client.Client().Collection(a.client.Collection()).Documents().Upsert(ctx, BuildUserDocument(user))
	if err != nil {
		return fmt.Errorf("failed to index user %s: %w", user.ID, err)
	}
	return nil
}

// Delete removes a user from the index; deleting an absent user is a no-op
func (a *TypesenseUserIndex) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Document(id).Delete(ctx)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete user %s from index: %w", id, err)
	}
	return nil
}

// Suggest returns prefix matches on name and offered skills, best rated first
func (a *TypesenseUserIndex) Suggest(ctx context.Context, query string, limit int) ([]providers.UserSuggestion, error) {
	params := &api.SearchCollectionParams{
		Q:             pointer.String(query),
		QueryBy:       pointer.String("name,skills_offered"),
		Prefix:        pointer.String("true,true"),
		SortBy:        pointer.String("_text_match:desc,rating:desc"),
		IncludeFields: pointer.String("id,name,skills_offered,rating"),
		PerPage:       pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(a.client.Collection()).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	suggestions := []providers.UserSuggestion{}
	if result.Hits == nil {
		return suggestions, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		suggestions = append(suggestions, suggestionFromDocument(*hit.Document))
	}
	return suggestions, nil
}

func suggestionFromDocument(doc map[string]interface{}) providers.UserSuggestion {
	s := providers.UserSuggestion{SkillsOffered: []string{}}
	s.ID, _ = doc["id"].(string)
	s.Name, _ = doc["name"].(string)
	if rating, ok := doc["rating"].(float64); ok {
		s.Rating = rating
	}
	if skills, ok := doc["skills_offered"].([]interface{}); ok {
		for _, v := range skills {
			if skill, ok := v.(string); ok {
				s.SkillsOffered = append(s.SkillsOffered, skill)
			}
		}
	}
	return s
}

func isNotFound(err error) bool {
	var httpErr *typesense.HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}

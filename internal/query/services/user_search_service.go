package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	"github.com/skillswap/backend/pkg/utils"
)

const (
	defaultSearchLimit  = 20
	maxSearchLimit      = 100
	defaultSuggestLimit = 8
)

// UserFilters narrows a user search; zero values mean "no filter"
type UserFilters struct {
	Location     string
	MinRating    *float64
	Availability entities.Availability
}

// SearchParams defines parameters for a paged user search
type SearchParams struct {
	Query   string
	Filters UserFilters
	Limit   int
	Offset  int
}

// SearchResult is one page of matching users
type SearchResult struct {
	Users      []*entities.User `json:"users"`
	TotalCount int              `json:"total_count"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}

// SearchUsers returns the discoverable users matching query and filters, in
// input order. The query matches the name or any offered skill as a
// case-insensitive substring.
func SearchUsers(users []*entities.User, query string, filters UserFilters) []*entities.User {
	query = strings.TrimSpace(query)
	location := strings.TrimSpace(filters.Location)

	out := make([]*entities.User, 0)
	for _, u := range users {
		if !u.IsDiscoverable() {
			continue
		}
		if query != "" && !matchesNameOrSkill(u, query) {
			continue
		}
		if location != "" && !utils.ContainsFold(u.Location, location) {
			continue
		}
		// NaN matches nothing
		if filters.MinRating != nil && !(u.Rating >= *filters.MinRating) {
			continue
		}
		if filters.Availability != "" && !u.HasAvailability(filters.Availability) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func matchesNameOrSkill(u *entities.User, query string) bool {
	if utils.ContainsFold(u.Name, query) {
		return true
	}
	for _, skill := range u.SkillsOffered {
		if utils.ContainsFold(skill, query) {
			return true
		}
	}
	return false
}

// UserSearchService answers browse, typeahead and admin lookups over users
type UserSearchService struct {
	store *store.Store
	index providers.UserIndex
}

// NewUserSearchService creates a new search service. index may be nil, in
// which case suggestions are computed from the store.
func NewUserSearchService(st *store.Store, index providers.UserIndex) *UserSearchService {
	return &UserSearchService{store: st, index: index}
}

// Search returns one page of SearchUsers over the current store contents
func (s *UserSearchService) Search(ctx context.Context, params SearchParams) *SearchResult {
	_, span := observability.StartSpan(ctx, "UserSearchService.Search")
	defer span.End()

	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	matches := SearchUsers(s.store.Users(), params.Query, params.Filters)
	page := make([]*entities.User, 0, limit)
	if offset < len(matches) {
		end := offset + limit
		if end > len(matches) {
			end = len(matches)
		}
		page = append(page, matches[offset:end]...)
	}

	return &SearchResult{
		Users:      page,
		TotalCount: len(matches),
		Limit:      limit,
		Offset:     offset,
	}
}

// Suggest returns typeahead matches for query from the search index, falling
// back to a prefix scan of the store when the index is unavailable.
func (s *UserSearchService) Suggest(ctx context.Context, query string, limit int) []providers.UserSuggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		return []providers.UserSuggestion{}
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSuggestLimit
	}

	if s.index != nil {
		suggestions, err := s.index.Suggest(ctx, query, limit)
		if err == nil {
			return suggestions
		}
		log.Warn().Err(err).Str("query", query).Msg("Search index suggest failed; using store")
	}

	out := make([]providers.UserSuggestion, 0, limit)
	for _, u := range SearchUsers(s.store.Users(), query, UserFilters{}) {
		out = append(out, providers.UserSuggestion{
			ID:            u.ID,
			Name:          u.Name,
			SkillsOffered: u.SkillsOffered,
			Rating:        u.Rating,
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

// AdminSearch matches regular users, including private and banned ones, by
// name, email or offered skill.
func (s *UserSearchService) AdminSearch(ctx context.Context, query string) []*entities.User {
	query = strings.TrimSpace(query)
	out := make([]*entities.User, 0)
	for _, u := range s.store.Users() {
		if u.IsAdmin() {
			continue
		}
		if query == "" || matchesNameOrSkill(u, query) || utils.ContainsFold(u.Email, query) {
			out = append(out, u)
		}
	}
	return out
}

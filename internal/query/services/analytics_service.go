package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	apperrors "github.com/skillswap/backend/pkg/errors"
	"github.com/skillswap/backend/pkg/utils"
)

const (
	topSkillsLimit = 5

	// DefaultActivityDays is the report window when none is requested
	DefaultActivityDays = 7
	// MaxActivityDays bounds the report window
	MaxActivityDays = 90
)

// CacheProvider defines the interface for cache operations
type CacheProvider interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ComputeAnalytics reduces the collections to the admin summary. Admins are
// excluded from user counts and skill frequencies.
func ComputeAnalytics(users []*entities.User, swaps []*entities.SwapRequest, feedback []*entities.Feedback) *entities.Analytics {
	a := &entities.Analytics{
		AverageRating: entities.DefaultRating,
		TopSkills:     []entities.SkillCount{},
	}

	counts := make(map[string]int)
	var order []string
	for _, u := range users {
		if u.Role != entities.RoleUser {
			continue
		}
		a.TotalUsers++
		if u.IsActive {
			a.ActiveUsers++
		}
		for _, skill := range u.SkillsOffered {
			if _, seen := counts[skill]; !seen {
				order = append(order, skill)
			}
			counts[skill]++
		}
	}

	a.TotalSwaps = len(swaps)
	for _, sw := range swaps {
		switch sw.Status {
		case entities.SwapStatusPending:
			a.PendingSwaps++
		case entities.SwapStatusCompleted:
			a.CompletedSwaps++
		}
	}
	if a.TotalSwaps > 0 {
		a.SuccessRate = utils.RoundToOneDecimal(float64(a.CompletedSwaps) / float64(a.TotalSwaps) * 100)
	}

	if len(feedback) > 0 {
		sum := 0
		for _, f := range feedback {
			sum += f.Rating
		}
		a.AverageRating = utils.RoundToOneDecimal(float64(sum) / float64(len(feedback)))
	}

	ranked := make([]entities.SkillCount, 0, len(order))
	for _, skill := range order {
		ranked = append(ranked, entities.SkillCount{Skill: skill, Count: counts[skill]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > topSkillsLimit {
		ranked = ranked[:topSkillsLimit]
	}
	a.TopSkills = ranked

	return a
}

// BuildActivityReport counts new users, new swaps and completions per UTC day
// over the window ending at now, oldest day first. A completion is attributed to
// the day of the swap's last update.
func BuildActivityReport(users []*entities.User, swaps []*entities.SwapRequest, now time.Time, days int) []entities.ActivityReport {
	if days <= 0 {
		days = DefaultActivityDays
	}
	if days > MaxActivityDays {
		days = MaxActivityDays
	}

	today := now.UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(days - 1))

	report := make([]entities.ActivityReport, days)
	index := make(map[string]int, days)
	for i := range report {
		day := first.AddDate(0, 0, i).Format(time.DateOnly)
		report[i].Date = day
		index[day] = i
	}

	bump := func(t time.Time, field func(*entities.ActivityReport)) {
		if i, ok := index[t.UTC().Format(time.DateOnly)]; ok {
			field(&report[i])
		}
	}

	for _, u := range users {
		if u.Role != entities.RoleUser {
			continue
		}
		joined := u.CreatedAt
		if joined.IsZero() {
			joined = u.JoinDate
		}
		bump(joined, func(r *entities.ActivityReport) { r.NewUsers++ })
	}
	for _, sw := range swaps {
		bump(sw.CreatedAt, func(r *entities.ActivityReport) { r.NewSwaps++ })
		if sw.Status == entities.SwapStatusCompleted {
			bump(sw.UpdatedAt, func(r *entities.ActivityReport) { r.CompletedSwaps++ })
		}
	}
	return report
}

// AnalyticsService serves the admin dashboard aggregates
type AnalyticsService struct {
	store   *store.Store
	cache   CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewAnalyticsService creates a new analytics service. cache may be nil.
func NewAnalyticsService(st *store.Store, cache CacheProvider, ttl time.Duration, metrics *observability.Metrics) *AnalyticsService {
	return &AnalyticsService{store: st, cache: cache, ttl: ttl, metrics: metrics}
}

// Summary returns the platform summary, served from cache when fresh
func (s *AnalyticsService) Summary(ctx context.Context) (*entities.Analytics, error) {
	ctx, span := observability.StartSpan(ctx, "AnalyticsService.Summary")
	defer span.End()

	if s.cache != nil && s.ttl > 0 {
		var cached entities.Analytics
		hit, err := s.cache.Get(ctx, providers.CacheKeyAnalyticsSummary, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read analytics from cache")
		}
		if hit {
			observability.RecordCacheHit(ctx, s.metrics, providers.CacheKeyAnalyticsSummary)
			return &cached, nil
		}
		observability.RecordCacheMiss(ctx, s.metrics, providers.CacheKeyAnalyticsSummary)
	}

	return s.refresh(ctx), nil
}

// Warm recomputes the summary and stores it in cache
func (s *AnalyticsService) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	s.refresh(ctx)
	return nil
}

// Invalidate drops the cached summary
func (s *AnalyticsService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, providers.CacheKeyAnalyticsSummary)
}

// Activity returns the per-day activity report for the last days days
func (s *AnalyticsService) Activity(ctx context.Context, days int) ([]entities.ActivityReport, error) {
	if days == 0 {
		days = DefaultActivityDays
	}
	if days < 0 || days > MaxActivityDays {
		return nil, apperrors.NewValidationError(fmt.Sprintf("days must be between 1 and %d", MaxActivityDays))
	}
	return BuildActivityReport(s.store.Users(), s.store.SwapRequests(), s.store.Now(), days), nil
}

func (s *AnalyticsService) refresh(ctx context.Context) *entities.Analytics {
	summary := ComputeAnalytics(s.store.Users(), s.store.SwapRequests(), s.store.Feedback())
	summary.GeneratedAt = s.store.Now()

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, providers.CacheKeyAnalyticsSummary, summary, s.ttl); err != nil {
			log.Warn().Err(err).Msg("Failed to cache analytics summary")
		}
	}
	return summary
}

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheWarmer precomputes one cached read
type CacheWarmer interface {
	Warm(ctx context.Context) error
}

// CacheWarmingService refreshes frequently read aggregates ahead of requests
type CacheWarmingService struct {
	warmers map[string]CacheWarmer
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(warmers map[string]CacheWarmer) *CacheWarmingService {
	return &CacheWarmingService{warmers: warmers}
}

// WarmCache runs every warmer; failures are logged and do not stop the others
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	start := time.Now()
	failed := 0
	for name, w := range s.warmers {
		if err := w.Warm(ctx); err != nil {
			failed++
			log.Warn().Err(err).Str("warmer", name).Msg("Cache warming failed")
		}
	}
	log.Debug().
		Int("warmers", len(s.warmers)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Cache warming completed")
	return nil
}

// StartPeriodicWarming warms once, then again every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if err := s.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial cache warming failed")
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping cache warming service")
				return
			case <-ticker.C:
				if err := s.WarmCache(ctx); err != nil {
					log.Warn().Err(err).Msg("Periodic cache warming failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("Started periodic cache warming")
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
)

// HTTP response cache patterns, grouped by the resource segment of the path
const (
	httpCachePatternUsers    = "http:cache:users:*"
	httpCachePatternMessages = "http:cache:messages:*"
)

// CacheInvalidationService drops cached reads when marketplace events arrive
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelMarketplaceUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to marketplace updates: %w", err)
	}

	s.started = true
	go s.processEvents(eventChan)
	log.Info().Msg("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	if s.started {
		<-s.done
	}
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.MarketplaceEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.HandleEvent(event)
		}
	}
}

// HandleEvent invalidates the cache entries an event makes stale
func (s *CacheInvalidationService) HandleEvent(event *entities.MarketplaceEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, pattern := range patternsFor(event.EventType) {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			log.Warn().Err(err).Str("pattern", pattern).Str("event_id", event.ID).Msg("Failed to invalidate cache")
			continue
		}
		log.Debug().Str("pattern", pattern).Str("event_type", string(event.EventType)).Msg("Invalidated cache")
	}
}

// InvalidateAll clears every cached read; used after bulk data changes
func (s *CacheInvalidationService) InvalidateAll(ctx context.Context) error {
	for _, pattern := range []string{providers.CachePatternAnalytics, providers.CachePatternHTTP} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
	}
	return nil
}

func patternsFor(eventType entities.MarketplaceEventType) []string {
	switch eventType {
	case entities.EventTypeMessageChanged:
		return []string{httpCachePatternMessages}
	case entities.EventTypeSwapCreated, entities.EventTypeSwapAccepted,
		entities.EventTypeSwapRejected, entities.EventTypeSwapCancelled:
		return []string{providers.CachePatternAnalytics}
	}
	// completions, feedback and account changes move ratings, counters or visibility
	return []string{providers.CachePatternAnalytics, httpCachePatternUsers}
}

package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
)

// AnalyticsInvalidator drops the cached marketplace analytics
type AnalyticsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// marketplaceNotifier fans committed changes out to the analytics cache, the
// event bus and the search index. All are optional and failures only log,
// since the change has already been persisted.
type marketplaceNotifier struct {
	eventBus  providers.EventBus
	index     providers.UserIndex
	analytics AnalyticsInvalidator
}

func (n marketplaceNotifier) publish(ctx context.Context, event *entities.MarketplaceEvent) {
	if event == nil {
		return
	}
	// analytics are dropped synchronously, whether or not the bus delivers
	if n.analytics != nil {
		if err := n.analytics.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Str("event_type", string(event.EventType)).Msg("Failed to invalidate analytics cache")
		}
	}
	if n.eventBus == nil {
		return
	}

	if err := n.eventBus.Publish(ctx, providers.EventChannelMarketplaceUpdates, event); err != nil {
		log.Warn().Err(err).Str("event_type", string(event.EventType)).Msg("Failed to publish marketplace event")
	}
	for _, userID := range event.UserIDs {
		if err := n.eventBus.Publish(ctx, providers.GetUserChannel(userID), event); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("event_type", string(event.EventType)).Msg("Failed to publish user event")
		}
	}
}

func (n marketplaceNotifier) reindex(ctx context.Context, users ...*entities.User) {
	if n.index == nil {
		return
	}
	for _, u := range users {
		if u == nil {
			continue
		}
		if err := n.index.Index(ctx, u); err != nil {
			log.Warn().Err(err).Str("user_id", u.ID).Msg("Failed to update user search index")
		}
	}
}

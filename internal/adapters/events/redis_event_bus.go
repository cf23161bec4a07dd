package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	redisclient "github.com/skillswap/backend/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 100

// channelSubscription is one Redis subscription fanned out to local listeners
type channelSubscription struct {
	pubsub    *redis.PubSub
	listeners map[chan *entities.MarketplaceEvent]struct{}
}

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client   *redisclient.Client
	channels map[string]*channelSubscription
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:   client,
		channels: make(map[string]*channelSubscription),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.MarketplaceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Str("event_type", string(event.EventType)).Msg("Published event")
	return nil
}

// Subscribe returns a channel of events published on channel. The Redis
// subscription is confirmed before Subscribe returns, and the returned channel
// is closed once ctx is done.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.MarketplaceEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, exists := b.channels[channel]
	if !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		sub = &channelSubscription{
			pubsub:    pubsub,
			listeners: make(map[chan *entities.MarketplaceEvent]struct{}),
		}
		b.channels[channel] = sub
		go b.fanOut(channel, sub)
	}

	events := make(chan *entities.MarketplaceEvent, subscriberBuffer)
	sub.listeners[events] = struct{}{}
	log.Debug().Str("channel", channel).Int("subscribers", len(sub.listeners)).Msg("Subscribed to channel")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.removeListener(channel, events)
	}()

	return events, nil
}

// fanOut decodes messages from Redis and hands them to every local listener.
// Slow listeners miss events rather than stall the channel.
func (b *RedisEventBus) fanOut(channel string, sub *channelSubscription) {
	messages := sub.pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var event entities.MarketplaceEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Dropping undecodable event")
				continue
			}

			b.mu.RLock()
			for listener := range sub.listeners {
				e := event
				select {
				case listener <- &e:
				default:
					log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, skipping event")
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) removeListener(channel string, events chan *entities.MarketplaceEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, exists := b.channels[channel]
	if !exists {
		return
	}
	if _, ok := sub.listeners[events]; !ok {
		return
	}

	delete(sub.listeners, events)
	close(events)

	if len(sub.listeners) == 0 {
		if err := b.closeChannelLocked(channel); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("Failed to close subscription")
		}
	}
}

// closeChannelLocked drops the Redis subscription and closes its listeners.
// b.mu must be held.
func (b *RedisEventBus) closeChannelLocked(channel string) error {
	sub, exists := b.channels[channel]
	if !exists {
		return nil
	}
	delete(b.channels, channel)

	for listener := range sub.listeners {
		close(listener)
	}
	sub.listeners = nil

	if err := sub.pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	log.Debug().Str("channel", channel).Msg("Closed subscription")
	return nil
}

// Unsubscribe unsubscribes every local listener from a channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeChannelLocked(channel)
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for channel := range b.channels {
		if err := b.closeChannelLocked(channel); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("errors closing event bus: %w", err)
	}

	log.Info().Msg("Event bus closed")
	return nil
}

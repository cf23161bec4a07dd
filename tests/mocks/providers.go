package mocks

import (
	"context"
	"path"
	"strconv"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
)

// MockCacheProvider is a map-backed CacheProvider
type MockCacheProvider struct {
	mu      sync.RWMutex
	data    map[string][]byte
	deleted []string
}

// NewMockCacheProvider creates an empty cache
func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{data: make(map[string][]byte)}
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return nil, providers.ErrCacheMiss
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MockCacheProvider) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheProvider) Increment(ctx context.Context, key string, expirationSeconds int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	count++
	m.data[key] = []byte(strconv.FormatInt(count, 10))
	return count, nil
}

// Deleted returns the keys removed so far
func (m *MockCacheProvider) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.deleted...)
}

// MockEventBus is an in-process EventBus that records published events
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.MarketplaceEvent
	published   map[string][]*entities.MarketplaceEvent
	PublishErr  error
}

// NewMockEventBus creates an empty bus
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.MarketplaceEvent),
		published:   make(map[string][]*entities.MarketplaceEvent),
	}
}

func (b *MockEventBus) Publish(ctx context.Context, channel string, event *entities.MarketplaceEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PublishErr != nil {
		return b.PublishErr
	}
	b.published[channel] = append(b.published[channel], event)
	for _, ch := range b.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.MarketplaceEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.MarketplaceEvent, 100)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	return ch, nil
}

func (b *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

func (b *MockEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for channel, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, channel)
	}
	return nil
}

// Published returns the events published on channel
func (b *MockEventBus) Published(channel string) []*entities.MarketplaceEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entities.MarketplaceEvent(nil), b.published[channel]...)
}

// MockUserIndex is a testify mock of providers.UserIndex
type MockUserIndex struct {
	mock.Mock
}

func (m *MockUserIndex) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUserIndex) Index(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserIndex) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserIndex) Suggest(ctx context.Context, query string, limit int) ([]providers.UserSuggestion, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]providers.UserSuggestion), args.Error(1)
}

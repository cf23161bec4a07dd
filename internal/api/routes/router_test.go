package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/api/handlers"
	"github.com/skillswap/backend/internal/api/middleware"
	"github.com/skillswap/backend/internal/application/services"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	querysvc "github.com/skillswap/backend/internal/query/services"
	"github.com/skillswap/backend/tests/mocks"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type routerFixture struct {
	handler http.Handler
	cache   *mocks.MockCacheProvider
	repos   *mocks.MemoryRepositories
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	repos := mocks.NewMemoryRepositories()
	repos.Seed(
		[]*entities.User{
			mocks.NewUser("alice", "Alice", "Guitar"),
			mocks.NewUser("bob", "Bob", "Spanish"),
			mocks.NewAdmin("admin"),
		},
		nil, nil, nil,
	)
	st, err := mocks.NewLoadedStore(context.Background(), repos, store.WithClock(mocks.Clock()))
	require.NoError(t, err)

	cache := mocks.NewMockCacheProvider()
	bus := mocks.NewMockEventBus()
	users := services.NewUserService(st, bus, nil)
	swaps := services.NewSwapService(st, bus, nil, nil)
	feedback := services.NewFeedbackService(st, bus, nil, nil)
	messages := services.NewAdminMessageService(st, users, bus)
	search := querysvc.NewUserSearchService(st, nil)
	analytics := querysvc.NewAnalyticsService(st, nil, 0, nil)

	invalidation := services.NewCacheInvalidationService(cache, bus)
	require.NoError(t, invalidation.Start())
	t.Cleanup(invalidation.Stop)

	router := NewRouter(
		handlers.NewUserHandler(users, search, swaps, feedback, st),
		handlers.NewSwapHandler(swaps, users, st),
		handlers.NewFeedbackHandler(feedback, cache),
		handlers.NewAdminHandler(users, swaps, messages, search, analytics, st),
		handlers.NewMessageHandler(messages),
		handlers.NewSSEHandler(bus),
		users,
		st,
		Options{
			CacheMiddleware: middleware.NewCacheMiddleware(cache, 30),
			AllowedOrigins:  middleware.ParseAllowedOrigins(""),
		},
	)

	return &routerFixture{handler: router.SetupRoutes(), cache: cache, repos: repos}
}

func (f *routerFixture) do(method, path, actor string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if actor != "" {
		req.Header.Set(handlers.ActorHeader, actor)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	f.do(http.MethodGet, "/api/messages", "", nil)
	rec = f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "skillswap_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="GET /api/messages"`)
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	f := newRouterFixture(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/analytics"},
		{http.MethodGet, "/api/admin/activity"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPost, "/api/admin/users/bob/ban"},
		{http.MethodGet, "/api/admin/swaps"},
		{http.MethodGet, "/api/admin/messages"},
		{http.MethodDelete, "/api/admin/messages/m1"},
	}

	for _, p := range paths {
		assert.Equal(t, http.StatusUnauthorized, f.do(p.method, p.path, "", nil).Code, p.path)
		assert.Equal(t, http.StatusForbidden, f.do(p.method, p.path, "alice", nil).Code, p.path)
	}
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/admin/analytics", "admin", nil).Code)
	assert.True(t, f.repos.User("bob").IsActive, "rejected ban must not apply")
}

func TestRouter_SearchCacheInvalidatedByProfileChange(t *testing.T) {
	f := newRouterFixture(t)

	first := f.do(http.MethodGet, "/api/users/search?q=a", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", f.do(http.MethodGet, "/api/users/search?q=a", "", nil).Header().Get("X-Cache"))

	rec := f.do(http.MethodPatch, "/api/users/alice", "alice", map[string]interface{}{"location": "Porto"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Eventually(t, func() bool {
		return f.do(http.MethodGet, "/api/users/search?q=a", "", nil).Header().Get("X-Cache") == "MISS"
	}, waitFor, tick)
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/swaps", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	f := newRouterFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/unknown", "", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodDelete, "/api/users/alice", "", nil).Code)
}

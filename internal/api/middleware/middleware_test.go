package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/api/loaders"
	"github.com/skillswap/backend/internal/domain/entities"
	apperrors "github.com/skillswap/backend/pkg/errors"
	"github.com/skillswap/backend/tests/mocks"
)

func okHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestCacheMiddleware(t *testing.T) {
	cache := mocks.NewMockCacheProvider()
	calls := 0
	handler := NewCacheMiddleware(cache, 30).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		okHandler(`{"users":[]}`)(w, r)
	}))

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	first := get("/api/users/search?q=guitar&limit=5")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get("/api/users/search?limit=5&q=guitar")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, `{"users":[]}`, second.Body.String())
	assert.Equal(t, 1, calls)

	get("/api/users/alice")
	get("/api/users/alice")
	assert.Equal(t, 3, calls, "uncached routes always reach the handler")

	require.NoError(t, cache.DeletePattern(context.Background(), "http:cache:users:*"))
	assert.Equal(t, "MISS", get("/api/users/search?q=guitar&limit=5").Header().Get("X-Cache"))
}

func TestCacheMiddleware_SkipsErrorsAndWrites(t *testing.T) {
	cache := mocks.NewMockCacheProvider()
	handler := NewCacheMiddleware(cache, 30).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"bad"}`)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/search?min_rating=9", nil))
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/search", nil))
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestGenerateCacheKey(t *testing.T) {
	a := GenerateCacheKey("users", httptest.NewRequest(http.MethodGet, "/api/users/search?q=a&limit=2", nil))
	b := GenerateCacheKey("users", httptest.NewRequest(http.MethodGet, "/api/users/search?limit=2&q=a", nil))
	c := GenerateCacheKey("users", httptest.NewRequest(http.MethodGet, "/api/users/search?q=b", nil))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "http:cache:users:"))
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{"wildcard", ParseAllowedOrigins(""), "https://a.example", http.MethodGet, "*", http.StatusOK},
		{"listed origin", ParseAllowedOrigins("https://a.example, https://b.example"), "https://b.example", http.MethodGet, "https://b.example", http.StatusOK},
		{"unlisted origin", ParseAllowedOrigins("https://a.example"), "https://evil.example", http.MethodGet, "", http.StatusOK},
		{"preflight", ParseAllowedOrigins(""), "https://a.example", http.MethodOptions, "*", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORSMiddleware(tt.allowed)(okHandler("{}"))
			req := httptest.NewRequest(tt.method, "/api/messages", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-User-ID")
		})
	}
}

type stubResolver struct {
	admins map[string]bool
}

func (s stubResolver) RequireAdmin(ctx context.Context, actorID string) (*entities.User, error) {
	if s.admins[actorID] {
		return mocks.NewAdmin(actorID), nil
	}
	return nil, apperrors.NewUnauthorizedError("administrator privileges required")
}

func TestAdminOnly(t *testing.T) {
	handler := AdminOnly(stubResolver{admins: map[string]bool{"admin": true}})(okHandler(`{"ok":true}`))

	tests := []struct {
		actor string
		want  int
	}{
		{"", http.StatusUnauthorized},
		{"alice", http.StatusForbidden},
		{"admin", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/analytics", nil)
		if tt.actor != "" {
			req.Header.Set("X-User-ID", tt.actor)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "actor %q", tt.actor)
	}
}

func TestResponseOptimization(t *testing.T) {
	handler := ResponseOptimization(okHandler(`{"messages":[]}`))

	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=120")

	gz, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, `{"messages":[]}`, string(body))

	req = httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestResponseOptimization_PassesStreamsThrough(t *testing.T) {
	handler := ResponseOptimization(okHandler("event: connected\n\n"))

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice/stream", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Empty(t, rec.Header().Get("ETag"))
	assert.Equal(t, "event: connected\n\n", rec.Body.String())
}

func TestObservabilityMiddleware_UsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	var seen string
	mux.HandleFunc("GET /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = r.Pattern
		w.WriteHeader(http.StatusTeapot)
	})

	handler := ObservabilityMiddleware(nil)(LoggingMiddleware(mux))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/alice", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "GET /api/users/{id}", seen)
}

func TestLoadersMiddleware(t *testing.T) {
	var attached *loaders.Loaders
	handler := LoadersMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attached = loaders.For(r.Context(), nil)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	first := attached
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, first)
	assert.NotSame(t, first, attached, "each request gets its own loaders")
}

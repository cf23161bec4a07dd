package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/domain/entities"
	tsclient "github.com/skillswap/backend/internal/infrastructure/clients/typesense"
	"github.com/skillswap/backend/pkg/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeTypesense struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeTypesense) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	f.handler(w, r)
}

func newTestIndex(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*TypesenseUserIndex, *fakeTypesense) {
	t.Helper()
	fake := &fakeTypesense{handler: handler}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := tsclient.NewClientWithoutHealthCheck(&config.TypesenseConfig{URL: server.URL, APIKey: "test"})
	return NewTypesenseUserIndex(client), fake
}

func testUser() *entities.User {
	return &entities.User{
		ID:            "u1",
		Name:          "Alice",
		Email:         "alice@example.com",
		SkillsOffered: []string{"Guitar"},
		Availability:  []entities.Availability{entities.AvailabilityWeekends},
		IsPublic:      true,
		IsActive:      true,
		Role:          entities.RoleUser,
		Rating:        4.5,
		JoinDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildUserDocument(t *testing.T) {
	doc := BuildUserDocument(testUser())

	assert.Equal(t, "u1", doc["id"])
	assert.Equal(t, []string{"Guitar"}, doc["skills_offered"])
	assert.Equal(t, []string{}, doc["skills_wanted"])
	assert.Equal(t, []string{"Weekends"}, doc["availability"])
	assert.Equal(t, int64(1741564800), doc["join_date"])
	assert.NotContains(t, doc, "email")
	assert.NotContains(t, doc, "is_active")
}

func TestTypesenseUserIndex_IndexUpsertsDiscoverableUser(t *testing.T) {
	index, fake := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"u1"}`)
	})

	require.NoError(t, index.Index(context.Background(), testUser()))

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/collections/users/documents", req.Path)
	assert.Contains(t, req.Query, "action=upsert")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, "Alice", body["name"])
}

func TestTypesenseUserIndex_IndexRemovesHiddenUser(t *testing.T) {
	index, fake := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Could not find a document with id: u1"}`)
	})

	banned := testUser()
	banned.IsActive = false
	require.NoError(t, index.Index(context.Background(), banned))

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].Method)
	assert.Equal(t, "/collections/users/documents/u1", fake.requests[0].Path)
}

func TestTypesenseUserIndex_DeleteFailure(t *testing.T) {
	index, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"not ready"}`)
	})

	assert.Error(t, index.Delete(context.Background(), "u1"))
}

func TestTypesenseUserIndex_Suggest(t *testing.T) {
	index, fake := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"found": 2, "out_of": 10, "page": 1, "search_time_ms": 1,
			"hits": [
				{"document": {"id": "u1", "name": "Alice", "skills_offered": ["Guitar"], "rating": 4.5}},
				{"document": {"id": "u2", "name": "Guido", "skills_offered": [], "rating": 3.0}}
			]
		}`)
	})

	out, err := index.Suggest(context.Background(), "gui", 5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "u1", out[0].ID)
	assert.Equal(t, []string{"Guitar"}, out[0].SkillsOffered)
	assert.Equal(t, 3.0, out[1].Rating)

	req := fake.requests[0]
	assert.Equal(t, "/collections/users/documents/search", req.Path)
	assert.True(t, strings.Contains(req.Query, "q=gui"))
	assert.True(t, strings.Contains(req.Query, "per_page=5"))
}

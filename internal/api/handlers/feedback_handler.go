package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/application/services"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
)

const (
	feedbackRateLimit  = 20
	feedbackRateWindow = time.Hour
)

// FeedbackHandler handles feedback submissions on completed swaps
type FeedbackHandler struct {
	service *services.FeedbackService
	cache   providers.CacheProvider
	local   *localRateLimiter
}

// NewFeedbackHandler creates a new feedback handler. The rate limit is
// shared through cache when one is given and kept in process otherwise.
func NewFeedbackHandler(service *services.FeedbackService, cache providers.CacheProvider) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		cache:   cache,
		local:   newLocalRateLimiter(),
	}
}

type recordFeedbackRequest struct {
	ToUserID string `json:"to_user_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// RecordFeedback handles POST /api/swaps/{id}/feedback
func (h *FeedbackHandler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req recordFeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	allowed, retryAfter := h.allowRequest(r.Context(), "feedback:rate:"+actor)
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	feedback, err := h.service.Record(r.Context(), entities.RecordFeedback{
		SwapRequestID: r.PathValue("id"),
		FromUserID:    actor,
		ToUserID:      req.ToUserID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, feedback)
}

func (h *FeedbackHandler) allowRequest(ctx context.Context, key string) (bool, time.Duration) {
	if h.cache == nil {
		return h.local.allow(key, feedbackRateLimit, feedbackRateWindow)
	}

	count, err := h.cache.Increment(ctx, key, int(feedbackRateWindow.Seconds()))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Shared rate limit unavailable, falling back to local limiter")
		return h.local.allow(key, feedbackRateLimit, feedbackRateWindow)
	}
	if count > feedbackRateLimit {
		return false, feedbackRateWindow
	}
	return true, feedbackRateWindow
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
	now    func() time.Time
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
		now:    time.Now,
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := state.resetAt.Sub(now)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

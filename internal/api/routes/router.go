package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skillswap/backend/internal/api/handlers"
	"github.com/skillswap/backend/internal/api/loaders"
	"github.com/skillswap/backend/internal/api/middleware"
	"github.com/skillswap/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	userHandler     *handlers.UserHandler
	swapHandler     *handlers.SwapHandler
	feedbackHandler *handlers.FeedbackHandler
	adminHandler    *handlers.AdminHandler
	messageHandler  *handlers.MessageHandler
	sseHandler      *handlers.SSEHandler

	admins          middleware.AdminResolver
	loaderSource    loaders.Source
	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// Options carries the optional pieces of the HTTP stack
type Options struct {
	// CacheMiddleware is nil when no shared cache is configured
	CacheMiddleware *middleware.CacheMiddleware
	AllowedOrigins  []string
	Metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	userHandler *handlers.UserHandler,
	swapHandler *handlers.SwapHandler,
	feedbackHandler *handlers.FeedbackHandler,
	adminHandler *handlers.AdminHandler,
	messageHandler *handlers.MessageHandler,
	sseHandler *handlers.SSEHandler,
	admins middleware.AdminResolver,
	loaderSource loaders.Source,
	opts Options,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		userHandler:     userHandler,
		swapHandler:     swapHandler,
		feedbackHandler: feedbackHandler,
		adminHandler:    adminHandler,
		messageHandler:  messageHandler,
		sseHandler:      sseHandler,
		admins:          admins,
		loaderSource:    loaderSource,
		cacheMiddleware: opts.CacheMiddleware,
		allowedOrigins:  opts.AllowedOrigins,
		metrics:         opts.Metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})
	r.mux.Handle("GET /metrics", promhttp.Handler())

	// Users
	r.mux.HandleFunc("POST /api/users", r.userHandler.Register)
	r.mux.HandleFunc("GET /api/users/search", r.userHandler.Search)
	r.mux.HandleFunc("GET /api/users/suggest", r.userHandler.Suggest)
	r.mux.HandleFunc("GET /api/users/{id}", r.userHandler.GetUser)
	r.mux.HandleFunc("PATCH /api/users/{id}", r.userHandler.UpdateProfile)
	r.mux.HandleFunc("GET /api/users/{id}/feedback", r.userHandler.ListFeedback)
	r.mux.HandleFunc("GET /api/users/{id}/swaps", r.userHandler.SwapDashboard)
	r.mux.HandleFunc("GET /api/users/{id}/stream", r.sseHandler.StreamUserEvents)

	// Swap requests
	r.mux.HandleFunc("POST /api/swaps", r.swapHandler.CreateSwap)
	r.mux.HandleFunc("GET /api/swaps/{id}", r.swapHandler.GetSwap)
	r.mux.HandleFunc("POST /api/swaps/{id}/feedback", r.feedbackHandler.RecordFeedback)
	r.mux.HandleFunc("POST /api/swaps/{id}/{action}", r.swapHandler.ApplyCommand)

	// Announcements
	r.mux.HandleFunc("GET /api/messages", r.messageHandler.ListActive)

	// Admin
	admin := middleware.AdminOnly(r.admins)
	r.mux.Handle("GET /api/admin/analytics", admin(http.HandlerFunc(r.adminHandler.Analytics)))
	r.mux.Handle("GET /api/admin/activity", admin(http.HandlerFunc(r.adminHandler.Activity)))
	r.mux.Handle("GET /api/admin/users", admin(http.HandlerFunc(r.adminHandler.SearchUsers)))
	r.mux.Handle("POST /api/admin/users/{id}/ban", admin(http.HandlerFunc(r.adminHandler.BanUser)))
	r.mux.Handle("POST /api/admin/users/{id}/unban", admin(http.HandlerFunc(r.adminHandler.UnbanUser)))
	r.mux.Handle("GET /api/admin/swaps", admin(http.HandlerFunc(r.adminHandler.ListSwaps)))
	r.mux.Handle("GET /api/admin/messages", admin(http.HandlerFunc(r.adminHandler.ListMessages)))
	r.mux.Handle("POST /api/admin/messages", admin(http.HandlerFunc(r.adminHandler.CreateMessage)))
	r.mux.Handle("PATCH /api/admin/messages/{id}", admin(http.HandlerFunc(r.adminHandler.UpdateMessage)))
	r.mux.Handle("DELETE /api/admin/messages/{id}", admin(http.HandlerFunc(r.adminHandler.DeleteMessage)))

	// Apply middleware in reverse order (last middleware wraps first).
	// Observability must hand its request straight down to the mux so the
	// matched pattern is visible after serving.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoadersMiddleware(r.loaderSource)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

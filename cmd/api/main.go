package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skillswap/backend/internal/adapters/cache"
	"github.com/skillswap/backend/internal/adapters/database"
	"github.com/skillswap/backend/internal/adapters/events"
	"github.com/skillswap/backend/internal/adapters/search"
	"github.com/skillswap/backend/internal/api/handlers"
	"github.com/skillswap/backend/internal/api/middleware"
	"github.com/skillswap/backend/internal/api/routes"
	"github.com/skillswap/backend/internal/application/services"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/providers"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
	"github.com/skillswap/backend/internal/infrastructure/clients/redis"
	"github.com/skillswap/backend/internal/infrastructure/clients/typesense"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	queryadapters "github.com/skillswap/backend/internal/query/adapters"
	queryservices "github.com/skillswap/backend/internal/query/services"
	"github.com/skillswap/backend/pkg/config"
)

func main() {
	cfg, err := config.LoadEnvironment(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// PostgreSQL is the system of record; without it there is nothing to serve
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	if err := pgClient.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}
	log.Info().Msg("PostgreSQL client initialized successfully")

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; running without cache and event bus")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
		log.Info().Msg("Redis client initialized successfully")
	}

	var userIndex providers.UserIndex
	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("Typesense unavailable; search falls back to the in-memory scan")
	} else {
		index := search.NewTypesenseUserIndex(tsClient)
		if err := index.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to init Typesense schema")
		} else {
			userIndex = index
			log.Info().Str("collection", tsClient.Collection()).Msg("Typesense client initialized successfully")
		}
	}

	st := store.New(database.NewRepositories(pgClient))
	if err := st.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load marketplace state")
	}

	userService := services.NewUserService(st, eventBus, userIndex)
	swapService := services.NewSwapService(st, eventBus, userIndex, metrics)
	feedbackService := services.NewFeedbackService(st, eventBus, userIndex, metrics)
	messageService := services.NewAdminMessageService(st, userService, eventBus)

	var analyticsCache queryservices.CacheProvider
	if cacheProvider != nil {
		analyticsCache = queryadapters.NewQueryCacheAdapter(cacheProvider)
	}
	searchService := queryservices.NewUserSearchService(st, userIndex)
	analyticsService := queryservices.NewAnalyticsService(
		st,
		analyticsCache,
		time.Duration(cfg.Cache.AnalyticsTTLSeconds)*time.Second,
		metrics,
	)
	if analyticsCache != nil {
		userService.SetAnalyticsInvalidator(analyticsService)
		swapService.SetAnalyticsInvalidator(analyticsService)
		feedbackService.SetAnalyticsInvalidator(analyticsService)
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil && eventBus != nil {
		invalidation := services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := invalidation.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start cache invalidation service")
		} else {
			defer invalidation.Stop()
			// Cached HTTP responses are only safe while invalidation runs
			cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, cfg.Cache.SearchTTLSeconds)
			log.Info().Msg("Cache invalidation service started successfully")
		}

		warming := services.NewCacheWarmingService(map[string]services.CacheWarmer{
			"analytics": analyticsService,
		})
		warming.StartPeriodicWarming(ctx, cfg.Cache.WarmInterval)
	}

	router := routes.NewRouter(
		handlers.NewUserHandler(userService, searchService, swapService, feedbackService, st),
		handlers.NewSwapHandler(swapService, userService, st),
		handlers.NewFeedbackHandler(feedbackService, cacheProvider),
		handlers.NewAdminHandler(userService, swapService, messageService, searchService, analyticsService, st),
		handlers.NewMessageHandler(messageService),
		handlers.NewSSEHandler(eventBus),
		userService,
		st,
		routes.Options{
			CacheMiddleware: cacheMiddleware,
			AllowedOrigins:  middleware.ParseAllowedOrigins(cfg.App.AllowedOrigins),
			Metrics:         metrics,
		},
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

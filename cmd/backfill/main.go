package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skillswap/backend/internal/adapters/database"
	"github.com/skillswap/backend/internal/adapters/search"
	"github.com/skillswap/backend/internal/application/services"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/providers"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
	"github.com/skillswap/backend/internal/infrastructure/clients/typesense"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	"github.com/skillswap/backend/pkg/config"
)

func main() {
	var dryRun bool
	var reindex bool
	flag.BoolVar(&dryRun, "dry-run", false, "report drifted ratings and swap counts without writing")
	flag.BoolVar(&reindex, "reindex", true, "push corrected users to the search index")
	flag.Parse()

	cfg, err := config.LoadEnvironment(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("skillswap-backfill", cfg.App.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st := store.New(database.NewRepositories(pgClient))
	if err := st.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load marketplace state")
	}

	var index providers.UserIndex
	if reindex && !dryRun {
		if tsClient, err := typesense.NewClient(&cfg.Typesense); err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable; corrected users will not be reindexed")
		} else {
			index = search.NewTypesenseUserIndex(tsClient)
		}
	}

	svc := services.NewReputationBackfillService(st, index, dryRun)

	start := time.Now()
	log.Info().Bool("dry_run", dryRun).Int("users", len(st.Users())).Msg("Starting reputation backfill")

	summary, err := svc.BackfillAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Backfill interrupted")
	}
	if summary == nil {
		return
	}

	for _, c := range summary.Corrections {
		log.Info().
			Str("user_id", c.UserID).
			Float64("old_rating", c.OldRating).
			Float64("new_rating", c.NewRating).
			Int("old_total_swaps", c.OldTotalSwaps).
			Int("new_total_swaps", c.NewTotalSwaps).
			Msg("Reputation drift")
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("processed", summary.TotalProcessed).
		Int("corrected", summary.CorrectedCount).
		Int("failed", summary.FailureCount).
		Bool("dry_run", dryRun).
		Msg("Backfill complete")

	if summary.FailureCount > 0 {
		os.Exit(1)
	}
}

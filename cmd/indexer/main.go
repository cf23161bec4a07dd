package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skillswap/backend/internal/adapters/database"
	"github.com/skillswap/backend/internal/adapters/search"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
	"github.com/skillswap/backend/internal/infrastructure/clients/typesense"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	"github.com/skillswap/backend/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "drop the users collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.LoadEnvironment(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger("skillswap-indexer", cfg.App.Env)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}
	interval, err := parseInterval(intervalValue)
	if err != nil {
		log.Fatal().Err(err).Str("interval", intervalValue).Msg("Invalid interval")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("Reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func parseInterval(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	interval, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if interval <= 0 {
		return 0, errors.New("interval must be greater than zero")
	}
	return interval, nil
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	st := store.New(database.NewRepositories(pgClient))
	if err := st.Load(ctx); err != nil {
		return err
	}

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", tsClient.Collection()).Msg("Dropping users collection")
		if err := tsClient.DropCollection(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to drop collection")
		}
	}

	index := search.NewTypesenseUserIndex(tsClient)
	if err := index.InitSchema(ctx); err != nil {
		return err
	}

	result := indexUsers(ctx, st.Users(), index)
	log.Info().
		Int("indexed", result.Indexed).
		Int("removed", result.Removed).
		Int("failed", result.Failed).
		Msg("Indexing complete")
	return nil
}

type indexResult struct {
	Indexed int
	Removed int
	Failed  int
}

// indexUsers pushes every user through the index. Users who are private,
// banned or admins are removed by the index itself.
func indexUsers(ctx context.Context, users []*entities.User, index providers.UserIndex) indexResult {
	var result indexResult
	for _, u := range users {
		if ctx.Err() != nil {
			break
		}
		if err := index.Index(ctx, u); err != nil {
			result.Failed++
			log.Warn().Err(err).Str("user_id", u.ID).Msg("Failed to index user")
			continue
		}
		if u.IsDiscoverable() {
			result.Indexed++
		} else {
			result.Removed++
		}
	}
	return result
}

package main

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/skillswap/backend/internal/adapters/database"
	"github.com/skillswap/backend/internal/adapters/search"
	"github.com/skillswap/backend/internal/application/services"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
	"github.com/skillswap/backend/internal/infrastructure/clients/typesense"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	"github.com/skillswap/backend/pkg/config"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

var demoUsers = []entities.RegisterUser{
	{
		Name:          "Admin",
		Email:         "admin@skillswap.local",
		Role:          entities.RoleAdmin,
		SkillsOffered: []string{},
	},
	{
		Name:          "Maya Chen",
		Email:         "maya@skillswap.local",
		Location:      "Lisbon",
		SkillsOffered: []string{"Guitar", "Music Theory"},
		SkillsWanted:  []string{"Spanish"},
		Availability:  []entities.Availability{entities.AvailabilityEvenings, entities.AvailabilityWeekends},
	},
	{
		Name:          "Diego Ramos",
		Email:         "diego@skillswap.local",
		Location:      "Porto",
		SkillsOffered: []string{"Spanish", "Cooking"},
		SkillsWanted:  []string{"Guitar"},
		Availability:  []entities.Availability{entities.AvailabilityWeekdays},
	},
	{
		Name:          "Priya Nair",
		Email:         "priya@skillswap.local",
		Location:      "Lisbon",
		SkillsOffered: []string{"Photography", "Python"},
		SkillsWanted:  []string{"Cooking"},
		Availability:  []entities.Availability{entities.AvailabilityMornings},
	},
	{
		Name:          "Sam Okafor",
		Email:         "sam@skillswap.local",
		Location:      "Braga",
		SkillsOffered: []string{"Chess"},
		SkillsWanted:  []string{"Photography"},
		Availability:  []entities.Availability{entities.AvailabilityAfternoons},
		IsPublic:      boolPtr(false),
	},
}

func main() {
	cfg, err := config.LoadEnvironment(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("skillswap-seed", cfg.App.Env)

	ctx := context.Background()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	if err := pgClient.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE feedback, swap_requests, admin_messages, users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to truncate tables")
		}
	}

	var index providers.UserIndex
	if tsClient, err := typesense.NewClient(&cfg.Typesense); err != nil {
		log.Warn().Err(err).Msg("Typesense unavailable; seeded users will not be indexed")
	} else {
		tsIndex := search.NewTypesenseUserIndex(tsClient)
		if err := tsIndex.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to init Typesense schema")
		} else {
			index = tsIndex
		}
	}

	st := store.New(database.NewRepositories(pgClient))
	if err := st.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load marketplace state")
	}

	users := services.NewUserService(st, nil, index)
	swaps := services.NewSwapService(st, nil, index, nil)
	feedback := services.NewFeedbackService(st, nil, index, nil)
	messages := services.NewAdminMessageService(st, users, nil)

	ids := map[string]string{}
	for _, reg := range demoUsers {
		u, err := users.Register(ctx, reg)
		switch {
		case err == nil:
			log.Info().Str("email", u.Email).Str("id", u.ID).Msg("Seeded user")
		case apperrors.IsType(err, apperrors.ErrorTypeConflict):
			u = findByEmail(st, reg.Email)
			if u == nil {
				log.Fatal().Str("email", reg.Email).Msg("User reported as existing but not found")
			}
			log.Info().Str("email", u.Email).Msg("User already exists")
		default:
			log.Fatal().Err(err).Str("email", reg.Email).Msg("Failed to seed user")
		}
		ids[localPart(reg.Email)] = u.ID
	}

	if len(st.SwapRequests()) == 0 {
		seedSwaps(ctx, swaps, feedback, ids)
	}

	if len(st.AdminMessages()) == 0 {
		title := "Welcome to SkillSwap"
		content := "Browse members, offer what you know and learn something new."
		msgType := entities.AdminMessageInfo
		if _, err := messages.Create(ctx, ids["admin"], entities.AdminMessageInput{
			Title:   &title,
			Content: &content,
			Type:    &msgType,
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed admin message")
		}
	}

	log.Info().
		Int("users", len(st.Users())).
		Int("swaps", len(st.SwapRequests())).
		Int("feedback", len(st.Feedback())).
		Msg("Seeding complete")
}

// seedSwaps drives a few requests through the lifecycle so the dashboard
// and analytics have something to show
func seedSwaps(ctx context.Context, swaps *services.SwapService, feedback *services.FeedbackService, ids map[string]string) {
	create := func(from, to, offered, wanted string) *entities.SwapRequest {
		sw, err := swaps.Create(ctx, entities.CreateSwapRequest{
			FromUserID:   ids[from],
			ToUserID:     ids[to],
			SkillOffered: offered,
			SkillWanted:  wanted,
			Message:      "Happy to trade sessions!",
		})
		if err != nil {
			log.Fatal().Err(err).Str("from", from).Str("to", to).Msg("Failed to create swap")
		}
		return sw
	}
	apply := func(action, swapID, actor string) {
		cmd, _ := entities.NewSwapCommand(action, swapID, ids[actor])
		if _, err := swaps.Apply(ctx, cmd); err != nil {
			log.Fatal().Err(err).Str("action", action).Str("swap_id", swapID).Msg("Failed to apply swap command")
		}
	}

	done := create("maya", "diego", "Guitar", "Spanish")
	apply("accept", done.ID, "diego")
	apply("complete", done.ID, "maya")
	for _, fb := range []entities.RecordFeedback{
		{SwapRequestID: done.ID, FromUserID: ids["maya"], Rating: 5, Comment: "Patient and fun teacher."},
		{SwapRequestID: done.ID, FromUserID: ids["diego"], Rating: 4, Comment: "Great first lessons."},
	} {
		if _, err := feedback.Record(ctx, fb); err != nil {
			log.Fatal().Err(err).Msg("Failed to record feedback")
		}
	}

	accepted := create("priya", "diego", "Photography", "Cooking")
	apply("accept", accepted.ID, "diego")

	create("diego", "priya", "Cooking", "Python")

	rejected := create("maya", "priya", "Music Theory", "Photography")
	apply("reject", rejected.ID, "priya")
}

func findByEmail(st *store.Store, email string) *entities.User {
	for _, u := range st.Users() {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func localPart(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

func boolPtr(v bool) *bool {
	return &v
}

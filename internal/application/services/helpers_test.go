package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/application/services"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/tests/mocks"
)

type fixture struct {
	repos    *mocks.MemoryRepositories
	store    *store.Store
	bus      *mocks.MockEventBus
	users    *services.UserService
	swaps    *services.SwapService
	feedback *services.FeedbackService
	messages *services.AdminMessageService
}

// newFixture seeds Alice (Guitar), Bob (Spanish), Carol (Cooking) and an admin
func newFixture(t *testing.T, swaps ...*entities.SwapRequest) *fixture {
	t.Helper()

	repos := mocks.NewMemoryRepositories()
	repos.Seed(
		[]*entities.User{
			mocks.NewUser("alice", "Alice", "Guitar"),
			mocks.NewUser("bob", "Bob", "Spanish"),
			mocks.NewUser("carol", "Carol", "Cooking"),
			mocks.NewAdmin("admin"),
		},
		swaps, nil, nil,
	)
	st, err := mocks.NewLoadedStore(context.Background(), repos, store.WithClock(mocks.Clock()))
	require.NoError(t, err)

	bus := mocks.NewMockEventBus()
	users := services.NewUserService(st, bus, nil)
	return &fixture{
		repos:    repos,
		store:    st,
		bus:      bus,
		users:    users,
		swaps:    services.NewSwapService(st, bus, nil, nil),
		feedback: services.NewFeedbackService(st, bus, nil, nil),
		messages: services.NewAdminMessageService(st, users, bus),
	}
}

func (f *fixture) user(t *testing.T, id string) *entities.User {
	t.Helper()
	u, err := f.store.User(id)
	require.NoError(t, err)
	return u
}

func (f *fixture) swap(t *testing.T, id string) *entities.SwapRequest {
	t.Helper()
	sw, err := f.store.SwapRequest(id)
	require.NoError(t, err)
	return sw
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

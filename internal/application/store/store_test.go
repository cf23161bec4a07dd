package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	apperrors "github.com/skillswap/backend/pkg/errors"
	"github.com/skillswap/backend/tests/mocks"
)

func seededRepos() *mocks.MemoryRepositories {
	repos := mocks.NewMemoryRepositories()
	repos.Seed(
		[]*entities.User{mocks.NewUser("u1", "Alice", "Go"), mocks.NewUser("u2", "Bob", "Piano")},
		[]*entities.SwapRequest{mocks.NewSwap("s1", "u1", "u2", "Go", "Piano", entities.SwapStatusPending)},
		[]*entities.Feedback{mocks.NewFeedback("f1", "s0", "u1", "u2", 4)},
		[]*entities.AdminMessage{{ID: "m1", Title: "Hello", Content: "Welcome", Type: entities.AdminMessageInfo, IsActive: true}},
	)
	return repos
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()
	s, err := mocks.NewLoadedStore(ctx, seededRepos())
	require.NoError(t, err)

	users := s.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "u2", users[1].ID)
	assert.Len(t, s.SwapRequests(), 1)
	assert.Len(t, s.Feedback(), 1)
	assert.Len(t, s.FeedbackFor("u2"), 1)
	assert.Empty(t, s.FeedbackFor("u1"))
	assert.Len(t, s.AdminMessages(), 1)
}

func TestStore_Load_RepositoryFailure(t *testing.T) {
	repos := seededRepos()
	repos.FailOn(mocks.OpSwapsList, errors.New("connection refused"))

	s := store.New(repos.StoreRepositories())
	err := s.Load(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypePersistence))
	assert.Empty(t, s.Users())
}

func TestStore_Lookups(t *testing.T) {
	s, err := mocks.NewLoadedStore(context.Background(), seededRepos())
	require.NoError(t, err)

	_, err = s.User("missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = s.SwapRequest("missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = s.AdminMessage("missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	byIDs := s.UsersByIDs([]string{"u2", "missing", "u1"})
	require.Len(t, byIDs, 3)
	assert.Equal(t, "Bob", byIDs[0].Name)
	assert.Nil(t, byIDs[1])
	assert.Equal(t, "Alice", byIDs[2].Name)
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	s, err := mocks.NewLoadedStore(context.Background(), seededRepos())
	require.NoError(t, err)

	u, err := s.User("u1")
	require.NoError(t, err)
	u.Name = "Mallory"
	u.SkillsOffered[0] = "Forgery"

	again, err := s.User("u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)
	assert.Equal(t, []string{"Go"}, again.SkillsOffered)
}

func TestStore_Mutate_AppliesAfterPersist(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos()
	s, err := mocks.NewLoadedStore(ctx, repos)
	require.NoError(t, err)

	err = s.Mutate(ctx, "accept swap request", func(tx *store.Txn) error {
		sw, err := tx.SwapRequest("s1")
		if err != nil {
			return err
		}
		sw.Status = entities.SwapStatusAccepted
		tx.UpdateSwapRequest(sw)

		staged, err := tx.SwapRequest("s1")
		require.NoError(t, err)
		assert.Equal(t, entities.SwapStatusAccepted, staged.Status)
		return nil
	})
	require.NoError(t, err)

	sw, err := s.SwapRequest("s1")
	require.NoError(t, err)
	assert.Equal(t, entities.SwapStatusAccepted, sw.Status)
	assert.Equal(t, entities.SwapStatusAccepted, repos.SwapRequest("s1").Status)
}

func TestStore_Mutate_PersistenceFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos()
	s, err := mocks.NewLoadedStore(ctx, repos)
	require.NoError(t, err)

	repos.FailOn(mocks.OpUsersUpdate, errors.New("disk full"))

	err = s.Mutate(ctx, "complete swap request", func(tx *store.Txn) error {
		sw, _ := tx.SwapRequest("s1")
		sw.Status = entities.SwapStatusCompleted
		tx.UpdateSwapRequest(sw)

		u, _ := tx.User("u1")
		u.TotalSwaps++
		tx.UpdateUser(u)
		return nil
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypePersistence))

	sw, _ := s.SwapRequest("s1")
	assert.Equal(t, entities.SwapStatusPending, sw.Status)
	u, _ := s.User("u1")
	assert.Equal(t, 0, u.TotalSwaps)

	// the swap update that did reach the repository was rolled back
	assert.Equal(t, entities.SwapStatusPending, repos.SwapRequest("s1").Status)
}

func TestStore_Mutate_CallbackErrorSkipsPersistence(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos()
	s, err := mocks.NewLoadedStore(ctx, repos)
	require.NoError(t, err)
	before := len(repos.Calls())

	boom := apperrors.NewValidationError("nope")
	err = s.Mutate(ctx, "create user", func(tx *store.Txn) error {
		tx.CreateUser(mocks.NewUser("u3", "Carol"))
		return boom
	})

	assert.Equal(t, boom, err)
	assert.Len(t, repos.Calls(), before)
	assert.Len(t, s.Users(), 2)
}

func TestStore_Mutate_CreateAndDeleteOrdering(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos()
	s, err := mocks.NewLoadedStore(ctx, repos)
	require.NoError(t, err)

	require.NoError(t, s.Mutate(ctx, "create user", func(tx *store.Txn) error {
		assert.Nil(t, tx.UserByEmail("carol@example.com"))
		tx.CreateUser(&entities.User{ID: "u3", Name: "Carol", Email: "Carol@Example.com"})
		assert.NotNil(t, tx.UserByEmail(" carol@example.com"))
		return nil
	}))

	require.NoError(t, s.Mutate(ctx, "delete admin message", func(tx *store.Txn) error {
		tx.DeleteAdminMessage("m1")
		_, err := tx.AdminMessage("m1")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		return nil
	}))

	users := s.Users()
	require.Len(t, users, 3)
	assert.Equal(t, "u3", users[2].ID)
	assert.Empty(t, s.AdminMessages())
	assert.Equal(t, 0, repos.MessageCount())
}

func TestStore_Mutate_NoOpsSkipsRepositories(t *testing.T) {
	ctx := context.Background()
	repos := seededRepos()
	s, err := mocks.NewLoadedStore(ctx, repos)
	require.NoError(t, err)
	before := len(repos.Calls())

	require.NoError(t, s.Mutate(ctx, "noop", func(tx *store.Txn) error { return nil }))
	assert.Len(t, repos.Calls(), before)
}

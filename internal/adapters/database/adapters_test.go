package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

var ts = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return postgres.NewClientFromDB(db), mock
}

func userColumnNames() []string {
	names := make([]string, 0, len(userColumns))
	for _, c := range userColumns {
		names = append(names, c.(string))
	}
	return names
}

func TestUserAdapter_List(t *testing.T) {
	client, mock := setupMockDB(t)

	rows := sqlmock.NewRows(userColumnNames()).
		AddRow("u1", "Alice", "alice@example.com", "Lisbon", "", "{Guitar,\"Music Theory\"}", "{}", "{Weekends}",
			true, "user", 4.5, 2, true, ts, ts, ts).
		AddRow("a1", "Admin", "admin@example.com", "", "", "{}", "{}", "{}",
			false, "admin", 5.0, 0, true, ts, ts, ts)
	mock.ExpectQuery(`SELECT .+ FROM "users" ORDER BY "join_date" ASC`).WillReturnRows(rows)

	users, err := NewUserAdapter(client).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	alice := users[0]
	assert.Equal(t, []string{"Guitar", "Music Theory"}, alice.SkillsOffered)
	assert.Equal(t, []string{}, alice.SkillsWanted)
	assert.Equal(t, []entities.Availability{entities.AvailabilityWeekends}, alice.Availability)
	assert.Equal(t, 4.5, alice.Rating)
	assert.Equal(t, 2, alice.TotalSwaps)
	assert.True(t, users[1].IsAdmin())
}

func TestUserAdapter_ListError(t *testing.T) {
	client, mock := setupMockDB(t)
	mock.ExpectQuery(`FROM "users"`).WillReturnError(errors.New("connection reset"))

	_, err := NewUserAdapter(client).List(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestUserAdapter_GetByIDNotFound(t *testing.T) {
	client, mock := setupMockDB(t)
	mock.ExpectQuery(`FROM "users" WHERE \("id" = \$1\)`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userColumnNames()))

	_, err := NewUserAdapter(client).GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestUserAdapter_CreateAndUpdate(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewUserAdapter(client)

	user := &entities.User{
		ID: "u1", Name: "Alice", Email: "alice@example.com",
		SkillsOffered: []string{"Guitar"},
		Availability:  []entities.Availability{entities.AvailabilityEvenings},
		IsPublic:      true, Role: entities.RoleUser, Rating: 5, IsActive: true,
		JoinDate: ts, CreatedAt: ts, UpdatedAt: ts,
	}

	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, adapter.Create(context.Background(), user))

	mock.ExpectExec(`UPDATE "users" SET .+ WHERE \("id" = \$\d+\)`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, adapter.Update(context.Background(), user))

	mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 0))
	err := adapter.Update(context.Background(), user)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestSwapRequestAdapter(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewSwapRequestAdapter(client)
	ctx := context.Background()

	columns := []string{"id", "from_user_id", "to_user_id", "skill_offered", "skill_wanted", "message", "status", "created_at", "updated_at"}
	mock.ExpectQuery(`SELECT .+ FROM "swap_requests"`).WillReturnRows(
		sqlmock.NewRows(columns).AddRow("s1", "u1", "u2", "Guitar", "Spanish", "hi", "accepted", ts, ts.Add(time.Hour)))

	swaps, err := adapter.List(ctx)
	require.NoError(t, err)
	require.Len(t, swaps, 1)
	assert.Equal(t, entities.SwapStatusAccepted, swaps[0].Status)
	assert.Equal(t, ts.Add(time.Hour), swaps[0].UpdatedAt)

	mock.ExpectExec(`INSERT INTO "swap_requests"`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, adapter.Create(ctx, swaps[0]))

	swaps[0].Status = entities.SwapStatusCompleted
	mock.ExpectExec(`UPDATE "swap_requests" SET "status"=\$1,"updated_at"=\$2 WHERE \("id" = \$3\)`).
		WithArgs("completed", sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, adapter.Update(ctx, swaps[0]))

	mock.ExpectQuery(`FROM "swap_requests"`).WillReturnRows(sqlmock.NewRows(columns))
	_, err = adapter.GetByID(ctx, "nope")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestFeedbackAdapter(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewFeedbackAdapter(client)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM "feedback"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "swap_request_id", "from_user_id", "to_user_id", "rating", "comment", "created_at"}).
			AddRow("f1", "s1", "u1", "u2", 4, "great", ts))

	feedback, err := adapter.List(ctx)
	require.NoError(t, err)
	require.Len(t, feedback, 1)
	assert.Equal(t, 4, feedback[0].Rating)

	mock.ExpectExec(`INSERT INTO "feedback"`).WillReturnError(errors.New("duplicate key"))
	err = adapter.Create(ctx, feedback[0])
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))

	assert.Error(t, adapter.Create(ctx, nil))
}

func TestAdminMessageAdapter(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewAdminMessageAdapter(client)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM "admin_messages"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "title", "content", "type", "is_active", "created_at"}).
			AddRow("m1", "Downtime", "Sunday 2am", "maintenance", true, ts))

	messages, err := adapter.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, entities.AdminMessageMaintenance, messages[0].Type)

	mock.ExpectExec(`UPDATE "admin_messages"`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, adapter.Update(ctx, messages[0]))

	mock.ExpectExec(`DELETE FROM "admin_messages" WHERE \("id" = \$1\)`).
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, adapter.Delete(ctx, "m1"))

	mock.ExpectExec(`DELETE FROM "admin_messages"`).WillReturnResult(sqlmock.NewResult(0, 0))
	err = adapter.Delete(ctx, "m1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestNewRepositories_WritesShareTransaction(t *testing.T) {
	client, mock := setupMockDB(t)
	repos := NewRepositories(client)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "swap_requests"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repos.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := repos.SwapRequests.Update(ctx, &entities.SwapRequest{ID: "s1", Status: entities.SwapStatusCompleted, UpdatedAt: ts}); err != nil {
			return err
		}
		return repos.Users.Update(ctx, &entities.User{ID: "gone"})
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

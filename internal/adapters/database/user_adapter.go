package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/repositories"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

const usersTable = "users"

var userColumns = []interface{}{
	"id", "name", "email", "location", "profile_photo",
	"skills_offered", "skills_wanted", "availability",
	"is_public", "role", "rating", "total_swaps", "is_active",
	"join_date", "created_at", "updated_at",
}

type userRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	Email         string         `db:"email"`
	Location      string         `db:"location"`
	ProfilePhoto  string         `db:"profile_photo"`
	SkillsOffered pq.StringArray `db:"skills_offered"`
	SkillsWanted  pq.StringArray `db:"skills_wanted"`
	Availability  pq.StringArray `db:"availability"`
	IsPublic      bool           `db:"is_public"`
	Role          string         `db:"role"`
	Rating        float64        `db:"rating"`
	TotalSwaps    int            `db:"total_swaps"`
	IsActive      bool           `db:"is_active"`
	JoinDate      time.Time      `db:"join_date"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r *userRow) toEntity() *entities.User {
	availability := make([]entities.Availability, 0, len(r.Availability))
	for _, a := range r.Availability {
		availability = append(availability, entities.Availability(a))
	}
	return &entities.User{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Location:      r.Location,
		ProfilePhoto:  r.ProfilePhoto,
		SkillsOffered: nonNil(r.SkillsOffered),
		SkillsWanted:  nonNil(r.SkillsWanted),
		Availability:  availability,
		IsPublic:      r.IsPublic,
		Role:          entities.Role(r.Role),
		Rating:        r.Rating,
		TotalSwaps:    r.TotalSwaps,
		IsActive:      r.IsActive,
		JoinDate:      r.JoinDate.UTC(),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func userRecord(u *entities.User) goqu.Record {
	availability := make(pq.StringArray, 0, len(u.Availability))
	for _, a := range u.Availability {
		availability = append(availability, string(a))
	}
	return goqu.Record{
		"name":           u.Name,
		"email":          u.Email,
		"location":       u.Location,
		"profile_photo":  u.ProfilePhoto,
		"skills_offered": pq.StringArray(nonNil(u.SkillsOffered)),
		"skills_wanted":  pq.StringArray(nonNil(u.SkillsWanted)),
		"availability":   availability,
		"is_public":      u.IsPublic,
		"role":           string(u.Role),
		"rating":         u.Rating,
		"total_swaps":    u.TotalSwaps,
		"is_active":      u.IsActive,
		"join_date":      u.JoinDate,
		"updated_at":     u.UpdatedAt,
	}
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{client: client}
}

// List returns every user, oldest first
func (a *UserAdapter) List(ctx context.Context) ([]*entities.User, error) {
	query, args, err := build(dialect.From(usersTable).
		Select(userColumns...).
		Order(goqu.C("join_date").Asc(), goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Prepared(true), "list users")
	if err != nil {
		return nil, err
	}

	var rows []userRow
	if err := sqlx.SelectContext(ctx, a.client.Executor(ctx), &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]*entities.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toEntity())
	}
	return users, nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	query, args, err := build(dialect.From(usersTable).
		Select(userColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true), "get user")
	if err != nil {
		return nil, err
	}

	var row userRow
	err = sqlx.GetContext(ctx, a.client.Executor(ctx), &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return row.toEntity(), nil
}

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := userRecord(user)
	record["id"] = user.ID
	record["created_at"] = user.CreatedAt

	_, err := exec(ctx, a.client.Executor(ctx),
		dialect.Insert(usersTable).Rows(record).Prepared(true), "create user")
	return err
}

// Update replaces the stored user
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	return mustAffect(ctx, a.client.Executor(ctx),
		dialect.Update(usersTable).Set(userRecord(user)).Where(goqu.C("id").Eq(user.ID)).Prepared(true),
		"update user", "user", user.ID)
}

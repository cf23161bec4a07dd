package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/repositories"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

const swapRequestsTable = "swap_requests"

var swapRequestColumns = []interface{}{
	"id", "from_user_id", "to_user_id", "skill_offered", "skill_wanted",
	"message", "status", "created_at", "updated_at",
}

// SwapRequestAdapter implements the SwapRequestRepository interface
type SwapRequestAdapter struct {
	client *postgres.Client
}

// NewSwapRequestAdapter creates a new swap request adapter
func NewSwapRequestAdapter(client *postgres.Client) repositories.SwapRequestRepository {
	return &SwapRequestAdapter{client: client}
}

// List returns every swap request in creation order
func (a *SwapRequestAdapter) List(ctx context.Context) ([]*entities.SwapRequest, error) {
	query, args, err := build(dialect.From(swapRequestsTable).
		Select(swapRequestColumns...).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Prepared(true), "list swap requests")
	if err != nil {
		return nil, err
	}

	var swaps []*entities.SwapRequest
	if err := sqlx.SelectContext(ctx, a.client.Executor(ctx), &swaps, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list swap requests", err)
	}
	for _, sw := range swaps {
		normalizeSwapTimes(sw)
	}
	return swaps, nil
}

// GetByID retrieves a swap request by ID
func (a *SwapRequestAdapter) GetByID(ctx context.Context, id string) (*entities.SwapRequest, error) {
	query, args, err := build(dialect.From(swapRequestsTable).
		Select(swapRequestColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true), "get swap request")
	if err != nil {
		return nil, err
	}

	var swap entities.SwapRequest
	err = sqlx.GetContext(ctx, a.client.Executor(ctx), &swap, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("swap request with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get swap request", err)
	}
	normalizeSwapTimes(&swap)
	return &swap, nil
}

// Create inserts a swap request
func (a *SwapRequestAdapter) Create(ctx context.Context, swap *entities.SwapRequest) error {
	record := goqu.Record{
		"id":            swap.ID,
		"from_user_id":  swap.FromUserID,
		"to_user_id":    swap.ToUserID,
		"skill_offered": swap.SkillOffered,
		"skill_wanted":  swap.SkillWanted,
		"message":       swap.Message,
		"status":        string(swap.Status),
		"created_at":    swap.CreatedAt,
		"updated_at":    swap.UpdatedAt,
	}

	_, err := exec(ctx, a.client.Executor(ctx),
		dialect.Insert(swapRequestsTable).Rows(record).Prepared(true), "create swap request")
	return err
}

// Update persists the status change of a swap request. Participants and
// skills never change after creation.
func (a *SwapRequestAdapter) Update(ctx context.Context, swap *entities.SwapRequest) error {
	record := goqu.Record{
		"status":     string(swap.Status),
		"updated_at": swap.UpdatedAt,
	}
	return mustAffect(ctx, a.client.Executor(ctx),
		dialect.Update(swapRequestsTable).Set(record).Where(goqu.C("id").Eq(swap.ID)).Prepared(true),
		"update swap request", "swap request", swap.ID)
}

func normalizeSwapTimes(sw *entities.SwapRequest) {
	sw.CreatedAt = sw.CreatedAt.UTC()
	sw.UpdatedAt = sw.UpdatedAt.UTC()
}

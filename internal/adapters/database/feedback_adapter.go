package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/repositories"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

const feedbackTable = "feedback"

var feedbackColumns = []interface{}{
	"id", "swap_request_id", "from_user_id", "to_user_id", "rating", "comment", "created_at",
}

// FeedbackAdapter implements feedback persistence in Postgres.
type FeedbackAdapter struct {
	client *postgres.Client
}

// NewFeedbackAdapter creates a new feedback adapter.
func NewFeedbackAdapter(client *postgres.Client) repositories.FeedbackRepository {
	return &FeedbackAdapter{client: client}
}

// List returns all feedback in submission order.
func (a *FeedbackAdapter) List(ctx context.Context) ([]*entities.Feedback, error) {
	query, args, err := build(dialect.From(feedbackTable).
		Select(feedbackColumns...).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Prepared(true), "list feedback")
	if err != nil {
		return nil, err
	}

	var feedback []*entities.Feedback
	if err := sqlx.SelectContext(ctx, a.client.Executor(ctx), &feedback, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list feedback", err)
	}
	for _, f := range feedback {
		f.CreatedAt = f.CreatedAt.UTC()
	}
	return feedback, nil
}

// Create inserts a feedback record.
func (a *FeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return apperrors.NewInternalError("feedback is nil", fmt.Errorf("feedback is nil"))
	}

	record := goqu.Record{
		"id":              feedback.ID,
		"swap_request_id": feedback.SwapRequestID,
		"from_user_id":    feedback.FromUserID,
		"to_user_id":      feedback.ToUserID,
		"rating":          feedback.Rating,
		"comment":         feedback.Comment,
		"created_at":      feedback.CreatedAt,
	}

	_, err := exec(ctx, a.client.Executor(ctx),
		dialect.Insert(feedbackTable).Rows(record).Prepared(true), "create feedback")
	return err
}

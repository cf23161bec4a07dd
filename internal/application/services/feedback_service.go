package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

// MaxFeedbackCommentLength bounds a feedback comment
const MaxFeedbackCommentLength = 1000

// FeedbackService records reviews of completed swaps and keeps ratings current
type FeedbackService struct {
	store    *store.Store
	notifier marketplaceNotifier
	metrics  *observability.Metrics
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(st *store.Store, eventBus providers.EventBus, index providers.UserIndex, metrics *observability.Metrics) *FeedbackService {
	return &FeedbackService{
		store:    st,
		notifier: marketplaceNotifier{eventBus: eventBus, index: index},
		metrics:  metrics,
	}
}

// SetAnalyticsInvalidator makes committed changes drop the cached analytics.
// Call it before the service handles requests.
func (s *FeedbackService) SetAnalyticsInvalidator(inv AnalyticsInvalidator) {
	s.notifier.analytics = inv
}

// Record stores feedback on a completed swap and recomputes the reviewed
// user's rating. Each participant may review a swap once.
func (s *FeedbackService) Record(ctx context.Context, cmd entities.RecordFeedback) (*entities.Feedback, error) {
	ctx, span := observability.StartSpan(ctx, "FeedbackService.Record")
	defer span.End()

	if cmd.Rating < entities.MinFeedbackRating || cmd.Rating > entities.MaxFeedbackRating {
		return nil, apperrors.NewInvalidFeedbackError(fmt.Sprintf("rating must be between %d and %d",
			entities.MinFeedbackRating, entities.MaxFeedbackRating))
	}
	comment := strings.TrimSpace(cmd.Comment)
	if len([]rune(comment)) > MaxFeedbackCommentLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("comment must be at most %d characters", MaxFeedbackCommentLength))
	}

	var (
		created  *entities.Feedback
		reviewed *entities.User
	)
	err := s.store.Mutate(ctx, "record feedback", func(tx *store.Txn) error {
		swap, err := tx.SwapRequest(cmd.SwapRequestID)
		if err != nil {
			return err
		}
		if swap.Status != entities.SwapStatusCompleted {
			return apperrors.NewInvalidFeedbackError(
				fmt.Sprintf("swap request %s is %s; feedback requires a completed swap", swap.ID, swap.Status))
		}
		if !swap.IsParticipant(cmd.FromUserID) {
			return apperrors.NewInvalidFeedbackError(
				fmt.Sprintf("user %s did not take part in swap request %s", cmd.FromUserID, swap.ID))
		}
		author, err := tx.User(cmd.FromUserID)
		if err != nil {
			return err
		}
		if !author.IsActive {
			return apperrors.NewInvalidFeedbackError(fmt.Sprintf("user %s is not active", author.ID))
		}
		toUserID := swap.Counterpart(cmd.FromUserID)
		if cmd.ToUserID != "" && cmd.ToUserID != toUserID {
			return apperrors.NewInvalidFeedbackError("feedback must be addressed to the other participant")
		}
		for _, existing := range tx.FeedbackForSwap(swap.ID) {
			if existing.FromUserID == cmd.FromUserID {
				return apperrors.NewInvalidFeedbackError(
					fmt.Sprintf("user %s has already reviewed swap request %s", cmd.FromUserID, swap.ID))
			}
		}

		now := tx.Now()
		created = &entities.Feedback{
			ID:            uuid.New().String(),
			SwapRequestID: swap.ID,
			FromUserID:    cmd.FromUserID,
			ToUserID:      toUserID,
			Rating:        cmd.Rating,
			Comment:       comment,
			CreatedAt:     now,
		}
		tx.CreateFeedback(created)

		reviewed, err = tx.User(toUserID)
		if err != nil {
			return err
		}
		reviewed.Rating = AggregateRating(tx.FeedbackFor(toUserID), toUserID)
		if now.After(reviewed.UpdatedAt) {
			reviewed.UpdatedAt = now
		}
		tx.UpdateUser(reviewed)
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.RecordFeedback(ctx, s.metrics, created.Rating)
	event := entities.NewMarketplaceEvent(entities.EventTypeFeedbackRecorded, created.FromUserID,
		[]string{created.ToUserID}, map[string]interface{}{"rating": created.Rating, "user_rating": reviewed.Rating})
	event.SwapRequestID = created.SwapRequestID
	s.notifier.publish(ctx, event)
	s.notifier.reindex(ctx, reviewed)

	log.Info().
		Str("swap_request_id", created.SwapRequestID).
		Str("to_user_id", created.ToUserID).
		Float64("rating", reviewed.Rating).
		Msg("Feedback recorded")
	return created, nil
}

// ListForUser returns the feedback a user has received
func (s *FeedbackService) ListForUser(ctx context.Context, userID string) ([]*entities.Feedback, error) {
	if _, err := s.store.User(userID); err != nil {
		return nil, err
	}
	return s.store.FeedbackFor(userID), nil
}

// ListForSwap returns the feedback attached to a swap request
func (s *FeedbackService) ListForSwap(ctx context.Context, swapID string) ([]*entities.Feedback, error) {
	if _, err := s.store.SwapRequest(swapID); err != nil {
		return nil, err
	}
	return s.store.FeedbackForSwap(swapID), nil
}

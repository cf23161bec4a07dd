package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
)

// BackfillSummary reports the outcome of a backfill run
type BackfillSummary struct {
	TotalProcessed int
	CorrectedCount int
	FailureCount   int
	Corrections    []ReputationCorrection
}

// ReputationCorrection describes one user whose derived fields drifted
type ReputationCorrection struct {
	UserID        string
	OldRating     float64
	NewRating     float64
	OldTotalSwaps int
	NewTotalSwaps int
}

// ReputationBackfillService recomputes rating and totalSwaps from feedback
// and completed swaps and persists any difference
type ReputationBackfillService struct {
	store    *store.Store
	notifier marketplaceNotifier
	dryRun   bool
}

// NewReputationBackfillService creates a backfill over st. With dryRun set
// corrections are reported but not written.
func NewReputationBackfillService(st *store.Store, index providers.UserIndex, dryRun bool) *ReputationBackfillService {
	return &ReputationBackfillService{
		store:    st,
		notifier: marketplaceNotifier{index: index},
		dryRun:   dryRun,
	}
}

// ExpectedReputation returns the rating and completed swap count userID should have
func ExpectedReputation(userID string, swaps []*entities.SwapRequest, feedback []*entities.Feedback) (float64, int) {
	completed := 0
	for _, sw := range swaps {
		if sw.Status == entities.SwapStatusCompleted && sw.IsParticipant(userID) {
			completed++
		}
	}
	return AggregateRating(feedback, userID), completed
}

// BackfillAll checks every user. A failed write is counted and the run continues.
func (s *ReputationBackfillService) BackfillAll(ctx context.Context) (*BackfillSummary, error) {
	summary := &BackfillSummary{}
	swaps := s.store.SwapRequests()
	feedback := s.store.Feedback()

	for _, u := range s.store.Users() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.TotalProcessed++

		rating, total := ExpectedReputation(u.ID, swaps, feedback)
		if rating == u.Rating && total == u.TotalSwaps {
			continue
		}

		correction := ReputationCorrection{
			UserID:        u.ID,
			OldRating:     u.Rating,
			NewRating:     rating,
			OldTotalSwaps: u.TotalSwaps,
			NewTotalSwaps: total,
		}
		if !s.dryRun {
			if err := s.apply(ctx, correction); err != nil {
				summary.FailureCount++
				log.Warn().Err(err).Str("user_id", u.ID).Msg("Failed to correct user reputation")
				continue
			}
		}
		summary.CorrectedCount++
		summary.Corrections = append(summary.Corrections, correction)
	}
	return summary, nil
}

func (s *ReputationBackfillService) apply(ctx context.Context, c ReputationCorrection) error {
	var updated *entities.User
	err := s.store.Mutate(ctx, fmt.Sprintf("backfill reputation of %s", c.UserID), func(tx *store.Txn) error {
		u, err := tx.User(c.UserID)
		if err != nil {
			return err
		}
		u.Rating = c.NewRating
		u.TotalSwaps = c.NewTotalSwaps
		if now := tx.Now(); now.After(u.UpdatedAt) {
			u.UpdatedAt = now
		}
		tx.UpdateUser(u)
		updated = u
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.reindex(ctx, updated)
	return nil
}

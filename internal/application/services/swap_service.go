package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	apperrors "github.com/skillswap/backend/pkg/errors"
	"github.com/skillswap/backend/pkg/utils"
)

// MaxSwapMessageLength bounds the free text attached to a swap request
const MaxSwapMessageLength = 500

// SwapService owns the swap request lifecycle
type SwapService struct {
	store    *store.Store
	notifier marketplaceNotifier
	metrics  *observability.Metrics
}

// NewSwapService creates a new swap service. eventBus, index and metrics may be nil.
func NewSwapService(st *store.Store, eventBus providers.EventBus, index providers.UserIndex, metrics *observability.Metrics) *SwapService {
	return &SwapService{
		store:    st,
		notifier: marketplaceNotifier{eventBus: eventBus, index: index},
		metrics:  metrics,
	}
}

// SetAnalyticsInvalidator makes committed changes drop the cached analytics.
// Call it before the service handles requests.
func (s *SwapService) SetAnalyticsInvalidator(inv AnalyticsInvalidator) {
	s.notifier.analytics = inv
}

// Create opens a pending swap request from cmd.FromUserID to cmd.ToUserID
func (s *SwapService) Create(ctx context.Context, cmd entities.CreateSwapRequest) (*entities.SwapRequest, error) {
	ctx, span := observability.StartSpan(ctx, "SwapService.Create")
	defer span.End()

	offered := utils.NormalizeSkill(cmd.SkillOffered)
	wanted := utils.NormalizeSkill(cmd.SkillWanted)
	message := strings.TrimSpace(cmd.Message)

	switch {
	case cmd.FromUserID == "" || cmd.ToUserID == "":
		return nil, apperrors.NewValidationError("requester and recipient are required")
	case cmd.FromUserID == cmd.ToUserID:
		return nil, apperrors.NewValidationError("cannot request a swap with yourself")
	case offered == "" || wanted == "":
		return nil, apperrors.NewValidationError("skill offered and skill wanted are required")
	case utf8.RuneCountInString(message) > MaxSwapMessageLength:
		return nil, apperrors.NewValidationError(fmt.Sprintf("message must be at most %d characters", MaxSwapMessageLength))
	}

	var created *entities.SwapRequest
	err := s.store.Mutate(ctx, "create swap request", func(tx *store.Txn) error {
		from, err := tx.User(cmd.FromUserID)
		if err != nil {
			return err
		}
		to, err := tx.User(cmd.ToUserID)
		if err != nil {
			return err
		}

		if !from.IsActive {
			return apperrors.NewValidationError(fmt.Sprintf("user %s is not active", from.ID))
		}
		if !to.IsActive {
			return apperrors.NewValidationError(fmt.Sprintf("user %s is not active", to.ID))
		}
		if to.IsAdmin() {
			return apperrors.NewValidationError("swap requests cannot be sent to an administrator")
		}
		if !from.OffersSkill(offered) {
			return apperrors.NewValidationError(fmt.Sprintf("%s does not offer %q", from.Name, offered))
		}
		if !to.OffersSkill(wanted) {
			return apperrors.NewValidationError(fmt.Sprintf("%s does not offer %q", to.Name, wanted))
		}

		now := tx.Now()
		created = &entities.SwapRequest{
			ID:           uuid.New().String(),
			FromUserID:   from.ID,
			ToUserID:     to.ID,
			SkillOffered: offered,
			SkillWanted:  wanted,
			Message:      message,
			Status:       entities.SwapStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		tx.CreateSwapRequest(created)
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.RecordSwapTransition(ctx, s.metrics, string(entities.SwapStatusPending))
	event := entities.NewMarketplaceEvent(entities.EventTypeSwapCreated, created.FromUserID,
		[]string{created.FromUserID, created.ToUserID}, map[string]interface{}{"status": string(created.Status)})
	event.SwapRequestID = created.ID
	s.notifier.publish(ctx, event)

	log.Info().
		Str("swap_request_id", created.ID).
		Str("from_user_id", created.FromUserID).
		Str("to_user_id", created.ToUserID).
		Msg("Swap request created")
	return created, nil
}

// Apply runs a lifecycle command. Completing a swap increments totalSwaps for
// both participants in the same persisted batch.
func (s *SwapService) Apply(ctx context.Context, cmd entities.SwapCommand) (*entities.SwapRequest, error) {
	ctx, span := observability.StartSpan(ctx, "SwapService.Apply")
	defer span.End()

	if cmd == nil {
		return nil, apperrors.NewValidationError("swap command is required")
	}
	target := cmd.TargetStatus()

	var (
		updated      *entities.SwapRequest
		participants []*entities.User
	)
	err := s.store.Mutate(ctx, fmt.Sprintf("move swap request to %s", target), func(tx *store.Txn) error {
		swap, err := tx.SwapRequest(cmd.SwapID())
		if err != nil {
			return err
		}
		actor, err := tx.User(cmd.Actor())
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
				return apperrors.NewInvalidTransitionError(fmt.Sprintf("unknown acting user %s", cmd.Actor()))
			}
			return err
		}
		if err := ValidateTransition(swap, target, actor); err != nil {
			return err
		}

		applyTransition(swap, target, tx.Now())
		tx.UpdateSwapRequest(swap)
		updated = swap

		if target == entities.SwapStatusCompleted {
			for _, id := range []string{swap.FromUserID, swap.ToUserID} {
				u, err := tx.User(id)
				if err != nil {
					return err
				}
				u.TotalSwaps++
				if tx.Now().After(u.UpdatedAt) {
					u.UpdatedAt = tx.Now()
				}
				tx.UpdateUser(u)
				participants = append(participants, u)
			}
		}
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.RecordSwapTransition(ctx, s.metrics, string(target))
	event := entities.NewMarketplaceEvent(entities.SwapEventType(target), cmd.Actor(),
		[]string{updated.FromUserID, updated.ToUserID}, map[string]interface{}{"status": string(target)})
	event.SwapRequestID = updated.ID
	s.notifier.publish(ctx, event)
	s.notifier.reindex(ctx, participants...)

	log.Info().
		Str("swap_request_id", updated.ID).
		Str("status", string(target)).
		Str("actor_id", cmd.Actor()).
		Msg("Swap request transitioned")
	return updated, nil
}

// Get returns a swap request by id
func (s *SwapService) Get(ctx context.Context, id string) (*entities.SwapRequest, error) {
	return s.store.SwapRequest(id)
}

// ListForUser splits the user's swap requests into those received and those sent
func (s *SwapService) ListForUser(ctx context.Context, userID string) (incoming, outgoing []*entities.SwapRequest, err error) {
	if _, err := s.store.User(userID); err != nil {
		return nil, nil, err
	}

	incoming = make([]*entities.SwapRequest, 0)
	outgoing = make([]*entities.SwapRequest, 0)
	for _, swap := range s.store.SwapRequests() {
		switch userID {
		case swap.ToUserID:
			incoming = append(incoming, swap)
		case swap.FromUserID:
			outgoing = append(outgoing, swap)
		}
	}
	return incoming, outgoing, nil
}

// List returns every swap request, optionally restricted to one status
func (s *SwapService) List(ctx context.Context, status entities.SwapStatus) ([]*entities.SwapRequest, error) {
	if status != "" && !status.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown swap status %q", status))
	}

	all := s.store.SwapRequests()
	if status == "" {
		return all, nil
	}
	out := make([]*entities.SwapRequest, 0, len(all))
	for _, swap := range all {
		if swap.Status == status {
			out = append(out, swap)
		}
	}
	return out, nil
}

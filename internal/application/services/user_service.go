package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	apperrors "github.com/skillswap/backend/pkg/errors"
	"github.com/skillswap/backend/pkg/utils"
)

// UserService manages member accounts
type UserService struct {
	store    *store.Store
	notifier marketplaceNotifier
}

// NewUserService creates a new user service
func NewUserService(st *store.Store, eventBus providers.EventBus, index providers.UserIndex) *UserService {
	return &UserService{
		store:    st,
		notifier: marketplaceNotifier{eventBus: eventBus, index: index},
	}
}

// SetAnalyticsInvalidator makes committed changes drop the cached analytics.
// Call it before the service handles requests.
func (s *UserService) SetAnalyticsInvalidator(inv AnalyticsInvalidator) {
	s.notifier.analytics = inv
}

// Register creates a new user with default reputation
func (s *UserService) Register(ctx context.Context, cmd entities.RegisterUser) (*entities.User, error) {
	ctx, span := observability.StartSpan(ctx, "UserService.Register")
	defer span.End()

	name := strings.TrimSpace(cmd.Name)
	email := strings.TrimSpace(cmd.Email)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid email %q", email))
	}
	availability, err := normalizeAvailability(cmd.Availability)
	if err != nil {
		return nil, err
	}

	role := cmd.Role
	if role == "" {
		role = entities.RoleUser
	}
	if role != entities.RoleUser && role != entities.RoleAdmin {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}
	isPublic := true
	if cmd.IsPublic != nil {
		isPublic = *cmd.IsPublic
	}

	var created *entities.User
	err = s.store.Mutate(ctx, "register user", func(tx *store.Txn) error {
		if tx.UserByEmail(email) != nil {
			return apperrors.NewConflictError(fmt.Sprintf("a user with email %s already exists", email))
		}
		now := tx.Now()
		created = &entities.User{
			ID:            uuid.New().String(),
			Name:          name,
			Email:         email,
			Location:      strings.TrimSpace(cmd.Location),
			ProfilePhoto:  strings.TrimSpace(cmd.ProfilePhoto),
			SkillsOffered: utils.NormalizeSkills(cmd.SkillsOffered),
			SkillsWanted:  utils.NormalizeSkills(cmd.SkillsWanted),
			Availability:  availability,
			IsPublic:      isPublic,
			Role:          role,
			Rating:        entities.DefaultRating,
			TotalSwaps:    0,
			IsActive:      true,
			JoinDate:      now.UTC().Truncate(24 * time.Hour),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		tx.CreateUser(created)
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.notifier.publish(ctx, entities.NewMarketplaceEvent(entities.EventTypeUserRegistered, created.ID, []string{created.ID}, nil))
	s.notifier.reindex(ctx, created)

	log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("User registered")
	return created, nil
}

// UpdateProfile applies a self-service profile change
func (s *UserService) UpdateProfile(ctx context.Context, cmd entities.UpdateProfile) (*entities.User, error) {
	ctx, span := observability.StartSpan(ctx, "UserService.UpdateProfile")
	defer span.End()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if cmd.ActorID != cmd.UserID {
		return nil, apperrors.NewUnauthorizedError("users may only edit their own profile")
	}

	var (
		updated *entities.User
		changed = make(map[string]interface{})
	)
	err := s.store.Mutate(ctx, "update user profile", func(tx *store.Txn) error {
		u, err := tx.User(cmd.UserID)
		if err != nil {
			return err
		}
		if !u.IsActive {
			return apperrors.NewUnauthorizedError(fmt.Sprintf("user %s is not active", u.ID))
		}

		if cmd.Name != nil {
			u.Name = strings.TrimSpace(*cmd.Name)
			changed["name"] = u.Name
		}
		if cmd.Location != nil {
			u.Location = strings.TrimSpace(*cmd.Location)
			changed["location"] = u.Location
		}
		if cmd.ProfilePhoto != nil {
			u.ProfilePhoto = strings.TrimSpace(*cmd.ProfilePhoto)
			changed["profile_photo"] = u.ProfilePhoto
		}
		if cmd.SkillsOffered != nil {
			u.SkillsOffered = utils.NormalizeSkills(*cmd.SkillsOffered)
			changed["skills_offered"] = u.SkillsOffered
		}
		if cmd.SkillsWanted != nil {
			u.SkillsWanted = utils.NormalizeSkills(*cmd.SkillsWanted)
			changed["skills_wanted"] = u.SkillsWanted
		}
		if cmd.Availability != nil {
			availability, err := normalizeAvailability(*cmd.Availability)
			if err != nil {
				return err
			}
			u.Availability = availability
			changed["availability"] = u.Availability
		}
		if cmd.IsPublic != nil {
			u.IsPublic = *cmd.IsPublic
			changed["is_public"] = u.IsPublic
		}

		if now := tx.Now(); now.After(u.UpdatedAt) {
			u.UpdatedAt = now
		}
		tx.UpdateUser(u)
		updated = u
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.notifier.publish(ctx, entities.NewMarketplaceEvent(entities.EventTypeUserUpdated, cmd.ActorID, []string{updated.ID}, changed))
	s.notifier.reindex(ctx, updated)
	return updated, nil
}

// Ban deactivates a regular user
func (s *UserService) Ban(ctx context.Context, adminID, userID string) (*entities.User, error) {
	return s.setActive(ctx, adminID, userID, false)
}

// Unban reactivates a regular user
func (s *UserService) Unban(ctx context.Context, adminID, userID string) (*entities.User, error) {
	return s.setActive(ctx, adminID, userID, true)
}

func (s *UserService) setActive(ctx context.Context, adminID, userID string, active bool) (*entities.User, error) {
	if _, err := s.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	operation, eventType := "ban user", entities.EventTypeUserBanned
	if active {
		operation, eventType = "unban user", entities.EventTypeUserUnbanned
	}

	var (
		updated *entities.User
		noop    bool
	)
	err := s.store.Mutate(ctx, operation, func(tx *store.Txn) error {
		u, err := tx.User(userID)
		if err != nil {
			return err
		}
		if u.IsAdmin() {
			return apperrors.NewValidationError("administrators cannot be banned or unbanned")
		}
		updated = u
		if u.IsActive == active {
			noop = true
			return nil
		}
		u.IsActive = active
		if now := tx.Now(); now.After(u.UpdatedAt) {
			u.UpdatedAt = now
		}
		tx.UpdateUser(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return updated, nil
	}

	s.notifier.publish(ctx, entities.NewMarketplaceEvent(eventType, adminID, []string{updated.ID},
		map[string]interface{}{"is_active": active}))
	s.notifier.reindex(ctx, updated)

	log.Info().Str("user_id", updated.ID).Str("admin_id", adminID).Bool("is_active", active).Msg("User activation changed")
	return updated, nil
}

// Get returns a user by id
func (s *UserService) Get(ctx context.Context, id string) (*entities.User, error) {
	return s.store.User(id)
}

// RequireAdmin resolves actorID and fails unless it is an active administrator
func (s *UserService) RequireAdmin(ctx context.Context, actorID string) (*entities.User, error) {
	if actorID == "" {
		return nil, apperrors.NewUnauthorizedError("an acting user is required")
	}
	actor, err := s.store.User(actorID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("unknown acting user %s", actorID))
	}
	if !actor.IsAdmin() || !actor.IsActive {
		return nil, apperrors.NewUnauthorizedError("administrator privileges required")
	}
	return actor, nil
}

func normalizeAvailability(in []entities.Availability) ([]entities.Availability, error) {
	seen := make(map[entities.Availability]bool, len(in))
	out := make([]entities.Availability, 0, len(in))
	for _, a := range in {
		if !a.IsValid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown availability %q", a))
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out, nil
}

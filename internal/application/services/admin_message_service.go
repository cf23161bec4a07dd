package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/providers"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

// AdminMessageService manages platform announcements
type AdminMessageService struct {
	store    *store.Store
	users    *UserService
	notifier marketplaceNotifier
}

// NewAdminMessageService creates a new admin message service
func NewAdminMessageService(st *store.Store, users *UserService, eventBus providers.EventBus) *AdminMessageService {
	return &AdminMessageService{
		store:    st,
		users:    users,
		notifier: marketplaceNotifier{eventBus: eventBus},
	}
}

// Create publishes a new announcement. Title, content and type are required;
// messages are active unless stated otherwise.
func (s *AdminMessageService) Create(ctx context.Context, adminID string, in entities.AdminMessageInput) (*entities.AdminMessage, error) {
	if _, err := s.users.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if in.Title == nil || in.Content == nil || in.Type == nil {
		return nil, apperrors.NewValidationError("title, content and type are required")
	}

	msg := &entities.AdminMessage{IsActive: true}
	if err := applyMessageInput(msg, in); err != nil {
		return nil, err
	}

	err := s.store.Mutate(ctx, "create admin message", func(tx *store.Txn) error {
		msg.ID = uuid.New().String()
		msg.CreatedAt = tx.Now()
		tx.CreateAdminMessage(msg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, adminID, msg.ID, "created")
	return msg, nil
}

// Update changes the fields set in in
func (s *AdminMessageService) Update(ctx context.Context, adminID, id string, in entities.AdminMessageInput) (*entities.AdminMessage, error) {
	if _, err := s.users.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if in.Title == nil && in.Content == nil && in.Type == nil && in.IsActive == nil {
		return nil, apperrors.NewValidationError("no message fields to update")
	}

	var updated *entities.AdminMessage
	err := s.store.Mutate(ctx, "update admin message", func(tx *store.Txn) error {
		msg, err := tx.AdminMessage(id)
		if err != nil {
			return err
		}
		if err := applyMessageInput(msg, in); err != nil {
			return err
		}
		tx.UpdateAdminMessage(msg)
		updated = msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, adminID, updated.ID, "updated")
	return updated, nil
}

// Delete removes an announcement
func (s *AdminMessageService) Delete(ctx context.Context, adminID, id string) error {
	if _, err := s.users.RequireAdmin(ctx, adminID); err != nil {
		return err
	}

	err := s.store.Mutate(ctx, "delete admin message", func(tx *store.Txn) error {
		if _, err := tx.AdminMessage(id); err != nil {
			return err
		}
		tx.DeleteAdminMessage(id)
		return nil
	})
	if err != nil {
		return err
	}

	s.announce(ctx, adminID, id, "deleted")
	return nil
}

// List returns every announcement, newest last
func (s *AdminMessageService) List(ctx context.Context) []*entities.AdminMessage {
	return s.store.AdminMessages()
}

// ListActive returns the announcements currently shown to users
func (s *AdminMessageService) ListActive(ctx context.Context) []*entities.AdminMessage {
	all := s.store.AdminMessages()
	out := make([]*entities.AdminMessage, 0, len(all))
	for _, m := range all {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out
}

func (s *AdminMessageService) announce(ctx context.Context, adminID, messageID, action string) {
	s.notifier.publish(ctx, entities.NewMarketplaceEvent(entities.EventTypeMessageChanged, adminID, nil,
		map[string]interface{}{"message_id": messageID, "action": action}))
}

func applyMessageInput(msg *entities.AdminMessage, in entities.AdminMessageInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apperrors.NewValidationError("title cannot be empty")
		}
		msg.Title = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return apperrors.NewValidationError("content cannot be empty")
		}
		msg.Content = content
	}
	if in.Type != nil {
		if !in.Type.IsValid() {
			return apperrors.NewValidationError(fmt.Sprintf("unknown message type %q", *in.Type))
		}
		msg.Type = *in.Type
	}
	if in.IsActive != nil {
		msg.IsActive = *in.IsActive
	}
	return nil
}

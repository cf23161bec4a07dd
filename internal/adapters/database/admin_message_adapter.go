package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/repositories"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

const adminMessagesTable = "admin_messages"

// AdminMessageAdapter implements the AdminMessageRepository interface
type AdminMessageAdapter struct {
	client *postgres.Client
}

// NewAdminMessageAdapter creates a new admin message adapter
func NewAdminMessageAdapter(client *postgres.Client) repositories.AdminMessageRepository {
	return &AdminMessageAdapter{client: client}
}

// List returns every message, oldest first
func (a *AdminMessageAdapter) List(ctx context.Context) ([]*entities.AdminMessage, error) {
	query, args, err := build(dialect.From(adminMessagesTable).
		Select("id", "title", "content", "type", "is_active", "created_at").
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Prepared(true), "list admin messages")
	if err != nil {
		return nil, err
	}

	var messages []*entities.AdminMessage
	if err := sqlx.SelectContext(ctx, a.client.Executor(ctx), &messages, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list admin messages", err)
	}
	for _, m := range messages {
		m.CreatedAt = m.CreatedAt.UTC()
	}
	return messages, nil
}

// Create inserts a message
func (a *AdminMessageAdapter) Create(ctx context.Context, message *entities.AdminMessage) error {
	record := goqu.Record{
		"id":         message.ID,
		"title":      message.Title,
		"content":    message.Content,
		"type":       string(message.Type),
		"is_active":  message.IsActive,
		"created_at": message.CreatedAt,
	}
	_, err := exec(ctx, a.client.Executor(ctx),
		dialect.Insert(adminMessagesTable).Rows(record).Prepared(true), "create admin message")
	return err
}

// Update replaces the editable fields of a message
func (a *AdminMessageAdapter) Update(ctx context.Context, message *entities.AdminMessage) error {
	record := goqu.Record{
		"title":     message.Title,
		"content":   message.Content,
		"type":      string(message.Type),
		"is_active": message.IsActive,
	}
	return mustAffect(ctx, a.client.Executor(ctx),
		dialect.Update(adminMessagesTable).Set(record).Where(goqu.C("id").Eq(message.ID)).Prepared(true),
		"update admin message", "admin message", message.ID)
}

// Delete removes a message
func (a *AdminMessageAdapter) Delete(ctx context.Context, id string) error {
	return mustAffect(ctx, a.client.Executor(ctx),
		dialect.Delete(adminMessagesTable).Where(goqu.C("id").Eq(id)).Prepared(true),
		"delete admin message", "admin message", id)
}

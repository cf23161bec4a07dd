package database

import (
	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/infrastructure/clients/postgres"
)

// NewRepositories wires the Postgres adapters behind the store. Writes staged
// by one store mutation share a single transaction.
func NewRepositories(client *postgres.Client) store.Repositories {
	return store.Repositories{
		Users:         NewUserAdapter(client),
		SwapRequests:  NewSwapRequestAdapter(client),
		Feedback:      NewFeedbackAdapter(client),
		AdminMessages: NewAdminMessageAdapter(client),
		Tx:            client,
	}
}

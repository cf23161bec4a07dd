// Package store holds the in-memory collections of the marketplace. It is
// seeded from the repositories at startup and only changes after a write has
// been persisted.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/internal/domain/repositories"
	"github.com/skillswap/backend/internal/infrastructure/observability"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

// Repositories is the system of record behind the store. Tx is optional; without
// it staged writes are persisted one by one.
type Repositories struct {
	Users         repositories.UserRepository
	SwapRequests  repositories.SwapRequestRepository
	Feedback      repositories.FeedbackRepository
	AdminMessages repositories.AdminMessageRepository
	Tx            repositories.Transactor
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store owns the users, swap requests, feedback and admin messages for the
// lifetime of the process. Reads return copies.
type Store struct {
	repos Repositories
	now   func() time.Time

	mu           sync.RWMutex
	users        map[string]*entities.User
	userOrder    []string
	swaps        map[string]*entities.SwapRequest
	swapOrder    []string
	feedback     []*entities.Feedback
	messages     map[string]*entities.AdminMessage
	messageOrder []string
}

// New creates an empty store. Call Load to seed it.
func New(repos Repositories, opts ...Option) *Store {
	s := &Store{
		repos:    repos,
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[string]*entities.User),
		swaps:    make(map[string]*entities.SwapRequest),
		messages: make(map[string]*entities.AdminMessage),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time
func (s *Store) Now() time.Time {
	return s.now()
}

// Load replaces the in-memory collections with the repositories' contents.
func (s *Store) Load(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, "store.Load")
	defer span.End()

	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return s.persistenceFailure("load users", err)
	}
	swaps, err := s.repos.SwapRequests.List(ctx)
	if err != nil {
		return s.persistenceFailure("load swap requests", err)
	}
	feedback, err := s.repos.Feedback.List(ctx)
	if err != nil {
		return s.persistenceFailure("load feedback", err)
	}
	messages, err := s.repos.AdminMessages.List(ctx)
	if err != nil {
		return s.persistenceFailure("load admin messages", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*entities.User, len(users))
	s.userOrder = s.userOrder[:0]
	for _, u := range users {
		if _, dup := s.users[u.ID]; dup {
			continue
		}
		s.users[u.ID] = u.Clone()
		s.userOrder = append(s.userOrder, u.ID)
	}

	s.swaps = make(map[string]*entities.SwapRequest, len(swaps))
	s.swapOrder = s.swapOrder[:0]
	for _, sw := range swaps {
		if _, dup := s.swaps[sw.ID]; dup {
			continue
		}
		s.swaps[sw.ID] = sw.Clone()
		s.swapOrder = append(s.swapOrder, sw.ID)
	}

	s.feedback = make([]*entities.Feedback, 0, len(feedback))
	for _, f := range feedback {
		s.feedback = append(s.feedback, f.Clone())
	}

	s.messages = make(map[string]*entities.AdminMessage, len(messages))
	s.messageOrder = s.messageOrder[:0]
	for _, m := range messages {
		if _, dup := s.messages[m.ID]; dup {
			continue
		}
		s.messages[m.ID] = m.Clone()
		s.messageOrder = append(s.messageOrder, m.ID)
	}

	s.recordSizes()
	log.Info().
		Int("users", len(s.userOrder)).
		Int("swap_requests", len(s.swapOrder)).
		Int("feedback", len(s.feedback)).
		Int("admin_messages", len(s.messageOrder)).
		Msg("Store loaded")
	return nil
}

// Users returns every user in store order
func (s *Store) Users() []*entities.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id].Clone())
	}
	return out
}

// User returns a copy of the user with the given id
func (s *Store) User(id string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", id))
	}
	return u.Clone(), nil
}

// UsersByIDs returns the users for ids in the same order; missing ids yield nil entries
func (s *Store) UsersByIDs(ids []string) []*entities.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.User, len(ids))
	for i, id := range ids {
		if u, ok := s.users[id]; ok {
			out[i] = u.Clone()
		}
	}
	return out
}

// SwapRequests returns every swap request in creation order
func (s *Store) SwapRequests() []*entities.SwapRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.SwapRequest, 0, len(s.swapOrder))
	for _, id := range s.swapOrder {
		out = append(out, s.swaps[id].Clone())
	}
	return out
}

// SwapRequest returns a copy of the swap request with the given id
func (s *Store) SwapRequest(id string) (*entities.SwapRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sw, ok := s.swaps[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("swap request %s not found", id))
	}
	return sw.Clone(), nil
}

// Feedback returns every feedback entry in creation order
func (s *Store) Feedback() []*entities.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterFeedback(s.feedback, func(*entities.Feedback) bool { return true })
}

// FeedbackFor returns the feedback addressed to userID
func (s *Store) FeedbackFor(userID string) []*entities.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterFeedback(s.feedback, func(f *entities.Feedback) bool { return f.ToUserID == userID })
}

// FeedbackForSwap returns the feedback attached to a swap request
func (s *Store) FeedbackForSwap(swapID string) []*entities.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterFeedback(s.feedback, func(f *entities.Feedback) bool { return f.SwapRequestID == swapID })
}

// AdminMessages returns every admin message in creation order
func (s *Store) AdminMessages() []*entities.AdminMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.AdminMessage, 0, len(s.messageOrder))
	for _, id := range s.messageOrder {
		out = append(out, s.messages[id].Clone())
	}
	return out
}

// AdminMessage returns a copy of the message with the given id
func (s *Store) AdminMessage(id string) (*entities.AdminMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("admin message %s not found", id))
	}
	return m.Clone(), nil
}

// Mutate runs fn against a transaction view of the store. Writes staged by fn
// are persisted together and applied to memory only if persistence succeeds.
// An error from fn aborts without touching the repositories. Mutations are
// serialised; operation names the change in errors and metrics.
func (s *Store) Mutate(ctx context.Context, operation string, fn func(tx *Txn) error) error {
	ctx, span := observability.StartSpan(ctx, "store.Mutate")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTxn(s)
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.ops) == 0 {
		return nil
	}

	persist := func(ctx context.Context) error {
		for _, op := range tx.ops {
			if err := op.persist(ctx, s.repos); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if s.repos.Tx != nil {
		err = s.repos.Tx.RunInTx(ctx, persist)
	} else {
		err = persist(ctx)
	}
	if err != nil {
		observability.RecordError(span, err)
		return s.persistenceFailure(operation, err)
	}

	tx.apply()
	s.recordSizes()
	return nil
}

func (s *Store) persistenceFailure(operation string, err error) error {
	observability.PersistenceFailures.WithLabelValues(operation).Inc()
	log.Warn().Err(err).Str("operation", operation).Msg("Persistence call failed; in-memory state unchanged")
	return apperrors.NewPersistenceError(fmt.Sprintf("failed to %s", operation), err)
}

// recordSizes must be called with the lock held
func (s *Store) recordSizes() {
	observability.StoreEntities.WithLabelValues("users").Set(float64(len(s.userOrder)))
	observability.StoreEntities.WithLabelValues("swap_requests").Set(float64(len(s.swapOrder)))
	observability.StoreEntities.WithLabelValues("feedback").Set(float64(len(s.feedback)))
	observability.StoreEntities.WithLabelValues("admin_messages").Set(float64(len(s.messageOrder)))
}

func filterFeedback(all []*entities.Feedback, keep func(*entities.Feedback) bool) []*entities.Feedback {
	out := make([]*entities.Feedback, 0)
	for _, f := range all {
		if keep(f) {
			out = append(out, f.Clone())
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

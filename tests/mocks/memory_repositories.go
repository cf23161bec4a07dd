// Package mocks provides test doubles for the domain repositories and providers.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillswap/backend/internal/application/store"
	"github.com/skillswap/backend/internal/domain/entities"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

// Operation names accepted by MemoryRepositories.FailOn
const (
	OpUsersList      = "users.list"
	OpUsersCreate    = "users.create"
	OpUsersUpdate    = "users.update"
	OpSwapsList      = "swaps.list"
	OpSwapsCreate    = "swaps.create"
	OpSwapsUpdate    = "swaps.update"
	OpFeedbackList   = "feedback.list"
	OpFeedbackCreate = "feedback.create"
	OpMessagesList   = "messages.list"
	OpMessagesCreate = "messages.create"
	OpMessagesUpdate = "messages.update"
	OpMessagesDelete = "messages.delete"
)

type memoryState struct {
	users    []*entities.User
	swaps    []*entities.SwapRequest
	feedback []*entities.Feedback
	messages []*entities.AdminMessage
}

func (s memoryState) clone() memoryState {
	c := memoryState{}
	for _, u := range s.users {
		c.users = append(c.users, u.Clone())
	}
	for _, sw := range s.swaps {
		c.swaps = append(c.swaps, sw.Clone())
	}
	for _, f := range s.feedback {
		c.feedback = append(c.feedback, f.Clone())
	}
	for _, m := range s.messages {
		c.messages = append(c.messages, m.Clone())
	}
	return c
}

// MemoryRepositories is an in-memory system of record with failure injection
// and transactional rollback.
type MemoryRepositories struct {
	mu       sync.Mutex
	state    memoryState
	failures map[string]error
	calls    []string
}

// NewMemoryRepositories creates empty repositories
func NewMemoryRepositories() *MemoryRepositories {
	return &MemoryRepositories{failures: make(map[string]error)}
}

// Seed adds entities directly, bypassing failure injection
func (r *MemoryRepositories) Seed(users []*entities.User, swaps []*entities.SwapRequest, feedback []*entities.Feedback, messages []*entities.AdminMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		r.state.users = append(r.state.users, u.Clone())
	}
	for _, sw := range swaps {
		r.state.swaps = append(r.state.swaps, sw.Clone())
	}
	for _, f := range feedback {
		r.state.feedback = append(r.state.feedback, f.Clone())
	}
	for _, m := range messages {
		r.state.messages = append(r.state.messages, m.Clone())
	}
}

// FailOn makes every subsequent call of op return err; a nil err clears it
func (r *MemoryRepositories) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, op)
		return
	}
	r.failures[op] = err
}

// Calls returns the operations invoked so far, in order
func (r *MemoryRepositories) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// User returns the persisted copy of a user, or nil
func (r *MemoryRepositories) User(id string) *entities.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.state.users {
		if u.ID == id {
			return u.Clone()
		}
	}
	return nil
}

// SwapRequest returns the persisted copy of a swap request, or nil
func (r *MemoryRepositories) SwapRequest(id string) *entities.SwapRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sw := range r.state.swaps {
		if sw.ID == id {
			return sw.Clone()
		}
	}
	return nil
}

// FeedbackCount returns the number of persisted feedback entries
func (r *MemoryRepositories) FeedbackCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.feedback)
}

// MessageCount returns the number of persisted admin messages
func (r *MemoryRepositories) MessageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.messages)
}

// StoreRepositories wires the fakes into a store.Repositories
func (r *MemoryRepositories) StoreRepositories() store.Repositories {
	return store.Repositories{
		Users:         memoryUsers{r},
		SwapRequests:  memorySwaps{r},
		Feedback:      memoryFeedback{r},
		AdminMessages: memoryMessages{r},
		Tx:            r,
	}
}

// NewLoadedStore builds a store over r and loads it
func NewLoadedStore(ctx context.Context, r *MemoryRepositories, opts ...store.Option) (*store.Store, error) {
	s := store.New(r.StoreRepositories(), opts...)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// RunInTx restores the previous state if fn fails
func (r *MemoryRepositories) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	snapshot := r.state.clone()
	r.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.mu.Lock()
		r.state = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *MemoryRepositories) begin(op string) error {
	r.mu.Lock()
	r.calls = append(r.calls, op)
	return r.failures[op]
}

type memoryUsers struct{ r *MemoryRepositories }

func (m memoryUsers) List(ctx context.Context) ([]*entities.User, error) {
	err := m.r.begin(OpUsersList)
	defer m.r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]*entities.User, 0, len(m.r.state.users))
	for _, u := range m.r.state.users {
		out = append(out, u.Clone())
	}
	return out, nil
}

func (m memoryUsers) GetByID(ctx context.Context, id string) (*entities.User, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, u := range m.r.state.users {
		if u.ID == id {
			return u.Clone(), nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
}

func (m memoryUsers) Create(ctx context.Context, user *entities.User) error {
	err := m.r.begin(OpUsersCreate)
	defer m.r.mu.Unlock()
	if err != nil {
		return err
	}
	m.r.state.users = append(m.r.state.users, user.Clone())
	return nil
}

func (m memoryUsers) Update(ctx context.Context, user *entities.User) error {
	err := m.r.begin(OpUsersUpdate)
	defer m.r.mu.Unlock()
	if err != nil {
		return err
	}
	for i, u := range m.r.state.users {
		if u.ID == user.ID {
			m.r.state.users[i] = user.Clone()
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", user.ID))
}

type memorySwaps struct{ r *MemoryRepositories }

func (m memorySwaps) List(ctx context.Context) ([]*entities.SwapRequest, error) {
	err := m.r.begin(OpSwapsList)
	defer m.r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]*entities.SwapRequest, 0, len(m.r.state.swaps))
	for _, sw := range m.r.state.swaps {
		out = append(out, sw.Clone())
	}
	return out, nil
}

func (m memorySwaps) GetByID(ctx context.Context, id string) (*entities.SwapRequest, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, sw := range m.r.state.swaps {
		if sw.ID == id {
			return sw.Clone(), nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("swap request with id %s not found", id))
}

func (m memorySwaps) Create(ctx context.Context, swap *entities.SwapRequest) error {
	err := m.r.begin(OpSwapsCreate)
	defer m.r.mu.Unlock()
	if err != nil {
		return err
	}
	m.r.state.swaps = append(m.r.state.swaps, swap.Clone())
	return nil
}

func (m memorySwaps) Update(ctx context.Context, swap *entities.SwapRequest) error {
	err := m.r.begin(OpSwapsUpdate)
	defer m.r.mu.Unlock()
	if err != nil {
		return err
	}
	for i, sw := range m.r.state.swaps {
		if sw.ID == swap.ID {
			m.r.state.swaps[i] = swap.Clone()
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("swap request with id %s not found", swap.ID))
}

type memoryFeedback struct{ r *MemoryRepositories }

func (m memoryFeedback) List(ctx context.Context) ([]*entities.Feedback, error) {
	err := m.r.begin(OpFeedbackList)
	defer m.r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Feedback, 0, len(m.r.state.feedback))
	for _, f := range m.r.state.feedback {
		out = append(out, f.Clone())
	}
	return out, nil
}

func (m memoryFeedback) Create(ctx context.Context, feedback *entities.Feedback) error {
	err := m.r.begin(OpFeedbackCreate)
	defer m.r.mu.Unlock()
	if err != nil {
		return err
	}
	m.r.state.feedback = append(m.r.state.feedback, feedback.Clone())
	return nil
}

type memoryMessages struct{ r *MemoryRepositories }

func (m memoryMessages) List(ctx context.Context) ([]*entities.AdminMessage, error) {
	err := m.r.begin(OpMessagesList)
	defer m.r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]*entities.AdminMessage, 0, len(m.r.state.messages))
	for _, msg := range m.r.state.messages {
		out = append(out, msg.Clone())
	}
	return out, nil
}

func (m memoryMessages) Create(ctx context.Context, message *entities.AdminMessage) error {
	err := m.r.begin(OpMessagesCreate)
	defer m.r.mu.Unlock()
	if err != nil {
		return err
	}
	m.r.state.messages = append(m.r.state.messages, message.Clone())
	return nil
}

func (m memoryMessages) Update(ctx context.Context, message *entities.AdminMessage) error {
	err := m.r.begin(OpMessagesUpdate)
	defer m.r.mu.Unlock()
	if err != nil {
		return err
	}
	for i, msg := range m.r.state.messages {
		if msg.ID == message.ID {
			m.r.state.messages[i] = message.Clone()
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("admin message with id %s not found", message.ID))
}

func (m memoryMessages) Delete(ctx context.Context, id string) error {
	err := m.r.begin(OpMessagesDelete)
	defer m.r.mu.Unlock()
	if err != nil {
		return err
	}
	for i, msg := range m.r.state.messages {
		if msg.ID == id {
			m.r.state.messages = append(m.r.state.messages[:i], m.r.state.messages[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("admin message with id %s not found", id))
}

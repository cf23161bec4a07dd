package store

import (
	"context"
	"fmt"
	"time"

	"github.com/skillswap/backend/internal/domain/entities"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

type opKind int

const (
	opCreateUser opKind = iota
	opUpdateUser
	opCreateSwap
	opUpdateSwap
	opCreateFeedback
	opCreateMessage
	opUpdateMessage
	opDeleteMessage
)

type stagedOp struct {
	kind     opKind
	user     *entities.User
	swap     *entities.SwapRequest
	feedback *entities.Feedback
	message  *entities.AdminMessage
	id       string
}

func (op stagedOp) persist(ctx context.Context, repos Repositories) error {
	switch op.kind {
	case opCreateUser:
		return repos.Users.Create(ctx, op.user)
	case opUpdateUser:
		return repos.Users.Update(ctx, op.user)
	case opCreateSwap:
		return repos.SwapRequests.Create(ctx, op.swap)
	case opUpdateSwap:
		return repos.SwapRequests.Update(ctx, op.swap)
	case opCreateFeedback:
		return repos.Feedback.Create(ctx, op.feedback)
	case opCreateMessage:
		return repos.AdminMessages.Create(ctx, op.message)
	case opUpdateMessage:
		return repos.AdminMessages.Update(ctx, op.message)
	case opDeleteMessage:
		return repos.AdminMessages.Delete(ctx, op.id)
	}
	return fmt.Errorf("unknown staged operation %d", op.kind)
}

// Txn is the view handed to Mutate callbacks. Reads see committed state
// overlaid with the writes staged so far; nothing is visible to other readers
// until the store applies the batch.
type Txn struct {
	store *Store
	ops   []stagedOp

	users           map[string]*entities.User
	swaps           map[string]*entities.SwapRequest
	messages        map[string]*entities.AdminMessage
	deletedMessages map[string]bool
	feedback        []*entities.Feedback
}

func newTxn(s *Store) *Txn {
	return &Txn{
		store:           s,
		users:           make(map[string]*entities.User),
		swaps:           make(map[string]*entities.SwapRequest),
		messages:        make(map[string]*entities.AdminMessage),
		deletedMessages: make(map[string]bool),
	}
}

// Now returns the store's current time
func (t *Txn) Now() time.Time {
	return t.store.now()
}

// User returns a copy of the user, including staged changes
func (t *Txn) User(id string) (*entities.User, error) {
	if u, ok := t.users[id]; ok {
		return u.Clone(), nil
	}
	if u, ok := t.store.users[id]; ok {
		return u.Clone(), nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", id))
}

// UserByEmail finds a user by email ignoring case; it returns nil when absent
func (t *Txn) UserByEmail(email string) *entities.User {
	want := normalizeEmail(email)
	for _, u := range t.users {
		if normalizeEmail(u.Email) == want {
			return u.Clone()
		}
	}
	for _, id := range t.store.userOrder {
		u := t.store.users[id]
		if _, staged := t.users[id]; staged {
			continue
		}
		if normalizeEmail(u.Email) == want {
			return u.Clone()
		}
	}
	return nil
}

// SwapRequest returns a copy of the swap request, including staged changes
func (t *Txn) SwapRequest(id string) (*entities.SwapRequest, error) {
	if sw, ok := t.swaps[id]; ok {
		return sw.Clone(), nil
	}
	if sw, ok := t.store.swaps[id]; ok {
		return sw.Clone(), nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("swap request %s not found", id))
}

// FeedbackFor returns committed and staged feedback addressed to userID
func (t *Txn) FeedbackFor(userID string) []*entities.Feedback {
	keep := func(f *entities.Feedback) bool { return f.ToUserID == userID }
	return append(filterFeedback(t.store.feedback, keep), filterFeedback(t.feedback, keep)...)
}

// FeedbackForSwap returns committed and staged feedback on a swap request
func (t *Txn) FeedbackForSwap(swapID string) []*entities.Feedback {
	keep := func(f *entities.Feedback) bool { return f.SwapRequestID == swapID }
	return append(filterFeedback(t.store.feedback, keep), filterFeedback(t.feedback, keep)...)
}

// AdminMessage returns a copy of the message, including staged changes
func (t *Txn) AdminMessage(id string) (*entities.AdminMessage, error) {
	if !t.deletedMessages[id] {
		if m, ok := t.messages[id]; ok {
			return m.Clone(), nil
		}
		if m, ok := t.store.messages[id]; ok {
			return m.Clone(), nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("admin message %s not found", id))
}

// CreateUser stages a new user
func (t *Txn) CreateUser(u *entities.User) {
	c := u.Clone()
	t.users[c.ID] = c
	t.ops = append(t.ops, stagedOp{kind: opCreateUser, user: c})
}

// UpdateUser stages a replacement for an existing user
func (t *Txn) UpdateUser(u *entities.User) {
	c := u.Clone()
	t.users[c.ID] = c
	t.ops = append(t.ops, stagedOp{kind: opUpdateUser, user: c})
}

// CreateSwapRequest stages a new swap request
func (t *Txn) CreateSwapRequest(sw *entities.SwapRequest) {
	c := sw.Clone()
	t.swaps[c.ID] = c
	t.ops = append(t.ops, stagedOp{kind: opCreateSwap, swap: c})
}

// UpdateSwapRequest stages a replacement for an existing swap request
func (t *Txn) UpdateSwapRequest(sw *entities.SwapRequest) {
	c := sw.Clone()
	t.swaps[c.ID] = c
	t.ops = append(t.ops, stagedOp{kind: opUpdateSwap, swap: c})
}

// CreateFeedback stages a new feedback entry
func (t *Txn) CreateFeedback(f *entities.Feedback) {
	c := f.Clone()
	t.feedback = append(t.feedback, c)
	t.ops = append(t.ops, stagedOp{kind: opCreateFeedback, feedback: c})
}

// CreateAdminMessage stages a new admin message
func (t *Txn) CreateAdminMessage(m *entities.AdminMessage) {
	c := m.Clone()
	t.messages[c.ID] = c
	delete(t.deletedMessages, c.ID)
	t.ops = append(t.ops, stagedOp{kind: opCreateMessage, message: c})
}

// UpdateAdminMessage stages a replacement for an existing admin message
func (t *Txn) UpdateAdminMessage(m *entities.AdminMessage) {
	c := m.Clone()
	t.messages[c.ID] = c
	t.ops = append(t.ops, stagedOp{kind: opUpdateMessage, message: c})
}

// DeleteAdminMessage stages the removal of an admin message
func (t *Txn) DeleteAdminMessage(id string) {
	delete(t.messages, id)
	t.deletedMessages[id] = true
	t.ops = append(t.ops, stagedOp{kind: opDeleteMessage, id: id})
}

// apply copies the staged batch into the store; the store lock must be held
func (t *Txn) apply() {
	s := t.store
	for _, op := range t.ops {
		switch op.kind {
		case opCreateUser:
			if _, exists := s.users[op.user.ID]; !exists {
				s.userOrder = append(s.userOrder, op.user.ID)
			}
			s.users[op.user.ID] = op.user.Clone()
		case opUpdateUser:
			s.users[op.user.ID] = op.user.Clone()
		case opCreateSwap:
			if _, exists := s.swaps[op.swap.ID]; !exists {
				s.swapOrder = append(s.swapOrder, op.swap.ID)
			}
			s.swaps[op.swap.ID] = op.swap.Clone()
		case opUpdateSwap:
			s.swaps[op.swap.ID] = op.swap.Clone()
		case opCreateFeedback:
			s.feedback = append(s.feedback, op.feedback.Clone())
		case opCreateMessage:
			if _, exists := s.messages[op.message.ID]; !exists {
				s.messageOrder = append(s.messageOrder, op.message.ID)
			}
			s.messages[op.message.ID] = op.message.Clone()
		case opUpdateMessage:
			s.messages[op.message.ID] = op.message.Clone()
		case opDeleteMessage:
			delete(s.messages, op.id)
			s.messageOrder = removeID(s.messageOrder, op.id)
		}
	}
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

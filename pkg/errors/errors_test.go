package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewPersistenceError("failed to update swap request", stderrors.New("connection reset"))
	assert.Equal(t, "PERSISTENCE_FAILURE: failed to update swap request: connection reset", err.Error())

	err = NewInvalidTransitionError("cannot move from completed to completed")
	assert.Equal(t, "INVALID_TRANSITION: cannot move from completed to completed", err.Error())
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", NewNotFoundError("user u1 not found"), ErrorTypeNotFound},
		{"invalid feedback", NewInvalidFeedbackError("swap is not completed"), ErrorTypeInvalidFeedback},
		{"wrapped", fmt.Errorf("apply: %w", NewInvalidTransitionError("x")), ErrorTypeInvalidTransition},
		{"plain error", stderrors.New("boom"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

func TestIsType(t *testing.T) {
	assert.True(t, IsType(NewConflictError("email taken"), ErrorTypeConflict))
	assert.False(t, IsType(NewConflictError("email taken"), ErrorTypeNotFound))
	assert.False(t, IsType(nil, ErrorTypeInternal))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("pq: deadlock detected")
	err := NewPersistenceError("failed to persist", cause)
	assert.ErrorIs(t, err, cause)
}

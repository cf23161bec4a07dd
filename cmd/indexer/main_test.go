package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/tests/mocks"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"30m", 30 * time.Minute, false},
		{"6h", 6 * time.Hour, false},
		{"0s", 0, true},
		{"-1m", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseInterval(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestIndexUsers(t *testing.T) {
	alice := mocks.NewUser("alice", "Alice", "Guitar")
	hidden := mocks.NewUser("dave", "Dave", "Chess")
	hidden.IsPublic = false
	broken := mocks.NewUser("erin", "Erin", "Pottery")

	index := &mocks.MockUserIndex{}
	index.On("Index", mock.Anything, alice).Return(nil)
	index.On("Index", mock.Anything, hidden).Return(nil)
	index.On("Index", mock.Anything, broken).Return(errors.New("timeout"))

	result := indexUsers(context.Background(), []*entities.User{alice, hidden, broken}, index)

	assert.Equal(t, indexResult{Indexed: 1, Removed: 1, Failed: 1}, result)
	index.AssertNumberOfCalls(t, "Index", 3)
}

func TestIndexUsers_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	index := &mocks.MockUserIndex{}
	result := indexUsers(ctx, []*entities.User{mocks.NewUser("alice", "Alice")}, index)

	assert.Zero(t, result)
	index.AssertNotCalled(t, "Index", mock.Anything, mock.Anything)
}

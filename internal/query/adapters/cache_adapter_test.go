package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/tests/mocks"
)

func TestQueryCacheAdapter_RoundTripAndMiss(t *testing.T) {
	ctx := context.Background()
	adapter := NewQueryCacheAdapter(mocks.NewMockCacheProvider())

	var out entities.Analytics
	hit, err := adapter.Get(ctx, "analytics:summary", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	in := entities.Analytics{TotalUsers: 3, AverageRating: 4.5, TopSkills: []entities.SkillCount{{Skill: "Go", Count: 2}}}
	require.NoError(t, adapter.Set(ctx, "analytics:summary", in, time.Minute))

	hit, err = adapter.Get(ctx, "analytics:summary", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, in.TopSkills, out.TopSkills)
	assert.Equal(t, 4.5, out.AverageRating)

	require.NoError(t, adapter.Delete(ctx, "analytics:summary"))
	hit, err = adapter.Get(ctx, "analytics:summary", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

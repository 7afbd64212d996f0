package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackreward/internal/model"
)

func testEpisode(id, agent string, total float64) model.EpisodeSummary {
	return model.EpisodeSummary{
		VersionedRecord: Stamp(),
		ID:              id,
		AgentID:         agent,
		Steps:           3,
		LastStep:        3,
		FinalProgress:   42,
		TotalReward:     total,
		Milestones:      []int{1, 2, 3, 4},
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Init(ctx))

	_, ok, err := store.GetEpisode(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveEpisode(ctx, testEpisode("ep-1", "car-a", 10)))
	require.NoError(t, store.SaveEpisode(ctx, testEpisode("ep-2", "car-b", 20)))
	require.NoError(t, store.SaveEpisode(ctx, testEpisode("ep-3", "car-a", 30)))

	got, ok, err := store.GetEpisode(ctx, "ep-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "car-b", got.AgentID)
	assert.Equal(t, 20.0, got.TotalReward)
	assert.Equal(t, []int{1, 2, 3, 4}, got.Milestones)

	all, err := store.ListEpisodes(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ep-3", all[0].ID)
	assert.Equal(t, "ep-1", all[2].ID)

	carA, err := store.ListEpisodes(ctx, "car-a", 0)
	require.NoError(t, err)
	require.Len(t, carA, 2)
	assert.Equal(t, "ep-3", carA[0].ID)
	assert.Equal(t, "ep-1", carA[1].ID)

	limited, err := store.ListEpisodes(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "ep-3", limited[0].ID)

	// Overwriting keeps the original position in the listing.
	require.NoError(t, store.SaveEpisode(ctx, testEpisode("ep-1", "car-a", 15)))
	all, err = store.ListEpisodes(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ep-1", all[2].ID)
	assert.Equal(t, 15.0, all[2].TotalReward)

	_, ok, err = store.GetStepTrace(ctx, "ep-1")
	require.NoError(t, err)
	assert.False(t, ok)

	trace := []model.StepRecord{
		{Steps: 1, Total: 1.5, Immediate: 1.5},
		{Steps: 2, Total: 2.5, MilestoneBonus: 1, Unpardonable: true},
	}
	require.NoError(t, store.SaveStepTrace(ctx, "ep-1", trace))
	gotTrace, ok, err := store.GetStepTrace(ctx, "ep-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, trace, gotTrace)

	require.NoError(t, store.Reset(ctx))
	all, err = store.ListEpisodes(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, all)
	_, ok, err = store.GetStepTrace(ctx, "ep-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

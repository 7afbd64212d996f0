package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltStore(t *testing.T) {
	store := NewBoltStore(filepath.Join(t.TempDir(), "episodes.db"))
	t.Cleanup(func() { _ = store.Close() })
	exerciseStore(t, store)
}

func TestBoltStoreRequiresPath(t *testing.T) {
	assert.Error(t, NewBoltStore("").Init(context.Background()))
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "episodes.db")

	first := NewBoltStore(path)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.SaveEpisode(ctx, testEpisode("ep-1", "car", 7)))
	require.NoError(t, first.SaveEpisode(ctx, testEpisode("ep-2", "car", 8)))
	require.NoError(t, first.Close())

	second := NewBoltStore(path)
	require.NoError(t, second.Init(ctx))
	t.Cleanup(func() { _ = second.Close() })

	got, ok, err := second.GetEpisode(ctx, "ep-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7.0, got.TotalReward)

	list, err := second.ListEpisodes(ctx, "car", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ep-2", list[0].ID)
}

func TestBoltStoreUninitialized(t *testing.T) {
	_, _, err := NewBoltStore("x.db").GetEpisode(context.Background(), "ep")
	assert.Error(t, err)
}

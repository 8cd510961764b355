package database

import (
	"context"
	"testing"

	"github.com/nfrund/dungeonwave/internal/game/gametest"
	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotFound)

	m := gametest.NewMatch()
	require.NoError(t, store.Save(ctx, m))

	loaded, err := store.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	loaded.Wave = 9
	again, err := store.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Zero(t, again.Wave, "loaded matches are private copies")

	require.NoError(t, store.Save(ctx, again), "saving a loaded match is idempotent")
	third, err := store.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, again, third)
	assert.Equal(t, []string{"m1"}, store.IDs())
}

func TestMemoryStore_RejectsInvalid(t *testing.T) {
	store := NewMemoryStore()
	assert.ErrorIs(t, store.Save(context.Background(), &match.Match{}), ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, store.Save(ctx, gametest.NewMatch()))
}

func TestMemoryLog(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog()

	for _, kind := range []string{"a", "b", "c"} {
		require.NoError(t, log.Append(ctx, "m1", match.Entry{Timestamp: gametest.Epoch, Kind: kind}))
	}
	require.NoError(t, log.Append(ctx, "m2", match.Entry{Kind: "other"}))

	all, err := log.Read(ctx, "m1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tail, err := log.Read(ctx, "m1", 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "b", tail[0].Kind)
	assert.Equal(t, "c", tail[1].Kind)

	empty, err := log.Read(ctx, "missing", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

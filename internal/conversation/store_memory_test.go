package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lookupbot/internal/lookup/models"
	"lookupbot/pkg/platform/sentinel"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithMemoryClock(func() time.Time { return now }))

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Save(ctx, Conversation{ID: "a", State: StateAwaitingMLBB}, time.Minute))
	require.NoError(t, store.Save(ctx, Conversation{ID: "b", State: StateAwaitingAvatar}, time.Hour))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingMLBB, got.State)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, sentinel.ErrNotFound, "expired")

	require.NoError(t, store.Save(ctx, Conversation{ID: "c"}, time.Second))
	now = now.Add(time.Minute)
	assert.Equal(t, 1, store.Sweep())

	require.NoError(t, store.Delete(ctx, "b"))
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestAwaiting(t *testing.T) {
	d, ok := Conversation{State: StateAwaitingAvatar}.Awaiting()
	assert.True(t, ok)
	assert.Equal(t, models.DomainAvatar, d)

	_, ok = Conversation{State: StateNone}.Awaiting()
	assert.False(t, ok)

	assert.Empty(t, Prompt(StateNone))
	assert.Contains(t, Prompt(StateAwaitingMLBB), "MLBB")
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithMemoryClock(func() time.Time { return now }))

	require.NoError(t, store.Save(ctx, Conversation{ID: "abandoned", State: StateAwaitingAvatar}, time.Minute))
	now = now.Add(time.Hour)
	require.Equal(t, 1, store.Len(), "nothing reads the abandoned entry")

	done := make(chan error, 1)
	go func() { done <- store.StartCleanup(ctx, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop on cancel")
	}
}

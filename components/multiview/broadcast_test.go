package multiview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastRecordsAudienceOnActiveLayout(t *testing.T) {
	ctx := context.Background()
	clock := newFixedClock()
	store := newTestStore(NewMemoryStorage(), clock)
	var slept time.Duration
	controller := NewBroadcastController(store, WithBroadcastClock(clock.Now, func(d time.Duration) {
		slept = d
		clock.Advance(d)
	}))

	receipt, err := controller.Broadcast(ctx, AudiencePremium)
	require.NoError(t, err)

	assert.Equal(t, DefaultBroadcastDelay, slept)
	assert.Equal(t, "layout-overview", receipt.LayoutID)
	assert.Equal(t, AudiencePremium, receipt.Audience)
	assert.Equal(t, DefaultBroadcastDelay, receipt.CompletedAt.Sub(receipt.StartedAt))
	assert.Equal(t, BroadcastIdle, controller.State())

	active, err := store.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, AudiencePremium, active.Audience)
}

func TestBroadcastRejectsUnknownAudience(t *testing.T) {
	store := newTestStore(NewMemoryStorage(), newFixedClock())
	controller := NewBroadcastController(store, WithBroadcastDelay(0))

	_, err := controller.Broadcast(context.Background(), Audience("everyone"))
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	active, err := store.Active(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active.Audience)
}

func TestBroadcastRefusesConcurrentBroadcast(t *testing.T) {
	store := newTestStore(NewMemoryStorage(), newFixedClock())
	entered := make(chan struct{})
	release := make(chan struct{})
	controller := NewBroadcastController(store, WithBroadcastClock(nil, func(time.Duration) {
		close(entered)
		<-release
	}))

	done := make(chan error, 1)
	go func() {
		_, err := controller.Broadcast(context.Background(), AudienceAll)
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first broadcast never started")
	}
	assert.Equal(t, BroadcastBroadcasting, controller.State())

	_, err := controller.Broadcast(context.Background(), AudienceAdmins)
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, BroadcastIdle, controller.State())

	active, err := store.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AudienceAll, active.Audience)
}

func TestBroadcastReturnsToIdleOnStoreError(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{MemoryStorage: NewMemoryStorage()}
	store := newTestStore(storage, newFixedClock())
	_, err := store.Load(ctx)
	require.NoError(t, err)
	storage.failSave = true

	controller := NewBroadcastController(store, WithBroadcastDelay(0))
	_, err = controller.Broadcast(ctx, AudienceStandard)
	require.Error(t, err)
	assert.Equal(t, BroadcastIdle, controller.State())
}

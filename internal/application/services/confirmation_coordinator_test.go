package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/touchnstars/companion/internal/application/errors"
	"github.com/touchnstars/companion/internal/domain/values"
)

func waitResolved(t *testing.T, conf *Confirmation) bool {
	t.Helper()
	select {
	case <-conf.Done():
		chosen, resolved := conf.Result()
		require.True(t, resolved)
		return chosen
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation did not resolve")
		return false
	}
}

func TestConfirmationCoordinator_ChooseRoundTrip(t *testing.T) {
	t.Parallel()

	updater := new(MockProfileUpdater)
	updater.On("SetValue", mock.Anything, values.SyncDirectionSettingPath, "TOTELESCOPE").Return(nil).Once()
	c := NewConfirmationCoordinator(updater, 0, discardLogger())
	ctx := context.Background()

	conf, err := c.RequestConfirmation(ctx)
	require.NoError(t, err)
	assert.True(t, c.Visible())
	assert.NotEmpty(t, conf.ID())

	_, resolved := conf.Result()
	assert.False(t, resolved)

	require.NoError(t, c.Choose(ctx, values.SyncToTelescope))

	assert.True(t, waitResolved(t, conf))
	assert.False(t, c.Visible())
	_, pending := c.PendingID()
	assert.False(t, pending)
	updater.AssertExpectations(t)
}

func TestConfirmationCoordinator_CancelResolvesFalse(t *testing.T) {
	t.Parallel()

	updater := new(MockProfileUpdater)
	c := NewConfirmationCoordinator(updater, 0, discardLogger())

	conf, err := c.RequestConfirmation(context.Background())
	require.NoError(t, err)

	c.Cancel()

	assert.False(t, waitResolved(t, conf))
	assert.False(t, c.Visible())
	updater.AssertNotCalled(t, "SetValue", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmationCoordinator_IdleChooseAndCancelAreNoOps(t *testing.T) {
	t.Parallel()

	updater := new(MockProfileUpdater)
	c := NewConfirmationCoordinator(updater, 0, discardLogger())

	assert.NotPanics(t, func() {
		assert.NoError(t, c.Choose(context.Background(), values.SyncNone))
		c.Cancel()
	})
	assert.False(t, c.Visible())
	updater.AssertNotCalled(t, "SetValue", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmationCoordinator_RejectsSecondRequest(t *testing.T) {
	t.Parallel()

	updater := new(MockProfileUpdater)
	updater.On("SetValue", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	c := NewConfirmationCoordinator(updater, 0, discardLogger())
	ctx := context.Background()

	first, err := c.RequestConfirmation(ctx)
	require.NoError(t, err)

	second, err := c.RequestConfirmation(ctx)
	assert.ErrorIs(t, err, apperrors.ErrConfirmationPending)
	assert.Nil(t, second)

	id, pending := c.PendingID()
	require.True(t, pending)
	assert.Equal(t, first.ID(), id, "the first confirmation must not be replaced")

	require.NoError(t, c.Choose(ctx, values.SyncToApplication))
	assert.True(t, waitResolved(t, first))

	third, err := c.RequestConfirmation(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), third.ID())
	c.Cancel()
	assert.False(t, waitResolved(t, third))
}

func TestConfirmationCoordinator_ConcurrentRequestsAdmitOne(t *testing.T) {
	t.Parallel()

	c := NewConfirmationCoordinator(nil, 0, discardLogger())

	var admitted, rejected atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.RequestConfirmation(context.Background())
			if err == nil {
				admitted.Add(1)
				return
			}
			if errors.Is(err, apperrors.ErrConfirmationPending) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
	assert.Equal(t, int32(19), rejected.Load())
	c.Cancel()
}

func TestConfirmationCoordinator_ConfirmWaitsForChoice(t *testing.T) {
	t.Parallel()

	updater := new(MockProfileUpdater)
	updater.On("SetValue", mock.Anything, values.SyncDirectionSettingPath, "NOSYNC").Return(nil)
	c := NewConfirmationCoordinator(updater, 0, discardLogger())

	unsubscribe := c.Subscribe(func(visible bool) {
		if visible {
			go func() { _ = c.Choose(context.Background(), values.SyncNone) }()
		}
	})
	defer unsubscribe()

	ok, err := c.Confirm(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConfirmationCoordinator_ChooseUpdaterErrorStillResolves(t *testing.T) {
	t.Parallel()

	cause := errors.New("instrument offline")
	updater := new(MockProfileUpdater)
	updater.On("SetValue", mock.Anything, mock.Anything, mock.Anything).Return(cause)
	c := NewConfirmationCoordinator(updater, 0, discardLogger())

	conf, err := c.RequestConfirmation(context.Background())
	require.NoError(t, err)

	err = c.Choose(context.Background(), values.SyncToTelescope)
	assert.ErrorIs(t, err, cause)
	assert.True(t, waitResolved(t, conf))
	assert.False(t, c.Visible())
}

func TestConfirmationCoordinator_TimeoutResolvesFalse(t *testing.T) {
	t.Parallel()

	c := NewConfirmationCoordinator(nil, 20*time.Millisecond, discardLogger())

	conf, err := c.RequestConfirmation(context.Background())
	require.NoError(t, err)

	assert.False(t, waitResolved(t, conf))
	assert.False(t, c.Visible())

	_, err = c.RequestConfirmation(context.Background())
	assert.NoError(t, err, "slot is free after expiry")
	c.Cancel()
}

func TestConfirmationCoordinator_AbandonedWaitFreesSlot(t *testing.T) {
	t.Parallel()

	c := NewConfirmationCoordinator(nil, 0, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ok, err := c.Confirm(ctx)

	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, c.Visible())
}

func TestConfirmationCoordinator_SubscribeObservesFlag(t *testing.T) {
	t.Parallel()

	c := NewConfirmationCoordinator(nil, 0, discardLogger())

	var mu sync.Mutex
	var seen []bool
	unsubscribe := c.Subscribe(func(visible bool) {
		mu.Lock()
		seen = append(seen, visible)
		mu.Unlock()
	})

	_, err := c.RequestConfirmation(context.Background())
	require.NoError(t, err)
	c.Cancel()

	unsubscribe()
	_, err = c.RequestConfirmation(context.Background())
	require.NoError(t, err)
	c.Cancel()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, seen)
}

func TestConfirmationCoordinator_NilUpdaterStillResolves(t *testing.T) {
	t.Parallel()

	c := NewConfirmationCoordinator(nil, 0, discardLogger())
	conf, err := c.RequestConfirmation(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Choose(context.Background(), values.SyncToApplication))
	assert.True(t, waitResolved(t, conf))
}

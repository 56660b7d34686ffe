package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/touchnstars/companion/internal/application/errors"
	"github.com/touchnstars/companion/internal/application/ports"
	"github.com/touchnstars/companion/internal/domain/values"
)

// Confirmation is a one-shot future for a pending user decision. It resolves
// to true when the user chose an option and false when the prompt was
// cancelled, expired or abandoned.
type Confirmation struct {
	createdAt   time.Time
	coordinator *ConfirmationCoordinator
	done        chan struct{}
	id          string
	once        sync.Once
	chosen      bool
}

func newConfirmation(coordinator *ConfirmationCoordinator) *Confirmation {
	return &Confirmation{
		id:          uuid.NewString(),
		createdAt:   time.Now(),
		coordinator: coordinator,
		done:        make(chan struct{}),
	}
}

// ID uniquely identifies this confirmation request.
func (c *Confirmation) ID() string {
	return c.id
}

// CreatedAt returns when the confirmation was requested.
func (c *Confirmation) CreatedAt() time.Time {
	return c.createdAt
}

// Done is closed once the confirmation is resolved.
func (c *Confirmation) Done() <-chan struct{} {
	return c.done
}

// Result returns the outcome and whether the confirmation has resolved yet.
func (c *Confirmation) Result() (chosen bool, resolved bool) {
	select {
	case <-c.done:
		return c.chosen, true
	default:
		return false, false
	}
}

// Wait blocks until the confirmation resolves. If ctx ends first the pending
// confirmation is cancelled so the slot is freed, and ctx.Err() is returned.
func (c *Confirmation) Wait(ctx context.Context) (bool, error) {
	select {
	case <-c.done:
		return c.chosen, nil
	case <-ctx.Done():
		c.coordinator.release(c, "abandoned")
		// The user may have answered at the same moment.
		if chosen, ok := c.Result(); ok && chosen {
			return true, nil
		}
		return false, ctx.Err()
	}
}

func (c *Confirmation) resolve(chosen bool) {
	c.once.Do(func() {
		c.chosen = chosen
		close(c.done)
	})
}

// ConfirmationCoordinator suspends a workflow until the UI supplies a
// decision. At most one confirmation is pending at a time; a second request
// while one is pending is rejected with apperrors.ErrConfirmationPending.
type ConfirmationCoordinator struct {
	updater   ports.ProfileUpdater
	logger    *slog.Logger
	pending   *Confirmation
	timer     *time.Timer
	listeners map[int]func(visible bool)
	timeout   time.Duration
	nextID    int
	mu        sync.Mutex
}

// NewConfirmationCoordinator creates a coordinator. The updater receives the
// value passed to Choose. A timeout of zero waits indefinitely.
func NewConfirmationCoordinator(updater ports.ProfileUpdater, timeout time.Duration, logger *slog.Logger) *ConfirmationCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfirmationCoordinator{
		updater:   updater,
		timeout:   timeout,
		logger:    logger,
		listeners: make(map[int]func(bool)),
	}
}

// RequestConfirmation raises the visibility flag and returns a future that
// resolves when Choose or Cancel is called.
func (c *ConfirmationCoordinator) RequestConfirmation(_ context.Context) (*Confirmation, error) {
	c.mu.Lock()
	if c.pending != nil {
		pendingID := c.pending.id
		c.mu.Unlock()
		c.logger.Warn("rejecting confirmation request", "pending", pendingID)
		return nil, apperrors.ErrConfirmationPending
	}

	conf := newConfirmation(c)
	c.pending = conf
	if c.timeout > 0 {
		c.timer = time.AfterFunc(c.timeout, func() {
			c.release(conf, "expired")
		})
	}
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	c.logger.Debug("confirmation requested", "id", conf.id)
	notify(listeners, true)
	return conf, nil
}

// Confirm requests a confirmation and waits for its outcome.
func (c *ConfirmationCoordinator) Confirm(ctx context.Context) (bool, error) {
	conf, err := c.RequestConfirmation(ctx)
	if err != nil {
		return false, err
	}
	return conf.Wait(ctx)
}

// Choose records the user's selection. The value is forwarded to the profile
// updater and the pending confirmation resolves to true. Errors from the
// updater are returned to the caller; the confirmation resolves regardless.
// Without a pending confirmation Choose does nothing.
func (c *ConfirmationCoordinator) Choose(ctx context.Context, value values.SyncDirection) error {
	conf := c.take(nil)
	if conf == nil {
		c.logger.Debug("choose ignored, no pending confirmation", "value", value)
		return nil
	}

	var err error
	if c.updater != nil {
		err = c.updater.SetValue(ctx, values.SyncDirectionSettingPath, value.String())
	} else {
		c.logger.Warn("no profile updater configured, choice not persisted", "value", value)
	}

	conf.resolve(true)
	c.logger.Debug("confirmation chosen", "id", conf.id, "value", value)

	if err != nil {
		return fmt.Errorf("failed to set location sync direction: %w", err)
	}
	return nil
}

// Cancel resolves the pending confirmation to false. Without a pending
// confirmation Cancel does nothing.
func (c *ConfirmationCoordinator) Cancel() {
	c.release(nil, "cancelled")
}

// Visible reports whether the confirmation prompt should be shown.
func (c *ConfirmationCoordinator) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// PendingID returns the ID of the pending confirmation, if any.
func (c *ConfirmationCoordinator) PendingID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return "", false
	}
	return c.pending.id, true
}

// Subscribe registers a handler for visibility changes. Handlers run on the
// goroutine that changed the flag. Returns an unsubscribe function.
func (c *ConfirmationCoordinator) Subscribe(handler func(visible bool)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// release resolves target (or whatever is pending when target is nil) to false.
func (c *ConfirmationCoordinator) release(target *Confirmation, reason string) {
	conf := c.take(target)
	if conf == nil {
		return
	}
	conf.resolve(false)
	c.logger.Debug("confirmation "+reason, "id", conf.id)
}

// take clears the pending slot and lowers the flag. With a non-nil target it
// only clears that exact confirmation.
func (c *ConfirmationCoordinator) take(target *Confirmation) *Confirmation {
	c.mu.Lock()
	conf := c.pending
	if conf == nil || (target != nil && conf != target) {
		c.mu.Unlock()
		return nil
	}
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	notify(listeners, false)
	return conf
}

func (c *ConfirmationCoordinator) snapshotListenersLocked() []func(bool) {
	out := make([]func(bool), 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []func(bool), visible bool) {
	for _, l := range listeners {
		l(visible)
	}
}

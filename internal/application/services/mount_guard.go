package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/touchnstars/companion/internal/application/ports"
)

// MountConnectionGuard gates the mount connection on the profile's location
// sync policy. When the policy is PROMPT the user has to pick a direction first.
type MountConnectionGuard struct {
	profile     ports.ProfileReader
	coordinator *ConfirmationCoordinator
	mount       ports.MountController
	logger      *slog.Logger
}

// NewMountConnectionGuard creates a guard.
func NewMountConnectionGuard(
	profile ports.ProfileReader,
	coordinator *ConfirmationCoordinator,
	mount ports.MountController,
	logger *slog.Logger,
) *MountConnectionGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &MountConnectionGuard{
		profile:     profile,
		coordinator: coordinator,
		mount:       mount,
		logger:      logger,
	}
}

// CheckConnectionPermission returns true when the connection may proceed.
// A profile that does not ask for a prompt proceeds without touching the
// coordinator. A profile read failure blocks the connection.
func (g *MountConnectionGuard) CheckConnectionPermission(ctx context.Context) (bool, error) {
	direction, err := g.profile.SyncDirection(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read location sync direction: %w", err)
	}
	g.logger.Debug("checking location sync direction", "direction", direction)

	if !direction.RequiresPrompt() {
		return true, nil
	}
	return g.coordinator.Confirm(ctx)
}

// ConnectMount connects the mount if the guard allows it. It reports whether
// the connect action was issued.
func (g *MountConnectionGuard) ConnectMount(ctx context.Context) (bool, error) {
	allowed, err := g.CheckConnectionPermission(ctx)
	if err != nil {
		return false, err
	}
	if !allowed {
		g.logger.Info("mount connection cancelled by user")
		return false, nil
	}
	if g.mount == nil {
		return false, fmt.Errorf("no mount controller configured")
	}
	if err := g.mount.MountAction(ctx, "connect"); err != nil {
		return false, fmt.Errorf("failed to connect mount: %w", err)
	}
	g.logger.Info("mount connected")
	return true, nil
}

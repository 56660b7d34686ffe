// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"

	"github.com/touchnstars/companion/internal/domain/values"
)

// PermissionBridge is the platform permission plugin for one capability.
// Results are keyed by bridge field (see capabilities.Kind.BridgeField) and
// carry raw platform values.
type PermissionBridge interface {
	CheckPermissions(ctx context.Context) (map[string]string, error)
	RequestPermissions(ctx context.Context) (map[string]string, error)
}

// PositionProvider queries the device position.
// It may fail on timeout or hardware error.
type PositionProvider interface {
	CurrentPosition(ctx context.Context, opts values.PositionOptions) (values.Position, error)
}

// SettingsOpener surfaces the OS settings screen for this application.
type SettingsOpener interface {
	OpenAppSettings(ctx context.Context) error
}

// ProfileReader reads policy from the instrument's active profile.
type ProfileReader interface {
	SyncDirection(ctx context.Context) (values.SyncDirection, error)
}

// ProfileUpdater persists a single profile setting on the instrument.
type ProfileUpdater interface {
	SetValue(ctx context.Context, key, value string) error
}

// MountController issues mount actions (connect, disconnect, park, ...).
type MountController interface {
	MountAction(ctx context.Context, action string) error
}

// Translator looks up localized text by key.
type Translator func(key string) string

package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/touchnstars/companion/internal/application/errors"
	"github.com/touchnstars/companion/internal/application/ports"
	"github.com/touchnstars/companion/internal/domain/capabilities"
	"github.com/touchnstars/companion/internal/domain/values"
	"golang.org/x/sync/errgroup"
)

// DefaultCheckAllTimeout bounds CheckAll when no timeout is configured.
const DefaultCheckAllTimeout = 15 * time.Second

var errBridgeNotRegistered = errors.New("no permission bridge registered")

// StatusSet is the combined result of CheckAll.
type StatusSet struct {
	Camera        capabilities.Status `json:"camera" yaml:"camera"`
	Location      capabilities.Status `json:"location" yaml:"location"`
	Notifications capabilities.Status `json:"notifications" yaml:"notifications"`
}

// Get returns the status of one capability.
func (s StatusSet) Get(kind capabilities.Kind) capabilities.Status {
	switch kind {
	case capabilities.KindCamera:
		return s.Camera
	case capabilities.KindLocation:
		return s.Location
	case capabilities.KindNotifications:
		return s.Notifications
	default:
		return capabilities.StatusPrompt
	}
}

// RequestResult is the outcome of a permission request.
// Err carries the bridge failure, if any; it is never returned as a Go error.
type RequestResult struct {
	Err     error               `json:"-" yaml:"-"`
	Status  capabilities.Status `json:"status" yaml:"status"`
	Granted bool                `json:"granted" yaml:"granted"`
}

// PermissionManagerOptions configure a PermissionManager.
type PermissionManagerOptions struct {
	Bridges         map[capabilities.Kind]ports.PermissionBridge
	Settings        ports.SettingsOpener
	Store           *StatusStore
	Logger          *slog.Logger
	Platform        values.Platform
	CheckAllTimeout time.Duration
}

// PermissionManager checks and requests device capabilities, branching on the
// platform. Bridge failures fail closed to denied.
type PermissionManager struct {
	bridges         map[capabilities.Kind]ports.PermissionBridge
	settings        ports.SettingsOpener
	store           *StatusStore
	logger          *slog.Logger
	platform        values.Platform
	checkAllTimeout time.Duration
}

// NewPermissionManager creates a permission manager.
func NewPermissionManager(opts PermissionManagerOptions) *PermissionManager {
	if opts.Store == nil {
		opts.Store = NewStatusStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Bridges == nil {
		opts.Bridges = make(map[capabilities.Kind]ports.PermissionBridge)
	}
	if opts.CheckAllTimeout == 0 {
		opts.CheckAllTimeout = DefaultCheckAllTimeout
	}
	return &PermissionManager{
		bridges:         opts.Bridges,
		settings:        opts.Settings,
		store:           opts.Store,
		logger:          opts.Logger,
		platform:        opts.Platform,
		checkAllTimeout: opts.CheckAllTimeout,
	}
}

// IsNative reports whether the manager runs on a native-capable platform.
func (m *PermissionManager) IsNative() bool {
	return m.platform.IsNativeCapable()
}

// Platform returns the platform the manager branches on.
func (m *PermissionManager) Platform() values.Platform {
	return m.platform
}

// Store returns the status store. Callers can read it but not write it.
func (m *PermissionManager) Store() *StatusStore {
	return m.store
}

// Check queries the current status of a capability and records it.
func (m *PermissionManager) Check(ctx context.Context, kind capabilities.Kind) capabilities.Status {
	if m.isUnrestricted(kind) {
		m.store.record(kind, capabilities.StatusGranted)
		return capabilities.StatusGranted
	}

	status, bridgeErr := m.queryStatus(ctx, kind)
	if bridgeErr != nil {
		m.logger.Error("error checking permission",
			"capability", kind,
			"error", bridgeErr)
		m.store.record(kind, capabilities.StatusDenied)
		return capabilities.StatusDenied
	}

	m.store.record(kind, status)
	return status
}

// Request asks the platform for a capability. An already granted capability
// short-circuits without showing the OS dialog again.
func (m *PermissionManager) Request(ctx context.Context, kind capabilities.Kind) RequestResult {
	if m.isUnrestricted(kind) {
		m.store.record(kind, capabilities.StatusGranted)
		return RequestResult{Granted: true, Status: capabilities.StatusGranted}
	}

	if current := m.Check(ctx, kind); current.IsGranted() {
		return RequestResult{Granted: true, Status: current}
	}

	status, bridgeErr := m.requestStatus(ctx, kind)
	if bridgeErr != nil {
		m.logger.Error("error requesting permission",
			"capability", kind,
			"error", bridgeErr)
		m.store.record(kind, capabilities.StatusDenied)
		return RequestResult{Granted: false, Status: capabilities.StatusDenied, Err: bridgeErr}
	}

	m.store.record(kind, status)
	return RequestResult{Granted: status.IsGranted(), Status: status}
}

// CheckAll checks every capability. On native platforms the checks run
// concurrently and all of them settle before the result is built; a check
// still running when the timeout expires fails closed.
func (m *PermissionManager) CheckAll(ctx context.Context) StatusSet {
	if !m.IsNative() {
		for _, kind := range capabilities.AllKinds() {
			m.store.record(kind, capabilities.StatusGranted)
		}
		return StatusSet{
			Camera:        capabilities.StatusGranted,
			Location:      capabilities.StatusGranted,
			Notifications: capabilities.StatusGranted,
		}
	}

	if m.checkAllTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.checkAllTimeout)
		defer cancel()
	}

	var mu sync.Mutex
	results := make(map[capabilities.Kind]capabilities.Status, 3)

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range capabilities.AllKinds() {
		g.Go(func() error {
			status := m.Check(gctx, kind)
			mu.Lock()
			results[kind] = status
			mu.Unlock()
			return nil
		})
	}
	// Check never fails; it fails closed instead.
	_ = g.Wait()

	return StatusSet{
		Camera:        results[capabilities.KindCamera],
		Location:      results[capabilities.KindLocation],
		Notifications: results[capabilities.KindNotifications],
	}
}

// StatusMessage describes the recorded status of a capability. When t is nil
// built-in English text is used.
func (m *PermissionManager) StatusMessage(kind capabilities.Kind, t ports.Translator) string {
	switch m.store.Get(kind).Status {
	case capabilities.StatusGranted:
		return translate(t, "permissions.granted", "Permission granted")
	case capabilities.StatusDenied:
		return translate(t, "permissions.denied", "Permission denied. Please enable in settings.")
	case capabilities.StatusLimited:
		return translate(t, "permissions.limited", "Limited permission granted")
	default:
		return translate(t, "permissions.prompt", "Permission not requested yet")
	}
}

// OpenAppSettings surfaces the OS settings screen for this application.
// Failures are logged and swallowed.
func (m *PermissionManager) OpenAppSettings(ctx context.Context) {
	if !m.IsNative() {
		m.logger.Warn("opening settings only available on native platforms", "platform", m.platform)
		return
	}
	if m.settings == nil {
		m.logger.Warn("no settings opener configured")
		return
	}
	if err := m.settings.OpenAppSettings(ctx); err != nil {
		m.logger.Error("error opening app settings", "error", err)
	}
}

func (m *PermissionManager) isUnrestricted(kind capabilities.Kind) bool {
	return kind.IsBackendManaged() || !m.IsNative()
}

// queryStatus asks the bridge for the current status. Unmapped values are prompt.
func (m *PermissionManager) queryStatus(ctx context.Context, kind capabilities.Kind) (capabilities.Status, *apperrors.BridgeError) {
	raw, bridgeErr := m.invoke(ctx, kind, "check", func(b ports.PermissionBridge) (map[string]string, error) {
		return b.CheckPermissions(ctx)
	})
	if bridgeErr != nil {
		return capabilities.StatusDenied, bridgeErr
	}
	return capabilities.ParseStatus(raw[kind.BridgeField()], capabilities.StatusPrompt), nil
}

// requestStatus triggers the OS dialog. Unmapped values are denied.
func (m *PermissionManager) requestStatus(ctx context.Context, kind capabilities.Kind) (capabilities.Status, *apperrors.BridgeError) {
	raw, bridgeErr := m.invoke(ctx, kind, "request", func(b ports.PermissionBridge) (map[string]string, error) {
		return b.RequestPermissions(ctx)
	})
	if bridgeErr != nil {
		return capabilities.StatusDenied, bridgeErr
	}
	return capabilities.ParseStatus(raw[kind.BridgeField()], capabilities.StatusDenied), nil
}

// invoke calls the bridge and stops waiting when ctx is done, even if the
// bridge itself ignores ctx.
func (m *PermissionManager) invoke(
	ctx context.Context,
	kind capabilities.Kind,
	op string,
	call func(ports.PermissionBridge) (map[string]string, error),
) (map[string]string, *apperrors.BridgeError) {
	bridge, ok := m.bridges[kind]
	if !ok || bridge == nil {
		return nil, apperrors.NewBridgeError(kind, op, errBridgeNotRegistered)
	}

	type reply struct {
		err error
		raw map[string]string
	}
	done := make(chan reply, 1)
	go func() {
		raw, err := call(bridge)
		done <- reply{raw: raw, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, apperrors.NewBridgeError(kind, op, r.err)
		}
		return r.raw, nil
	case <-ctx.Done():
		return nil, apperrors.NewBridgeError(kind, op, ctx.Err())
	}
}

func translate(t ports.Translator, key, fallback string) string {
	if t == nil {
		return fallback
	}
	return t(key)
}

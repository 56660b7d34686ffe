// Package device provides a file-backed simulated native platform. It stands
// in for the mobile runtime's permission, geolocation and settings plugins.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/touchnstars/companion/internal/application/ports"
	"github.com/touchnstars/companion/internal/domain/capabilities"
	"github.com/touchnstars/companion/internal/domain/values"
)

// Failure points that can be listed under "failures" in the device file.
const (
	FailurePosition = "position"
	FailureSettings = "settings"
)

// ErrSimulatedFailure is returned for operations listed under "failures".
var ErrSimulatedFailure = errors.New("simulated device failure")

// ErrNoPosition is returned when the device file has no position configured.
var ErrNoPosition = errors.New("no position available")

// File is the YAML structure of a device file.
type File struct {
	Platform    string            `yaml:"platform"`
	Permissions map[string]string `yaml:"permissions,omitempty"`
	OnRequest   map[string]string `yaml:"on_request,omitempty"`
	Position    *PositionFile     `yaml:"position,omitempty"`
	Failures    []string          `yaml:"failures,omitempty"`
}

// PositionFile is the simulated geolocation fix.
type PositionFile struct {
	Latitude  float64  `yaml:"latitude"`
	Longitude float64  `yaml:"longitude"`
	Altitude  *float64 `yaml:"altitude,omitempty"`
	Accuracy  float64  `yaml:"accuracy,omitempty"`
	Delay     string   `yaml:"delay,omitempty"`
}

func (f *File) fails(point string) bool {
	return slices.Contains(f.Failures, point)
}

// Device reads and persists a simulated device file.
type Device struct {
	logger *slog.Logger
	path   string
	mu     sync.Mutex
}

// New creates a Device backed by path.
func New(path string, logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{path: path, logger: logger}
}

// Path returns the path to the device file.
func (d *Device) Path() string {
	return d.path
}

// Load reads the device file. If the file does not exist, it returns a web
// device with no permissions recorded.
func (d *Device) Load() (*File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadLocked()
}

func (d *Device) loadLocked() (*File, error) {
	if _, err := os.Stat(d.path); os.IsNotExist(err) {
		return &File{Platform: string(values.PlatformWeb)}, nil
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device file: %w", err)
	}

	if err := validate(data); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse device file: %w", err)
	}
	return &f, nil
}

// Save writes the device file, creating its directory if needed.
func (d *Device) Save(f *File) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveLocked(f)
}

func (d *Device) saveLocked(f *File) error {
	dir := filepath.Dir(d.path)
	//nolint:gosec // G301: 0o755 is standard for user config directories
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create device directory: %w", err)
	}

	data, err := yaml.MarshalWithOptions(f, yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("failed to marshal device to YAML: %w", err)
	}

	return os.WriteFile(d.path, data, 0o600)
}

// Platform returns the platform recorded in the device file.
func (d *Device) Platform() (values.Platform, error) {
	f, err := d.Load()
	if err != nil {
		return "", err
	}
	return values.ParsePlatform(f.Platform), nil
}

// Bridges returns a permission bridge for every capability the device
// arbitrates. Camera is not among them.
func (d *Device) Bridges() map[capabilities.Kind]ports.PermissionBridge {
	out := make(map[capabilities.Kind]ports.PermissionBridge)
	for _, kind := range capabilities.AllKinds() {
		if kind.IsBackendManaged() {
			continue
		}
		out[kind] = d.Bridge(kind)
	}
	return out
}

// Bridge returns the permission bridge for one capability.
func (d *Device) Bridge(kind capabilities.Kind) ports.PermissionBridge {
	return &bridge{device: d, field: kind.BridgeField()}
}

// CurrentPosition returns the configured fix after the configured delay.
func (d *Device) CurrentPosition(ctx context.Context, opts values.PositionOptions) (values.Position, error) {
	f, err := d.Load()
	if err != nil {
		return values.Position{}, err
	}
	if f.fails(FailurePosition) {
		return values.Position{}, fmt.Errorf("%w: %s", ErrSimulatedFailure, FailurePosition)
	}
	if f.Position == nil {
		return values.Position{}, ErrNoPosition
	}

	if f.Position.Delay != "" {
		delay, err := time.ParseDuration(f.Position.Delay)
		if err != nil {
			return values.Position{}, fmt.Errorf("invalid position delay %q: %w", f.Position.Delay, err)
		}
		d.logger.Debug("simulating position delay", "delay", delay, "high_accuracy", opts.HighAccuracy)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return values.Position{}, ctx.Err()
		}
	}

	return values.Position{
		Coords: values.Coordinates{
			Latitude:  f.Position.Latitude,
			Longitude: f.Position.Longitude,
			Altitude:  f.Position.Altitude,
			Accuracy:  f.Position.Accuracy,
		},
		Timestamp: time.Now(),
	}, nil
}

// OpenAppSettings simulates jumping to the OS settings page for the app.
func (d *Device) OpenAppSettings(_ context.Context) error {
	f, err := d.Load()
	if err != nil {
		return err
	}
	if f.fails(FailureSettings) {
		return fmt.Errorf("%w: %s", ErrSimulatedFailure, FailureSettings)
	}
	d.logger.Info("opened app settings", "device", d.path)
	return nil
}

// bridge is the permission plugin for one bridge field.
type bridge struct {
	device *Device
	field  string
}

func (b *bridge) CheckPermissions(_ context.Context) (map[string]string, error) {
	f, err := b.device.Load()
	if err != nil {
		return nil, err
	}
	if f.fails(b.field + ".check") {
		return nil, fmt.Errorf("%w: %s.check", ErrSimulatedFailure, b.field)
	}
	return map[string]string{b.field: statusOf(f, b.field)}, nil
}

// RequestPermissions applies the on_request outcome and persists it. Without
// an on_request entry a capability that was never asked becomes granted and
// any other state is left as is.
func (b *bridge) RequestPermissions(_ context.Context) (map[string]string, error) {
	b.device.mu.Lock()
	defer b.device.mu.Unlock()

	f, err := b.device.loadLocked()
	if err != nil {
		return nil, err
	}
	if f.fails(b.field + ".request") {
		return nil, fmt.Errorf("%w: %s.request", ErrSimulatedFailure, b.field)
	}

	next := statusOf(f, b.field)
	if outcome, ok := f.OnRequest[b.field]; ok {
		next = outcome
	} else if next == string(capabilities.StatusPrompt) || next == "prompt-with-rationale" {
		next = string(capabilities.StatusGranted)
	}

	if f.Permissions == nil {
		f.Permissions = make(map[string]string)
	}
	f.Permissions[b.field] = next
	if err := b.device.saveLocked(f); err != nil {
		return nil, err
	}

	b.device.logger.Debug("permission requested", "field", b.field, "status", next)
	return map[string]string{b.field: next}, nil
}

func statusOf(f *File, field string) string {
	if s, ok := f.Permissions[field]; ok {
		return s
	}
	return string(capabilities.StatusPrompt)
}

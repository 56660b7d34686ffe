// Package container provides dependency injection for the application.
package container

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/touchnstars/companion/internal/application/services"
	"github.com/touchnstars/companion/internal/domain/values"
	"github.com/touchnstars/companion/internal/infrastructure/device"
	"github.com/touchnstars/companion/internal/infrastructure/nina"
	"github.com/touchnstars/companion/internal/infrastructure/prompter"
	"github.com/touchnstars/companion/internal/infrastructure/system"
)

// Container holds all application dependencies.
type Container struct {
	device      *device.Device
	api         *nina.Client
	permissions *services.PermissionManager
	coordinator *services.ConfirmationCoordinator
	guard       *services.MountConnectionGuard
	location    *services.LocationService
	prompter    *prompter.SyncPrompter
	systemCfg   *system.Config
	logger      *slog.Logger
}

// Options configure the container. Non-empty values override the config file.
type Options struct {
	Logger           *slog.Logger
	SelectFunc       prompter.SelectFunc
	SystemConfigPath string
	Platform         string
	APIBaseURL       string
	DeviceFile       string
	NonInteractive   bool
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	systemCfg := system.DefaultConfig()
	if opts.SystemConfigPath != "" {
		loaded, err := system.NewConfigLoader().Load(opts.SystemConfigPath)
		if err != nil {
			return nil, err
		}
		systemCfg = loaded
	}
	applyOverrides(systemCfg, opts)
	if err := systemCfg.Validate(); err != nil {
		return nil, err
	}

	dev := device.New(resolveDevicePath(systemCfg.DeviceFile), opts.Logger)

	platform := values.ParsePlatform(systemCfg.Platform)
	if systemCfg.Platform == "" {
		p, err := dev.Platform()
		if err != nil {
			return nil, fmt.Errorf("failed to read device platform: %w", err)
		}
		platform = p
	}
	opts.Logger.Debug("platform resolved", "platform", platform, "device", dev.Path())

	api := nina.New(systemCfg.API.BaseURL, systemCfg.API.Timeout, opts.Logger)

	permissions := services.NewPermissionManager(services.PermissionManagerOptions{
		Bridges:         dev.Bridges(),
		Settings:        dev,
		Logger:          opts.Logger,
		Platform:        platform,
		CheckAllTimeout: systemCfg.CheckAllTimeout,
	})
	coordinator := services.NewConfirmationCoordinator(api, systemCfg.ConfirmationTimeout, opts.Logger)
	guard := services.NewMountConnectionGuard(api, coordinator, api, opts.Logger)
	location := services.NewLocationService(permissions, dev, api, systemCfg.PositionTimeout, opts.Logger)

	// A caller-supplied select does not need a terminal.
	interactive := !systemCfg.NonInteractive && (opts.SelectFunc != nil || prompter.IsInteractive())
	syncPrompter := prompter.New(coordinator, interactive, opts.SelectFunc, opts.Logger)

	return &Container{
		device:      dev,
		api:         api,
		permissions: permissions,
		coordinator: coordinator,
		guard:       guard,
		location:    location,
		prompter:    syncPrompter,
		systemCfg:   systemCfg,
		logger:      opts.Logger,
	}, nil
}

func applyOverrides(cfg *system.Config, opts Options) {
	if opts.Platform != "" {
		cfg.Platform = opts.Platform
	}
	if opts.APIBaseURL != "" {
		cfg.API.BaseURL = opts.APIBaseURL
	}
	if opts.DeviceFile != "" {
		cfg.DeviceFile = opts.DeviceFile
	}
	if opts.NonInteractive {
		cfg.NonInteractive = true
	}
}

// resolveDevicePath defaults to ~/.companion/device.yaml.
func resolveDevicePath(configured string) string {
	if configured != "" {
		return configured
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".companion", "device.yaml")
	}
	return filepath.Join(homeDir, ".companion", "device.yaml")
}

// Permissions returns the permission manager.
func (c *Container) Permissions() *services.PermissionManager {
	return c.permissions
}

// Coordinator returns the confirmation coordinator.
func (c *Container) Coordinator() *services.ConfirmationCoordinator {
	return c.coordinator
}

// MountGuard returns the mount connection guard.
func (c *Container) MountGuard() *services.MountConnectionGuard {
	return c.guard
}

// Location returns the location service.
func (c *Container) Location() *services.LocationService {
	return c.location
}

// Prompter returns the terminal prompter for confirmations.
func (c *Container) Prompter() *prompter.SyncPrompter {
	return c.prompter
}

// API returns the instrument API client.
func (c *Container) API() *nina.Client {
	return c.api
}

// Device returns the device backing the permission bridges.
func (c *Container) Device() *device.Device {
	return c.device
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Package system provides infrastructure for system-level configuration.
// This includes loading the companion config file (~/.companion.yaml).
package system

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	apperrors "github.com/touchnstars/companion/internal/application/errors"
	"github.com/touchnstars/companion/internal/domain/values"
)

// Default values used when a field is not configured.
const (
	DefaultBaseURL             = "http://localhost:1888/v2/api"
	DefaultAPITimeout          = 10 * time.Second
	DefaultMinVersion          = ">= 2.0.0"
	DefaultPositionTimeout     = 10 * time.Second
	DefaultCheckAllTimeout     = 15 * time.Second
	DefaultConfirmationTimeout = time.Duration(0)
)

// Config represents the global configuration file (~/.companion.yaml).
type Config struct {
	API                 APIConfig     `yaml:"api"`
	Platform            string        `yaml:"platform"`
	DeviceFile          string        `yaml:"device_file"`
	PositionTimeout     time.Duration `yaml:"position_timeout"`
	ConfirmationTimeout time.Duration `yaml:"confirmation_timeout"`
	CheckAllTimeout     time.Duration `yaml:"check_all_timeout"`
	NonInteractive      bool          `yaml:"non_interactive"`
}

// APIConfig configures the instrument control API client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// MinVersion is a semver constraint the backend version must satisfy.
	MinVersion string        `yaml:"min_version"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with defaults for all fields.
// This is used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    DefaultBaseURL,
			Timeout:    DefaultAPITimeout,
			MinVersion: DefaultMinVersion,
		},
		Platform:            "",
		DeviceFile:          "",
		PositionTimeout:     DefaultPositionTimeout,
		ConfirmationTimeout: DefaultConfirmationTimeout,
		CheckAllTimeout:     DefaultCheckAllTimeout,
	}
}

// Load loads the configuration from the specified path.
// If the file does not exist, returns DefaultConfig().
// Fields missing from the file keep their defaults.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is user-provided config file, validated to exist above
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks field values that YAML decoding cannot.
func (c *Config) Validate() error {
	if c.Platform != "" {
		switch values.ParsePlatform(c.Platform) {
		case values.PlatformIOS, values.PlatformAndroid, values.PlatformWeb:
		default:
			return apperrors.NewConfigurationError("platform",
				fmt.Sprintf("unknown platform %q (valid: ios, android, web)", c.Platform), nil)
		}
	}
	if c.API.BaseURL == "" {
		return apperrors.NewConfigurationError("api.base_url", "must not be empty", nil)
	}
	if c.API.Timeout < 0 || c.PositionTimeout < 0 || c.ConfirmationTimeout < 0 {
		return apperrors.NewConfigurationError("timeouts", "must not be negative", nil)
	}
	return nil
}

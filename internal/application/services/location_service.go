package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	apperrors "github.com/touchnstars/companion/internal/application/errors"
	"github.com/touchnstars/companion/internal/application/ports"
	"github.com/touchnstars/companion/internal/domain/capabilities"
	"github.com/touchnstars/companion/internal/domain/values"
)

// DefaultPositionTimeout bounds a single position query.
const DefaultPositionTimeout = 10 * time.Second

// Profile keys written by SyncToProfile.
const (
	latitudeSettingPath  = "AstrometrySettings-Latitude"
	longitudeSettingPath = "AstrometrySettings-Longitude"
	elevationSettingPath = "AstrometrySettings-Elevation"
)

// LocationService acquires the device position behind the location permission.
type LocationService struct {
	permissions *PermissionManager
	positions   ports.PositionProvider
	updater     ports.ProfileUpdater
	logger      *slog.Logger
	timeout     time.Duration
}

// NewLocationService creates a location service. A zero timeout uses
// DefaultPositionTimeout.
func NewLocationService(
	permissions *PermissionManager,
	positions ports.PositionProvider,
	updater ports.ProfileUpdater,
	timeout time.Duration,
	logger *slog.Logger,
) *LocationService {
	if timeout <= 0 {
		timeout = DefaultPositionTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationService{
		permissions: permissions,
		positions:   positions,
		updater:     updater,
		timeout:     timeout,
		logger:      logger,
	}
}

// GetCurrentLocation requests the location permission and, if granted, takes
// a fresh high-accuracy fix. Every failure is reported in the result.
func (s *LocationService) GetCurrentLocation(ctx context.Context) values.LocationResult {
	perm := s.permissions.Request(ctx, capabilities.KindLocation)
	if !perm.Granted {
		s.logger.Error("error getting location", "error", "location permission denied", "status", perm.Status)
		return values.FailedLocation("Location permission denied")
	}

	if s.positions == nil {
		return values.FailedLocation("position provider unavailable")
	}

	pos, err := s.queryPosition(ctx, values.PositionOptions{
		HighAccuracy: true,
		Timeout:      s.timeout,
		MaximumAge:   0,
	})
	if err != nil {
		s.logger.Error("error getting location", "error", apperrors.NewBridgeError(capabilities.KindLocation, "position", err))
		return values.FailedLocation(err.Error())
	}

	return values.LocationResult{
		Success:   true,
		Latitude:  pos.Coords.Latitude,
		Longitude: pos.Coords.Longitude,
		Altitude:  pos.Coords.Altitude,
		Accuracy:  pos.Coords.Accuracy,
	}
}

// DeviceLocation returns the device coordinates on native platforms. It
// returns false off-device or when no fix could be taken. Unknown altitude is 0.
func (s *LocationService) DeviceLocation(ctx context.Context) (*values.Coordinates, bool) {
	if !s.permissions.IsNative() {
		s.logger.Debug("not on native platform, skipping location permission")
		return nil, false
	}

	result := s.GetCurrentLocation(ctx)
	if !result.Success {
		s.logger.Warn("failed to get location", "error", result.Error)
		return nil, false
	}

	altitude := result.AltitudeOrZero()
	return &values.Coordinates{
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
		Altitude:  &altitude,
		Accuracy:  result.Accuracy,
	}, true
}

// SyncToProfile writes the device coordinates into the instrument profile.
func (s *LocationService) SyncToProfile(ctx context.Context) (*values.Coordinates, error) {
	if s.updater == nil {
		return nil, apperrors.NewConfigurationError("profile", "no profile updater configured", nil)
	}

	coords, ok := s.DeviceLocation(ctx)
	if !ok {
		return nil, apperrors.ErrLocationUnavailable
	}

	settings := []struct {
		key   string
		value float64
	}{
		{latitudeSettingPath, coords.Latitude},
		{longitudeSettingPath, coords.Longitude},
		{elevationSettingPath, *coords.Altitude},
	}
	for _, setting := range settings {
		value := strconv.FormatFloat(setting.value, 'f', -1, 64)
		if err := s.updater.SetValue(ctx, setting.key, value); err != nil {
			return nil, fmt.Errorf("failed to update %s: %w", setting.key, err)
		}
	}

	s.logger.Info("device location written to profile",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"elevation", *coords.Altitude)
	return coords, nil
}

// queryPosition enforces the bounded wait even if the provider ignores ctx.
func (s *LocationService) queryPosition(ctx context.Context, opts values.PositionOptions) (values.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type reply struct {
		err error
		pos values.Position
	}
	done := make(chan reply, 1)
	go func() {
		pos, err := s.positions.CurrentPosition(ctx, opts)
		done <- reply{pos: pos, err: err}
	}()

	select {
	case r := <-done:
		return r.pos, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return values.Position{}, fmt.Errorf("location request timed out after %s", opts.Timeout)
		}
		return values.Position{}, ctx.Err()
	}
}

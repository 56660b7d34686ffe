package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/touchnstars/companion/internal/application/errors"
	"github.com/touchnstars/companion/internal/domain/values"
)

func ptr(f float64) *float64 {
	return &f
}

func TestLocationService_GetCurrentLocation(t *testing.T) {
	t.Parallel()

	bridges := newTestBridges()
	positions := &fakePositions{pos: values.Position{Coords: values.Coordinates{
		Latitude:  48.137,
		Longitude: 11.575,
		Altitude:  ptr(519),
		Accuracy:  8,
	}}}
	s := NewLocationService(newTestManager(values.PlatformAndroid, bridges), positions, nil, 0, discardLogger())

	result := s.GetCurrentLocation(context.Background())

	require.True(t, result.Success)
	assert.Equal(t, 48.137, result.Latitude)
	assert.Equal(t, 11.575, result.Longitude)
	assert.Equal(t, 519.0, result.AltitudeOrZero())
	assert.Equal(t, 8.0, result.Accuracy)
	assert.Empty(t, result.Error)

	assert.Equal(t, values.PositionOptions{
		HighAccuracy: true,
		Timeout:      DefaultPositionTimeout,
		MaximumAge:   0,
	}, positions.opts)
}

func TestLocationService_PermissionDeniedSkipsPosition(t *testing.T) {
	t.Parallel()

	bridges := newTestBridges()
	bridges.location.requestValue = "denied"
	positions := &fakePositions{}
	s := NewLocationService(newTestManager(values.PlatformIOS, bridges), positions, nil, 0, discardLogger())

	result := s.GetCurrentLocation(context.Background())

	assert.Equal(t, values.LocationResult{Success: false, Error: "Location permission denied"}, result)
	assert.Zero(t, positions.calls)
}

func TestLocationService_PositionFailure(t *testing.T) {
	t.Parallel()

	bridges := newTestBridges()
	positions := &fakePositions{err: errors.New("GPS hardware unavailable")}
	s := NewLocationService(newTestManager(values.PlatformAndroid, bridges), positions, nil, 0, discardLogger())

	result := s.GetCurrentLocation(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, "GPS hardware unavailable", result.Error)
}

func TestLocationService_PositionTimeout(t *testing.T) {
	t.Parallel()

	bridges := newTestBridges()
	positions := &fakePositions{block: make(chan struct{})}
	defer close(positions.block)
	s := NewLocationService(newTestManager(values.PlatformAndroid, bridges), positions, nil, 30*time.Millisecond, discardLogger())

	result := s.GetCurrentLocation(context.Background())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out")
}

func TestLocationService_DeviceLocation(t *testing.T) {
	t.Parallel()

	t.Run("non-native returns nothing", func(t *testing.T) {
		t.Parallel()
		positions := &fakePositions{}
		s := NewLocationService(newTestManager(values.PlatformWeb, newTestBridges()), positions, nil, 0, discardLogger())

		coords, ok := s.DeviceLocation(context.Background())
		assert.False(t, ok)
		assert.Nil(t, coords)
		assert.Zero(t, positions.calls)
	})

	t.Run("missing altitude defaults to zero", func(t *testing.T) {
		t.Parallel()
		positions := &fakePositions{pos: values.Position{Coords: values.Coordinates{Latitude: 1, Longitude: 2}}}
		s := NewLocationService(newTestManager(values.PlatformIOS, newTestBridges()), positions, nil, 0, discardLogger())

		coords, ok := s.DeviceLocation(context.Background())
		require.True(t, ok)
		require.NotNil(t, coords.Altitude)
		assert.Equal(t, 0.0, *coords.Altitude)
	})

	t.Run("failure returns nothing", func(t *testing.T) {
		t.Parallel()
		positions := &fakePositions{err: errors.New("no fix")}
		s := NewLocationService(newTestManager(values.PlatformIOS, newTestBridges()), positions, nil, 0, discardLogger())

		coords, ok := s.DeviceLocation(context.Background())
		assert.False(t, ok)
		assert.Nil(t, coords)
	})
}

func TestLocationService_SyncToProfile(t *testing.T) {
	t.Parallel()

	updater := new(MockProfileUpdater)
	updater.On("SetValue", mock.Anything, "AstrometrySettings-Latitude", "48.137").Return(nil).Once()
	updater.On("SetValue", mock.Anything, "AstrometrySettings-Longitude", "11.575").Return(nil).Once()
	updater.On("SetValue", mock.Anything, "AstrometrySettings-Elevation", "519").Return(nil).Once()

	positions := &fakePositions{pos: values.Position{Coords: values.Coordinates{
		Latitude:  48.137,
		Longitude: 11.575,
		Altitude:  ptr(519),
	}}}
	s := NewLocationService(newTestManager(values.PlatformAndroid, newTestBridges()), positions, updater, 0, discardLogger())

	coords, err := s.SyncToProfile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 48.137, coords.Latitude)
	updater.AssertExpectations(t)
}

func TestLocationService_SyncToProfileWithoutLocation(t *testing.T) {
	t.Parallel()

	updater := new(MockProfileUpdater)
	s := NewLocationService(newTestManager(values.PlatformWeb, newTestBridges()), &fakePositions{}, updater, 0, discardLogger())

	_, err := s.SyncToProfile(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrLocationUnavailable)
	updater.AssertNotCalled(t, "SetValue", mock.Anything, mock.Anything, mock.Anything)
}

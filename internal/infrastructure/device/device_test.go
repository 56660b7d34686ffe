package device

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/touchnstars/companion/internal/domain/capabilities"
	"github.com/touchnstars/companion/internal/domain/values"
)

func writeDevice(t *testing.T, content string) *Device {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDevice_LoadMissingFile(t *testing.T) {
	t.Parallel()

	d := New(filepath.Join(t.TempDir(), "absent.yaml"), nil)

	f, err := d.Load()
	require.NoError(t, err)
	assert.Equal(t, "web", f.Platform)
	assert.Empty(t, f.Permissions)

	platform, err := d.Platform()
	require.NoError(t, err)
	assert.Equal(t, values.PlatformWeb, platform)
}

func TestDevice_LoadInvalidYAML(t *testing.T) {
	t.Parallel()

	d := writeDevice(t, "invalid yaml: ---\n-")

	_, err := d.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse device file")
}

func TestDevice_SchemaRejectsBadContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"missing platform", "permissions:\n  location: granted\n"},
		{"unknown platform", "platform: windows\n"},
		{"unknown field", "platform: ios\npermissions:\n  microphone: granted\n"},
		{"unknown status", "platform: ios\npermissions:\n  location: maybe\n"},
		{"latitude out of range", "platform: ios\nposition:\n  latitude: 91\n  longitude: 0\n"},
		{"bad failure point", "platform: ios\nfailures:\n  - location.open\n"},
		{"bad delay", "platform: ios\nposition:\n  latitude: 1\n  longitude: 1\n  delay: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := writeDevice(t, tt.content).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "device file validation failed")
		})
	}
}

func TestDevice_SaveCreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "device.yaml")
	d := New(path, nil)

	err := d.Save(&File{Platform: "android", Failures: []string{"settings"}})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "platform: android\nfailures:\n  - settings\n", string(content))

	f, err := d.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"settings"}, f.Failures)
}

func TestBridge_Check(t *testing.T) {
	t.Parallel()

	d := writeDevice(t, `platform: android
permissions:
  location: denied
  display: prompt-with-rationale
`)
	ctx := context.Background()

	got, err := d.Bridge(capabilities.KindLocation).CheckPermissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"location": "denied"}, got)

	got, err = d.Bridge(capabilities.KindNotifications).CheckPermissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"display": "prompt-with-rationale"}, got)
}

func TestBridge_CheckUnrecordedIsPrompt(t *testing.T) {
	t.Parallel()

	d := writeDevice(t, "platform: ios\n")

	got, err := d.Bridge(capabilities.KindLocation).CheckPermissions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "prompt", got["location"])
}

func TestBridge_RequestPersists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "scripted outcome",
			content:  "platform: ios\non_request:\n  location: limited\n",
			expected: "limited",
		},
		{
			name:     "prompt becomes granted",
			content:  "platform: ios\npermissions:\n  location: prompt\n",
			expected: "granted",
		},
		{
			name:     "denied stays denied",
			content:  "platform: ios\npermissions:\n  location: denied\n",
			expected: "denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := writeDevice(t, tt.content)
			b := d.Bridge(capabilities.KindLocation)

			got, err := b.RequestPermissions(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got["location"])

			after, err := b.CheckPermissions(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, after["location"])
		})
	}
}

func TestBridge_ScriptedFailures(t *testing.T) {
	t.Parallel()

	d := writeDevice(t, `platform: android
failures:
  - location.check
  - display.request
`)
	ctx := context.Background()

	_, err := d.Bridge(capabilities.KindLocation).CheckPermissions(ctx)
	assert.ErrorIs(t, err, ErrSimulatedFailure)

	_, err = d.Bridge(capabilities.KindNotifications).RequestPermissions(ctx)
	assert.ErrorIs(t, err, ErrSimulatedFailure)

	_, err = d.Bridge(capabilities.KindNotifications).CheckPermissions(ctx)
	assert.NoError(t, err)
}

func TestDevice_BridgesSkipCamera(t *testing.T) {
	t.Parallel()

	bridges := New(filepath.Join(t.TempDir(), "device.yaml"), nil).Bridges()

	assert.Len(t, bridges, 2)
	assert.NotContains(t, bridges, capabilities.KindCamera)
	assert.Contains(t, bridges, capabilities.KindLocation)
	assert.Contains(t, bridges, capabilities.KindNotifications)
}

func TestDevice_CurrentPosition(t *testing.T) {
	t.Parallel()

	d := writeDevice(t, `platform: ios
position:
  latitude: -33.8568
  longitude: 151.2153
  altitude: 12.5
  accuracy: 5
`)

	pos, err := d.CurrentPosition(context.Background(), values.PositionOptions{HighAccuracy: true})
	require.NoError(t, err)
	assert.Equal(t, -33.8568, pos.Coords.Latitude)
	assert.Equal(t, 151.2153, pos.Coords.Longitude)
	require.NotNil(t, pos.Coords.Altitude)
	assert.Equal(t, 12.5, *pos.Coords.Altitude)
	assert.Equal(t, 5.0, pos.Coords.Accuracy)
	assert.False(t, pos.Timestamp.IsZero())
}

func TestDevice_CurrentPositionErrors(t *testing.T) {
	t.Parallel()

	t.Run("no position", func(t *testing.T) {
		t.Parallel()
		_, err := writeDevice(t, "platform: ios\n").CurrentPosition(context.Background(), values.PositionOptions{})
		assert.ErrorIs(t, err, ErrNoPosition)
	})

	t.Run("scripted failure", func(t *testing.T) {
		t.Parallel()
		d := writeDevice(t, "platform: ios\nposition:\n  latitude: 1\n  longitude: 2\nfailures:\n  - position\n")
		_, err := d.CurrentPosition(context.Background(), values.PositionOptions{})
		assert.ErrorIs(t, err, ErrSimulatedFailure)
	})

	t.Run("delay honours context", func(t *testing.T) {
		t.Parallel()
		d := writeDevice(t, "platform: ios\nposition:\n  latitude: 1\n  longitude: 2\n  delay: 1h\n")
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := d.CurrentPosition(ctx, values.PositionOptions{})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDevice_OpenAppSettings(t *testing.T) {
	t.Parallel()

	assert.NoError(t, writeDevice(t, "platform: android\n").OpenAppSettings(context.Background()))

	err := writeDevice(t, "platform: android\nfailures:\n  - settings\n").OpenAppSettings(context.Background())
	assert.ErrorIs(t, err, ErrSimulatedFailure)
}

package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/touchnstars/companion/internal/domain/capabilities"
)

func TestBridgeError(t *testing.T) {
	t.Parallel()

	cause := errors.New("plugin not implemented")
	err := NewBridgeError(capabilities.KindLocation, "check", cause)

	assert.Equal(t, "platform bridge check failed for location: plugin not implemented", err.Error())
	assert.ErrorIs(t, err, cause)

	var bridgeErr *BridgeError
	assert.True(t, errors.As(error(err), &bridgeErr))
	assert.Equal(t, capabilities.KindLocation, bridgeErr.Capability)
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "instrument API /version returned status 500", NewAPIError("/version", 500, "").Error())
	assert.Equal(t, "instrument API /profile/show returned status 200: no profile",
		NewAPIError("/profile/show", 200, "no profile").Error())
}

func TestConfigurationError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad yaml")
	err := NewConfigurationError("device", "failed to parse device file", cause)

	assert.Contains(t, err.Error(), "configuration error (device)")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, NewConfigurationError("config", "missing", nil).Error(), "missing")
}

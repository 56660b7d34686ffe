package values

import (
	"fmt"
	"strings"
)

// SyncDirection is the instrument profile's telescope location sync setting.
type SyncDirection string

const (
	// SyncPrompt asks the user on every mount connection.
	SyncPrompt SyncDirection = "PROMPT"
	// SyncToApplication copies the telescope location into the application.
	SyncToApplication SyncDirection = "TOAPPLICATION"
	// SyncToTelescope copies the application location into the telescope.
	SyncToTelescope SyncDirection = "TOTELESCOPE"
	// SyncNone disables location sync.
	SyncNone SyncDirection = "NOSYNC"
)

// SyncDirectionSettingPath is the profile key holding the sync direction.
const SyncDirectionSettingPath = "TelescopeSettings-TelescopeLocationSyncDirection"

// SyncChoices returns the directions a user can pick when prompted.
func SyncChoices() []SyncDirection {
	return []SyncDirection{SyncToApplication, SyncToTelescope, SyncNone}
}

// ParseSyncDirection converts a profile value into a SyncDirection.
func ParseSyncDirection(s string) (SyncDirection, error) {
	d := SyncDirection(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case SyncPrompt, SyncToApplication, SyncToTelescope, SyncNone:
		return d, nil
	default:
		return "", fmt.Errorf("invalid sync direction: %q", s)
	}
}

// RequiresPrompt reports whether a connection must be confirmed by the user.
func (d SyncDirection) RequiresPrompt() bool {
	return d == SyncPrompt
}

// Description returns a human-readable label for prompts.
func (d SyncDirection) Description() string {
	switch d {
	case SyncPrompt:
		return "Always ask"
	case SyncToApplication:
		return "Telescope location to application"
	case SyncToTelescope:
		return "Application location to telescope"
	case SyncNone:
		return "Do not sync"
	default:
		return string(d)
	}
}

func (d SyncDirection) String() string {
	return string(d)
}

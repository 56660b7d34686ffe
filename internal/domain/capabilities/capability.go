// Package capabilities defines domain types for device capability permissions.
package capabilities

import (
	"fmt"
	"strings"
)

// Kind identifies a guarded device capability.
type Kind string

const (
	// KindCamera is the imaging capability. Access is arbitrated by the remote
	// instrument backend, not by the local device.
	KindCamera Kind = "camera"
	// KindLocation is the device position capability.
	KindLocation Kind = "location"
	// KindNotifications is the local notification capability.
	KindNotifications Kind = "notifications"
)

// AllKinds returns every capability kind in a stable order.
func AllKinds() []Kind {
	return []Kind{KindCamera, KindLocation, KindNotifications}
}

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCamera:
		return KindCamera, nil
	case KindLocation:
		return KindLocation, nil
	case KindNotifications, "notification":
		return KindNotifications, nil
	default:
		return "", fmt.Errorf("unknown capability: %q (valid: camera, location, notifications)", s)
	}
}

// BridgeField returns the key under which the platform bridge reports this
// capability. Notifications are reported as "display".
func (k Kind) BridgeField() string {
	if k == KindNotifications {
		return "display"
	}
	return string(k)
}

// IsBackendManaged reports whether the capability is delegated to the remote
// backend and therefore never queried on the device.
func (k Kind) IsBackendManaged() bool {
	return k == KindCamera
}

// Validate returns an error if the kind is not known.
func (k Kind) Validate() error {
	switch k {
	case KindCamera, KindLocation, KindNotifications:
		return nil
	default:
		return fmt.Errorf("invalid capability: %s", k)
	}
}

func (k Kind) String() string {
	return string(k)
}

// Status is the platform authorization state of a capability.
type Status string

const (
	// StatusPrompt means the user has not been asked yet (or the state is unknown).
	StatusPrompt Status = "prompt"
	// StatusGranted means access is allowed.
	StatusGranted Status = "granted"
	// StatusDenied means access was refused.
	StatusDenied Status = "denied"
	// StatusLimited means partial access was granted.
	StatusLimited Status = "limited"
)

// ParseStatus maps a raw bridge value onto a Status. Empty or unknown values
// yield fallback.
func ParseStatus(raw string, fallback Status) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPrompt, "prompt-with-rationale":
		return StatusPrompt
	case StatusGranted:
		return StatusGranted
	case StatusDenied:
		return StatusDenied
	case StatusLimited:
		return StatusLimited
	default:
		return fallback
	}
}

// IsGranted returns true for full access.
func (s Status) IsGranted() bool {
	return s == StatusGranted
}

// Validate returns an error if the status value is invalid.
func (s Status) Validate() error {
	switch s {
	case StatusPrompt, StatusGranted, StatusDenied, StatusLimited:
		return nil
	default:
		return fmt.Errorf("invalid status: %s", s)
	}
}

func (s Status) String() string {
	return string(s)
}

// State is what we currently believe about one capability.
// Checked distinguishes "never asked" from "asked, still prompt".
type State struct {
	Status  Status `json:"status" yaml:"status"`
	Checked bool   `json:"checked" yaml:"checked"`
}

// InitialState is the state of every capability at process start.
func InitialState() State {
	return State{Status: StatusPrompt}
}

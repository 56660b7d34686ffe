package output

import "github.com/touchnstars/companion/internal/domain/capabilities"

// CapabilityReport describes one capability after a check or request.
type CapabilityReport struct {
	Capability capabilities.Kind   `json:"capability" yaml:"capability"`
	Status     capabilities.Status `json:"status" yaml:"status"`
	Message    string              `json:"message" yaml:"message"`
	Error      string              `json:"error,omitempty" yaml:"error,omitempty"`
	Granted    bool                `json:"granted" yaml:"granted"`
}

// MountReport describes a guarded mount connection attempt. Not connected
// without an error means the user cancelled.
type MountReport struct {
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	Connected bool   `json:"connected" yaml:"connected"`
}

// BackendReport describes the instrument API reachability and version.
type BackendReport struct {
	URL        string `json:"url" yaml:"url"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	Constraint string `json:"constraint" yaml:"constraint"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	Reachable  bool   `json:"reachable" yaml:"reachable"`
	Compatible bool   `json:"compatible" yaml:"compatible"`
}

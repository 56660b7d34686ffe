package values

import "time"

// Coordinates is a geographic fix. Altitude is nil when the provider did not
// report one.
type Coordinates struct {
	Latitude  float64  `json:"latitude" yaml:"latitude"`
	Longitude float64  `json:"longitude" yaml:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty" yaml:"altitude,omitempty"`
	Accuracy  float64  `json:"accuracy" yaml:"accuracy"`
}

// Position is what a position provider returns.
type Position struct {
	Coords    Coordinates
	Timestamp time.Time
}

// PositionOptions configures a single position query.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge is the oldest cached fix accepted. Zero requires a fresh fix.
	MaximumAge time.Duration
}

// LocationResult is the normalized outcome of one location acquisition.
type LocationResult struct {
	Success   bool     `json:"success" yaml:"success"`
	Latitude  float64  `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude float64  `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Altitude  *float64 `json:"altitude,omitempty" yaml:"altitude,omitempty"`
	Accuracy  float64  `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// FailedLocation builds an unsuccessful result.
func FailedLocation(msg string) LocationResult {
	return LocationResult{Success: false, Error: msg}
}

// AltitudeOrZero returns the altitude, or 0 when unknown.
func (r LocationResult) AltitudeOrZero() float64 {
	if r.Altitude == nil {
		return 0
	}
	return *r.Altitude
}

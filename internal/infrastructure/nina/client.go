// Package nina is a client for the NINA Advanced API (v2), the REST interface
// of the instrument control application.
package nina

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	apperrors "github.com/touchnstars/companion/internal/application/errors"
	"github.com/touchnstars/companion/internal/domain/values"
)

// envelope is the wrapper around every Advanced API response.
type envelope struct {
	Response   json.RawMessage `json:"Response"`
	Error      string          `json:"Error"`
	Type       string          `json:"Type"`
	StatusCode int             `json:"StatusCode"`
	Success    bool            `json:"Success"`
}

// Profile is the subset of the active NINA profile the companion reads.
type Profile struct {
	Name               string             `json:"Name"`
	ID                 string             `json:"Id"`
	TelescopeSettings  TelescopeSettings  `json:"TelescopeSettings"`
	AstrometrySettings AstrometrySettings `json:"AstrometrySettings"`
}

// TelescopeSettings holds the mount-related profile settings.
type TelescopeSettings struct {
	TelescopeLocationSyncDirection string `json:"TelescopeLocationSyncDirection"`
}

// AstrometrySettings holds the observing site.
type AstrometrySettings struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
	Elevation float64 `json:"Elevation"`
}

// Client talks to one NINA instance.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// New creates a client for baseURL, e.g. http://localhost:1888/v2/api.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Version returns the Advanced API version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v string
	if err := c.get(ctx, "/version", nil, &v); err != nil {
		return "", err
	}
	return v, nil
}

// CheckCompatibility fetches the backend version and checks it against a
// semver constraint such as ">= 2.0.0".
func (c *Client) CheckCompatibility(ctx context.Context, constraint string) (*semver.Version, error) {
	want, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	raw, err := c.Version(ctx)
	if err != nil {
		return nil, err
	}

	got, err := ParseVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid backend version %s: %w", raw, err)
	}

	if !want.Check(got) {
		return got, fmt.Errorf("%w: backend %s does not satisfy %s", apperrors.ErrIncompatibleBackend, got, constraint)
	}
	return got, nil
}

// ParseVersion parses a backend version. NINA reports four components
// (2.1.7.0); the fourth is dropped.
func ParseVersion(raw string) (*semver.Version, error) {
	raw = strings.TrimSpace(raw)
	if parts := strings.Split(raw, "."); len(parts) > 3 {
		raw = strings.Join(parts[:3], ".")
	}
	return semver.NewVersion(raw)
}

// ActiveProfile returns the active profile.
func (c *Client) ActiveProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, "/profile/show", url.Values{"active": {"true"}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SyncDirection reads the location sync direction of the active profile.
func (c *Client) SyncDirection(ctx context.Context) (values.SyncDirection, error) {
	p, err := c.ActiveProfile(ctx)
	if err != nil {
		return "", err
	}
	return values.ParseSyncDirection(p.TelescopeSettings.TelescopeLocationSyncDirection)
}

// SetValue changes one setting of the active profile. Keys use the API's
// dash-separated setting path, e.g. AstrometrySettings-Latitude.
func (c *Client) SetValue(ctx context.Context, key, value string) error {
	query := url.Values{"settingpath": {key}, "newValue": {value}}
	if err := c.get(ctx, "/profile/change-value", query, nil); err != nil {
		return err
	}
	c.logger.Debug("profile value changed", "setting", key, "value", value)
	return nil
}

// MountAction triggers a mount action such as connect, disconnect or park.
func (c *Client) MountAction(ctx context.Context, action string) error {
	return c.get(ctx, "/equipment/mount/"+url.PathEscape(action), nil, nil)
}

// get performs a GET request and decodes the envelope's Response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return apperrors.NewAPIError(path, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK || !env.Success {
		status := env.StatusCode
		if status == 0 {
			status = resp.StatusCode
		}
		return apperrors.NewAPIError(path, status, env.Error)
	}

	if out == nil || len(env.Response) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

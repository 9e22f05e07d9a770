package api

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/mod/semver"
)

// Health is the answer of GET /health.
type Health struct {
	APIVersion string `json:"apiVersion"`
}

// Health queries the backend health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckCompatibility fails when the backend reports an API version older than
// minVersion. A backend that reports no version is accepted.
func (c *Client) CheckCompatibility(ctx context.Context, minVersion string) error {
	h, err := c.Health(ctx)
	if err != nil {
		return err
	}
	return compatible(h.APIVersion, minVersion)
}

func compatible(version, minVersion string) error {
	if version == "" || minVersion == "" {
		return nil
	}
	v := canonical(version)
	if !semver.IsValid(v) {
		return fmt.Errorf("backend reported malformed API version %q", version)
	}
	if semver.Compare(v, canonical(minVersion)) < 0 {
		return fmt.Errorf("backend API %s is older than the supported minimum %s", version, minVersion)
	}
	return nil
}

// canonical accepts "1.2.3" as well as "v1.2.3".
func canonical(v string) string {
	if v != "" && v[0] != 'v' {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// Package directions fetches walking routes from the Google Directions
// API and parses them into route.Route values for the navigation
// session.
package directions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/benz16107/BlindSpot/internal/httpc"
	"github.com/benz16107/BlindSpot/internal/log"
	"github.com/benz16107/BlindSpot/pkg/geo"
	"github.com/benz16107/BlindSpot/pkg/route"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/directions/json"

// ErrNoAPIKey is returned when the client is constructed without a key.
var ErrNoAPIKey = errors.New("directions: API key not configured")

// Config holds directions client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// DefaultConfig returns directions settings with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: defaultBaseURL,
		Client:  httpc.Client,
	}
}

// WithAPIKey sets the API key.
func (c Config) WithAPIKey(key string) Config {
	c.APIKey = key
	return c
}

// Client requests walking directions.
type Client struct {
	cfg Config
}

// New creates a directions client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = httpc.Client
	}
	return &Client{cfg: cfg}, nil
}

// Walking fetches a walking route from origin to the named destination.
func (c *Client) Walking(ctx context.Context, origin geo.Point, destination string) (*route.Route, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destination", destination)
	params.Set("mode", "walking")
	params.Set("units", "metric")
	params.Set("key", c.cfg.APIKey)

	reqURL := c.cfg.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions request: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	r, err := route.Parse(body)
	if err != nil {
		return nil, err
	}

	log.Debug("fetched walking route",
		"destination", destination,
		"steps", len(r.Steps()),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return r, nil
}

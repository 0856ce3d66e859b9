// Package geo resolves addresses to coordinates and measures distances
// between them.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dharmasatrya/holitrip/internal/models"
	"github.com/dharmasatrya/holitrip/internal/ratelimit"
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Coordinates, error)
}

// GeocodingError reports an address that could not be resolved. It matches
// models.ErrGeocoding with errors.Is.
type GeocodingError struct {
	Address string
	Err     error
}

func (e *GeocodingError) Error() string {
	return fmt.Sprintf("geocode %q: %v", e.Address, e.Err)
}

func (e *GeocodingError) Unwrap() []error {
	return []error{models.ErrGeocoding, e.Err}
}

func NewGeocodingError(address string, err error) *GeocodingError {
	return &GeocodingError{
		Address: address,
		Err:     err,
	}
}

var (
	errNoResult      = errors.New("no result found")
	errMissingLatLon = errors.New("response misses lat/lon")
)

const DefaultBaseURL = "https://geocode.maps.co/search"

type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.KeyedLimiter
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:    DefaultBaseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		RetryDelays: []time.Duration{
			300 * time.Millisecond,
			600 * time.Millisecond,
		},
	}
}

// Client talks to a geocode.maps.co compatible search endpoint.
type Client struct {
	httpClient *http.Client
	config     ClientConfig
	host       string
	logger     *slog.Logger
}

func NewClient(config ClientConfig, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("geo.NewClient: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		host:       u.Host,
		logger:     logger,
	}, nil
}

type searchResult struct {
	Lat json.Number `json:"lat"`
	Lon json.Number `json:"lon"`
}

// retryableError marks failures worth another attempt: transport errors,
// 5xx and 429 responses.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) Geocode(ctx context.Context, address string) (models.Coordinates, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return models.Coordinates{}, NewGeocodingError(address, ctx.Err())
		default:
		}

		if attempt > 0 && len(c.config.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(c.config.RetryDelays) {
				delayIdx = len(c.config.RetryDelays) - 1
			}
			select {
			case <-time.After(c.config.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return models.Coordinates{}, NewGeocodingError(address, ctx.Err())
			}
		}

		if c.config.RateLimiter != nil {
			if err := c.config.RateLimiter.Wait(ctx, c.host); err != nil {
				return models.Coordinates{}, NewGeocodingError(address, err)
			}
		}

		coords, err := c.lookup(ctx, address)
		if err == nil {
			return coords, nil
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return models.Coordinates{}, NewGeocodingError(address, err)
		}
		lastErr = err
		c.logger.Warn("geocoding attempt failed", "address", address, "attempt", attempt+1, "error", err)
	}

	return models.Coordinates{}, NewGeocodingError(address, lastErr)
}

func (c *Client) lookup(ctx context.Context, address string) (models.Coordinates, error) {
	q := url.Values{}
	q.Set("q", address)
	if c.config.APIKey != "" {
		q.Set("api_key", c.config.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.Coordinates{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Coordinates{}, &retryableError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return models.Coordinates{}, &retryableError{err: fmt.Errorf("http status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return models.Coordinates{}, fmt.Errorf("http status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Coordinates{}, &retryableError{err: err}
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return models.Coordinates{}, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, errNoResult
	}

	first := results[0]
	if first.Lat == "" || first.Lon == "" {
		return models.Coordinates{}, errMissingLatLon
	}
	lat, err := strconv.ParseFloat(first.Lat.String(), 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(first.Lon.String(), 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("parse lon: %w", err)
	}

	return models.Coordinates{Latitude: lat, Longitude: lon}, nil
}

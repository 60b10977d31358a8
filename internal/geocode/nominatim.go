package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "Cuenta-App/1.0"
)

// ZipResolver resolves a coordinate to a postal code
type ZipResolver interface {
	ZipFromCoordinates(ctx context.Context, lat, lon float64) (string, bool)
}

// Client is a Nominatim reverse geocoding client.
// The public Nominatim instance allows roughly one request per second.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ZipResolver = (*Client)(nil)

// NewClient creates a new Nominatim client. Empty arguments fall back to defaults.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type reverseResponse struct {
	Address struct {
		Postcode string `json:"postcode"`
	} `json:"address"`
}

// ZipFromCoordinates is best effort: any failure is logged and reported as ("", false)
func (c *Client) ZipFromCoordinates(ctx context.Context, lat, lon float64) (string, bool) {
	zip, err := c.reverse(ctx, lat, lon)
	if err != nil {
		c.logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		return "", false
	}
	if zip == "" {
		return "", false
	}
	return zip, true
}

func (c *Client) reverse(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return body.Address.Postcode, nil
}

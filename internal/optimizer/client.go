package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/cuenta/internal/models"
)

var (
	// ErrOptimizationFailed means the optimizer rejected the request (4xx), e.g. an infeasible basket
	ErrOptimizationFailed = errors.New("optimization failed")
	// ErrUpstream means the optimizer could not be reached or answered with a server error
	ErrUpstream = errors.New("optimizer unavailable")
)

const RequestIDHeader = "X-Request-ID"

// maxErrorBody caps how much of an error response is read for its detail
const maxErrorBody = 64 * 1024

// Error carries the optimizer's status code and detail message
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("optimizer returned %d: %s", e.StatusCode, e.Detail)
}

func (e *Error) Unwrap() error {
	if e.StatusCode >= 500 {
		return ErrUpstream
	}
	return ErrOptimizationFailed
}

// Client calls the basket optimizer's HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	newID      func() string
}

// NewClient creates a new optimizer client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		newID:      uuid.NewString,
	}
}

// Optimize posts the request to {base}/api/optimize
func (c *Client) Optimize(ctx context.Context, req models.OptimizeRequest) (models.OptimizeResult, error) {
	var result models.OptimizeResult

	payload, err := json.Marshal(req)
	if err != nil {
		return result, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/optimize", bytes.NewReader(payload))
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := c.newID()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &Error{StatusCode: resp.StatusCode, Detail: readDetail(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}
	if result.Items == nil {
		result.Items = []models.BasketItem{}
	}
	result.RequestID = requestID

	return result, nil
}

// readDetail extracts the error message from a {"detail": ...} body,
// falling back to the raw body or the status text
func readDetail(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(body.Detail, &detail); err == nil {
			return detail
		}
		return string(body.Detail)
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

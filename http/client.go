package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the default number of retry attempts for
// transient transport failures.
const DefaultMaxRetries = 3

// DefaultRetryWait is the default initial wait between retries.
const DefaultRetryWait = 1 * time.Second

// Rate limiter defaults. The Plaud API tolerates short bursts but
// throttles sustained traffic above a few requests per second.
const (
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 15
)

// requestIDLength matches the length of the x-request-id values the
// Plaud web client sends.
const requestIDLength = 11

// Client provides rate-limited, retrying HTTP access for the Plaud API
// client. All outbound requests pass through a shared token bucket so
// concurrent exporters cannot exceed the sustained rate.
type Client struct {
	client     *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	retryWait  time.Duration

	// tokens supplies the bearer token. Nil for unauthenticated calls
	// (login).
	tokens oauth2.TokenSource

	// headers are applied to every request (device id, platform tags).
	headers map[string]string
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	Client            *http.Client
	BaseURL           string
	TokenSource       oauth2.TokenSource
	Headers           map[string]string
	MaxRetries        int
	RetryWait         time.Duration
	RequestsPerSecond float64
	Burst             int
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:     cfg.Client,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:     cfg.TokenSource,
		headers:    cfg.Headers,
		maxRetries: cfg.MaxRetries,
		retryWait:  cfg.RetryWait,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)

	return c
}

// Request executes an HTTP request with retries for transient errors.
// The caller owns the response body.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return c.RequestWithHeaders(ctx, method, path, body, nil)
}

// RequestWithHeaders executes an HTTP request with per-call headers.
func (c *Client) RequestWithHeaders(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
) (*http.Response, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		// The limiter suspends for the exact token deficit; this is
		// also a cancellation point.
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-request-id", newRequestID())

		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		if c.tokens != nil {
			tok, tokErr := c.tokens.Token()
			if tokErr != nil {
				return nil, fmt.Errorf("obtain bearer token: %w", tokErr)
			}
			tok.SetAuthHeader(req)
		}

		resp, doErr := c.client.Do(req)
		if doErr != nil {
			lastErr = doErr
			if attempt < c.maxRetries-1 {
				if waitErr := c.backoff(ctx, c.retryWait*time.Duration(1<<attempt)); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, fmt.Errorf("plaud request failed: %w", doErr)
		}

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries-1 {
			wait := c.retryAfter(resp, attempt)
			resp.Body.Close()
			if waitErr := c.backoff(ctx, wait); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// Get performs a GET request and decodes the enveloped response into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.GetWithHeaders(ctx, path, nil, result)
}

// GetWithHeaders performs a GET request with per-call headers and decodes
// the enveloped response into result.
func (c *Client) GetWithHeaders(ctx context.Context, path string, headers map[string]string, result any) error {
	resp, err := c.RequestWithHeaders(ctx, http.MethodGet, path, nil, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, result)
}

// Post performs a POST request and decodes the enveloped response into result.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	resp, err := c.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, path, result)
}

// PostRaw performs a POST request and returns the raw response body along
// with its content type. Used by the document export endpoint, which may
// answer with either a JSON envelope or raw file bytes.
func (c *Client) PostRaw(ctx context.Context, path string, body any) ([]byte, string, error) {
	resp, err := c.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", c.parseError(resp, path)
	}

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, "", fmt.Errorf("read response body: %w", readErr)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// handleResponse checks HTTP and provider status and decodes the body.
//
// Plaud responses wrap their payload in an envelope whose "status"
// field is 0 on success. result must embed or be a type that exposes
// that field; types implementing statusCarrier get the business check.
func (c *Client) handleResponse(resp *http.Response, path string, result any) error {
	if resp.StatusCode >= 400 {
		return c.parseError(resp, path)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed response body: %v", err),
			Endpoint:   path,
		}
	}

	if carrier, ok := result.(statusCarrier); ok {
		if status := carrier.ProviderStatus(); status != 0 {
			return &APIError{
				StatusCode:      resp.StatusCode,
				ProviderStatus:  status,
				BusinessFailure: true,
				Message:         carrier.ProviderMessage(),
				Endpoint:        path,
			}
		}
	}

	return nil
}

// statusCarrier is implemented by envelope types that expose the
// provider's embedded status code.
type statusCarrier interface {
	ProviderStatus() int
	ProviderMessage() string
}

// parseError parses an error response into an APIError.
func (c *Client) parseError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Endpoint:   path,
		RequestID:  resp.Request.Header.Get("x-request-id"),
	}

	var errResp struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Msg != "" {
			apiErr.Message = errResp.Msg
		} else if errResp.Message != "" {
			apiErr.Message = errResp.Message
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// backoff waits for the given duration or until the context is canceled.
func (c *Client) backoff(ctx context.Context, wait time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// retryAfter calculates the wait before retrying a throttled request,
// honoring the Retry-After header when present.
func (c *Client) retryAfter(resp *http.Response, attempt int) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	return c.retryWait * time.Duration(1<<attempt)
}

// retryableStatus reports whether a status code is worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// newRequestID generates a short opaque id for the x-request-id header.
func newRequestID() string {
	id, err := gonanoid.Generate("0123456789abcdef", requestIDLength)
	if err != nil {
		return "00000000000"
	}
	return id
}

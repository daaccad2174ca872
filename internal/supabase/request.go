package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/metrics"
)

const contentType = "application/json"

var (
	// ErrNotFound is returned when a single-row query matched nothing.
	ErrNotFound = errors.New("row not found")
	// ErrNoSession is returned by auth calls made without a user access token.
	ErrNoSession = errors.New("no user session")
)

// PostgREST code for "JSON object requested, multiple (or no) rows returned".
const codeNoRows = "PGRST116"

// APIError is a non-2xx answer from one of the backend services.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
	Hint    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("bad status: %d", e.Status)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is makes "no rows" answers match ErrNotFound. A bare 404 (missing bucket,
// table or route) is a backend failure, not a missing row.
func (e *APIError) Is(target error) bool {
	if target != ErrNotFound {
		return false
	}
	return e.Code == codeNoRows
}

func (c *Client) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	return c.setHeaders(req), nil
}

// do sends req on behalf of service and returns the body of a 2xx answer.
func (c *Client) do(service string, req *http.Request) ([]byte, error) {
	started := time.Now()

	resp, err := c.request(req)
	if err != nil {
		metrics.ObserveBackend(service, req.Method, 0, started)
		return nil, err
	}
	defer resp.Body.Close()

	metrics.ObserveBackend(service, req.Method, resp.StatusCode, started)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, data)
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	token := AccessToken(req.Context())
	if token == "" {
		token = c.apiKey
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)

	return req
}

// parseAPIError understands the PostgREST, storage and auth error bodies.
func parseAPIError(status int, data []byte) error {
	apiErr := &APIError{Status: status}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = string(bytes.TrimSpace(data))
		return apiErr
	}

	apiErr.Code = firstString(body, "code", "error_code", "error")
	apiErr.Message = firstString(body, "message", "msg", "error_description")
	apiErr.Details = valueAsString(body["details"])
	apiErr.Hint = valueAsString(body["hint"])

	return apiErr
}

func firstString(body map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := valueAsString(body[key]); v != "" {
			return v
		}
	}
	return ""
}

func valueAsString(v any) string {
	if v == nil {
		return ""
	}

	switch typed := v.(type) {
	case string:
		return typed
	case float64:
		return fmt.Sprintf("%v", typed)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

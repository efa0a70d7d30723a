// Package api provides the stateless request/response wrappers for the
// U-Fund REST boundary: the needs catalog (InventoryClient), session and
// basket operations (SessionClient), and funding receipts (ReceiptClient).
//
// No operation here returns a transport error to its caller. Failures are
// classified (errors.go) and funneled through the shared reporter, which
// publishes an operation-specific message on the error bus and, for
// Forbidden, triggers the navigate-back collaborator. Callers always receive
// a neutral value: an empty slice, a nil item, or a false no-op result.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize caps response bodies to prevent memory exhaustion.
const maxResponseSize = 1 << 20 // 1MB

// Navigator is the external navigation capability. Back is invoked when the
// server answers Forbidden: the acting identity is no longer authorized for
// the resource and the current view is no longer valid.
type Navigator interface {
	Back()
}

// NopNavigator ignores navigation requests. Useful for callers with no view
// stack, such as one-shot scripts.
type NopNavigator struct{}

// Back implements Navigator.
func (NopNavigator) Back() {}

// Option configures a client wrapper.
type Option func(*transport)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *transport) {
		t.http = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *transport) {
		t.logger = logger
	}
}

// transport is the request plumbing shared by the three client wrappers.
type transport struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func newTransport(baseURL string, opts ...Option) *transport {
	t := &transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// do executes one JSON request. body and out may be nil. Non-2xx responses
// are returned as *StatusError for classification; the response body is only
// decoded into out on success and when the server sent one.
func (t *transport) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	t.logger.Debug("API request", "method", method, "path", path)

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

func (t *transport) get(ctx context.Context, path string, out any) error {
	return t.do(ctx, http.MethodGet, path, nil, out)
}

func (t *transport) post(ctx context.Context, path string, body, out any) error {
	return t.do(ctx, http.MethodPost, path, body, out)
}

func (t *transport) put(ctx context.Context, path string, body any) error {
	return t.do(ctx, http.MethodPut, path, body, nil)
}

func (t *transport) delete(ctx context.Context, path string) error {
	return t.do(ctx, http.MethodDelete, path, nil, nil)
}

// pathSegment escapes a name for use as a resource path segment.
func pathSegment(name string) string {
	return url.PathEscape(name)
}

// queryValue escapes a term for use as a query parameter value.
func queryValue(term string) string {
	return url.QueryEscape(term)
}

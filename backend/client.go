// Package backend talks to the remote BFHL endpoint.
//
// # API Specification
//
// The endpoint is expected to provide:
//   - POST /bfhl - accepts a JSON object with a "data" array and returns a JSON
//     object, usually with "numbers", "alphabets" and "highest_alphabet".
//   - GET /bfhl - returns {"operation_code": 1}.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/twipi/bfhl/bfhl"
	"libdb.so/hrtclient"
)

// TransportError is returned for any failure talking to the endpoint: the
// request could not be made, the status was not 2xx, or the body was not JSON.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Processor sends a request to the endpoint and returns its response.
type Processor interface {
	Process(ctx context.Context, req *bfhl.Request) (*bfhl.Response, error)
}

// ClientConfig is the configuration for [Client].
type ClientConfig struct {
	// BaseURL is the address the endpoint is served under, without the /bfhl
	// suffix.
	BaseURL string `json:"base_url" toml:"base_url"`
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration `json:"-" toml:"-"`
}

// Client calls the remote endpoint and implements [Processor].
type Client struct {
	client  *hrtclient.Client
	logger  *slog.Logger
	baseURL string
	timeout time.Duration
}

var _ Processor = (*Client)(nil)

// NewClient creates a new [Client].
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	return &Client{
		client: hrtclient.NewClient(cfg.BaseURL, hrtclient.CombinedCodec{
			Encoder: hrtclient.JSONCodec,
			Decoder: hrtclient.ErrorHandledDecoder{
				Success: anyJSONDecoder{},
				Error:   hrtclient.TextErrorDecoder,
			},
		}),
		logger:  logger.With("base_url", cfg.BaseURL),
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
	}
}

// anyJSONDecoder decodes a JSON body whatever its Content-Type says. Servers
// commonly answer with parameters such as charset or with text/plain.
type anyJSONDecoder struct{}

func (anyJSONDecoder) Decode(r *http.Response, v any) error {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

var endpointProcess = hrtclient.POST[*bfhl.Request, json.RawMessage]("/bfhl")

// Process implements [Processor]. Exactly one request is made.
func (c *Client) Process(ctx context.Context, req *bfhl.Request) (*bfhl.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := endpointProcess(ctx, c.client, req)
	requestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, &TransportError{URL: c.baseURL + "/bfhl", Err: err}
	}

	resp, err := bfhl.ParseResponse(body)
	if err != nil {
		return nil, &TransportError{URL: c.baseURL + "/bfhl", Err: err}
	}

	c.logger.Debug(
		"endpoint responded",
		"data_len", len(req.Data),
		"took", time.Since(start))

	return resp, nil
}

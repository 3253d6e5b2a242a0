// Package llmclient performs the HTTP leg of a model call: it pairs one
// protocol adapter with a transport, posts the shaped payload, and hands the
// provider's answer back to the adapter for normalization. Retry policy
// deliberately lives above this package; provider errors surface unmodified
// so callers can classify them.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/martinemde/polyglot/modelwire"
)

// Client routes canonical requests through one protocol adapter.
type Client struct {
	adapter   modelwire.Adapter
	apiKey    string
	buffered  *httpClient
	streaming *httpClient
	emitter   *EventEmitter
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent on every request. When unset, the
// POLYGLOT_API_KEY and OPENAI_API_KEY environment variables are consulted.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client for both buffered and
// streaming calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.buffered = &httpClient{client: hc}
		c.streaming = &httpClient{client: hc}
	}
}

// WithEmitter sets the lifecycle event emitter.
func WithEmitter(emitter *EventEmitter) Option {
	return func(c *Client) {
		if emitter != nil {
			c.emitter = emitter
		}
	}
}

// WithLogger sets the client logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client bound to one adapter. The adapter's profile supplies
// the base URL and model; the API key comes from options or the environment.
func New(adapter modelwire.Adapter, opts ...Option) (*Client, error) {
	c := &Client{
		adapter:   adapter,
		buffered:  newHTTPClient(),
		streaming: newStreamingHTTPClient(),
		emitter:   NewEventEmitter(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv("POLYGLOT_API_KEY")
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.apiKey == "" {
		return nil, &modelwire.ConfigurationError{SDKError: modelwire.SDKError{
			Message: "API key not set: pass WithAPIKey or set POLYGLOT_API_KEY",
		}}
	}
	return c, nil
}

// Adapter returns the protocol adapter the client is bound to.
func (c *Client) Adapter() modelwire.Adapter { return c.adapter }

// Emitter returns the client's lifecycle event emitter.
func (c *Client) Emitter() *EventEmitter { return c.emitter }

// Complete sends one request and returns the normalized response. Providers
// that only stream are drained and reduced transparently, so callers always
// get a complete message back.
func (c *Client) Complete(ctx context.Context, req modelwire.Request) (*modelwire.Response, error) {
	start := time.Now()
	model := c.adapter.Profile().Model
	protocol := c.adapter.Name()
	c.emitter.Emit(RequestStartedEvent(model, protocol))

	resp, err := c.post(ctx, req, c.buffered)
	if err != nil {
		c.emitter.Emit(RequestFailedEvent(model, protocol, err.Error(), time.Since(start)))
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		err := buildErrorFromResponse(resp, protocol)
		c.emitter.Emit(RequestFailedEvent(model, protocol, err.Error(), time.Since(start)))
		return nil, err
	}

	rateLimit := parseRateLimitHeaders(resp.Header)

	var raw modelwire.RawResponse
	if isEventStream(resp.Header.Get("Content-Type")) {
		// The adapter owns the body from here and closes it when drained.
		raw = modelwire.RawResponse{Body: resp.Body}
	} else {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			err := &modelwire.NetworkError{SDKError: modelwire.SDKError{
				Message: "failed to read response body",
				Cause:   readErr,
			}}
			c.emitter.Emit(RequestFailedEvent(model, protocol, err.Error(), time.Since(start)))
			return nil, err
		}
		var decoded map[string]interface{}
		if err := json.Unmarshal(body, &decoded); err != nil {
			perr := &modelwire.ProviderError{
				SDKError:   modelwire.SDKError{Message: "failed to decode response body", Cause: err},
				Provider:   protocol,
				StatusCode: resp.StatusCode,
			}
			c.emitter.Emit(RequestFailedEvent(model, protocol, perr.Error(), time.Since(start)))
			return nil, perr
		}
		raw = modelwire.RawResponse{JSON: decoded}
	}

	result, err := c.adapter.ParseResponse(ctx, raw)
	if err != nil {
		c.emitter.Emit(RequestFailedEvent(model, protocol, err.Error(), time.Since(start)))
		return nil, err
	}

	c.emitter.Emit(RequestCompletedEvent(model, protocol, time.Since(start), result.Usage, rateLimit))
	return result, nil
}

// Stream sends one request and returns the normalized event channel. The
// request is forced into streaming mode regardless of req.Stream.
func (c *Client) Stream(ctx context.Context, req modelwire.Request) (<-chan modelwire.StreamEvent, error) {
	start := time.Now()
	model := c.adapter.Profile().Model
	protocol := c.adapter.Name()
	req.Stream = true
	c.emitter.Emit(StreamStartedEvent(model, protocol))

	resp, err := c.post(ctx, req, c.streaming)
	if err != nil {
		c.emitter.Emit(RequestFailedEvent(model, protocol, err.Error(), time.Since(start)))
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		err := buildErrorFromResponse(resp, protocol)
		c.emitter.Emit(RequestFailedEvent(model, protocol, err.Error(), time.Since(start)))
		return nil, err
	}

	events, err := c.adapter.ParseStreamingResponse(ctx, modelwire.RawResponse{Body: resp.Body})
	if err != nil {
		resp.Body.Close()
		c.emitter.Emit(RequestFailedEvent(model, protocol, err.Error(), time.Since(start)))
		return nil, err
	}

	// Forward events while keeping usage accounting for the completion event.
	// A cancelled context ends forwarding immediately and emits no
	// completion event.
	out := make(chan modelwire.StreamEvent, 64)
	go func() {
		defer close(out)
		var usage modelwire.TokenUsage
		for evt := range events {
			if evt.Type == modelwire.EventUsage && evt.Usage != nil {
				usage = *evt.Usage
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
		c.emitter.Emit(StreamCompletedEvent(model, protocol, time.Since(start), usage))
	}()
	return out, nil
}

// post shapes, serializes, and sends one request.
func (c *Client) post(ctx context.Context, req modelwire.Request, hc *httpClient) (*http.Response, error) {
	payload, err := c.adapter.CreateRequest(req)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &modelwire.ConfigurationError{SDKError: modelwire.SDKError{
			Message: "request payload is not serializable",
			Cause:   err,
		}}
	}

	url := strings.TrimRight(c.adapter.Profile().BaseURL, "/") + c.adapter.EndpointPath()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &modelwire.ConfigurationError{SDKError: modelwire.SDKError{
			Message: "failed to build request for " + url,
			Cause:   err,
		}}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending request",
		"protocol", c.adapter.Name(),
		"model", c.adapter.Profile().Model,
		"url", url,
		"stream", req.Stream)

	resp, err := hc.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &modelwire.AbortError{SDKError: modelwire.SDKError{
				Message: "request aborted",
				Cause:   err,
			}}
		}
		return nil, &modelwire.NetworkError{SDKError: modelwire.SDKError{
			Message: "request to " + url + " failed",
			Cause:   err,
		}}
	}
	return resp, nil
}

func isEventStream(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "text/event-stream")
}

package llmclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/martinemde/polyglot/modelwire"
)

// httpClient is a shared HTTP client wrapper with configurable timeouts.
type httpClient struct {
	client *http.Client
}

func newTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second, // connect timeout
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}
}

// newHTTPClient creates an HTTP client with default timeouts for buffered calls.
func newHTTPClient() *httpClient {
	return &httpClient{
		client: &http.Client{
			Transport: newTransport(),
			Timeout:   120 * time.Second, // request timeout
		},
	}
}

// newStreamingHTTPClient creates an HTTP client without an overall request
// timeout. Streamed responses can outlive any fixed deadline; cancellation
// is the caller's context's job.
func newStreamingHTTPClient() *httpClient {
	return &httpClient{
		client: &http.Client{
			Transport: newTransport(),
		},
	}
}

// Do executes an HTTP request.
func (hc *httpClient) Do(req *http.Request) (*http.Response, error) {
	return hc.client.Do(req)
}

// RateLimitInfo carries provider rate limit state parsed from response headers.
// All fields are optional; a nil RateLimitInfo means no headers were present.
type RateLimitInfo struct {
	RequestsRemaining *int
	RequestsLimit     *int
	TokensRemaining   *int
	TokensLimit       *int
	ResetAt           *time.Time
}

// parseRetryAfter parses a Retry-After header value.
// Supports both seconds (integer) and HTTP-date formats.
func parseRetryAfter(value string) *float64 {
	if value == "" {
		return nil
	}

	// Try parsing as seconds (integer or float)
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return &seconds
	}

	// Try parsing as HTTP-date (RFC 1123 format)
	if t, err := time.Parse(time.RFC1123, value); err == nil {
		seconds := time.Until(t).Seconds()
		if seconds < 0 {
			seconds = 0
		}
		return &seconds
	}

	// Try RFC 850 format
	if t, err := time.Parse(time.RFC850, value); err == nil {
		seconds := time.Until(t).Seconds()
		if seconds < 0 {
			seconds = 0
		}
		return &seconds
	}

	return nil
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(headers http.Header) *RateLimitInfo {
	info := &RateLimitInfo{}
	hasAny := false

	if v := headers.Get("x-ratelimit-remaining-requests"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			info.RequestsRemaining = &n
			hasAny = true
		}
	}
	if v := headers.Get("x-ratelimit-limit-requests"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			info.RequestsLimit = &n
			hasAny = true
		}
	}
	if v := headers.Get("x-ratelimit-remaining-tokens"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			info.TokensRemaining = &n
			hasAny = true
		}
	}
	if v := headers.Get("x-ratelimit-limit-tokens"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			info.TokensLimit = &n
			hasAny = true
		}
	}
	if v := headers.Get("x-ratelimit-reset-requests"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			info.ResetAt = &t
			hasAny = true
		} else if d, err := time.ParseDuration(v); err == nil {
			t := time.Now().Add(d)
			info.ResetAt = &t
			hasAny = true
		}
	}

	if !hasAny {
		return nil
	}
	return info
}

// buildErrorFromResponse creates an appropriate error from an HTTP response.
// The error body is parsed for the standard {"error": {"message", "code",
// "type"}} envelope both protocols use, with a plain "message" field and the
// raw body as fallbacks.
func buildErrorFromResponse(resp *http.Response, providerName string) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &modelwire.NetworkError{SDKError: modelwire.SDKError{
			Message: fmt.Sprintf("failed to read error response body: %v", err),
			Cause:   err,
		}}
	}

	var raw map[string]interface{}
	var message, errorCode string

	if err := json.Unmarshal(body, &raw); err == nil {
		if errObj, ok := raw["error"].(map[string]interface{}); ok {
			if msg, ok := errObj["message"].(string); ok {
				message = msg
			}
			if code, ok := errObj["code"].(string); ok {
				errorCode = code
			}
			if code, ok := errObj["type"].(string); ok && errorCode == "" {
				errorCode = code
			}
		}
		if message == "" {
			if msg, ok := raw["message"].(string); ok {
				message = msg
			}
		}
	}

	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))

	return modelwire.ErrorFromStatusCode(resp.StatusCode, message, providerName, errorCode, raw, retryAfter)
}

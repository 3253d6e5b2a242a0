package modelwire

import "fmt"

// SDKError is the base type for every error this module produces.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SDKError) Unwrap() error { return e.Cause }

// ConfigurationError indicates invalid or missing local configuration.
type ConfigurationError struct {
	SDKError
}

// NetworkError indicates a transport-level failure before any provider
// response was read.
type NetworkError struct {
	SDKError
}

// AbortError indicates the caller cancelled the operation.
type AbortError struct {
	SDKError
}

// StreamError indicates a failure while reading an event stream.
type StreamError struct {
	SDKError
}

// ProviderError is the base type for errors reported by a provider endpoint.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
	Code       string
	Raw        map[string]interface{}
}

// AuthenticationError indicates a rejected or missing credential.
type AuthenticationError struct {
	ProviderError
}

// InvalidRequestError indicates the provider rejected the request payload.
type InvalidRequestError struct {
	ProviderError
}

// RateLimitError indicates the provider throttled the request. RetryAfter,
// when present, is the provider-suggested wait in seconds; honoring it is
// the caller's business, nothing in this module retries.
type RateLimitError struct {
	ProviderError
	RetryAfter *float64
}

// ServerError indicates a provider-side failure.
type ServerError struct {
	ProviderError
}

// ErrorFromStatusCode builds the typed error matching an HTTP status code.
func ErrorFromStatusCode(statusCode int, message, provider, code string, raw map[string]interface{}, retryAfter *float64) error {
	base := ProviderError{
		SDKError:   SDKError{Message: message},
		Provider:   provider,
		StatusCode: statusCode,
		Code:       code,
		Raw:        raw,
	}

	switch {
	case statusCode == 401 || statusCode == 403:
		return &AuthenticationError{ProviderError: base}
	case statusCode == 429:
		return &RateLimitError{ProviderError: base, RetryAfter: retryAfter}
	case statusCode == 400 || statusCode == 404 || statusCode == 422:
		return &InvalidRequestError{ProviderError: base}
	case statusCode >= 500:
		return &ServerError{ProviderError: base}
	default:
		return &base
	}
}

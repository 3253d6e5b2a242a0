package modelwire

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// RawResponse carries a provider response into an adapter: either an
// already-decoded JSON body or a live streaming body. Exactly one side is
// set; adapters dispatch on which.
type RawResponse struct {
	JSON map[string]interface{}
	Body io.ReadCloser
}

// Adapter translates between the canonical schema and one wire protocol.
// Implementations hold configuration only, never per-call state, so a single
// adapter value is safe for concurrent use.
type Adapter interface {
	// Name identifies the wire protocol.
	Name() string

	// EndpointPath is the request path below the endpoint base URL.
	EndpointPath() string

	// Capabilities returns the descriptor the adapter shapes requests with.
	Capabilities() Capabilities

	// Profile returns the model profile the adapter is bound to.
	Profile() Profile

	// CreateRequest shapes the wire payload for one request. The result is
	// deterministic for equal inputs.
	CreateRequest(req Request) (map[string]interface{}, error)

	// BuildTools translates tool shapes into the protocol's descriptor form.
	BuildTools(tools []Tool) []interface{}

	// ParseResponse normalizes a complete response. A buffered JSON body is
	// parsed directly; a live body is drained through the streaming parser
	// and reduced.
	ParseResponse(ctx context.Context, raw RawResponse) (*Response, error)

	// ParseStreamingResponse normalizes a live body into the canonical
	// event sequence. The channel closes when the stream ends or ctx is
	// cancelled.
	ParseStreamingResponse(ctx context.Context, raw RawResponse) (<-chan StreamEvent, error)
}

// Option configures an adapter.
type Option func(*baseAdapter)

// WithLogger sets the logger used when stream lines or tool items are
// skipped. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *baseAdapter) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// baseAdapter carries the immutable configuration shared by both protocol
// adapters plus the capability-driven request helpers.
type baseAdapter struct {
	caps    Capabilities
	profile Profile
	logger  *slog.Logger
}

func newBaseAdapter(caps Capabilities, profile Profile, opts ...Option) baseAdapter {
	b := baseAdapter{caps: caps, profile: profile, logger: slog.Default()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Capabilities returns the capability descriptor the adapter was built with.
func (b *baseAdapter) Capabilities() Capabilities { return b.caps }

// Profile returns the model profile the adapter was built with.
func (b *baseAdapter) Profile() Profile { return b.profile }

// ParseStreamingResponse is the contract default: a stream that ends
// immediately, so a caller probing an adapter that advertises streaming
// without implementing it fails soft. Both protocol adapters override it.
func (b *baseAdapter) ParseStreamingResponse(ctx context.Context, raw RawResponse) (<-chan StreamEvent, error) {
	if raw.Body != nil {
		raw.Body.Close()
	}
	ch := make(chan StreamEvent)
	close(ch)
	return ch, nil
}

// maxTokensField returns the wire name of the completion token cap.
func (b *baseAdapter) maxTokensField() string {
	if b.caps.MaxTokensField != "" {
		return b.caps.MaxTokensField
	}
	return "max_tokens"
}

// resolveTemperature applies the capability's temperature mode to the
// caller's requested value.
func (b *baseAdapter) resolveTemperature(requested *float64) float64 {
	const fallback = 0.7
	switch b.caps.Temperature {
	case TemperatureFixedOne:
		return 1.0
	case TemperatureRestricted:
		t := fallback
		if requested != nil {
			t = *requested
		}
		if t > 1.0 {
			t = 1.0
		}
		return t
	default:
		if requested != nil {
			return *requested
		}
		return fallback
	}
}

// effectiveEffort returns the reasoning effort to send, request value over
// profile default, or empty when the capability is absent or nothing is set.
func (b *baseAdapter) effectiveEffort(req Request) ReasoningEffort {
	if !b.caps.ReasoningEffort {
		return ""
	}
	if req.ReasoningEffort != "" {
		return req.ReasoningEffort
	}
	return b.profile.ReasoningEffort
}

func (b *baseAdapter) effectiveVerbosity(req Request) Verbosity {
	if !b.caps.Verbosity {
		return ""
	}
	return req.Verbosity
}

// continuationID returns the stateful continuation id to send, request value
// over profile seed, or empty when the capability is absent.
func (b *baseAdapter) continuationID(req Request) string {
	if !b.caps.StatefulContinuation {
		return ""
	}
	if req.PreviousResponseID != "" {
		return req.PreviousResponseID
	}
	return b.profile.PreviousResponseID
}

// requestTools applies the request's allowed-tools restriction.
func (b *baseAdapter) requestTools(req Request) []Tool {
	if req.AllowedTools == nil {
		return req.Tools
	}
	allowed := make(map[string]bool, len(req.AllowedTools))
	for _, name := range req.AllowedTools {
		allowed[name] = true
	}
	var tools []Tool
	for _, tool := range req.Tools {
		if allowed[tool.Name] {
			tools = append(tools, tool)
		}
	}
	return tools
}

// send delivers one event unless ctx is already done. It reports whether the
// producer should keep going.
func send(ctx context.Context, ch chan<- StreamEvent, evt StreamEvent) bool {
	select {
	case ch <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}

// newMessageID synthesizes a message id for streams where the provider has
// not revealed one yet.
func newMessageID() string {
	return "msg_" + uuid.New().String()
}

// imageURL renders an image as a URL, inlining raw bytes as a data URL.
func imageURL(img *ImageData) string {
	if img == nil {
		return ""
	}
	if img.URL != "" {
		return img.URL
	}
	if len(img.Data) > 0 {
		mediaType := img.MediaType
		if mediaType == "" {
			mediaType = "image/png"
		}
		return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(img.Data))
	}
	return ""
}

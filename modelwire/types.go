package modelwire

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ReasoningEffort selects how much internal reasoning a model spends before
// answering. Empty means the model default.
type ReasoningEffort string

const (
	EffortLow    ReasoningEffort = "low"
	EffortMedium ReasoningEffort = "medium"
	EffortHigh   ReasoningEffort = "high"
)

// Verbosity hints how expansive the model's answers should be. Empty means
// the model default.
type Verbosity string

const (
	VerbosityLow    Verbosity = "low"
	VerbosityMedium Verbosity = "medium"
	VerbosityHigh   Verbosity = "high"
)

// ContentKind discriminates the ContentPart union.
type ContentKind string

const (
	ContentText       ContentKind = "text"
	ContentImage      ContentKind = "image"
	ContentToolCall   ContentKind = "tool_call"
	ContentToolResult ContentKind = "tool_result"
)

// ContentPart is one element of a request message. The payload field
// matching Kind is set; the others are zero.
type ContentPart struct {
	Kind       ContentKind
	Text       string
	Image      *ImageData
	ToolCall   *ToolCallData
	ToolResult *ToolResultData
}

// ImageData holds an image either by URL or as raw bytes with a media type.
type ImageData struct {
	URL       string
	Data      []byte
	MediaType string
}

// ToolCallData replays an assistant tool invocation in conversation history.
// Arguments is the raw JSON string the model produced.
type ToolCallData struct {
	ID        string
	Name      string
	Arguments string
}

// ToolResultData carries the outcome of a tool invocation back to the model.
type ToolResultData struct {
	CallID  string
	Content string
	IsError bool
}

// Message is one turn of conversation input.
type Message struct {
	Role    Role
	Content []ContentPart
}

// TextContent joins the message's text parts with newlines.
func (m Message) TextContent() string {
	var out string
	for _, part := range m.Content {
		if part.Kind != ContentText {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += part.Text
	}
	return out
}

// TextPart creates a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: ContentText, Text: text}
}

// ImageURLPart creates an image content part referencing a URL.
func ImageURLPart(url string) ContentPart {
	return ContentPart{Kind: ContentImage, Image: &ImageData{URL: url}}
}

// ImagePart creates an image content part from raw bytes.
func ImagePart(data []byte, mediaType string) ContentPart {
	return ContentPart{Kind: ContentImage, Image: &ImageData{Data: data, MediaType: mediaType}}
}

// ToolCallPart creates a tool-call replay part for assistant history.
func ToolCallPart(id, name, arguments string) ContentPart {
	return ContentPart{Kind: ContentToolCall, ToolCall: &ToolCallData{ID: id, Name: name, Arguments: arguments}}
}

// ToolResultPart creates a tool-result part answering a prior tool call.
func ToolResultPart(callID, content string, isError bool) ContentPart {
	return ContentPart{Kind: ContentToolResult, ToolResult: &ToolResultData{CallID: callID, Content: content, IsError: isError}}
}

// UserMessage creates a user message with a single text part.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []ContentPart{TextPart(text)}}
}

// AssistantMessage creates an assistant message with a single text part.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: []ContentPart{TextPart(text)}}
}

// ToolResultMessage creates a tool message answering a prior tool call.
func ToolResultMessage(callID, content string, isError bool) Message {
	return Message{Role: RoleTool, Content: []ContentPart{ToolResultPart(callID, content, isError)}}
}

// Tool describes a callable tool's shape: its name, what it does, and a
// JSON-schema-like map for its inputs. Nothing in this package executes
// tools; adapters only translate these descriptors onto the wire.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
}

// Request is the provider-neutral description of one completion call.
// Optional fields are zero when unset; Temperature is a pointer so that an
// explicit zero survives.
type Request struct {
	Messages      []Message
	SystemPrompts []string
	Tools         []Tool

	// AllowedTools restricts Tools to the named subset. Nil means all.
	AllowedTools []string

	MaxTokens   int
	Temperature *float64
	Stream      bool

	ReasoningEffort ReasoningEffort
	Verbosity       Verbosity

	// PreviousResponseID continues a stateful server-side conversation on
	// protocols that support it. Overrides the profile's seed.
	PreviousResponseID string
}

// BlockType discriminates the ContentBlock union.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockToolUse BlockType = "tool_use"
)

// Citation locates a source reference inside a text block.
type Citation struct {
	URL        string
	Title      string
	StartIndex int
	EndIndex   int
}

// ToolUse is a tool invocation with its argument payload parsed into a
// structured value.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// ContentBlock is one canonical element of a model's answer: either text
// (optionally cited) or a tool invocation.
type ContentBlock struct {
	Type      BlockType
	Text      string
	Citations []Citation
	ToolUse   *ToolUse
}

// ToolCall records a tool invocation requested by the model with its
// argument payload left as the raw JSON string the provider sent.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// TokenUsage is the canonical token accounting for one completion,
// normalized from whichever field names the provider used. Total falls back
// to Input+Output when the provider omits it. Reasoning is nil for models
// that report no reasoning sub-count.
type TokenUsage struct {
	Input     int
	Output    int
	Total     int
	Reasoning *int
}

// Response is the provider-neutral result of one completion call. Content is
// never empty: an answer with no content normalizes to a single empty text
// block. ResponseID, when set, can seed a stateful follow-up request.
type Response struct {
	ID         string
	ResponseID string
	Content    []ContentBlock
	ToolCalls  []ToolCall
	Usage      TokenUsage
}

// Text concatenates the response's text blocks.
func (r *Response) Text() string {
	var out string
	for _, block := range r.Content {
		if block.Type == BlockText {
			out += block.Text
		}
	}
	return out
}

// StreamEventType discriminates the StreamEvent union.
type StreamEventType string

const (
	// EventMessageStart opens a stream. Emitted at most once, before the
	// first text delta.
	EventMessageStart StreamEventType = "message_start"
	// EventTextDelta carries an incremental text fragment.
	EventTextDelta StreamEventType = "text_delta"
	// EventToolRequest carries one complete tool invocation. Never partial.
	EventToolRequest StreamEventType = "tool_request"
	// EventUsage carries cumulative token accounting. The last one wins.
	EventUsage StreamEventType = "usage"
	// EventMessageStop terminates a stream with the assembled message.
	EventMessageStop StreamEventType = "message_stop"
	// EventError reports a mid-stream failure. Prior events remain valid.
	EventError StreamEventType = "error"
)

// ToolRequest is a structurally complete tool invocation observed on a
// stream. Arguments is the raw JSON string; see Reduce for tolerant parsing
// into structured input.
type ToolRequest struct {
	ID        string
	Name      string
	Arguments string
}

// StreamEvent is one element of a normalized streaming response. The payload
// fields matching Type are set; the others are zero.
type StreamEvent struct {
	Type       StreamEventType
	Message    *Response
	Delta      string
	ResponseID string
	Tool       *ToolRequest
	Usage      *TokenUsage
	Error      error
}

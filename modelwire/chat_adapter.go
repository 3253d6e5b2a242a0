package modelwire

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// ChatCompletionsAdapter speaks the classic flat-message chat-completions
// protocol: system prompts travel as leading messages, tool descriptors nest
// under a function wrapper, and streaming is an opt-in per request.
type ChatCompletionsAdapter struct {
	baseAdapter
}

// NewChatCompletionsAdapter creates an adapter for the chat-completions
// protocol bound to one model profile.
func NewChatCompletionsAdapter(caps Capabilities, profile Profile, opts ...Option) *ChatCompletionsAdapter {
	return &ChatCompletionsAdapter{baseAdapter: newBaseAdapter(caps, profile, opts...)}
}

func (a *ChatCompletionsAdapter) Name() string { return "chat_completions" }

func (a *ChatCompletionsAdapter) EndpointPath() string { return "/v1/chat/completions" }

// CreateRequest shapes the flat-message wire payload.
func (a *ChatCompletionsAdapter) CreateRequest(req Request) (map[string]interface{}, error) {
	body := map[string]interface{}{
		"model": a.profile.Model,
	}

	messages := make([]interface{}, 0, len(req.SystemPrompts)+len(req.Messages))
	for _, prompt := range req.SystemPrompts {
		if prompt == "" {
			continue
		}
		messages = append(messages, map[string]interface{}{
			"role":    "system",
			"content": prompt,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, a.translateMessage(msg)...)
	}
	body["messages"] = messages

	if req.MaxTokens > 0 {
		body[a.maxTokensField()] = req.MaxTokens
	}

	if tools := a.requestTools(req); len(tools) > 0 {
		body["tools"] = a.BuildTools(tools)
	}

	if effort := a.effectiveEffort(req); effort != "" {
		body["reasoning_effort"] = string(effort)
	}
	if verbosity := a.effectiveVerbosity(req); verbosity != "" {
		body["verbosity"] = string(verbosity)
	}

	// Some model families reject sampling and streaming controls outright;
	// for those the fields are omitted rather than defaulted.
	restricted := samplingRestricted(a.profile.Model)
	if !restricted {
		body["temperature"] = a.resolveTemperature(req.Temperature)
	}
	if req.Stream && !restricted {
		body["stream"] = true
		body["stream_options"] = map[string]interface{}{"include_usage": true}
	}

	return body, nil
}

// samplingRestricted reports whether the model family rejects temperature
// and streaming controls on the chat-completions protocol.
func samplingRestricted(model string) bool {
	for _, family := range []string{"o1", "o3", "o4"} {
		if model == family || strings.HasPrefix(model, family+"-") {
			return true
		}
	}
	return false
}

func (a *ChatCompletionsAdapter) translateMessage(msg Message) []interface{} {
	switch msg.Role {
	case RoleSystem:
		text := msg.TextContent()
		if text == "" {
			return nil
		}
		return []interface{}{map[string]interface{}{
			"role":    "system",
			"content": text,
		}}
	case RoleUser:
		return []interface{}{a.translateUserMessage(msg)}
	case RoleAssistant:
		return []interface{}{a.translateAssistantMessage(msg)}
	case RoleTool:
		var out []interface{}
		for _, part := range msg.Content {
			if part.Kind == ContentToolResult && part.ToolResult != nil {
				out = append(out, map[string]interface{}{
					"role":         "tool",
					"tool_call_id": part.ToolResult.CallID,
					"content":      part.ToolResult.Content,
				})
			}
		}
		return out
	}
	return nil
}

func (a *ChatCompletionsAdapter) translateUserMessage(msg Message) map[string]interface{} {
	hasImage := false
	for _, part := range msg.Content {
		if part.Kind == ContentImage {
			hasImage = true
			break
		}
	}
	if !hasImage {
		return map[string]interface{}{
			"role":    "user",
			"content": msg.TextContent(),
		}
	}

	var content []interface{}
	for _, part := range msg.Content {
		switch part.Kind {
		case ContentText:
			content = append(content, map[string]interface{}{
				"type": "text",
				"text": part.Text,
			})
		case ContentImage:
			if url := imageURL(part.Image); url != "" {
				content = append(content, map[string]interface{}{
					"type":      "image_url",
					"image_url": map[string]interface{}{"url": url},
				})
			}
		}
	}
	return map[string]interface{}{
		"role":    "user",
		"content": content,
	}
}

func (a *ChatCompletionsAdapter) translateAssistantMessage(msg Message) map[string]interface{} {
	out := map[string]interface{}{"role": "assistant"}

	var toolCalls []interface{}
	for _, part := range msg.Content {
		if part.Kind == ContentToolCall && part.ToolCall != nil {
			toolCalls = append(toolCalls, map[string]interface{}{
				"id":   part.ToolCall.ID,
				"type": "function",
				"function": map[string]interface{}{
					"name":      part.ToolCall.Name,
					"arguments": part.ToolCall.Arguments,
				},
			})
		}
	}

	if text := msg.TextContent(); text != "" || toolCalls == nil {
		out["content"] = text
	}
	if toolCalls != nil {
		out["tool_calls"] = toolCalls
	}
	return out
}

// BuildTools renders tool shapes in the protocol's nested function form. A
// tool without a schema gets an empty object schema; this protocol has no
// freeform tool type.
func (a *ChatCompletionsAdapter) BuildTools(tools []Tool) []interface{} {
	out := make([]interface{}, 0, len(tools))
	for _, tool := range tools {
		schema := tool.InputSchema
		if schema == nil {
			schema = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
		}
		out = append(out, map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  schema,
			},
		})
	}
	return out
}

// ParseResponse normalizes a buffered chat-completions response, or reduces
// a live stream to the same shape.
func (a *ChatCompletionsAdapter) ParseResponse(ctx context.Context, raw RawResponse) (*Response, error) {
	if raw.JSON == nil {
		events, err := a.ParseStreamingResponse(ctx, raw)
		if err != nil {
			return nil, err
		}
		return Reduce(events), nil
	}
	return a.parseBuffered(raw.JSON)
}

func (a *ChatCompletionsAdapter) parseBuffered(raw map[string]interface{}) (*Response, error) {
	choices, ok := raw["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return nil, &InvalidRequestError{ProviderError: ProviderError{
			SDKError: SDKError{Message: "response has no choices"},
			Provider: a.Name(),
			Raw:      raw,
		}}
	}

	resp := &Response{}
	if id, ok := raw["id"].(string); ok {
		resp.ID = id
	}

	choice, _ := choices[0].(map[string]interface{})
	message, _ := choice["message"].(map[string]interface{})

	if content, ok := message["content"].(string); ok && content != "" {
		resp.Content = append(resp.Content, ContentBlock{Type: BlockText, Text: content})
	}

	if toolCalls, ok := message["tool_calls"].([]interface{}); ok {
		for _, tc := range toolCalls {
			tcMap, ok := tc.(map[string]interface{})
			if !ok {
				continue
			}
			id, _ := tcMap["id"].(string)
			fn, _ := tcMap["function"].(map[string]interface{})
			name, _ := fn["name"].(string)
			args, _ := fn["arguments"].(string)
			if name == "" {
				continue
			}
			resp.Content = append(resp.Content, ContentBlock{
				Type:    BlockToolUse,
				ToolUse: &ToolUse{ID: id, Name: name, Input: parseToolInput(args)},
			})
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: id, Name: name, Arguments: args})
		}
	}

	if len(resp.Content) == 0 {
		resp.Content = []ContentBlock{{Type: BlockText}}
	}

	if usageMap, ok := raw["usage"].(map[string]interface{}); ok {
		resp.Usage = NormalizeUsage(usageMap)
	}

	return resp, nil
}

// ParseStreamingResponse normalizes a live chat-completions SSE body into
// the canonical event sequence.
func (a *ChatCompletionsAdapter) ParseStreamingResponse(ctx context.Context, raw RawResponse) (<-chan StreamEvent, error) {
	if raw.Body == nil {
		return nil, &StreamError{SDKError: SDKError{Message: "no stream body to parse"}}
	}
	ch := make(chan StreamEvent, 64)
	go a.readStream(ctx, raw.Body, ch)
	return ch, nil
}

// toolCallDraft accumulates one streamed tool call's fragments by index.
type toolCallDraft struct {
	id        string
	name      string
	arguments string
}

func (a *ChatCompletionsAdapter) readStream(ctx context.Context, body io.ReadCloser, ch chan<- StreamEvent) {
	defer close(ch)
	defer body.Close()

	decoder := newSSEDecoder(body, a.logger)
	asm := newMessageAssembler()
	started := false
	messageID := ""
	var drafts []*toolCallDraft
	var usage *TokenUsage

	emit := func(evt StreamEvent) bool {
		asm.Add(evt)
		return send(ctx, ch, evt)
	}
	start := func() bool {
		if started {
			return true
		}
		started = true
		id := messageID
		if id == "" {
			id = newMessageID()
		}
		return emit(StreamEvent{Type: EventMessageStart, Message: &Response{ID: id}})
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := decoder.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !emit(StreamEvent{Type: EventError, Error: &StreamError{SDKError: SDKError{Message: "stream read error", Cause: err}}}) {
				return
			}
			break
		}

		if id, ok := data["id"].(string); ok && messageID == "" {
			messageID = id
		}

		// The trailing accounting chunk repeats usage cumulatively.
		if usageMap, ok := data["usage"].(map[string]interface{}); ok {
			u := NormalizeUsage(usageMap)
			usage = &u
		}

		choices, ok := data["choices"].([]interface{})
		if !ok || len(choices) == 0 {
			continue
		}
		choice, ok := choices[0].(map[string]interface{})
		if !ok {
			continue
		}
		delta, _ := choice["delta"].(map[string]interface{})

		// Reasoning commentary and answer text share one text channel.
		for _, key := range []string{"reasoning_content", "reasoning", "content"} {
			if text, ok := delta[key].(string); ok && text != "" {
				if !start() {
					return
				}
				if !emit(StreamEvent{Type: EventTextDelta, Delta: text}) {
					return
				}
			}
		}

		if fragments, ok := delta["tool_calls"].([]interface{}); ok {
			a.collectToolFragments(fragments, &drafts)
		}
	}

	if !start() {
		return
	}

	// Tool calls are only surfaced once the stream is done, each one whole:
	// an id, a name, and a complete argument document. Anything less is
	// dropped rather than repaired.
	for _, draft := range drafts {
		if draft == nil || draft.id == "" || draft.name == "" {
			continue
		}
		args := draft.arguments
		if args == "" {
			args = "{}"
		}
		if !json.Valid([]byte(args)) {
			a.logger.Warn("dropping tool call with incomplete arguments", "tool", draft.name)
			continue
		}
		if !emit(StreamEvent{Type: EventToolRequest, Tool: &ToolRequest{ID: draft.id, Name: draft.name, Arguments: args}}) {
			return
		}
	}

	if usage != nil {
		if !emit(StreamEvent{Type: EventUsage, Usage: usage}) {
			return
		}
	}

	send(ctx, ch, StreamEvent{Type: EventMessageStop, Message: asm.Message()})
}

func (a *ChatCompletionsAdapter) collectToolFragments(fragments []interface{}, drafts *[]*toolCallDraft) {
	for _, frag := range fragments {
		fragMap, ok := frag.(map[string]interface{})
		if !ok {
			continue
		}
		idx := 0
		if v, ok := fragMap["index"].(float64); ok {
			idx = int(v)
		}
		for idx >= len(*drafts) {
			*drafts = append(*drafts, nil)
		}
		if (*drafts)[idx] == nil {
			(*drafts)[idx] = &toolCallDraft{}
		}
		draft := (*drafts)[idx]

		if id, ok := fragMap["id"].(string); ok && id != "" {
			draft.id = id
		}
		if fn, ok := fragMap["function"].(map[string]interface{}); ok {
			if name, ok := fn["name"].(string); ok && name != "" {
				draft.name = name
			}
			if args, ok := fn["arguments"].(string); ok {
				draft.arguments += args
			}
		}
	}
}

package modelwire

import (
	"context"
	"io"
	"strings"
)

// ResponsesAdapter speaks the item-based responses protocol: system prompts
// travel out-of-band as instructions, conversation history is an ordered
// item list, tool descriptors are flat, and the wire is always streaming.
// Callers that want a buffered result reduce the stream.
type ResponsesAdapter struct {
	baseAdapter
}

// NewResponsesAdapter creates an adapter for the responses protocol bound to
// one model profile.
func NewResponsesAdapter(caps Capabilities, profile Profile, opts ...Option) *ResponsesAdapter {
	return &ResponsesAdapter{baseAdapter: newBaseAdapter(caps, profile, opts...)}
}

func (a *ResponsesAdapter) Name() string { return "responses" }

func (a *ResponsesAdapter) EndpointPath() string { return "/v1/responses" }

// CreateRequest shapes the item-list wire payload. Stream is always set:
// this protocol only answers over SSE.
func (a *ResponsesAdapter) CreateRequest(req Request) (map[string]interface{}, error) {
	body := map[string]interface{}{
		"model":  a.profile.Model,
		"stream": true,
		"store":  false,
	}

	var instructions []string
	for _, prompt := range req.SystemPrompts {
		if prompt != "" {
			instructions = append(instructions, prompt)
		}
	}

	var input []interface{}
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			// System text never rides in the item list on this protocol.
			if text := msg.TextContent(); text != "" {
				instructions = append(instructions, text)
			}
		case RoleUser:
			input = append(input, a.translateUserMessage(msg))
		case RoleAssistant:
			input = append(input, a.translateAssistantMessage(msg)...)
		case RoleTool:
			for _, part := range msg.Content {
				if part.Kind == ContentToolResult && part.ToolResult != nil {
					input = append(input, map[string]interface{}{
						"type":    "function_call_output",
						"call_id": part.ToolResult.CallID,
						"output":  part.ToolResult.Content,
					})
				}
			}
		}
	}

	if len(instructions) > 0 {
		body["instructions"] = strings.Join(instructions, "\n\n")
	}
	if len(input) > 0 {
		body["input"] = input
	}

	if req.MaxTokens > 0 {
		body["max_output_tokens"] = req.MaxTokens
	}

	// This protocol rejects most sampling values; only an exact 1 passes.
	if temp := a.resolveTemperature(req.Temperature); temp == 1.0 {
		body["temperature"] = temp
	}

	// Effort without the include entry is silently ignored upstream even
	// though the request validates, so the two travel together or not at
	// all.
	if effort := a.effectiveEffort(req); effort != "" {
		body["reasoning"] = map[string]interface{}{"effort": string(effort)}
		body["include"] = []interface{}{"reasoning.encrypted_content"}
	}

	if verbosity := a.effectiveVerbosity(req); verbosity != "" {
		body["text"] = map[string]interface{}{"verbosity": string(verbosity)}
	}

	if tools := a.requestTools(req); len(tools) > 0 {
		body["tools"] = a.BuildTools(tools)
		body["tool_choice"] = "auto"
		body["parallel_tool_calls"] = a.caps.ParallelToolCalls
	}

	if id := a.continuationID(req); id != "" {
		body["previous_response_id"] = id
	}

	return body, nil
}

func (a *ResponsesAdapter) translateUserMessage(msg Message) map[string]interface{} {
	var content []interface{}
	for _, part := range msg.Content {
		switch part.Kind {
		case ContentText:
			content = append(content, map[string]interface{}{
				"type": "input_text",
				"text": part.Text,
			})
		case ContentImage:
			if url := imageURL(part.Image); url != "" {
				content = append(content, map[string]interface{}{
					"type":      "input_image",
					"image_url": url,
				})
			}
		}
	}
	return map[string]interface{}{
		"type":    "message",
		"role":    "user",
		"content": content,
	}
}

// translateAssistantMessage splits an assistant turn into its wire items: at
// most one message item for the text parts, then one function_call replay
// item per tool-call part.
func (a *ResponsesAdapter) translateAssistantMessage(msg Message) []interface{} {
	var items []interface{}
	var textParts []interface{}

	for _, part := range msg.Content {
		switch part.Kind {
		case ContentText:
			textParts = append(textParts, map[string]interface{}{
				"type": "output_text",
				"text": part.Text,
			})
		case ContentToolCall:
			if part.ToolCall != nil {
				items = append(items, map[string]interface{}{
					"type":      "function_call",
					"call_id":   part.ToolCall.ID,
					"name":      part.ToolCall.Name,
					"arguments": part.ToolCall.Arguments,
				})
			}
		}
	}

	if len(textParts) > 0 {
		items = append([]interface{}{map[string]interface{}{
			"type":    "message",
			"role":    "assistant",
			"content": textParts,
		}}, items...)
	}
	return items
}

// BuildTools renders tool shapes in the protocol's flat descriptor form. A
// tool without an input schema becomes a freeform custom tool when the
// capability allows, else it gets an empty object schema.
func (a *ResponsesAdapter) BuildTools(tools []Tool) []interface{} {
	out := make([]interface{}, 0, len(tools))
	for _, tool := range tools {
		if len(tool.InputSchema) == 0 && a.caps.FreeformTools {
			out = append(out, map[string]interface{}{
				"type":        "custom",
				"name":        tool.Name,
				"description": tool.Description,
			})
			continue
		}
		schema := tool.InputSchema
		if schema == nil {
			schema = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
		}
		out = append(out, map[string]interface{}{
			"type":        "function",
			"name":        tool.Name,
			"description": tool.Description,
			"parameters":  schema,
		})
	}
	return out
}

// ParseResponse normalizes a buffered responses-protocol body, or reduces a
// live stream to the same shape.
func (a *ResponsesAdapter) ParseResponse(ctx context.Context, raw RawResponse) (*Response, error) {
	if raw.JSON == nil {
		events, err := a.ParseStreamingResponse(ctx, raw)
		if err != nil {
			return nil, err
		}
		return Reduce(events), nil
	}
	return a.parseBuffered(raw.JSON)
}

func (a *ResponsesAdapter) parseBuffered(raw map[string]interface{}) (*Response, error) {
	resp := &Response{}
	if id, ok := raw["id"].(string); ok {
		resp.ID = id
		resp.ResponseID = id
	}

	var segments []string
	var citations []Citation

	output, _ := raw["output"].([]interface{})
	for _, item := range output {
		itemMap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		switch itemMap["type"] {
		case "message":
			var texts []string
			parts, _ := itemMap["content"].([]interface{})
			for _, part := range parts {
				partMap, ok := part.(map[string]interface{})
				if !ok {
					continue
				}
				text, ok := partMap["text"].(string)
				if !ok {
					continue
				}
				texts = append(texts, text)
				citations = append(citations, parseAnnotations(partMap)...)
			}
			segments = append(segments, strings.Join(texts, "\n"))
		case "function_call":
			name, _ := itemMap["name"].(string)
			callID, _ := itemMap["call_id"].(string)
			if callID == "" {
				callID, _ = itemMap["id"].(string)
			}
			args, _ := itemMap["arguments"].(string)
			if name == "" {
				continue
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: callID, Name: name, Arguments: args})
		}
	}

	if text := strings.Join(segments, "\n\n"); text != "" || len(citations) > 0 {
		resp.Content = append(resp.Content, ContentBlock{Type: BlockText, Text: text, Citations: citations})
	}
	for _, tc := range resp.ToolCalls {
		resp.Content = append(resp.Content, ContentBlock{
			Type:    BlockToolUse,
			ToolUse: &ToolUse{ID: tc.ID, Name: tc.Name, Input: parseToolInput(tc.Arguments)},
		})
	}
	if len(resp.Content) == 0 {
		resp.Content = []ContentBlock{{Type: BlockText}}
	}

	if usageMap, ok := raw["usage"].(map[string]interface{}); ok {
		resp.Usage = NormalizeUsage(usageMap)
	}

	return resp, nil
}

func parseAnnotations(part map[string]interface{}) []Citation {
	annotations, _ := part["annotations"].([]interface{})
	var out []Citation
	for _, ann := range annotations {
		annMap, ok := ann.(map[string]interface{})
		if !ok {
			continue
		}
		if t, _ := annMap["type"].(string); t != "url_citation" {
			continue
		}
		c := Citation{}
		c.URL, _ = annMap["url"].(string)
		c.Title, _ = annMap["title"].(string)
		if v, ok := annMap["start_index"].(float64); ok {
			c.StartIndex = int(v)
		}
		if v, ok := annMap["end_index"].(float64); ok {
			c.EndIndex = int(v)
		}
		out = append(out, c)
	}
	return out
}

// ParseStreamingResponse normalizes a live responses-protocol SSE body into
// the canonical event sequence.
func (a *ResponsesAdapter) ParseStreamingResponse(ctx context.Context, raw RawResponse) (<-chan StreamEvent, error) {
	if raw.Body == nil {
		return nil, &StreamError{SDKError: SDKError{Message: "no stream body to parse"}}
	}
	ch := make(chan StreamEvent, 64)
	go a.readStream(ctx, raw.Body, ch)
	return ch, nil
}

func (a *ResponsesAdapter) readStream(ctx context.Context, body io.ReadCloser, ch chan<- StreamEvent) {
	defer close(ch)
	defer body.Close()

	decoder := newSSEDecoder(body, a.logger)
	asm := newMessageAssembler()
	started := false
	responseID := ""

	emit := func(evt StreamEvent) bool {
		asm.Add(evt)
		return send(ctx, ch, evt)
	}
	start := func() bool {
		if started {
			return true
		}
		started = true
		id := responseID
		if id == "" {
			id = newMessageID()
		}
		return emit(StreamEvent{
			Type:       EventMessageStart,
			Message:    &Response{ID: id, ResponseID: responseID},
			ResponseID: responseID,
		})
	}

loop:
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

		eventType, _ := data["type"].(string)
		switch eventType {
		case "response.created":
			if respMap, ok := data["response"].(map[string]interface{}); ok {
				if id, ok := respMap["id"].(string); ok {
					responseID = id
				}
			}
			if !start() {
				return
			}

		case "response.output_text.delta":
			delta, _ := data["delta"].(string)
			if delta == "" {
				continue
			}
			if !start() {
				return
			}
			if !emit(StreamEvent{Type: EventTextDelta, Delta: delta, ResponseID: responseID}) {
				return
			}

		case "response.output_item.done":
			item, ok := data["item"].(map[string]interface{})
			if !ok {
				continue
			}
			if t, _ := item["type"].(string); t != "function_call" {
				continue
			}
			callID, _ := item["call_id"].(string)
			if callID == "" {
				callID, _ = item["id"].(string)
			}
			name, _ := item["name"].(string)
			args, argsOK := item["arguments"].(string)
			if callID == "" || name == "" || !argsOK {
				a.logger.Warn("dropping malformed tool call item", "tool", name)
				continue
			}
			if args == "" {
				args = "{}"
			}
			if !start() {
				return
			}
			if !emit(StreamEvent{Type: EventToolRequest, Tool: &ToolRequest{ID: callID, Name: name, Arguments: args}}) {
				return
			}

		case "response.completed":
			respMap, ok := data["response"].(map[string]interface{})
			if !ok {
				respMap = data
			}
			if id, ok := respMap["id"].(string); ok && id != "" {
				responseID = id
			}
			if !start() {
				return
			}
			if usageMap, ok := respMap["usage"].(map[string]interface{}); ok {
				usage := NormalizeUsage(usageMap)
				if !emit(StreamEvent{Type: EventUsage, Usage: &usage}) {
					return
				}
			}
			msg := asm.Message()
			msg.ResponseID = responseID
			send(ctx, ch, StreamEvent{Type: EventMessageStop, Message: msg})
			return

		case "response.failed", "error":
			if !emit(StreamEvent{Type: EventError, Error: &StreamError{SDKError: SDKError{Message: streamFailureMessage(data)}}}) {
				return
			}
			break loop
		}
	}

	// The stream ended without a completed event: terminate canonically with
	// whatever was assembled.
	if !start() {
		return
	}
	msg := asm.Message()
	msg.ResponseID = responseID
	send(ctx, ch, StreamEvent{Type: EventMessageStop, Message: msg})
}

func streamFailureMessage(data map[string]interface{}) string {
	if respMap, ok := data["response"].(map[string]interface{}); ok {
		if errMap, ok := respMap["error"].(map[string]interface{}); ok {
			if msg, ok := errMap["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	if errMap, ok := data["error"].(map[string]interface{}); ok {
		if msg, ok := errMap["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if msg, ok := data["message"].(string); ok && msg != "" {
		return msg
	}
	return "provider reported a stream failure"
}

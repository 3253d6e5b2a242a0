// Package modelwire translates a provider-neutral conversation schema to and
// from the wire formats of two OpenAI-style completion protocols: the classic
// flat-message chat completions protocol and the newer item-based, stateful
// responses protocol.
//
// # Architecture
//
// The package is organized around one contract and two implementations:
//
//   - Adapter interface: request shaping, tool descriptor translation, and
//     response normalization for one wire protocol
//   - ChatCompletionsAdapter: speaks /v1/chat/completions with flat messages
//     and nested function tools
//   - ResponsesAdapter: speaks /v1/responses with typed input items, flat
//     tools, and server-side conversation state
//
// Request shaping is driven by a Capabilities descriptor, so model-specific
// differences (token cap field name, temperature policy, reasoning effort)
// live in data rather than in per-model code. Adapters hold configuration
// only, never per-call state, so one adapter value serves concurrent calls.
//
// # Quick Start
//
//	adapter := modelwire.NewChatCompletionsAdapter(
//	    modelwire.Capabilities{
//	        MaxTokensField: "max_tokens",
//	        Temperature:    modelwire.TemperatureFree,
//	    },
//	    modelwire.Profile{Model: "gpt-4.1", BaseURL: "https://api.openai.com"},
//	)
//
//	payload, _ := adapter.CreateRequest(modelwire.Request{
//	    Messages: []modelwire.Message{modelwire.UserMessage("Hello")},
//	})
//	// POST payload to adapter.EndpointPath(), then:
//	resp, _ := adapter.ParseResponse(ctx, modelwire.RawResponse{JSON: decoded})
//	fmt.Println(resp.Text())
//
// # Streaming
//
// Both adapters normalize server-sent event streams into one canonical event
// sequence: message_start, then text_delta and tool_request events, then
// usage, then message_stop carrying the fully assembled message. A buffered
// caller can collapse any event stream with Reduce:
//
//	events, _ := adapter.ParseStreamingResponse(ctx, modelwire.RawResponse{Body: body})
//	resp := modelwire.Reduce(events)
//
// The message carried by message_stop always equals what Reduce would build
// from the preceding events, so incremental and buffered consumers agree.
//
// # Tool Calling
//
// Tools are declared once in canonical form and translated per protocol:
//
//	tool := modelwire.Tool{
//	    Name:        "get_weather",
//	    Description: "Get the current weather for a location",
//	    InputSchema: map[string]interface{}{
//	        "type": "object",
//	        "properties": map[string]interface{}{
//	            "city": map[string]interface{}{"type": "string"},
//	        },
//	    },
//	}
//
// Tool execution is the caller's job: adapters emit tool_request events and
// accept tool results back as conversation messages.
package modelwire

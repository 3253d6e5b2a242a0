package modelwire

import "encoding/json"

// messageAssembler folds a canonical event sequence into one complete
// response. Both protocol adapters drive one while streaming, so the
// terminal message_stop payload and an independent Reduce over the same
// events agree exactly.
type messageAssembler struct {
	resp    Response
	pending []ToolRequest
}

func newMessageAssembler() *messageAssembler {
	return &messageAssembler{}
}

// Add folds one event into the assembly. Error events contribute nothing;
// whatever arrived before them stays valid.
func (a *messageAssembler) Add(evt StreamEvent) {
	switch evt.Type {
	case EventMessageStart, EventMessageStop:
		if evt.Message != nil {
			if evt.Message.ID != "" {
				a.resp.ID = evt.Message.ID
			}
			if evt.Message.ResponseID != "" {
				a.resp.ResponseID = evt.Message.ResponseID
			}
		}
		if evt.ResponseID != "" {
			a.resp.ResponseID = evt.ResponseID
		}
	case EventTextDelta:
		a.appendText(evt.Delta)
		if evt.ResponseID != "" {
			a.resp.ResponseID = evt.ResponseID
		}
	case EventToolRequest:
		if evt.Tool != nil {
			a.pending = append(a.pending, *evt.Tool)
		}
	case EventUsage:
		// Usage events are cumulative; the last one wins.
		if evt.Usage != nil {
			a.resp.Usage = *evt.Usage
		}
	}
}

// appendText extends the trailing text block, starting a new one only when
// there is none or the trailing block is not text.
func (a *messageAssembler) appendText(delta string) {
	n := len(a.resp.Content)
	if n == 0 || a.resp.Content[n-1].Type != BlockText {
		a.resp.Content = append(a.resp.Content, ContentBlock{Type: BlockText})
		n++
	}
	a.resp.Content[n-1].Text += delta
}

// Message finalizes and returns the assembled response: pending tool
// requests become tool-use blocks with tolerantly parsed input, and an
// otherwise empty answer gets its single empty text block.
func (a *messageAssembler) Message() *Response {
	resp := a.resp
	resp.Content = append([]ContentBlock(nil), a.resp.Content...)
	resp.ToolCalls = nil

	for _, tool := range a.pending {
		resp.Content = append(resp.Content, ContentBlock{
			Type: BlockToolUse,
			ToolUse: &ToolUse{
				ID:    tool.ID,
				Name:  tool.Name,
				Input: parseToolInput(tool.Arguments),
			},
		})
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: tool.ID, Name: tool.Name, Arguments: tool.Arguments})
	}

	if len(resp.Content) == 0 {
		resp.Content = []ContentBlock{{Type: BlockText}}
	}
	return &resp
}

// Reduce drains a canonical event stream into the single complete response a
// buffered call would have produced. It never fails: a stream that ends
// early, or one that carried an error event, still yields the best-effort
// message assembled from everything that did arrive.
func Reduce(events <-chan StreamEvent) *Response {
	asm := newMessageAssembler()
	for evt := range events {
		asm.Add(evt)
	}
	return asm.Message()
}

// parseToolInput decodes a tool-call argument payload, tolerating the
// malformed JSON some models emit: any failure yields an empty object.
func parseToolInput(arguments string) map[string]interface{} {
	var input map[string]interface{}
	if arguments == "" || json.Unmarshal([]byte(arguments), &input) != nil || input == nil {
		return map[string]interface{}{}
	}
	return input
}

package modelwire

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTemperature(t *testing.T) {
	caller := func(v float64) *float64 { return &v }

	tests := []struct {
		name      string
		mode      TemperatureMode
		requested *float64
		want      float64
	}{
		{"free default", TemperatureFree, nil, 0.7},
		{"free passes through", TemperatureFree, caller(0.2), 0.2},
		{"free above one passes through", TemperatureFree, caller(1.5), 1.5},
		{"fixed one ignores caller", TemperatureFixedOne, caller(0.2), 1.0},
		{"fixed one default", TemperatureFixedOne, nil, 1.0},
		{"restricted clamps", TemperatureRestricted, caller(1.5), 1.0},
		{"restricted passes low values", TemperatureRestricted, caller(0.3), 0.3},
		{"restricted default", TemperatureRestricted, nil, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBaseAdapter(Capabilities{Temperature: tt.mode}, Profile{})
			assert.Equal(t, tt.want, b.resolveTemperature(tt.requested))
		})
	}
}

func TestMaxTokensField(t *testing.T) {
	b := newBaseAdapter(Capabilities{}, Profile{})
	assert.Equal(t, "max_tokens", b.maxTokensField())

	b = newBaseAdapter(Capabilities{MaxTokensField: "max_completion_tokens"}, Profile{})
	assert.Equal(t, "max_completion_tokens", b.maxTokensField())
}

func TestEffectiveEffort(t *testing.T) {
	// The capability gates the field entirely.
	b := newBaseAdapter(Capabilities{}, Profile{ReasoningEffort: EffortHigh})
	assert.Equal(t, ReasoningEffort(""), b.effectiveEffort(Request{ReasoningEffort: EffortLow}))

	b = newBaseAdapter(Capabilities{ReasoningEffort: true}, Profile{ReasoningEffort: EffortHigh})
	assert.Equal(t, EffortHigh, b.effectiveEffort(Request{}))
	assert.Equal(t, EffortLow, b.effectiveEffort(Request{ReasoningEffort: EffortLow}))
}

func TestContinuationID(t *testing.T) {
	b := newBaseAdapter(Capabilities{}, Profile{PreviousResponseID: "resp_old"})
	assert.Equal(t, "", b.continuationID(Request{PreviousResponseID: "resp_new"}))

	b = newBaseAdapter(Capabilities{StatefulContinuation: true}, Profile{PreviousResponseID: "resp_old"})
	assert.Equal(t, "resp_old", b.continuationID(Request{}))
	assert.Equal(t, "resp_new", b.continuationID(Request{PreviousResponseID: "resp_new"}))
}

func TestRequestTools(t *testing.T) {
	tools := []Tool{{Name: "read"}, {Name: "write"}, {Name: "search"}}
	b := newBaseAdapter(Capabilities{}, Profile{})

	assert.Len(t, b.requestTools(Request{Tools: tools}), 3)

	filtered := b.requestTools(Request{Tools: tools, AllowedTools: []string{"write", "search"}})
	require.Len(t, filtered, 2)
	assert.Equal(t, "write", filtered[0].Name)
	assert.Equal(t, "search", filtered[1].Name)

	// An empty (non-nil) restriction means no tools at all.
	assert.Empty(t, b.requestTools(Request{Tools: tools, AllowedTools: []string{}}))
}

type closeRecorder struct {
	strings.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestDefaultParseStreamingResponse(t *testing.T) {
	b := newBaseAdapter(Capabilities{}, Profile{})
	body := &closeRecorder{Reader: *strings.NewReader("data: {}\n")}

	ch, err := b.ParseStreamingResponse(context.Background(), RawResponse{Body: body})
	require.NoError(t, err)

	count := 0
	for range ch {
		count++
	}
	assert.Equal(t, 0, count)
	assert.True(t, body.closed)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "", imageURL(nil))
	assert.Equal(t, "https://example.com/a.png", imageURL(&ImageData{URL: "https://example.com/a.png"}))

	url := imageURL(&ImageData{Data: []byte{1, 2, 3}, MediaType: "image/jpeg"})
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))

	// Missing media type defaults to PNG.
	url = imageURL(&ImageData{Data: []byte{1}})
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestNewMessageID(t *testing.T) {
	first := newMessageID()
	second := newMessageID()
	assert.True(t, strings.HasPrefix(first, "msg_"))
	assert.NotEqual(t, first, second)
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinemde/polyglot/llmclient"
	"github.com/martinemde/polyglot/modelwire"
)

func newTestClient(t *testing.T, baseURL string) *llmclient.Client {
	t.Helper()
	adapter := modelwire.NewResponsesAdapter(
		modelwire.Capabilities{
			MaxTokensField:       "max_output_tokens",
			Temperature:          modelwire.TemperatureFixedOne,
			StatefulContinuation: true,
		},
		modelwire.Profile{Model: "gpt-5.2", BaseURL: baseURL},
	)
	client, err := llmclient.New(adapter, llmclient.WithAPIKey("test-key"))
	require.NoError(t, err)
	return client
}

func TestStreamCompletionPrintsResponseID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range []string{
			`data: {"type":"response.created","response":{"id":"resp_42"}}`,
			`data: {"type":"response.output_text.delta","delta":"Hel"}`,
			`data: {"type":"response.output_text.delta","delta":"lo"}`,
			`data: {"type":"response.completed","response":{"id":"resp_42","usage":{"input_tokens":3,"output_tokens":2,"total_tokens":5}}}`,
		} {
			fmt.Fprintf(w, "%s\n", line)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var stdout, stderr bytes.Buffer
	req := modelwire.Request{Messages: []modelwire.Message{modelwire.UserMessage("Hello")}}
	err := streamCompletion(context.Background(), client, req, &stdout, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "Hello\n", stdout.String())
	assert.Contains(t, stderr.String(), "[response id] resp_42")
}

func TestBufferedCompletionPrintsResponseID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "resp_77",
			"output": [{"type":"message","content":[{"type":"output_text","text":"Done."}]}],
			"usage": {"input_tokens":3,"output_tokens":1,"total_tokens":4}
		}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var stdout, stderr bytes.Buffer
	req := modelwire.Request{Messages: []modelwire.Message{modelwire.UserMessage("Hello")}}
	err := bufferedCompletion(context.Background(), client, req, &stdout, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "Done.\n", stdout.String())
	assert.Contains(t, stderr.String(), "[response id] resp_77")
}

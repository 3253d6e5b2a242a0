package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinemde/polyglot/modelwire"
)

const sampleCatalogYAML = `
models:
  - model: my-gateway-model
    protocol: responses
    base_url: https://gateway.internal
    aliases: [gateway-latest]
    max_tokens_field: max_output_tokens
    temperature: fixed_one
    reasoning_effort: true
    verbosity: true
    parallel_tool_calls: true
    freeform_tools: true
    stateful_continuation: true
  - model: legacy-chat
    protocol: chat_completions
`

func TestParse(t *testing.T) {
	entries, err := Parse([]byte(sampleCatalogYAML))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	gateway := entries[0]
	assert.Equal(t, "my-gateway-model", gateway.Model)
	assert.Equal(t, ProtocolResponses, gateway.Protocol)
	assert.Equal(t, "https://gateway.internal", gateway.BaseURL)
	assert.Equal(t, []string{"gateway-latest"}, gateway.Aliases)
	assert.Equal(t, "max_output_tokens", gateway.Capabilities.MaxTokensField)
	assert.Equal(t, modelwire.TemperatureFixedOne, gateway.Capabilities.Temperature)
	assert.True(t, gateway.Capabilities.ReasoningEffort)
	assert.True(t, gateway.Capabilities.StatefulContinuation)

	legacy := entries[1]
	assert.Equal(t, ProtocolChatCompletions, legacy.Protocol)
	// Temperature defaults to free when omitted.
	assert.Equal(t, modelwire.TemperatureFree, legacy.Capabilities.Temperature)
	assert.False(t, legacy.Capabilities.ReasoningEffort)
}

func TestParseRejectsUnknownProtocol(t *testing.T) {
	_, err := Parse([]byte(`
models:
  - model: bad
    protocol: grpc
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `protocol "grpc"`)
}

func TestParseRejectsUnknownTemperatureMode(t *testing.T) {
	_, err := Parse([]byte(`
models:
  - model: bad
    protocol: responses
    temperature: lukewarm
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `temperature mode "lukewarm"`)
}

func TestParseRejectsEmptyModelName(t *testing.T) {
	_, err := Parse([]byte(`
models:
  - protocol: responses
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model name")
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("models: ["))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalogYAML), 0o644))

	entries, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog file")
}

func TestLoadMergesOverBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - model: gpt-4.1
    protocol: chat_completions
    base_url: http://localhost:11434
`), 0o644))

	entries, err := Load(path)
	require.NoError(t, err)

	merged := New().WithOverrides(entries)
	entry, err := merged.Lookup("gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", entry.BaseURL)
}

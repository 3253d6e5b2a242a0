package catalog

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinemde/polyglot/modelwire"
)

func TestLookupExact(t *testing.T) {
	entry, err := New().Lookup("gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", entry.Model)
	assert.Equal(t, ProtocolChatCompletions, entry.Protocol)
	assert.Equal(t, modelwire.TemperatureFree, entry.Capabilities.Temperature)
}

func TestLookupAlias(t *testing.T) {
	entry, err := New().Lookup("chatgpt-4o-latest")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", entry.Model)
}

func TestLookupDatedVariant(t *testing.T) {
	entry, err := New().Lookup("gpt-4o-2024-08-06")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", entry.Model)
}

func TestLookupExactBeatsPrefix(t *testing.T) {
	// "gpt-4.1-mini" has its own entry and must not resolve to "gpt-4.1".
	entry, err := New().Lookup("gpt-4.1-mini")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", entry.Model)
}

func TestLookupLongestPrefixWins(t *testing.T) {
	entry, err := New().Lookup("gpt-5.2-codex-2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, "gpt-5.2-codex", entry.Model)
}

func TestLookupUnknown(t *testing.T) {
	_, err := New().Lookup("claude-sonnet-4-5")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestModelsSorted(t *testing.T) {
	entries := New().Models()
	require.NotEmpty(t, entries)

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Model
	}
	assert.True(t, sort.StringsAreSorted(names))
}

func TestWithOverridesReplaces(t *testing.T) {
	base := New()
	overridden := base.WithOverrides([]Entry{{
		Model:    "gpt-4.1",
		Protocol: ProtocolResponses,
		Capabilities: modelwire.Capabilities{
			Temperature: modelwire.TemperatureFixedOne,
		},
	}})

	entry, err := overridden.Lookup("gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, ProtocolResponses, entry.Protocol)

	// The source catalog is unchanged.
	entry, err = base.Lookup("gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, ProtocolChatCompletions, entry.Protocol)
}

func TestWithOverridesAppends(t *testing.T) {
	overridden := New().WithOverrides([]Entry{{
		Model:    "local-llama",
		Protocol: ProtocolChatCompletions,
		BaseURL:  "http://localhost:8080",
	}})

	entry, err := overridden.Lookup("local-llama")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", entry.BaseURL)
}

func TestNewAdapterChat(t *testing.T) {
	adapter, err := New().NewAdapter("gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, "chat_completions", adapter.Name())
	assert.Equal(t, "gpt-4.1", adapter.Profile().Model)
	assert.Equal(t, "https://api.openai.com", adapter.Profile().BaseURL)
}

func TestNewAdapterResponses(t *testing.T) {
	adapter, err := New().NewAdapter("gpt-5.2")
	require.NoError(t, err)
	assert.Equal(t, "responses", adapter.Name())
	assert.True(t, adapter.Capabilities().ReasoningEffort)
	assert.Equal(t, modelwire.TemperatureFixedOne, adapter.Capabilities().Temperature)
}

func TestNewAdapterKeepsDatedModelName(t *testing.T) {
	adapter, err := New().NewAdapter("gpt-4o-2024-08-06")
	require.NoError(t, err)
	assert.Equal(t, "chat_completions", adapter.Name())
	assert.Equal(t, "gpt-4o-2024-08-06", adapter.Profile().Model)
}

func TestNewAdapterOptions(t *testing.T) {
	adapter, err := New().NewAdapter("gpt-5.2",
		WithBaseURL("https://proxy.example.com"),
		WithReasoningEffort(modelwire.EffortHigh),
		WithPreviousResponseID("resp_seed"),
	)
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example.com", adapter.Profile().BaseURL)
	assert.Equal(t, modelwire.EffortHigh, adapter.Profile().ReasoningEffort)
	assert.Equal(t, "resp_seed", adapter.Profile().PreviousResponseID)
}

func TestNewAdapterUnknownModel(t *testing.T) {
	_, err := New().NewAdapter("made-up-model")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

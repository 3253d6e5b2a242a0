// Package catalog maps model names to the wire protocol they speak and the
// capability descriptor that shapes requests for them. It also builds the
// matching protocol adapter, so callers go from a model name to a working
// adapter in one step.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/martinemde/polyglot/modelwire"
)

// ErrUnknownModel indicates the requested model has no catalog entry.
var ErrUnknownModel = errors.New("unknown model")

// Protocol names accepted in catalog entries.
const (
	ProtocolChatCompletions = "chat_completions"
	ProtocolResponses       = "responses"
)

const defaultBaseURL = "https://api.openai.com"

// Entry describes one known model: which protocol it speaks, where it lives,
// and what request shaping it supports.
type Entry struct {
	Model        string
	Protocol     string
	BaseURL      string
	Aliases      []string
	Capabilities modelwire.Capabilities
}

// builtin returns the built-in model table. Entries without a BaseURL use the
// default endpoint.
func builtin() []Entry {
	chatCaps := modelwire.Capabilities{
		MaxTokensField:    "max_tokens",
		Temperature:       modelwire.TemperatureFree,
		ParallelToolCalls: true,
	}
	reasonerCaps := modelwire.Capabilities{
		MaxTokensField:  "max_completion_tokens",
		Temperature:     modelwire.TemperatureRestricted,
		ReasoningEffort: true,
	}
	responsesCaps := modelwire.Capabilities{
		MaxTokensField:       "max_output_tokens",
		Temperature:          modelwire.TemperatureFixedOne,
		ReasoningEffort:      true,
		Verbosity:            true,
		ParallelToolCalls:    true,
		FreeformTools:        true,
		StatefulContinuation: true,
	}
	codexCaps := responsesCaps
	codexCaps.Verbosity = false

	return []Entry{
		{Model: "gpt-5.2", Protocol: ProtocolResponses, Aliases: []string{"gpt-5.2-latest"}, Capabilities: responsesCaps},
		{Model: "gpt-5.2-codex", Protocol: ProtocolResponses, Capabilities: codexCaps},
		{Model: "gpt-5.1", Protocol: ProtocolResponses, Capabilities: responsesCaps},
		{Model: "gpt-5", Protocol: ProtocolResponses, Capabilities: responsesCaps},
		{Model: "gpt-4.1", Protocol: ProtocolChatCompletions, Capabilities: chatCaps},
		{Model: "gpt-4.1-mini", Protocol: ProtocolChatCompletions, Capabilities: chatCaps},
		{Model: "gpt-4o", Protocol: ProtocolChatCompletions, Aliases: []string{"chatgpt-4o-latest"}, Capabilities: chatCaps},
		{Model: "gpt-4o-mini", Protocol: ProtocolChatCompletions, Capabilities: chatCaps},
		{Model: "o3", Protocol: ProtocolChatCompletions, Capabilities: reasonerCaps},
		{Model: "o3-mini", Protocol: ProtocolChatCompletions, Capabilities: reasonerCaps},
		{Model: "o4-mini", Protocol: ProtocolChatCompletions, Capabilities: reasonerCaps},
	}
}

// Catalog resolves model names to entries.
type Catalog struct {
	entries []Entry
}

// New returns a catalog holding the built-in model table.
func New() *Catalog {
	return &Catalog{entries: builtin()}
}

// WithOverrides returns a catalog where override entries replace built-ins
// with the same model name; new names are appended.
func (c *Catalog) WithOverrides(overrides []Entry) *Catalog {
	merged := make([]Entry, len(c.entries))
	copy(merged, c.entries)

	for _, override := range overrides {
		replaced := false
		for i, entry := range merged {
			if entry.Model == override.Model {
				merged[i] = override
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, override)
		}
	}
	return &Catalog{entries: merged}
}

// Lookup resolves a model name. Exact model names win, then aliases, then the
// longest family prefix, so a dated variant like "gpt-4o-2024-08-06" resolves
// to the "gpt-4o" entry.
func (c *Catalog) Lookup(model string) (Entry, error) {
	for _, entry := range c.entries {
		if entry.Model == model {
			return entry, nil
		}
	}

	for _, entry := range c.entries {
		for _, alias := range entry.Aliases {
			if alias == model {
				return entry, nil
			}
		}
	}

	best := -1
	for i, entry := range c.entries {
		if strings.HasPrefix(model, entry.Model+"-") {
			if best == -1 || len(entry.Model) > len(c.entries[best].Model) {
				best = i
			}
		}
	}
	if best >= 0 {
		return c.entries[best], nil
	}

	return Entry{}, fmt.Errorf("%w: %s", ErrUnknownModel, model)
}

// Models returns the catalog entries sorted by model name.
func (c *Catalog) Models() []Entry {
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Model < entries[j].Model
	})
	return entries
}

// AdapterOption adjusts the profile an adapter is built with.
type AdapterOption func(*modelwire.Profile)

// WithBaseURL overrides the entry's endpoint base URL.
func WithBaseURL(url string) AdapterOption {
	return func(p *modelwire.Profile) {
		if url != "" {
			p.BaseURL = url
		}
	}
}

// WithReasoningEffort sets the profile's default reasoning effort.
func WithReasoningEffort(effort modelwire.ReasoningEffort) AdapterOption {
	return func(p *modelwire.Profile) {
		p.ReasoningEffort = effort
	}
}

// WithPreviousResponseID seeds the profile's stateful continuation id.
func WithPreviousResponseID(id string) AdapterOption {
	return func(p *modelwire.Profile) {
		p.PreviousResponseID = id
	}
}

// NewAdapter resolves a model name and builds the matching protocol adapter.
// The profile keeps the caller's model name, so dated variants reach the wire
// unchanged.
func (c *Catalog) NewAdapter(model string, opts ...AdapterOption) (modelwire.Adapter, error) {
	entry, err := c.Lookup(model)
	if err != nil {
		return nil, err
	}

	profile := modelwire.Profile{
		Model:   model,
		BaseURL: entry.BaseURL,
	}
	if profile.BaseURL == "" {
		profile.BaseURL = defaultBaseURL
	}
	for _, opt := range opts {
		opt(&profile)
	}

	switch entry.Protocol {
	case ProtocolResponses:
		return modelwire.NewResponsesAdapter(entry.Capabilities, profile), nil
	case ProtocolChatCompletions:
		return modelwire.NewChatCompletionsAdapter(entry.Capabilities, profile), nil
	default:
		return nil, fmt.Errorf("model %s: unsupported protocol %q", model, entry.Protocol)
	}
}

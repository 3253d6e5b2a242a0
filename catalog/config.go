package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/martinemde/polyglot/modelwire"
)

// fileConfig is the YAML catalog override document.
type fileConfig struct {
	Models []modelConfig `yaml:"models"`
}

// modelConfig describes one model entry in YAML form. Capability fields
// default to off; temperature defaults to "free".
type modelConfig struct {
	Model                string   `yaml:"model"`
	Protocol             string   `yaml:"protocol"`
	BaseURL              string   `yaml:"base_url"`
	Aliases              []string `yaml:"aliases"`
	MaxTokensField       string   `yaml:"max_tokens_field"`
	Temperature          string   `yaml:"temperature"`
	ReasoningEffort      bool     `yaml:"reasoning_effort"`
	Verbosity            bool     `yaml:"verbosity"`
	ParallelToolCalls    bool     `yaml:"parallel_tool_calls"`
	FreeformTools        bool     `yaml:"freeform_tools"`
	StatefulContinuation bool     `yaml:"stateful_continuation"`
}

// Load reads a YAML catalog override file from disk and validates the result.
func Load(path string) ([]Entry, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %q: %w", absPath, err)
	}

	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %q: %w", absPath, err)
	}
	return entries, nil
}

// Parse decodes and validates YAML catalog override entries.
func Parse(data []byte) ([]Entry, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}

	entries := make([]Entry, 0, len(cfg.Models))
	for i, m := range cfg.Models {
		entry, err := m.toEntry()
		if err != nil {
			return nil, fmt.Errorf("models[%d]: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (m modelConfig) toEntry() (Entry, error) {
	if strings.TrimSpace(m.Model) == "" {
		return Entry{}, errors.New("model name must not be empty")
	}

	switch m.Protocol {
	case ProtocolChatCompletions, ProtocolResponses:
	default:
		return Entry{}, fmt.Errorf("model %s: protocol %q must be one of %q or %q",
			m.Model, m.Protocol, ProtocolChatCompletions, ProtocolResponses)
	}

	mode := modelwire.TemperatureMode(m.Temperature)
	switch mode {
	case "":
		mode = modelwire.TemperatureFree
	case modelwire.TemperatureFree, modelwire.TemperatureFixedOne, modelwire.TemperatureRestricted:
	default:
		return Entry{}, fmt.Errorf("model %s: unknown temperature mode %q", m.Model, m.Temperature)
	}

	for _, alias := range m.Aliases {
		if strings.TrimSpace(alias) == "" {
			return Entry{}, fmt.Errorf("model %s: alias must not be empty", m.Model)
		}
	}

	return Entry{
		Model:    m.Model,
		Protocol: m.Protocol,
		BaseURL:  m.BaseURL,
		Aliases:  m.Aliases,
		Capabilities: modelwire.Capabilities{
			MaxTokensField:       m.MaxTokensField,
			Temperature:          mode,
			ReasoningEffort:      m.ReasoningEffort,
			Verbosity:            m.Verbosity,
			ParallelToolCalls:    m.ParallelToolCalls,
			FreeformTools:        m.FreeformTools,
			StatefulContinuation: m.StatefulContinuation,
		},
	}, nil
}

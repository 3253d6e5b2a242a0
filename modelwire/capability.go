package modelwire

// TemperatureMode describes how a model constrains the sampling temperature.
type TemperatureMode string

const (
	// TemperatureFree passes the caller's temperature through, defaulting
	// to 0.7 when the caller supplied none.
	TemperatureFree TemperatureMode = "free"
	// TemperatureFixedOne is for models that only accept temperature 1.
	TemperatureFixedOne TemperatureMode = "fixed_one"
	// TemperatureRestricted clamps the resolved temperature to at most 1.
	TemperatureRestricted TemperatureMode = "restricted"
)

// Capabilities declares which request features a model accepts and how its
// wire fields are spelled. An adapter reads these when shaping a request and
// never mutates them.
type Capabilities struct {
	// MaxTokensField is the wire name of the completion token cap.
	// Empty means "max_tokens".
	MaxTokensField string

	Temperature TemperatureMode

	// ReasoningEffort gates the reasoning-effort request field.
	ReasoningEffort bool
	// Verbosity gates the output-verbosity request field.
	Verbosity bool
	// ParallelToolCalls advertises concurrent tool invocation support.
	ParallelToolCalls bool
	// FreeformTools allows tools without an input schema to be sent as
	// freeform (custom) tool descriptors.
	FreeformTools bool
	// StatefulContinuation gates server-side conversation continuation.
	StatefulContinuation bool
}

// Profile pins an adapter to one concrete model and endpoint, with
// session-level defaults an individual request may override.
type Profile struct {
	Model   string
	BaseURL string

	// ReasoningEffort is the active effort default for this session.
	ReasoningEffort ReasoningEffort
	// PreviousResponseID seeds stateful continuation when the request
	// carries none.
	PreviousResponseID string
}

package llmclient

import (
	"sync"
	"time"

	"github.com/martinemde/polyglot/modelwire"
)

// EventType represents the type of client lifecycle event.
type EventType string

const (
	// Buffered request lifecycle events
	EventRequestStarted   EventType = "request_started"
	EventRequestCompleted EventType = "request_completed"
	EventRequestFailed    EventType = "request_failed"

	// Streaming request lifecycle events
	EventStreamStarted   EventType = "stream_started"
	EventStreamCompleted EventType = "stream_completed"
)

// Event represents an observable client event with typed data.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// EventEmitter manages event listeners and dispatches events.
type EventEmitter struct {
	mu        sync.RWMutex
	listeners []func(Event)
}

// NewEventEmitter creates a new EventEmitter.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{
		listeners: make([]func(Event), 0),
	}
}

// On registers a listener function to receive events.
// Listeners are called synchronously in registration order.
func (e *EventEmitter) On(listener func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, listener)
}

// Emit dispatches an event to all registered listeners.
// Listeners are called synchronously in registration order.
func (e *EventEmitter) Emit(event Event) {
	e.mu.RLock()
	listeners := make([]func(Event), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// ListenerCount returns the number of registered listeners.
func (e *EventEmitter) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

// Helper constructors for creating typed events

// RequestStartedEvent creates a request_started event.
func RequestStartedEvent(model, protocol string) Event {
	return Event{
		Type:      EventRequestStarted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"model":    model,
			"protocol": protocol,
		},
	}
}

// RequestCompletedEvent creates a request_completed event.
func RequestCompletedEvent(model, protocol string, duration time.Duration, usage modelwire.TokenUsage, rateLimit *RateLimitInfo) Event {
	data := map[string]any{
		"model":         model,
		"protocol":      protocol,
		"duration_ms":   duration.Milliseconds(),
		"input_tokens":  usage.Input,
		"output_tokens": usage.Output,
		"total_tokens":  usage.Total,
	}
	if rateLimit != nil && rateLimit.RequestsRemaining != nil {
		data["requests_remaining"] = *rateLimit.RequestsRemaining
	}
	return Event{
		Type:      EventRequestCompleted,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// RequestFailedEvent creates a request_failed event.
func RequestFailedEvent(model, protocol, err string, duration time.Duration) Event {
	return Event{
		Type:      EventRequestFailed,
		Timestamp: time.Now(),
		Data: map[string]any{
			"model":       model,
			"protocol":    protocol,
			"error":       err,
			"duration_ms": duration.Milliseconds(),
		},
	}
}

// StreamStartedEvent creates a stream_started event.
func StreamStartedEvent(model, protocol string) Event {
	return Event{
		Type:      EventStreamStarted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"model":    model,
			"protocol": protocol,
		},
	}
}

// StreamCompletedEvent creates a stream_completed event.
func StreamCompletedEvent(model, protocol string, duration time.Duration, usage modelwire.TokenUsage) Event {
	return Event{
		Type:      EventStreamCompleted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"model":         model,
			"protocol":      protocol,
			"duration_ms":   duration.Milliseconds(),
			"input_tokens":  usage.Input,
			"output_tokens": usage.Output,
			"total_tokens":  usage.Total,
		},
	}
}

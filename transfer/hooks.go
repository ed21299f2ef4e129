package transfer

import (
	"sync"
)

// HookEvent represents a named lifecycle event that callers can subscribe to.
type HookEvent string

// Hook event constants represent the lifecycle events emitted during a
// transfer attempt.
const (
	HookStepChanged HookEvent = "transfer:step_changed"
	HookSucceeded   HookEvent = "transfer:succeeded"
	HookFailed      HookEvent = "transfer:failed"
)

// HookRegistry manages lifecycle event handlers for transfer attempts.
// It implements the observer pattern, allowing callers to register
// callbacks that execute sequentially when attempt lifecycle events occur.
//
// Handlers are stored per event and execute in registration order.
// The registry is thread-safe for concurrent registration and triggering.
type HookRegistry struct {
	handlers map[HookEvent][]func(*Attempt)
	mu       sync.RWMutex
}

// NewHookRegistry creates a new lifecycle hook registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		handlers: make(map[HookEvent][]func(*Attempt)),
	}
}

// On registers a handler function for a specific lifecycle event.
// Multiple handlers can be registered for the same event and will execute
// sequentially in registration order when the event is triggered.
//
// The handler receives a pointer to the Attempt that triggered the event.
// Handlers should be quick, non-blocking operations. If a handler panics,
// the panic will propagate and prevent subsequent handlers from executing.
func (r *HookRegistry) On(event HookEvent, handler func(*Attempt)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[event] = append(r.handlers[event], handler)
}

// Trigger executes all registered handlers for a specific lifecycle event,
// passing the attempt that triggered the event. Handlers execute
// sequentially in registration order.
func (r *HookRegistry) Trigger(event HookEvent, attempt *Attempt) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers, ok := r.handlers[event]
	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(attempt)
	}
}

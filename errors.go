package flashevents

import (
	"errors"

	"github.com/Anton-Grebenkin/FlashEvents/dispatch"
)

// Sentinel errors for the event bus.
var (
	// ErrBusNotRunning is returned when Publish is called before Start
	// or after Stop.
	ErrBusNotRunning = errors.New("event bus is not running")

	// ErrBusAlreadyRunning is returned when Start is called twice.
	ErrBusAlreadyRunning = errors.New("event bus is already running")

	// ErrBusStopped is returned when Start is called on a stopped bus.
	// The lifecycle is one-shot; create a new bus instead.
	ErrBusStopped = errors.New("event bus was already stopped")

	// ErrNilEvent is returned when a nil event is published.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrNilEventType is returned when a handler is registered with a
	// nil event type.
	ErrNilEventType = errors.New("event type cannot be nil")

	// ErrNilHandlerRef is returned when a handler is registered with a
	// nil handler reference.
	ErrNilHandlerRef = errors.New("handler reference cannot be nil")

	// ErrInvalidMode is returned when a handler is registered with an
	// unknown execution mode.
	ErrInvalidMode = errors.New("invalid execution mode")

	// ErrInvalidEvent is returned by a typed handler that received an
	// event of a different type than it was declared for.
	ErrInvalidEvent = errors.New("event type mismatch")

	// ErrNoProvider is returned by the ProviderFactory when a handler
	// reference has no provider and is not itself a Handler.
	ErrNoProvider = errors.New("no provider for handler reference")
)

// Re-exported dispatch sentinels, so callers matching construction
// failures do not need to import the subpackage.
var (
	// ErrScopeCreate marks a failure to create an isolated scope.
	ErrScopeCreate = dispatch.ErrScopeCreate

	// ErrScopeResolve marks a failure to resolve a handler from a scope.
	ErrScopeResolve = dispatch.ErrScopeResolve

	// ErrHandlerPanic is matched by errors.Is for any PanicError.
	ErrHandlerPanic = dispatch.ErrHandlerPanic
)

package dispatch

import "context"

// Mode selects the execution strategy for a registered handler.
type Mode int

const (
	// ModeOrdered runs the handler sequentially in registration order,
	// before any concurrent handler starts. The first failure in the
	// ordered group stops the group.
	ModeOrdered Mode = iota

	// ModeConcurrentShared runs the handler concurrently with the other
	// concurrent handlers, resolved from the ambient scope.
	ModeConcurrentShared

	// ModeConcurrentIsolated runs the handler concurrently, resolved from
	// a freshly created scope that is released after the invocation.
	ModeConcurrentIsolated

	// ModeQueued hands the event to a background consumer. Failures never
	// reach the publisher.
	ModeQueued
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeOrdered:
		return "ordered"
	case ModeConcurrentShared:
		return "concurrent-shared"
	case ModeConcurrentIsolated:
		return "concurrent-isolated"
	case ModeQueued:
		return "queued"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	return m >= ModeOrdered && m <= ModeQueued
}

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes an event. The event parameter is type-erased;
	// handlers receive the exact value that was published.
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Descriptor identifies one registered handler for one event type.
// Descriptors are immutable once created.
type Descriptor struct {
	// ID uniquely identifies this registration. It appears in structured
	// logs and in the errors wrapping a failed invocation.
	ID string

	// Ref is the opaque handler identity handed to the ScopeFactory for
	// resolution. The dispatcher never inspects it.
	Ref any

	// Mode is the handler's execution strategy.
	Mode Mode
}

// ScopeFactory is the host's resource-resolution capability. The dispatcher
// resolves ordered and concurrent-shared handlers from the ambient scope via
// Resolve, and gives each concurrent-isolated or queued handler its own
// scope from CreateScope.
type ScopeFactory interface {
	// Resolve returns the handler for ref from the ambient scope.
	// The ambient scope must tolerate concurrent resolution.
	Resolve(ref any) (Handler, error)

	// CreateScope creates a new isolated resolution scope.
	CreateScope() (Scope, error)
}

// Scope is an isolated resolution scope. It is owned by exactly one handler
// invocation and must be released when that invocation finishes.
type Scope interface {
	// Resolve returns the handler for ref from this scope.
	Resolve(ref any) (Handler, error)

	// Release frees the scope's resources. It is called on both normal
	// and failing exit paths.
	Release()
}

// Sink receives events whose type has queued handlers. Enqueue returns once
// the event is appended to the sink's in-memory queue, not after the queued
// handlers run.
type Sink interface {
	Enqueue(ctx context.Context, event any, descriptors []Descriptor) error
}

package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the dispatch package.
var (
	// ErrScopeCreate is returned when the scope factory cannot create an
	// isolated scope. This is a construction failure: it aborts the
	// publish call and is never part of an AggregateError.
	ErrScopeCreate = errors.New("cannot create handler scope")

	// ErrScopeResolve is returned when a handler cannot be resolved from
	// its scope. Like ErrScopeCreate, it aborts the publish call.
	ErrScopeResolve = errors.New("cannot resolve handler")

	// ErrHandlerPanic is matched by errors.Is for any PanicError.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError wraps a failure returned by a single handler invocation,
// including invocations that failed by observing a cancelled context.
type HandlerError struct {
	// DescriptorID identifies the registration whose handler failed.
	DescriptorID string

	// EventType is the string form of the event's runtime type.
	EventType string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "handler " + e.DescriptorID + " failed for event " + e.EventType + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered from a handler invocation.
type PanicError struct {
	// DescriptorID identifies the registration whose handler panicked.
	DescriptorID string

	// EventType is the string form of the event's runtime type.
	EventType string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace captured at the point of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler %s panicked for event %s: %v", e.DescriptorID, e.EventType, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

// AggregateError collects every failure raised by the synchronous handler
// groups of one publish call. If the ordered group short-circuited it holds
// exactly that one failure; otherwise it holds one entry per failed
// concurrent handler.
type AggregateError struct {
	// Errors are the underlying failures in the order described by the
	// dispatcher: the ordered failure first (if any), then concurrent
	// failures.
	Errors []error
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return "1 handler failure: " + e.Errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d handler failures: ", len(e.Errors))
	for i, err := range e.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap returns the contained failures, enabling errors.Is and errors.As
// to inspect every member.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

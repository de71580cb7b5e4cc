package flashevents

import (
	"context"
	"fmt"
	"reflect"

	"github.com/Anton-Grebenkin/FlashEvents/dispatch"
)

// ExecutionMode selects the execution strategy a handler is registered
// with. Exactly one mode is declared per registration.
type ExecutionMode = dispatch.Mode

// The four handler capabilities. See the package documentation for the
// semantics of each.
const (
	Ordered            = dispatch.ModeOrdered
	ConcurrentShared   = dispatch.ModeConcurrentShared
	ConcurrentIsolated = dispatch.ModeConcurrentIsolated
	Queued             = dispatch.ModeQueued
)

// Handler is the contract implemented by event handlers.
type Handler = dispatch.Handler

// HandlerFunc is a function adapter for Handler.
type HandlerFunc = dispatch.HandlerFunc

// ScopeFactory is the host's resource-resolution capability. See the
// dispatch package for the contract details.
type ScopeFactory = dispatch.ScopeFactory

// Scope is an isolated resolution scope owned by one handler invocation.
type Scope = dispatch.Scope

// AggregateError is the collected set of failures from one publish call's
// synchronous groups.
type AggregateError = dispatch.AggregateError

// HandlerError wraps a single handler's failure inside an AggregateError.
type HandlerError = dispatch.HandlerError

// PanicError wraps a panic recovered from a handler.
type PanicError = dispatch.PanicError

// TypeOf returns the reflect.Type for T, for use as a registration key.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// TypedHandler is a type-safe handler contract for events of type T.
type TypedHandler[T any] interface {
	Handle(ctx context.Context, event T) error
}

// TypedHandlerFunc is a function adapter for TypedHandler.
type TypedHandlerFunc[T any] func(ctx context.Context, event T) error

// Handle implements the TypedHandler interface.
func (f TypedHandlerFunc[T]) Handle(ctx context.Context, event T) error {
	return f(ctx, event)
}

// AsHandler converts a TypedHandler to a type-erased Handler. Routing is by
// exact runtime type, so the assertion only fails when the handler was
// registered for a different type than it handles; that mistake surfaces as
// an error rather than a silent skip.
func AsHandler[T any](h TypedHandler[T]) Handler {
	return HandlerFunc(func(ctx context.Context, event any) error {
		e, ok := event.(T)
		if !ok {
			return fmt.Errorf("%w: got %T, handler expects %s", ErrInvalidEvent, event, TypeOf[T]().String())
		}
		return h.Handle(ctx, e)
	})
}

// AsHandlerFunc converts a TypedHandlerFunc to a type-erased Handler.
func AsHandlerFunc[T any](fn TypedHandlerFunc[T]) Handler {
	return AsHandler[T](fn)
}

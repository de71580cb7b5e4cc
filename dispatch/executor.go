package dispatch

import (
	"context"
	"runtime/debug"
	"time"
)

// Executor runs event handlers with panic recovery and timing.
// The zero value is ready to use.
type Executor struct{}

// NewExecutor creates a new executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Result represents the outcome of one handler invocation.
type Result struct {
	// Success is true if the handler completed without error or panic.
	Success bool

	// Error is the error returned by the handler, or the context error
	// when Skipped is true.
	Error error

	// Panicked is true if the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the handler took to execute.
	Duration time.Duration

	// Skipped is true if the handler body never ran because the context
	// was already cancelled.
	Skipped bool
}

// IsSuccess returns true if the result indicates successful execution.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// Failure converts the result into the error reported for descriptor d, or
// nil on success. Panics become *PanicError; handler errors and observed
// cancellations become *HandlerError.
func (r Result) Failure(d Descriptor, eventType string) error {
	switch {
	case r.Panicked:
		return &PanicError{
			DescriptorID: d.ID,
			EventType:    eventType,
			Value:        r.PanicValue,
			Stack:        r.PanicStack,
		}
	case r.Error != nil:
		return &HandlerError{
			DescriptorID: d.ID,
			EventType:    eventType,
			Err:          r.Error,
		}
	default:
		return nil
	}
}

// Execute runs a handler with the given event and returns the result.
// A context that is already cancelled fails the invocation immediately
// without running the handler body; the handler never silently no-ops.
func (e *Executor) Execute(ctx context.Context, event any, handler Handler) (result Result) {
	select {
	case <-ctx.Done():
		return Result{
			Success: false,
			Error:   ctx.Err(),
			Skipped: true,
		}
	default:
	}

	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = debug.Stack()
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		result.Success = false
		result.Error = err
	} else {
		result.Success = true
	}

	return result
}

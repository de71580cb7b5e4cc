package dispatch

import (
	"context"
	"fmt"
	"reflect"

	"github.com/sourcegraph/conc"
)

// Dispatcher executes the handlers registered for a single event type.
// It owns the four capability groups, classified once at construction,
// and is immutable afterward. Dispatchers are created by the Cache and
// never shared across event types.
type Dispatcher struct {
	eventType reflect.Type
	scopes    ScopeFactory
	sink      Sink
	exec      *Executor

	ordered  []Descriptor
	shared   []Descriptor
	isolated []Descriptor
	queued   []Descriptor
}

// NewDispatcher builds a dispatcher for eventType by classifying descs into
// capability groups. Registration order is preserved within each group.
// The sink may be nil only when no descriptor is ModeQueued.
func NewDispatcher(eventType reflect.Type, descs []Descriptor, scopes ScopeFactory, sink Sink) *Dispatcher {
	d := &Dispatcher{
		eventType: eventType,
		scopes:    scopes,
		sink:      sink,
		exec:      NewExecutor(),
	}

	for _, desc := range descs {
		switch desc.Mode {
		case ModeOrdered:
			d.ordered = append(d.ordered, desc)
		case ModeConcurrentShared:
			d.shared = append(d.shared, desc)
		case ModeConcurrentIsolated:
			d.isolated = append(d.isolated, desc)
		case ModeQueued:
			d.queued = append(d.queued, desc)
		}
	}

	return d
}

// EventType returns the event type this dispatcher was built for.
func (d *Dispatcher) EventType() reflect.Type {
	return d.eventType
}

// HandlerCount returns the total number of classified descriptors.
func (d *Dispatcher) HandlerCount() int {
	return len(d.ordered) + len(d.shared) + len(d.isolated) + len(d.queued)
}

// Invoke runs the dispatcher's groups for one event.
//
// The ordered group runs first, sequentially; its first failure stops the
// group and is returned alone, without starting any other group. If the
// ordered group is clean, the concurrent-shared and concurrent-isolated
// groups start together and are all waited for regardless of individual
// failures. A non-empty queued group then has the event enqueued to the
// sink; Invoke waits only for the enqueue. All synchronous failures are
// returned as one *AggregateError. Construction failures (scope creation,
// handler resolution, enqueue on a stopped sink) are returned directly and
// abort the remaining steps.
func (d *Dispatcher) Invoke(ctx context.Context, event any) error {
	var failures []error

	for _, desc := range d.ordered {
		h, err := d.scopes.Resolve(desc.Ref)
		if err != nil {
			return fmt.Errorf("%w: handler %s for event %s: %w", ErrScopeResolve, desc.ID, d.eventType.String(), err)
		}

		res := d.exec.Execute(ctx, event, h)
		if !res.IsSuccess() {
			// Short-circuit: later ordered handlers and both concurrent
			// groups never start for this call.
			return &AggregateError{Errors: []error{res.Failure(desc, d.eventType.String())}}
		}
	}

	if n := len(d.shared) + len(d.isolated); n > 0 {
		results := make([]error, n)
		fatals := make([]error, n)

		var wg conc.WaitGroup
		slot := 0
		for _, desc := range d.shared {
			idx := slot
			slot++
			wg.Go(func() {
				h, err := d.scopes.Resolve(desc.Ref)
				if err != nil {
					fatals[idx] = fmt.Errorf("%w: handler %s for event %s: %w", ErrScopeResolve, desc.ID, d.eventType.String(), err)
					return
				}
				results[idx] = d.exec.Execute(ctx, event, h).Failure(desc, d.eventType.String())
			})
		}
		for _, desc := range d.isolated {
			idx := slot
			slot++
			wg.Go(func() {
				results[idx], fatals[idx] = d.runIsolated(ctx, event, desc)
			})
		}
		wg.Wait()

		// A construction failure aborts the call, but only after every
		// started sibling has finished.
		for _, err := range fatals {
			if err != nil {
				return err
			}
		}
		for _, err := range results {
			if err != nil {
				failures = append(failures, err)
			}
		}
	}

	if len(d.queued) > 0 {
		if err := d.sink.Enqueue(ctx, event, d.queued); err != nil {
			return err
		}
	}

	if len(failures) > 0 {
		return &AggregateError{Errors: failures}
	}
	return nil
}

// runIsolated executes one handler inside its own scope. The scope is
// released on every exit path. The second return value is a construction
// failure; the first is the handler failure, if any.
func (d *Dispatcher) runIsolated(ctx context.Context, event any, desc Descriptor) (failure, fatal error) {
	scope, err := d.scopes.CreateScope()
	if err != nil {
		return nil, fmt.Errorf("%w: handler %s for event %s: %w", ErrScopeCreate, desc.ID, d.eventType.String(), err)
	}
	defer scope.Release()

	h, err := scope.Resolve(desc.Ref)
	if err != nil {
		return nil, fmt.Errorf("%w: handler %s for event %s: %w", ErrScopeResolve, desc.ID, d.eventType.String(), err)
	}

	return d.exec.Execute(ctx, event, h).Failure(desc, d.eventType.String()), nil
}

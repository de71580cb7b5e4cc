package flashevents

import (
	"context"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Anton-Grebenkin/FlashEvents/dispatch"
	"github.com/Anton-Grebenkin/FlashEvents/queue"
)

// Bus is the event bus facade: the sole runtime entry point is Publish.
// Bus is safe for concurrent publishing of the same or different event
// types; registration, by contract, happens before publishing begins.
type Bus struct {
	registry *Registry
	cache    *dispatch.Cache
	queue    *queue.Processor
	scopes   ScopeFactory
	logger   *slog.Logger

	running atomic.Bool
	stopped atomic.Bool

	published atomic.Uint64
	failed    atomic.Uint64
	cancelled atomic.Uint64
}

// New creates a bus with the given options. Without WithScopeFactory the
// bus uses a ProviderFactory, so plain Handler values can be registered
// directly.
func New(opts ...Option) *Bus {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Bus{
		registry: NewRegistry(),
		cache:    dispatch.NewCache(),
		queue:    queue.New(cfg.scopes, queue.WithLogger(cfg.logger)),
		scopes:   cfg.scopes,
		logger:   cfg.logger,
	}
}

// Start makes the bus accept publishes and starts the queue processor. The
// lifecycle is one-shot: Start after Stop returns ErrBusStopped.
func (b *Bus) Start() error {
	if b.running.Load() {
		return ErrBusAlreadyRunning
	}
	if b.stopped.Load() {
		return ErrBusStopped
	}
	if err := b.queue.Start(); err != nil {
		return err
	}
	b.running.Store(true)
	return nil
}

// Stop shuts the bus down gracefully. In-flight synchronous dispatches are
// unaffected; the queue processor is stopped cooperatively, bounded by ctx.
// When a call returns the context error before queued consumers exited, a
// repeated Stop waits for them again. Stop on a bus that was never started
// returns ErrBusNotRunning.
func (b *Bus) Stop(ctx context.Context) error {
	if b.running.Swap(false) {
		b.stopped.Store(true)
	}
	if !b.stopped.Load() {
		return ErrBusNotRunning
	}
	return b.queue.Stop(ctx)
}

// IsRunning returns true if the bus accepts publishes.
func (b *Bus) IsRunning() bool {
	return b.running.Load()
}

// Register appends a handler registration for eventType. The ref is the
// opaque identity later handed to the scope factory; with the default
// ProviderFactory it may simply be a Handler value. Exactly one execution
// mode is declared per registration.
//
// Registration is a startup-time operation: registering for a type after
// that type's first publish is not guaranteed to be observed, and
// registering concurrently with publishing is undefined behavior.
func (b *Bus) Register(eventType reflect.Type, ref any, mode ExecutionMode) error {
	if eventType == nil {
		return ErrNilEventType
	}
	if ref == nil {
		return ErrNilHandlerRef
	}
	if !mode.Valid() {
		return ErrInvalidMode
	}

	desc := dispatch.Descriptor{
		ID:   uuid.NewString(),
		Ref:  ref,
		Mode: mode,
	}
	b.registry.Add(eventType, desc)

	b.logger.Debug("handler registered",
		"event_type", eventType.String(),
		"handler_id", desc.ID,
		"mode", mode.String(),
	)
	return nil
}

// RegisterFor is generic sugar over Bus.Register keyed by TypeOf[T]().
func RegisterFor[T any](b *Bus, ref any, mode ExecutionMode) error {
	return b.Register(TypeOf[T](), ref, mode)
}

// Publish routes event to every handler registered for its runtime type.
//
// It returns nil on success - including for a type with no registered
// handlers - the context error when ctx was cancelled before dispatch, an
// *AggregateError enumerating the failures of the synchronous groups, or
// the construction failure that aborted the call. The call returns once the
// ordered and concurrent groups have finished and the queued group, if any,
// has been enqueued; queued processing is never waited for.
func (b *Bus) Publish(ctx context.Context, event any) error {
	if event == nil {
		return ErrNilEvent
	}
	if !b.running.Load() {
		return ErrBusNotRunning
	}
	if err := ctx.Err(); err != nil {
		b.cancelled.Add(1)
		return err
	}

	eventType := reflect.TypeOf(event)
	d, err := b.cache.GetOrCreate(eventType, b.buildDispatcher)
	if err != nil {
		return err
	}

	b.published.Add(1)
	b.logger.Debug("dispatching event", "event_type", eventType.String(), "handlers", d.HandlerCount())

	start := time.Now()
	err = d.Invoke(ctx, event)
	duration := time.Since(start)

	if err != nil {
		b.failed.Add(1)
		b.logger.Error("dispatch failed", "event_type", eventType.String(), "error", err, "duration", duration)
		return err
	}

	b.logger.Debug("dispatch complete", "event_type", eventType.String(), "duration", duration)
	return nil
}

// buildDispatcher is the cache's construction callback. It runs at most
// once per event type.
func (b *Bus) buildDispatcher(eventType reflect.Type) (*dispatch.Dispatcher, error) {
	descs := b.registry.Lookup(eventType)
	return dispatch.NewDispatcher(eventType, descs, b.scopes, b.queue), nil
}

// Stats contains event bus statistics.
type Stats struct {
	// Published is the number of publish calls that reached dispatch.
	Published uint64

	// Failed is the number of publish calls that returned an error.
	Failed uint64

	// Cancelled is the number of publish calls rejected because their
	// context was already cancelled.
	Cancelled uint64

	// Dispatchers is the number of event types with a built dispatcher.
	Dispatchers int

	// Queue holds the queue processor's statistics.
	Queue queue.Stats
}

// Stats returns a snapshot of bus statistics.
func (b *Bus) Stats() Stats {
	return Stats{
		Published:   b.published.Load(),
		Failed:      b.failed.Load(),
		Cancelled:   b.cancelled.Load(),
		Dispatchers: b.cache.Len(),
		Queue:       b.queue.Stats(),
	}
}

// Package flashevents provides an in-process publish/subscribe event bus.
//
// A process publishes a typed event once and the bus routes it to every
// handler registered for that exact runtime type. Each handler declares one
// of four execution capabilities:
//
//   - Ordered: runs sequentially in registration order before anything
//     else; the first failure stops the group and the publish call.
//   - ConcurrentShared: runs concurrently with the other concurrent
//     handlers, resolved from the shared ambient scope.
//   - ConcurrentIsolated: runs concurrently, each invocation inside a
//     freshly created scope released right after it.
//   - Queued: runs on a background consumer, decoupled from the publish
//     call; failures are logged and swallowed.
//
// # Architecture
//
//	                 ┌────────────────────────────────────┐
//	  Publish ──────▶│               Bus                   │
//	                 │  - registry (type → descriptors)    │
//	                 │  - dispatcher cache (one per type)  │
//	                 └────────────────────────────────────┘
//	                        │                      │
//	                        ▼                      ▼
//	            ┌───────────────────┐   ┌───────────────────┐
//	            │    Dispatcher     │   │  Queue Processor  │
//	            │  ordered, then    │──▶│  FIFO per type,   │
//	            │  concurrent groups│   │  one consumer each│
//	            └───────────────────┘   └───────────────────┘
//
// The dispatcher for a type is built on its first publish and memoized for
// the life of the bus; racing first publishes observe the same singleton.
//
// # Basic Usage
//
//	bus := flashevents.New()
//	if err := bus.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer bus.Stop(context.Background())
//
//	// Register handlers during startup, before the first publish.
//	bus.Register(flashevents.TypeOf[OrderPlaced](), auditHandler, flashevents.Ordered)
//	bus.Register(flashevents.TypeOf[OrderPlaced](), mailHandler, flashevents.Queued)
//
//	if err := bus.Publish(ctx, OrderPlaced{ID: "ord-42"}); err != nil {
//	    var agg *flashevents.AggregateError
//	    if errors.As(err, &agg) {
//	        // Enumerate every synchronous handler failure.
//	    }
//	}
//
// # Routing
//
// Routing keys on the event's concrete runtime type, nothing else. Register
// for the exact type you publish: an event published as *T is routed to
// handlers registered for TypeOf[*T](), not TypeOf[T]().
//
// # Failure Model
//
// A publish call either succeeds, returns the context error when the
// context was cancelled before dispatch, or fails with one *AggregateError
// listing every failure from the synchronous groups - handler errors,
// observed cancellations, and recovered panics. Queued handler failures
// never surface to the publisher. Failures of the bus itself (scope
// creation, handler resolution) abort the call directly and are never part
// of an aggregate.
//
// # Scopes
//
// Handler resolution goes through a ScopeFactory. Ordered and
// ConcurrentShared handlers resolve from the ambient scope, which must
// tolerate concurrent use; ConcurrentIsolated and Queued handlers each get
// an exclusively owned scope, released on every exit path. The default
// ProviderFactory resolves any registered Handler value directly and builds
// per-scope instances from provider functions, so the bus is usable without
// a host container.
//
// # Registration Window
//
// Registration is a startup-time operation. Registering a handler for a
// type after that type's first publish is not guaranteed to be observed;
// registering concurrently with publishing is undefined behavior.
//
// # Subpackages
//
//   - dispatch: per-type dispatcher, capability classification, executor,
//     dispatcher cache.
//   - queue: per-type background pipelines backing the Queued capability.
package flashevents

// Package dispatch implements per-event-type dispatching for the event bus.
//
// A Dispatcher is built once per event type by classifying the type's
// registered handler descriptors into four capability groups:
//
//   - Ordered: handlers run one at a time in registration order; the first
//     failure stops the group.
//   - ConcurrentShared: handlers run concurrently, all resolved from the
//     ambient scope.
//   - ConcurrentIsolated: handlers run concurrently, each in a freshly
//     created scope that is released after the single invocation.
//   - Queued: handlers run on a background consumer; the dispatcher only
//     hands the event to a Sink and never waits for processing.
//
// Dispatchers are immutable after construction and memoized in a Cache,
// which guarantees at most one classification pass per event type even when
// the first publishes for a type race.
//
// # Execution
//
// Handler invocations go through an Executor, which recovers panics,
// captures timing, and refuses to run a handler whose context is already
// cancelled. Every failure from the synchronous groups - handler errors,
// observed cancellations, and panics - is collected into one
// AggregateError. Failures to create a scope or resolve a handler are
// construction failures: they abort the publish call directly and are never
// mixed into the aggregate.
package dispatch

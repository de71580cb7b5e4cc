// Package queue implements the background pipeline behind the queued
// handler capability.
//
// The Processor keeps one unbounded FIFO queue and one consumer goroutine
// per event type, both created lazily on the first enqueue for that type.
// Enqueue returns as soon as the event is appended, never blocking the
// publisher on queued processing.
//
// Each consumer drains its queue one event at a time: it runs every queued
// handler for the event concurrently, each handler inside its own
// released-after-use scope, and waits for all of them before taking the
// next event. Delivery is FIFO per type; there is no ordering across types.
//
// Queued handler failures are reported to the processor's logger and
// swallowed - they never reach the publisher and never stop the consumer.
//
// Shutdown is cooperative and idempotent: Stop closes the queues to further
// writes, cancels the consumers, and waits for their current iteration
// within the caller's context. The consumers' cancellation scope belongs to
// the processor, not to any publisher's context.
package queue

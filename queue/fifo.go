package queue

import "sync"

// fifo is an unbounded in-memory FIFO queue. Push never blocks; a consumer
// waits on the wake channel when the queue is empty. fifo is safe for
// multiple producers and a single consumer.
type fifo struct {
	mu     sync.Mutex
	items  []any
	closed bool

	// wake carries at most one pending signal. The consumer drains the
	// queue completely before waiting again, so a single buffered slot
	// cannot lose a wakeup.
	wake chan struct{}
}

func newFIFO() *fifo {
	return &fifo{
		wake: make(chan struct{}, 1),
	}
}

// push appends item and signals the consumer. It reports false if the
// queue has been closed to writes.
func (q *fifo) push(item any) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// pop removes and returns the oldest item. It reports false when the queue
// is currently empty.
func (q *fifo) pop() (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	// Clear the slot so the backing array does not pin the event.
	q.items[0] = nil
	q.items = q.items[1:]
	return item, true
}

// close rejects further pushes. Items already queued stay in place.
func (q *fifo) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// len returns the number of items currently queued.
func (q *fifo) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

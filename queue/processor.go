package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"

	"github.com/Anton-Grebenkin/FlashEvents/dispatch"
)

// Sentinel errors for the queue package.
var (
	// ErrAlreadyRunning is returned when Start is called on a running
	// processor.
	ErrAlreadyRunning = errors.New("queue processor is already running")

	// ErrNotRunning is returned when Enqueue is called before Start or
	// after Stop.
	ErrNotRunning = errors.New("queue processor is not running")

	// ErrAlreadyStopped is returned when Start is called on a stopped
	// processor. The lifecycle is one-shot; create a new processor
	// instead.
	ErrAlreadyStopped = errors.New("queue processor was already stopped")
)

// entry is the per-event-type pipeline: one queue, one consumer, and the
// queued descriptors fixed at first use.
type entry struct {
	name        string
	buf         *fifo
	descriptors []dispatch.Descriptor
}

// Processor fans queued events out to their handlers on background
// consumers, one consumer per event type. Create it with New, then Start
// it before the first enqueue.
type Processor struct {
	scopes dispatch.ScopeFactory
	logger *slog.Logger
	exec   *dispatch.Executor

	mu      sync.RWMutex
	entries map[reflect.Type]*entry

	running  atomic.Bool
	stopped  atomic.Bool
	baseCtx  context.Context
	cancel   context.CancelFunc
	wg       conc.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
	dropOnce sync.Once

	enqueued  atomic.Uint64
	processed atomic.Uint64
	swallowed atomic.Uint64
	dropped   atomic.Uint64
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger that receives swallowed handler failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a processor that resolves queued handlers through scopes.
func New(scopes dispatch.ScopeFactory, opts ...Option) *Processor {
	p := &Processor{
		scopes:  scopes,
		logger:  slog.New(slog.DiscardHandler),
		exec:    dispatch.NewExecutor(),
		entries: make(map[reflect.Type]*entry),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start makes the processor accept enqueues. Consumers are not created
// here; each event type gets its own on first use. The lifecycle is
// one-shot: Start after Stop returns ErrAlreadyStopped.
func (p *Processor) Start() error {
	if p.stopped.Load() {
		return ErrAlreadyStopped
	}
	if p.running.Load() {
		return ErrAlreadyRunning
	}
	p.baseCtx, p.cancel = context.WithCancel(context.Background())
	p.running.Store(true)
	return nil
}

// Stop shuts the processor down cooperatively: it closes every queue to
// further writes, cancels the consumers, and waits for their current
// iteration to finish or for ctx to expire. When a call returns the context
// error before the consumers exited, a repeated Stop waits for them again;
// once shutdown has completed, further calls return nil immediately. Stop
// on a processor that was never started returns nil.
func (p *Processor) Stop(ctx context.Context) error {
	if p.running.Swap(false) {
		p.stopped.Store(true)
	}
	if !p.stopped.Load() {
		return nil
	}

	p.stopOnce.Do(func() {
		p.mu.RLock()
		for _, e := range p.entries {
			e.buf.close()
		}
		p.mu.RUnlock()

		p.cancel()

		p.done = make(chan struct{})
		go func() {
			p.wg.Wait()
			close(p.done)
		}()
	})

	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	// Anything still buffered after the consumers exited was dropped by
	// shutdown.
	p.dropOnce.Do(func() {
		p.mu.RLock()
		for _, e := range p.entries {
			p.dropped.Add(uint64(e.buf.len()))
		}
		p.mu.RUnlock()
	})
	return nil
}

// Enqueue appends event to the queue for its runtime type, creating the
// queue and its consumer on first use. It returns once the append is done;
// queued processing is never waited for. The descriptors of the first
// enqueue for a type are fixed for the processor's lifetime, mirroring the
// dispatcher's own immutability.
func (p *Processor) Enqueue(ctx context.Context, event any, descriptors []dispatch.Descriptor) error {
	if !p.running.Load() {
		return ErrNotRunning
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e, err := p.entryFor(reflect.TypeOf(event), descriptors)
	if err != nil {
		return err
	}
	if !e.buf.push(event) {
		return ErrNotRunning
	}
	p.enqueued.Add(1)
	return nil
}

// entryFor returns the pipeline for eventType, creating it and starting its
// consumer if this is the type's first queued event.
func (p *Processor) entryFor(eventType reflect.Type, descriptors []dispatch.Descriptor) (*entry, error) {
	p.mu.RLock()
	e, ok := p.entries[eventType]
	p.mu.RUnlock()
	if ok {
		return e, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[eventType]; ok {
		return e, nil
	}
	if !p.running.Load() {
		return nil, ErrNotRunning
	}

	e = &entry{
		name:        eventType.String(),
		buf:         newFIFO(),
		descriptors: descriptors,
	}
	p.entries[eventType] = e
	p.wg.Go(func() {
		p.consume(e)
	})
	return e, nil
}

// consume is the single consumer loop for one event type. It processes one
// event at a time, in FIFO arrival order, until the processor shuts down.
func (p *Processor) consume(e *entry) {
	for {
		select {
		case <-p.baseCtx.Done():
			return
		default:
		}

		event, ok := e.buf.pop()
		if !ok {
			select {
			case <-e.buf.wake:
				continue
			case <-p.baseCtx.Done():
				return
			}
		}

		p.process(e, event)
	}
}

// process runs every queued handler for one event concurrently, each inside
// its own scope, and waits for all of them. Failures are logged and
// swallowed so the consumer moves on to the next event regardless.
func (p *Processor) process(e *entry, event any) {
	var wg conc.WaitGroup
	for _, desc := range e.descriptors {
		wg.Go(func() {
			if err := p.runHandler(event, desc, e.name); err != nil {
				p.swallowed.Add(1)
				p.logger.Error("queued handler failed",
					"event_type", e.name,
					"handler_id", desc.ID,
					"error", err,
				)
			}
		})
	}
	wg.Wait()
	p.processed.Add(1)
}

// runHandler resolves one handler from a fresh scope, runs it, and releases
// the scope on every exit path. The handler runs under the processor's own
// cancellation scope, not under any publisher's context.
func (p *Processor) runHandler(event any, desc dispatch.Descriptor, eventType string) error {
	scope, err := p.scopes.CreateScope()
	if err != nil {
		return fmt.Errorf("%w: handler %s for event %s: %w", dispatch.ErrScopeCreate, desc.ID, eventType, err)
	}
	defer scope.Release()

	h, err := scope.Resolve(desc.Ref)
	if err != nil {
		return fmt.Errorf("%w: handler %s for event %s: %w", dispatch.ErrScopeResolve, desc.ID, eventType, err)
	}

	return p.exec.Execute(p.baseCtx, event, h).Failure(desc, eventType)
}

// Stats contains processor statistics.
type Stats struct {
	// Enqueued is the total number of events accepted by Enqueue.
	Enqueued uint64

	// Processed is the number of events whose queued handlers have all
	// finished.
	Processed uint64

	// Swallowed is the number of queued handler failures that were
	// logged and discarded.
	Swallowed uint64

	// Dropped is the number of events still buffered when shutdown
	// completed.
	Dropped uint64

	// Depth is the current total number of buffered events.
	Depth int

	// Types is the number of event types with an active pipeline.
	Types int
}

// Stats returns a snapshot of processor statistics.
func (p *Processor) Stats() Stats {
	p.mu.RLock()
	depth := 0
	types := len(p.entries)
	for _, e := range p.entries {
		depth += e.buf.len()
	}
	p.mu.RUnlock()

	return Stats{
		Enqueued:  p.enqueued.Load(),
		Processed: p.processed.Load(),
		Swallowed: p.swallowed.Load(),
		Dropped:   p.dropped.Load(),
		Depth:     depth,
		Types:     types,
	}
}

// IsRunning returns true if the processor accepts enqueues.
func (p *Processor) IsRunning() bool {
	return p.running.Load()
}

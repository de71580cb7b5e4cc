package flashevents

import (
	"fmt"
	"io"
	"sync"
)

// ProviderFunc constructs a handler instance. The ProviderFactory calls it
// once per ambient resolution and once per isolated-scope resolution.
type ProviderFunc func() (Handler, error)

// ProviderFactory is the default ScopeFactory. It resolves a handler
// reference in one of two ways:
//
//   - A reference that is itself a Handler resolves to that value directly,
//     so plain handler instances can be registered with no ceremony. Such
//     shared instances are never owned, or closed, by an isolated scope.
//   - Any other reference resolves through its registered provider: the
//     ambient scope caches the first instance as a singleton, while every
//     isolated scope constructs a fresh one and closes the io.Closers it
//     built when released.
//
// ProviderFactory is safe for concurrent use.
type ProviderFactory struct {
	mu        sync.RWMutex
	providers map[any]ProviderFunc
	ambient   map[any]Handler
}

// NewProviderFactory creates an empty provider factory.
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{
		providers: make(map[any]ProviderFunc),
		ambient:   make(map[any]Handler),
	}
}

// Provide registers the provider constructing instances for ref. The ref
// must be comparable; a string name works well.
func (f *ProviderFactory) Provide(ref any, provider ProviderFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers[ref] = provider
}

// Resolve returns the ambient handler for ref, constructing and caching it
// on first use. A ref that is itself a Handler resolves to that value
// directly; providers are consulted only for other refs, which must be
// comparable.
func (f *ProviderFactory) Resolve(ref any) (Handler, error) {
	if h, ok := ref.(Handler); ok {
		return h, nil
	}

	f.mu.RLock()
	h, ok := f.ambient[ref]
	f.mu.RUnlock()
	if ok {
		return h, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if h, ok := f.ambient[ref]; ok {
		return h, nil
	}

	provider, ok := f.providers[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoProvider, ref)
	}
	h, err := provider()
	if err != nil {
		return nil, fmt.Errorf("provider for %v: %w", ref, err)
	}
	f.ambient[ref] = h
	return h, nil
}

// CreateScope returns a fresh isolated scope backed by this factory.
func (f *ProviderFactory) CreateScope() (Scope, error) {
	return &providerScope{factory: f}, nil
}

// providerScope is an isolated scope. It tracks every instance it built so
// Release can close the closable ones.
type providerScope struct {
	factory *ProviderFactory

	mu       sync.Mutex
	resolved []Handler
	released bool
}

// Resolve constructs a fresh instance for ref within this scope. A ref
// that is itself a Handler resolves to that shared value; it is not owned
// by the scope and is never closed by Release.
func (s *providerScope) Resolve(ref any) (Handler, error) {
	if h, ok := ref.(Handler); ok {
		return h, nil
	}

	s.factory.mu.RLock()
	provider, hasProvider := s.factory.providers[ref]
	s.factory.mu.RUnlock()

	if !hasProvider {
		return nil, fmt.Errorf("%w: %v", ErrNoProvider, ref)
	}

	h, err := provider()
	if err != nil {
		return nil, fmt.Errorf("provider for %v: %w", ref, err)
	}

	s.mu.Lock()
	s.resolved = append(s.resolved, h)
	s.mu.Unlock()
	return h, nil
}

// Release closes every io.Closer the scope constructed. It is safe to call
// more than once; only the first call closes anything.
func (s *providerScope) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true

	for _, h := range s.resolved {
		if c, ok := h.(io.Closer); ok {
			_ = c.Close()
		}
	}
	s.resolved = nil
}

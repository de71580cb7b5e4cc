package flashevents

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

// closableHandler counts Close calls for scope-release checks.
type closableHandler struct {
	closed atomic.Int32
}

func (h *closableHandler) Handle(ctx context.Context, event any) error {
	return nil
}

func (h *closableHandler) Close() error {
	h.closed.Add(1)
	return nil
}

func TestProviderFactory_AmbientSingleton(t *testing.T) {
	f := NewProviderFactory()

	var constructed atomic.Int32
	f.Provide("audit", func() (Handler, error) {
		constructed.Add(1)
		return HandlerFunc(func(ctx context.Context, event any) error { return nil }), nil
	})

	first, err := f.Resolve("audit")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := f.Resolve("audit")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if constructed.Load() != 1 {
		t.Errorf("provider ran %d times for ambient resolution, want 1", constructed.Load())
	}
	if first == nil || second == nil {
		t.Fatal("Resolve() returned nil handler")
	}
}

func TestProviderFactory_IsolatedScopesAreFresh(t *testing.T) {
	f := NewProviderFactory()

	var constructed atomic.Int32
	f.Provide("mailer", func() (Handler, error) {
		constructed.Add(1)
		return &closableHandler{}, nil
	})

	for i := 0; i < 3; i++ {
		scope, err := f.CreateScope()
		if err != nil {
			t.Fatalf("CreateScope() error = %v", err)
		}
		if _, err := scope.Resolve("mailer"); err != nil {
			t.Fatalf("scope.Resolve() error = %v", err)
		}
		scope.Release()
	}

	if constructed.Load() != 3 {
		t.Errorf("provider ran %d times across 3 scopes, want 3 (fresh instance each)", constructed.Load())
	}
}

func TestProviderScope_ReleaseClosesInstances(t *testing.T) {
	f := NewProviderFactory()

	var instance *closableHandler
	f.Provide("mailer", func() (Handler, error) {
		instance = &closableHandler{}
		return instance, nil
	})

	scope, err := f.CreateScope()
	if err != nil {
		t.Fatalf("CreateScope() error = %v", err)
	}
	if _, err := scope.Resolve("mailer"); err != nil {
		t.Fatalf("scope.Resolve() error = %v", err)
	}

	scope.Release()
	if instance.closed.Load() != 1 {
		t.Errorf("Close ran %d times after Release, want 1", instance.closed.Load())
	}

	// Release is safe to call again and closes nothing twice.
	scope.Release()
	if instance.closed.Load() != 1 {
		t.Errorf("Close ran %d times after double Release, want 1", instance.closed.Load())
	}
}

func TestProviderScope_SharedInstanceNotClosed(t *testing.T) {
	f := NewProviderFactory()

	// Ref is itself a handler; the scope does not own it.
	shared := &closableHandler{}

	scope, err := f.CreateScope()
	if err != nil {
		t.Fatalf("CreateScope() error = %v", err)
	}
	h, err := scope.Resolve(shared)
	if err != nil {
		t.Fatalf("scope.Resolve() error = %v", err)
	}
	if h != Handler(shared) {
		t.Error("a Handler ref should resolve to itself")
	}

	scope.Release()
	if shared.closed.Load() != 0 {
		t.Error("Release must not close instances the scope did not construct")
	}
}

func TestProviderFactory_HandlerRefFallback(t *testing.T) {
	f := NewProviderFactory()

	handler := HandlerFunc(func(ctx context.Context, event any) error { return nil })
	got, err := f.Resolve(handler)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got == nil {
		t.Fatal("Resolve() returned nil handler")
	}
}

func TestProviderFactory_NoProvider(t *testing.T) {
	f := NewProviderFactory()

	if _, err := f.Resolve("unbound"); !errors.Is(err, ErrNoProvider) {
		t.Errorf("Resolve() = %v, want ErrNoProvider", err)
	}

	scope, err := f.CreateScope()
	if err != nil {
		t.Fatalf("CreateScope() error = %v", err)
	}
	defer scope.Release()
	if _, err := scope.Resolve("unbound"); !errors.Is(err, ErrNoProvider) {
		t.Errorf("scope.Resolve() = %v, want ErrNoProvider", err)
	}
}

func TestProviderFactory_ProviderError(t *testing.T) {
	f := NewProviderFactory()
	wantErr := errors.New("construction failed")

	f.Provide("broken", func() (Handler, error) {
		return nil, wantErr
	})

	if _, err := f.Resolve("broken"); !errors.Is(err, wantErr) {
		t.Errorf("Resolve() = %v, want %v", err, wantErr)
	}
}

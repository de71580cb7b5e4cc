package flashevents

import (
	"reflect"

	"github.com/Anton-Grebenkin/FlashEvents/dispatch"
)

// Registry holds, per event type, the ordered list of registered handler
// descriptors. It is a pure data structure with no locking: registration is
// a startup-time operation that must finish before the first publish for a
// type, and registering concurrently with publishing is undefined behavior.
type Registry struct {
	handlers map[reflect.Type][]dispatch.Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[reflect.Type][]dispatch.Descriptor),
	}
}

// Add appends a descriptor to the list for eventType. Duplicates are kept:
// a handler registered twice runs twice.
func (r *Registry) Add(eventType reflect.Type, desc dispatch.Descriptor) {
	r.handlers[eventType] = append(r.handlers[eventType], desc)
}

// Lookup returns the descriptors for eventType in registration order. An
// unknown type yields an empty slice, never an error. The returned slice is
// a copy.
func (r *Registry) Lookup(eventType reflect.Type) []dispatch.Descriptor {
	descs := r.handlers[eventType]
	if len(descs) == 0 {
		return nil
	}

	result := make([]dispatch.Descriptor, len(descs))
	copy(result, descs)
	return result
}

// Count returns the total number of registered descriptors.
func (r *Registry) Count() int {
	n := 0
	for _, descs := range r.handlers {
		n += len(descs)
	}
	return n
}

// Types returns the event types with at least one registered handler.
func (r *Registry) Types() []reflect.Type {
	if len(r.handlers) == 0 {
		return nil
	}

	types := make([]reflect.Type, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

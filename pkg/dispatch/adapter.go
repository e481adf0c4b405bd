// Package dispatch resolves a Signal's dispatch targets to delivery
// adapters and carries them to their destination. The router decides
// what should be delivered and where; this package decides how.
package dispatch

import (
	"context"
	"sync"

	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// Adapter is what every delivery backend — built-in or custom — must
// implement. Validate runs at registration time and whenever a dispatch
// spec is attached to a signal; it rejects unknown or ill-typed options
// and returns the normalized form Deliver should rely on. Deliver runs
// once per signal per target.
type Adapter interface {
	Validate(options map[string]any) (map[string]any, error)
	Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error
}

// Registry is process-wide adapter state: a single initialization
// followed by append-only registration. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry returns an empty Registry. NewRegistryWithBuiltins returns
// one already populated with the standard adapter set.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register binds tag to adapter. Re-registering an already-bound tag is
// rejected — the registry is append-only, not overwrite-in-place.
func (r *Registry) Register(tag string, adapter Adapter) error {
	if tag == "" {
		return sigerr.New(sigerr.KindDispatch, "adapter tag must not be empty")
	}
	if adapter == nil {
		return sigerr.New(sigerr.KindDispatch, "adapter for tag %q must not be nil", tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[tag]; exists {
		return sigerr.New(sigerr.KindDispatch, "adapter %q is already registered", tag)
	}
	r.adapters[tag] = adapter
	return nil
}

// Resolve looks up the adapter bound to tag.
func (r *Registry) Resolve(tag string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[tag]
	if !ok {
		return nil, sigerr.New(sigerr.KindDispatch, "no adapter registered for tag %q", tag)
	}
	return adapter, nil
}

package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// Dispatcher resolves a signal's dispatch targets against a Registry and
// carries out best-effort fan-out delivery.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher builds a Dispatcher resolving adapters against registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch delivers sig to every target in spec. Targets are resolved
// and delivered concurrently; ordering across distinct targets is not
// observable, per the adapter contract. The call succeeds iff every
// target succeeds; otherwise it returns a dispatch_error enumerating
// each per-target failure, joined as its Reason.
func (d *Dispatcher) Dispatch(ctx context.Context, sig *signal.Signal, spec *signal.DispatchSpec) error {
	if spec == nil || len(spec.Targets) == 0 {
		return nil
	}

	type outcome struct {
		tag string
		err error
	}
	results := make([]outcome, len(spec.Targets))

	var wg sync.WaitGroup
	for i, target := range spec.Targets {
		wg.Add(1)
		go func(i int, target signal.Target) {
			defer wg.Done()
			results[i] = outcome{tag: target.Tag, err: d.deliverOne(ctx, sig, target)}
		}(i, target)
	}
	wg.Wait()

	var failures []error
	for _, r := range results {
		if r.err != nil {
			failures = append(failures, &taggedFailure{tag: r.tag, err: r.err})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return sigerr.Wrap(sigerr.KindDispatch, errors.Join(failures...), "%d of %d targets failed", len(failures), len(results))
}

// DispatchSignal delivers sig using its own attached dispatch spec, the
// shape the dispatcher sees when a producer calls it directly instead
// of routing first.
func (d *Dispatcher) DispatchSignal(ctx context.Context, sig *signal.Signal) error {
	return d.Dispatch(ctx, sig, sig.Dispatch)
}

func (d *Dispatcher) deliverOne(ctx context.Context, sig *signal.Signal, target signal.Target) error {
	adapter, err := d.registry.Resolve(target.Tag)
	if err != nil {
		return err
	}
	normalized, err := adapter.Validate(target.Options)
	if err != nil {
		return err
	}
	return adapter.Deliver(ctx, sig, normalized)
}

// taggedFailure preserves which target produced an error inside the
// joined Reason of an aggregate dispatch_error.
type taggedFailure struct {
	tag string
	err error
}

func (f *taggedFailure) Error() string { return f.tag + ": " + f.err.Error() }
func (f *taggedFailure) Unwrap() error { return f.err }

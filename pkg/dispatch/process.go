package dispatch

import (
	"context"
	"sync"

	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// Process is anything addressable by name that can receive a signal
// directly, in-process. It is the pid/named adapters' resolution target,
// generalizing the teacher's per-task subscriber channel into a single
// receive method any endpoint can implement.
type Process interface {
	Receive(ctx context.Context, sig *signal.Signal) error
}

// ProcessFunc adapts a plain function to Process.
type ProcessFunc func(ctx context.Context, sig *signal.Signal) error

func (f ProcessFunc) Receive(ctx context.Context, sig *signal.Signal) error { return f(ctx, sig) }

// ProcessDirectory resolves symbolic names to Processes for the pid and
// named adapters. Registration is caller-driven and may change over a
// process's lifetime, unlike the Adapter Registry's append-only tags.
type ProcessDirectory struct {
	mu        sync.RWMutex
	processes map[string]Process
}

// NewProcessDirectory returns an empty directory.
func NewProcessDirectory() *ProcessDirectory {
	return &ProcessDirectory{processes: make(map[string]Process)}
}

// Register binds name to proc, replacing any prior binding.
func (d *ProcessDirectory) Register(name string, proc Process) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.processes[name] = proc
}

// Unregister removes name's binding, if any.
func (d *ProcessDirectory) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.processes, name)
}

// Resolve looks up name, failing with process_not_found on a miss.
func (d *ProcessDirectory) Resolve(name string) (Process, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	proc, ok := d.processes[name]
	if !ok {
		return nil, sigerr.New(sigerr.KindProcessNotFound, "process %q not found", name)
	}
	return proc, nil
}

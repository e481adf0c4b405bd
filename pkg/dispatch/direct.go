package dispatch

import (
	"context"

	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// DirectAdapter implements the "pid" / direct tag: deliver to a single
// endpoint resolved from a ProcessDirectory, synchronously or not.
type DirectAdapter struct {
	directory *ProcessDirectory
}

// NewDirectAdapter builds a DirectAdapter resolving targets against directory.
func NewDirectAdapter(directory *ProcessDirectory) *DirectAdapter {
	return &DirectAdapter{directory: directory}
}

func (a *DirectAdapter) Validate(options map[string]any) (map[string]any, error) {
	target, ok := options["target"].(string)
	if !ok || target == "" {
		return nil, sigerr.Routing("pid adapter requires a non-empty string %q option", "target")
	}
	mode, _ := options["delivery_mode"].(string)
	if mode == "" {
		mode = "sync"
	}
	if mode != "sync" && mode != "async" {
		return nil, sigerr.Routing("pid adapter delivery_mode must be %q or %q, got %q", "sync", "async", mode)
	}
	return map[string]any{"target": target, "delivery_mode": mode}, nil
}

func (a *DirectAdapter) Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error {
	target := options["target"].(string)
	proc, err := a.directory.Resolve(target)
	if err != nil {
		return err
	}
	if options["delivery_mode"] == "async" {
		go func() {
			_ = proc.Receive(context.WithoutCancel(ctx), sig)
		}()
		return nil
	}
	return proc.Receive(ctx, sig)
}

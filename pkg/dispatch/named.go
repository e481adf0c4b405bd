package dispatch

import (
	"context"

	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// NamedAdapter implements the "named" tag: resolve a symbolic name
// through a ProcessDirectory and deliver synchronously. Unlike
// DirectAdapter it carries no delivery_mode option — a named target is
// always addressed as a logical actor, never as a fire-and-forget slot.
type NamedAdapter struct {
	directory *ProcessDirectory
}

// NewNamedAdapter builds a NamedAdapter resolving targets against directory.
func NewNamedAdapter(directory *ProcessDirectory) *NamedAdapter {
	return &NamedAdapter{directory: directory}
}

func (a *NamedAdapter) Validate(options map[string]any) (map[string]any, error) {
	target, ok := options["target"].(string)
	if !ok || target == "" {
		return nil, sigerr.Routing("named adapter requires a non-empty string %q option", "target")
	}
	return map[string]any{"target": target}, nil
}

func (a *NamedAdapter) Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error {
	proc, err := a.directory.Resolve(options["target"].(string))
	if err != nil {
		return err
	}
	return proc.Receive(ctx, sig)
}

package dispatch

import (
	"context"

	"github.com/sigbus/sigbus/pkg/signal"
)

// NoopAdapter implements the "noop" tag: discard, used in testing. It
// accepts any options and never fails.
type NoopAdapter struct{}

func (NoopAdapter) Validate(options map[string]any) (map[string]any, error) {
	return options, nil
}

func (NoopAdapter) Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error {
	return nil
}

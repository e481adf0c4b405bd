package dispatch

import (
	"context"

	"github.com/sigbus/sigbus/pkg/eventbus"
	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// BusAdapter implements the "bus" tag: enqueue onto a named stream of a
// resolved bus transport, through that transport's Publisher so the
// delivery gets retry/backoff and degraded-mode tracking.
type BusAdapter struct {
	directory *TransportDirectory
}

// NewBusAdapter builds a BusAdapter resolving bus targets against directory.
func NewBusAdapter(directory *TransportDirectory) *BusAdapter {
	return &BusAdapter{directory: directory}
}

func (a *BusAdapter) Validate(options map[string]any) (map[string]any, error) {
	target, ok := options["target"].(string)
	if !ok || target == "" {
		return nil, sigerr.Routing("bus adapter requires a non-empty string %q option", "target")
	}
	stream, _ := options["stream"].(string)
	if stream == "" {
		stream = "default"
	}
	return map[string]any{"target": target, "stream": stream}, nil
}

func (a *BusAdapter) Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error {
	target := options["target"].(string)
	stream := options["stream"].(string)
	pub, err := a.directory.Resolve(target)
	if err != nil {
		return err
	}
	_, err = pub.PublishDispatchEvent(ctx, eventbus.DispatchEvent{
		Domain:        eventbus.DomainBus,
		EventType:     sig.Type,
		Target:        target,
		Stream:        stream,
		CorrelationID: sig.ID,
		Schema:        eventbus.SchemaVersionV1,
		OrderingKey:   target + ":" + stream,
		Payload:       sig,
	})
	if err != nil {
		return sigerr.Wrap(sigerr.KindDispatch, err, "bus %q delivery failed", target)
	}
	return nil
}

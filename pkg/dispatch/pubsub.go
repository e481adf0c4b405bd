package dispatch

import (
	"context"

	"github.com/sigbus/sigbus/pkg/eventbus"
	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// PubSubAdapter implements the "pubsub" tag: fan-out publish to a topic
// on a resolved broker transport, through that transport's Publisher so
// the delivery gets retry/backoff and degraded-mode tracking. Unlike
// the bus adapter's stream (which defaults), a pubsub topic must always
// be given explicitly.
type PubSubAdapter struct {
	directory *TransportDirectory
}

// NewPubSubAdapter builds a PubSubAdapter resolving broker targets against directory.
func NewPubSubAdapter(directory *TransportDirectory) *PubSubAdapter {
	return &PubSubAdapter{directory: directory}
}

func (a *PubSubAdapter) Validate(options map[string]any) (map[string]any, error) {
	target, ok := options["target"].(string)
	if !ok || target == "" {
		return nil, sigerr.Routing("pubsub adapter requires a non-empty string %q option", "target")
	}
	topic, ok := options["topic"].(string)
	if !ok || topic == "" {
		return nil, sigerr.Routing("pubsub adapter requires a non-empty string %q option", "topic")
	}
	return map[string]any{"target": target, "topic": topic}, nil
}

func (a *PubSubAdapter) Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error {
	target := options["target"].(string)
	topic := options["topic"].(string)
	pub, err := a.directory.Resolve(target)
	if err != nil {
		return err
	}
	_, err = pub.PublishDispatchEvent(ctx, eventbus.DispatchEvent{
		Domain:        eventbus.DomainPubSub,
		EventType:     sig.Type,
		Target:        target,
		Stream:        topic,
		CorrelationID: sig.ID,
		Schema:        eventbus.SchemaVersionV1,
		OrderingKey:   target + ":" + topic,
		Payload:       sig,
	})
	if err != nil {
		return sigerr.Wrap(sigerr.KindDispatch, err, "broker %q delivery failed", target)
	}
	return nil
}

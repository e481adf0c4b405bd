package dispatch

import (
	"sync"

	"github.com/sigbus/sigbus/pkg/eventbus"
	"github.com/sigbus/sigbus/pkg/sigerr"
)

// TransportDirectory resolves a symbolic bus or broker name to a
// Publisher wrapping the eventbus.Transport that backs it. One
// directory instance serves the bus adapter (named streams) and a
// separate instance serves the pubsub adapter (named topics); both
// share this same resolution shape, with bus_not_found on a miss per
// the error taxonomy. Wrapping every registered transport in a
// Publisher at registration time means every "bus"/"pubsub" delivery
// goes through the retry/backoff and degraded-mode tracking a raw
// transport.Publish call would otherwise bypass.
type TransportDirectory struct {
	mu         sync.RWMutex
	nodeID     string
	retry      eventbus.RetryConfig
	telemetry  eventbus.Telemetry
	publishers map[string]*eventbus.Publisher
}

// NewTransportDirectory returns an empty directory. Every transport
// registered against it is published through nodeID/retry/telemetry.
func NewTransportDirectory(nodeID string, retry eventbus.RetryConfig, telemetry eventbus.Telemetry) *TransportDirectory {
	return &TransportDirectory{
		nodeID:     nodeID,
		retry:      retry,
		telemetry:  telemetry,
		publishers: make(map[string]*eventbus.Publisher),
	}
}

// Register binds name to transport, wrapping it in a Publisher,
// replacing any prior binding.
func (d *TransportDirectory) Register(name string, transport eventbus.Transport) error {
	pub, err := eventbus.NewPublisher(d.nodeID, transport, d.retry, d.telemetry)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.publishers[name] = pub
	return nil
}

// Resolve looks up name's Publisher, failing with bus_not_found on a miss.
func (d *TransportDirectory) Resolve(name string) (*eventbus.Publisher, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pub, ok := d.publishers[name]
	if !ok {
		return nil, sigerr.New(sigerr.KindBusNotFound, "bus %q not found", name)
	}
	return pub, nil
}

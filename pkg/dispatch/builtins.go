package dispatch

import (
	"github.com/sigbus/sigbus/pkg/eventbus"
	"github.com/sigbus/sigbus/pkg/logger"
)

// Builtins bundles the collaborators the standard adapter set resolves
// against, so callers can reach into them (e.g. to register a Process)
// without walking back through the Registry.
type Builtins struct {
	Processes *ProcessDirectory
	Buses     *TransportDirectory
	Brokers   *TransportDirectory
}

// NewRegistryWithBuiltins returns a Registry with pid, named, bus,
// pubsub, logger, console, and noop already registered, plus the
// directories backing the pid/named/bus/pubsub tags. nodeID identifies
// this process in every envelope the bus/pubsub adapters publish;
// telemetry (may be nil) receives their Publisher's retry/degraded-mode
// signals.
func NewRegistryWithBuiltins(log logger.Logger, nodeID string, telemetry eventbus.Telemetry) (*Registry, *Builtins) {
	retry := eventbus.DefaultRetryConfig()
	b := &Builtins{
		Processes: NewProcessDirectory(),
		Buses:     NewTransportDirectory(nodeID, retry, telemetry),
		Brokers:   NewTransportDirectory(nodeID, retry, telemetry),
	}
	r := NewRegistry()
	_ = r.Register("pid", NewDirectAdapter(b.Processes))
	_ = r.Register("named", NewNamedAdapter(b.Processes))
	_ = r.Register("bus", NewBusAdapter(b.Buses))
	_ = r.Register("pubsub", NewPubSubAdapter(b.Brokers))
	_ = r.Register("logger", NewLoggerAdapter(log))
	_ = r.Register("console", NewConsoleAdapter(nil))
	_ = r.Register("noop", NoopAdapter{})
	return r, b
}

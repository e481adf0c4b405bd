package eventbus

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sigbus/sigbus/pkg/signal"
)

// EnvelopeConsumer validates/routs envelopes and suppresses duplicate deliveries.
type EnvelopeConsumer struct {
	router *SchemaRouter

	mu         sync.Mutex
	seenEvents map[string]struct{}
}

// NewEnvelopeConsumer creates a schema-aware consumer.
func NewEnvelopeConsumer(router *SchemaRouter) *EnvelopeConsumer {
	return &EnvelopeConsumer{
		router:     router,
		seenEvents: make(map[string]struct{}),
	}
}

// DecodeAndValidate decodes raw event bytes, validates schema routing, and suppresses duplicates.
func (c *EnvelopeConsumer) DecodeAndValidate(raw []byte) (Envelope, any, bool, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Envelope{}, nil, false, fmt.Errorf("eventbus: invalid envelope json: %w", err)
	}

	if c.router != nil {
		if err := c.router.ValidateIncoming(envelope); err != nil {
			return Envelope{}, nil, false, err
		}
	}

	c.mu.Lock()
	if _, exists := c.seenEvents[envelope.EventID]; exists {
		c.mu.Unlock()
		return envelope, nil, true, nil
	}
	c.seenEvents[envelope.EventID] = struct{}{}
	c.mu.Unlock()

	var decoded any = envelope
	var err error
	if c.router != nil {
		decoded, err = c.router.Decode(envelope)
		if err != nil {
			return Envelope{}, nil, false, err
		}
	}
	return envelope, decoded, false, nil
}

// DecodeSignal decodes raw envelope bytes and, if the delivery isn't a
// duplicate, unmarshals its payload as a Signal through the same
// constructor path a locally-produced signal goes through, so a replayed
// signal re-validates the CloudEvents invariants its envelope claims to
// carry instead of trusting the wire bytes as-is.
func (c *EnvelopeConsumer) DecodeSignal(raw []byte, defaultSource string) (*signal.Signal, bool, error) {
	envelope, _, duplicate, err := c.DecodeAndValidate(raw)
	if err != nil || duplicate {
		return nil, duplicate, err
	}
	sig, err := signal.DecodeOne(envelope.Payload, defaultSource)
	if err != nil {
		return nil, false, err
	}
	return sig, false, nil
}

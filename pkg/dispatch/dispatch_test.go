package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sigbus/sigbus/pkg/eventbus"
	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

func testSignal(t *testing.T) *signal.Signal {
	t.Helper()
	sig, err := signal.New(signal.Fields{"type": "user.created"}, "test")
	if err != nil {
		t.Fatal(err)
	}
	return sig
}

type recordingProcess struct {
	mu       sync.Mutex
	received []*signal.Signal
}

func (p *recordingProcess) Receive(ctx context.Context, sig *signal.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.received = append(p.received, sig)
	return nil
}

func (p *recordingProcess) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.received)
}

func TestRegistry_DuplicateTagRejected(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("noop", NoopAdapter{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("noop", NoopAdapter{}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistry_UnknownTagFails(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Resolve("missing"); err == nil {
		t.Fatal("expected resolution of an unregistered tag to fail")
	}
}

func TestDirectAdapter_SyncDeliversToResolvedProcess(t *testing.T) {
	dir := NewProcessDirectory()
	proc := &recordingProcess{}
	dir.Register("worker-1", proc)

	adapter := NewDirectAdapter(dir)
	opts, err := adapter.Validate(map[string]any{"target": "worker-1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := adapter.Deliver(context.Background(), testSignal(t), opts); err != nil {
		t.Fatal(err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected 1 delivery, got %d", proc.count())
	}
}

func TestDirectAdapter_UnknownTargetIsProcessNotFound(t *testing.T) {
	adapter := NewDirectAdapter(NewProcessDirectory())
	opts, err := adapter.Validate(map[string]any{"target": "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	err = adapter.Deliver(context.Background(), testSignal(t), opts)
	if err == nil {
		t.Fatal("expected process_not_found")
	}
	if sigerr.KindOf(err) != sigerr.KindProcessNotFound {
		t.Errorf("expected process_not_found, got %v", err)
	}
}

func TestDirectAdapter_RejectsInvalidDeliveryMode(t *testing.T) {
	adapter := NewDirectAdapter(NewProcessDirectory())
	if _, err := adapter.Validate(map[string]any{"target": "x", "delivery_mode": "eventually"}); err == nil {
		t.Fatal("expected invalid delivery_mode to be rejected")
	}
}

func TestNamedAdapter_UnknownTargetIsProcessNotFound(t *testing.T) {
	adapter := NewNamedAdapter(NewProcessDirectory())
	opts, err := adapter.Validate(map[string]any{"target": "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	err = adapter.Deliver(context.Background(), testSignal(t), opts)
	if sigerr.KindOf(err) != sigerr.KindProcessNotFound {
		t.Errorf("expected process_not_found, got %v", err)
	}
}

func testTransportDirectory() *TransportDirectory {
	return NewTransportDirectory("test-node", eventbus.DefaultRetryConfig(), nil)
}

func TestBusAdapter_UnknownBusIsBusNotFound(t *testing.T) {
	adapter := NewBusAdapter(testTransportDirectory())
	opts, err := adapter.Validate(map[string]any{"target": "ghost-bus"})
	if err != nil {
		t.Fatal(err)
	}
	err = adapter.Deliver(context.Background(), testSignal(t), opts)
	if sigerr.KindOf(err) != sigerr.KindBusNotFound {
		t.Errorf("expected bus_not_found, got %v", err)
	}
}

func TestBusAdapter_DefaultStreamAndPublish(t *testing.T) {
	bus := eventbus.NewMemoryBus()
	sub, err := bus.Subscribe(eventbus.SubjectPrefix+".**", 4)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	dir := testTransportDirectory()
	if err := dir.Register("orders", bus); err != nil {
		t.Fatal(err)
	}
	adapter := NewBusAdapter(dir)

	opts, err := adapter.Validate(map[string]any{"target": "orders"})
	if err != nil {
		t.Fatal(err)
	}
	if opts["stream"] != "default" {
		t.Errorf("expected default stream, got %v", opts["stream"])
	}
	if err := adapter.Deliver(context.Background(), testSignal(t), opts); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-sub.C():
		if len(msg.Payload) == 0 {
			t.Error("expected non-empty payload")
		}
	default:
		t.Fatal("expected a published message")
	}
}

func TestPubSubAdapter_RequiresTopic(t *testing.T) {
	adapter := NewPubSubAdapter(testTransportDirectory())
	if _, err := adapter.Validate(map[string]any{"target": "broker"}); err == nil {
		t.Fatal("expected missing topic to be rejected")
	}
}

func TestConsoleAdapter_AcceptsNoOptions(t *testing.T) {
	adapter := NewConsoleAdapter(nil)
	if _, err := adapter.Validate(map[string]any{"anything": "goes"}); err != nil {
		t.Fatal(err)
	}
}

func TestNoopAdapter_NeverFails(t *testing.T) {
	var adapter NoopAdapter
	opts, err := adapter.Validate(map[string]any{"whatever": 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := adapter.Deliver(context.Background(), testSignal(t), opts); err != nil {
		t.Fatal(err)
	}
}

func TestDispatcher_AllTargetsSucceed(t *testing.T) {
	registry, builtins := NewRegistryWithBuiltins(nil, "test-node", nil)
	proc := &recordingProcess{}
	builtins.Processes.Register("worker-1", proc)

	d := NewDispatcher(registry)
	spec := &signal.DispatchSpec{Targets: []signal.Target{
		{Tag: "pid", Options: map[string]any{"target": "worker-1"}},
		{Tag: "console"},
		{Tag: "noop"},
	}}
	if err := d.Dispatch(context.Background(), testSignal(t), spec); err != nil {
		t.Fatal(err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected 1 delivery to worker-1, got %d", proc.count())
	}
}

func TestDispatcher_BestEffortAggregatesFailures(t *testing.T) {
	registry, builtins := NewRegistryWithBuiltins(nil, "test-node", nil)
	proc := &recordingProcess{}
	builtins.Processes.Register("worker-1", proc)

	d := NewDispatcher(registry)
	spec := &signal.DispatchSpec{Targets: []signal.Target{
		{Tag: "pid", Options: map[string]any{"target": "worker-1"}},
		{Tag: "named", Options: map[string]any{"target": "ghost"}},
	}}
	err := d.Dispatch(context.Background(), testSignal(t), spec)
	if err == nil {
		t.Fatal("expected aggregate failure for the missing named target")
	}
	if sigerr.KindOf(err) != sigerr.KindDispatch {
		t.Errorf("expected dispatch_error, got %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected the succeeding target to still be delivered, got %d", proc.count())
	}
}

func TestDispatcher_EmptySpecIsNoOp(t *testing.T) {
	registry, _ := NewRegistryWithBuiltins(nil, "test-node", nil)
	d := NewDispatcher(registry)
	if err := d.Dispatch(context.Background(), testSignal(t), nil); err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(context.Background(), testSignal(t), &signal.DispatchSpec{}); err != nil {
		t.Fatal(err)
	}
}

func TestDispatcher_UnknownAdapterTagIsDispatchError(t *testing.T) {
	registry, _ := NewRegistryWithBuiltins(nil, "test-node", nil)
	d := NewDispatcher(registry)
	spec := &signal.DispatchSpec{Targets: []signal.Target{{Tag: "carrier-pigeon"}}}
	err := d.Dispatch(context.Background(), testSignal(t), spec)
	if sigerr.KindOf(err) != sigerr.KindDispatch {
		t.Errorf("expected dispatch_error, got %v", err)
	}
}

type failingAdapter struct {
	calls int
	failN int
}

func (a *failingAdapter) Validate(options map[string]any) (map[string]any, error) {
	return options, nil
}

func (a *failingAdapter) Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error {
	a.calls++
	if a.calls <= a.failN {
		return errors.New("transient failure")
	}
	return nil
}

func TestWithRetry_RetriesUntilSuccess(t *testing.T) {
	inner := &failingAdapter{failN: 2}
	registry := NewRegistry()
	if err := registry.Register("flaky", WithRetry(inner)); err != nil {
		t.Fatal(err)
	}
	d := NewDispatcher(registry)
	spec := &signal.DispatchSpec{Targets: []signal.Target{{Tag: "flaky"}}}
	if err := d.Dispatch(context.Background(), testSignal(t), spec); err != nil {
		t.Fatalf("expected retry to eventually succeed, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.calls)
	}
}

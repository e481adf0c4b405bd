package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

func sig(t *testing.T, typ string, data map[string]any) *signal.Signal {
	t.Helper()
	fields := signal.Fields{"type": typ}
	if data != nil {
		fields["data"] = data
	}
	s, err := signal.New(fields, "test")
	if err != nil {
		t.Fatalf("signal.New(%q): %v", typ, err)
	}
	return s
}

func instr(action string) Instruction {
	return Instruction{Action: action}
}

func routingMessage(t *testing.T, err error) string {
	t.Helper()
	var se *sigerr.Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *sigerr.Error, got %T", err)
	}
	return se.Message
}

func actions(t *testing.T, handlers []Handler) []string {
	t.Helper()
	out := make([]string, len(handlers))
	for i, h := range handlers {
		in, ok := h.(Instruction)
		if !ok {
			t.Fatalf("handler %d is %T, not Instruction", i, h)
		}
		out[i] = in.Action
	}
	return out
}

func assertActions(t *testing.T, got []Handler, want ...string) {
	t.Helper()
	gotActions := actions(t, got)
	if len(gotActions) != len(want) {
		t.Fatalf("got %v, want %v", gotActions, want)
	}
	for i := range want {
		if gotActions[i] != want[i] {
			t.Fatalf("got %v, want %v", gotActions, want)
		}
	}
}

// S1 — static match.
func TestRoute_StaticMatch(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "user.created", Handler: instr("Add")})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Route(sig(t, "user.created", nil))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "Add")
}

// S2 — single wildcard.
func TestRoute_SingleWildcard(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "user.*.updated", Handler: instr("Multiply")})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Route(sig(t, "user.123.updated", nil))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "Multiply")
}

// S3 — multi wildcard, not at the end of the pattern.
func TestRoute_MultiWildcard(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "order.**.completed", Handler: instr("Subtract")})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Route(sig(t, "order.123.payment.completed", nil))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "Subtract")
}

// S4/S5 — guard accepts or rejects based on signal data.
func hasEmail(s *signal.Signal) bool {
	data, ok := s.Data.(map[string]any)
	if !ok {
		return false
	}
	_, ok = data["email"]
	return ok
}

func TestRoute_GuardAccepts(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "user.enrich", Guard: hasEmail, Handler: instr("EnrichUserData"), Priority: 90})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Route(sig(t, "user.enrich", map[string]any{"email": "x", "formatted_name": "y"}))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "EnrichUserData")
}

func TestRoute_GuardRejects(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "user.enrich", Guard: hasEmail, Handler: instr("EnrichUserData"), Priority: 90})
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Route(sig(t, "user.enrich", map[string]any{"formatted_name": "y"}))
	if err == nil {
		t.Fatal("expected routing_error for unmatched guard")
	}
	if sigerr.KindOf(err) != sigerr.KindRouting {
		t.Errorf("expected routing_error, got %v", err)
	}
	if msg := routingMessage(t, err); msg != "No matching handlers found for signal" {
		t.Errorf("unexpected message: %v", msg)
	}
}

// S6 — overlap ordering: priority, then specificity, then insertion order.
func TestRoute_OverlapOrdering(t *testing.T) {
	r, err := New(
		RouteSpec{Pattern: "**", Handler: instr("CatchAll"), Priority: -100},
		RouteSpec{Pattern: "*.*.created", Handler: instr("A1"), Priority: 0},
		RouteSpec{Pattern: "user.**", Handler: instr("A2"), Priority: 0},
		RouteSpec{Pattern: "user.*.created", Handler: instr("A3"), Priority: 0},
		RouteSpec{Pattern: "user.123.created", Handler: instr("A4"), Priority: 0},
	)
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Route(sig(t, "user.123.created", nil))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "A4", "A3", "A2", "A1", "CatchAll")
}

// P1/route-empty: no matching routes yields the exact literal message.
func TestRoute_NoMatch(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "user.created", Handler: instr("Add")})
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Route(sig(t, "user.deleted", nil))
	if err == nil {
		t.Fatal("expected routing_error for no match")
	}
	if msg := routingMessage(t, err); msg != "No matching handlers found for signal" {
		t.Fatalf("expected exact no-match message, got %q", msg)
	}
}

// Boundary: leading/trailing single wildcard matches exactly one segment.
func TestRoute_LeadingTrailingWildcard(t *testing.T) {
	r, err := New(
		RouteSpec{Pattern: "*.created", Handler: instr("Leading")},
		RouteSpec{Pattern: "user.*", Handler: instr("Trailing")},
	)
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Route(sig(t, "user.created", nil))
	if err != nil {
		t.Fatal(err)
	}
	got := actions(t, out)
	if len(got) != 2 {
		t.Fatalf("expected both patterns to match, got %v", got)
	}

	_, err = r.Route(sig(t, "user.a.created", nil))
	if err == nil {
		t.Fatal("expected *.created and user.* to require exactly one segment")
	}
}

// Boundary: the bare "**" pattern matches any type, any length.
func TestRoute_BareMultiMatchesAnyType(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "**", Handler: instr("Any")})
	if err != nil {
		t.Fatal(err)
	}
	for _, typ := range []string{"a", "a.b", "a.b.c.d.e"} {
		out, err := r.Route(sig(t, typ, nil))
		if err != nil {
			t.Fatalf("type %q: %v", typ, err)
		}
		assertActions(t, out, "Any")
	}
}

// Boundary: "**" matches zero segments when positioned mid-pattern.
func TestRoute_MultiMatchesZeroSegments(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "order.**.completed", Handler: instr("Subtract")})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Route(sig(t, "order.completed", nil))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "Subtract")
}

// Boundary: priority must stay within [-100, 100].
func TestCompileRoute_PriorityOutOfRange(t *testing.T) {
	for _, p := range []int{101, -101} {
		_, err := New(RouteSpec{Pattern: "user.created", Handler: instr("Add"), Priority: p})
		if err == nil {
			t.Fatalf("expected priority %d to reject", p)
		}
		if sigerr.KindOf(err) != sigerr.KindRouting {
			t.Errorf("expected routing_error, got %v", err)
		}
	}
}

// P5: a pattern with two multi-wildcards must never register.
func TestCompilePattern_RejectsDoubleMulti(t *testing.T) {
	_, err := New(RouteSpec{Pattern: "user.**.**.created", Handler: instr("Add")})
	if err == nil {
		t.Fatal("expected rejection of a pattern with two multi-wildcards")
	}
}

// Boundary: empty segments and invalid characters in a pattern reject at registration.
func TestCompilePattern_RejectsMalformedPattern(t *testing.T) {
	for _, p := range []string{"user..created", "User.Created", "user.created!"} {
		if _, err := New(RouteSpec{Pattern: p, Handler: instr("Add")}); err == nil {
			t.Errorf("pattern %q: expected rejection", p)
		}
	}
}

// Boundary: signal types with empty segments or invalid characters reject at match time.
func TestRoute_RejectsMalformedSignalType(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "**", Handler: instr("Any")})
	if err != nil {
		t.Fatal(err)
	}
	for _, typ := range []string{"user..created", "User.Created", "user.created!"} {
		if _, err := r.Route(sig(t, typ, nil)); err == nil {
			t.Errorf("type %q: expected rejection", typ)
		}
	}
}

// Guard panics are normalized into a routing_error, not propagated.
func TestRoute_GuardPanicNormalized(t *testing.T) {
	panicky := func(*signal.Signal) bool { panic("boom") }
	r, err := New(RouteSpec{Pattern: "user.created", Guard: panicky, Handler: instr("Add")})
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Route(sig(t, "user.created", nil))
	if err == nil {
		t.Fatal("expected routing_error from panicking guard")
	}
	if sigerr.KindOf(err) != sigerr.KindRouting {
		t.Errorf("expected routing_error, got %v", err)
	}
}

// P4: equal (priority, specificity) ties break by insertion order.
func TestRoute_EqualRankTiesByInsertionOrder(t *testing.T) {
	r, err := New(
		RouteSpec{Pattern: "user.created", Handler: instr("First")},
		RouteSpec{Pattern: "user.created", Handler: instr("Second")},
	)
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Route(sig(t, "user.created", nil))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "First", "Second")
}

// P3: repeated Route calls against the same Router are deterministic.
func TestRoute_DeterministicAcrossRepeatedCalls(t *testing.T) {
	r, err := New(
		RouteSpec{Pattern: "**", Handler: instr("CatchAll"), Priority: -100},
		RouteSpec{Pattern: "user.*.created", Handler: instr("Specific")},
	)
	if err != nil {
		t.Fatal(err)
	}
	s := sig(t, "user.123.created", nil)
	var first []string
	for i := 0; i < 5; i++ {
		out, err := r.Route(s)
		if err != nil {
			t.Fatal(err)
		}
		got := actions(t, out)
		if first == nil {
			first = got
			continue
		}
		if fmt.Sprint(got) != fmt.Sprint(first) {
			t.Fatalf("call %d: got %v, want %v", i, got, first)
		}
	}
}

// L1: add never mutates the original Router value; callers that held the
// old handle keep seeing the old route set.
func TestAdd_DoesNotMutateOriginal(t *testing.T) {
	base, err := New(RouteSpec{Pattern: "user.created", Handler: instr("Add")})
	if err != nil {
		t.Fatal(err)
	}
	extended, err := base.Add(RouteSpec{Pattern: "user.deleted", Handler: instr("Remove")})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := base.Route(sig(t, "user.deleted", nil)); err == nil {
		t.Fatal("expected base Router to remain unaware of the added route")
	}
	out, err := extended.Route(sig(t, "user.deleted", nil))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "Remove")
}

// L2: remove is add's inverse when the removed route was the only one at
// that pattern.
func TestRemove_InverseOfAdd(t *testing.T) {
	base, err := New(RouteSpec{Pattern: "user.created", Handler: instr("Add")})
	if err != nil {
		t.Fatal(err)
	}
	handler := instr("Extra")
	added, err := base.Add(RouteSpec{Pattern: "user.deleted", Handler: handler})
	if err != nil {
		t.Fatal(err)
	}
	restored := added.Remove("user.deleted", handler)

	if _, err := restored.Route(sig(t, "user.deleted", nil)); err == nil {
		t.Fatal("expected user.deleted route to be gone after remove")
	}
	out, err := restored.Route(sig(t, "user.created", nil))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "Add")
}

// Remove on a pattern with no registered routes is a no-op, not an error.
func TestRemove_MissingPatternIsNoOp(t *testing.T) {
	r, err := New(RouteSpec{Pattern: "user.created", Handler: instr("Add")})
	if err != nil {
		t.Fatal(err)
	}
	unchanged := r.Remove("nothing.here", nil)
	out, err := unchanged.Route(sig(t, "user.created", nil))
	if err != nil {
		t.Fatal(err)
	}
	assertActions(t, out, "Add")
}

// Remove without a handler clears every route registered at that pattern.
func TestRemove_NilHandlerClearsAllAtPattern(t *testing.T) {
	r, err := New(
		RouteSpec{Pattern: "user.created", Handler: instr("First")},
		RouteSpec{Pattern: "user.created", Handler: instr("Second")},
	)
	if err != nil {
		t.Fatal(err)
	}
	cleared := r.Remove("user.created", nil)
	if _, err := cleared.Route(sig(t, "user.created", nil)); err == nil {
		t.Fatal("expected no routes left after nil-handler remove")
	}
}

// DispatchGroup handlers expand into individual dispatch targets, in
// their declared order, at that route's position.
func TestRoute_DispatchGroupExpands(t *testing.T) {
	r, err := New(RouteSpec{
		Pattern: "user.created",
		Handler: DispatchGroup{Items: []signal.Target{{Tag: "console"}, {Tag: "noop"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Route(sig(t, "user.created", nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 expanded targets, got %d", len(out))
	}
	first, ok := out[0].(Dispatch)
	if !ok || first.Target.Tag != "console" {
		t.Errorf("expected first target console, got %#v", out[0])
	}
	second, ok := out[1].(Dispatch)
	if !ok || second.Target.Tag != "noop" {
		t.Errorf("expected second target noop, got %#v", out[1])
	}
}

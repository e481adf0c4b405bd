package router

import "github.com/sigbus/sigbus/pkg/signal"

// Handler is what a matched Route contributes to the ordered result of a
// Route call. It is one of Instruction, Dispatch, or DispatchGroup —
// modeled as a closed set of concrete types rather than an interface with
// behavior, since routing never invokes a handler, only returns it for the
// caller (or the dispatch pipeline) to act on.
type Handler interface {
	isHandler()
}

// Instruction is an opaque handler payload naming an action and its
// arguments; execution is the responsibility of an external collaborator.
type Instruction struct {
	Action string
	Args   map[string]any
}

func (Instruction) isHandler() {}

// Dispatch is a single dispatch target: deliver the signal via the named
// adapter with the given options.
type Dispatch struct {
	Target signal.Target
}

func (Dispatch) isHandler() {}

// DispatchGroup is an ordered sequence of dispatch targets contributed by
// a single Route at its matched position.
type DispatchGroup struct {
	Items []signal.Target
}

func (DispatchGroup) isHandler() {}

// Guard is a pure, total predicate evaluated after a Route's pattern has
// structurally matched a signal's type. Guards must not block and must
// not panic; a panicking or non-terminating guard is a defect in caller
// code, not something the router can fully protect against, but panics
// that do occur are recovered and turned into a routing_error (see
// evaluateGuard).
type Guard func(*signal.Signal) bool

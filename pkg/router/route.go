package router

import "github.com/sigbus/sigbus/pkg/sigerr"

const (
	minPriority = -100
	maxPriority = 100
)

// Route is a compiled entry binding a type pattern, an optional guard, and
// a priority to a Handler. insertionIndex is assigned at registration and
// used only as the final, stable ordering tie-break.
type Route struct {
	Pattern        string
	Guard          Guard
	Handler        Handler
	Priority       int
	compiled       *pattern
	insertionIndex int64
}

// RouteSpec is the input shape for registering a route: everything the
// caller controls before the router assigns an insertion index.
type RouteSpec struct {
	Pattern  string
	Guard    Guard
	Handler  Handler
	Priority int
}

func compileRoute(spec RouteSpec, seq int64) (*Route, error) {
	if spec.Priority < minPriority || spec.Priority > maxPriority {
		return nil, sigerr.Routing("priority %d out of range [%d, %d]", spec.Priority, minPriority, maxPriority)
	}
	if spec.Handler == nil {
		return nil, sigerr.Routing("route %q has no handler", spec.Pattern)
	}
	compiled, err := compilePattern(spec.Pattern)
	if err != nil {
		return nil, err
	}
	return &Route{
		Pattern:        spec.Pattern,
		Guard:          spec.Guard,
		Handler:        spec.Handler,
		Priority:       spec.Priority,
		compiled:       compiled,
		insertionIndex: seq,
	}, nil
}

package router

import (
	"sort"

	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// matchState is one position in the worklist traversal: a trie node
// paired with how many signal segments have been consumed to reach it.
type matchState struct {
	n   *node
	idx int
}

// Route matches sig.Type against the trie, evaluates guards, orders the
// surviving candidates, and flattens the result into a single handler
// sequence. It returns routing_error when the signal type is malformed,
// when a guard panics or returns a non-bool, or when nothing matches.
func (r *Router) Route(sig *signal.Signal) ([]Handler, error) {
	segs, err := splitType(sig.Type)
	if err != nil {
		return nil, err
	}

	candidates := r.collect(segs)

	matched := make([]*Route, 0, len(candidates))
	for _, route := range candidates {
		ok, err := evaluateGuard(route, sig)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, route)
		}
	}
	sortRoutes(matched)

	var out []Handler
	for _, route := range matched {
		if group, ok := route.Handler.(DispatchGroup); ok {
			for _, target := range group.Items {
				out = append(out, Dispatch{Target: target})
			}
			continue
		}
		out = append(out, route.Handler)
	}

	if len(out) == 0 {
		return nil, sigerr.Routing("No matching handlers found for signal")
	}
	return out, nil
}

// collect runs the worklist traversal described in the match algorithm:
// literal and single-wildcard children each advance by exactly one
// segment, a multi-wildcard child is reachable at every remaining
// advance from the current position through the end of segs (it
// consumes zero or more segments). Visited (node, idx) pairs are
// deduplicated so overlapping multi-wildcard spans never double-collect
// a terminal node's routes.
func (r *Router) collect(segs []string) []*Route {
	n := len(segs)
	visited := make(map[matchState]bool)
	queue := []matchState{{r.root, 0}}
	var candidates []*Route

	for len(queue) > 0 {
		st := queue[0]
		queue = queue[1:]
		if visited[st] {
			continue
		}
		visited[st] = true

		if st.idx == n {
			candidates = append(candidates, st.n.routes...)
		} else {
			c := segs[st.idx]
			if child, ok := st.n.literal[c]; ok {
				queue = append(queue, matchState{child, st.idx + 1})
			}
			if st.n.single != nil {
				queue = append(queue, matchState{st.n.single, st.idx + 1})
			}
		}
		if st.n.multi != nil {
			for k := st.idx; k <= n; k++ {
				queue = append(queue, matchState{st.n.multi, k})
			}
		}
	}
	return candidates
}

// evaluateGuard runs route's guard, if any, recovering a panic into a
// routing_error rather than letting it escape the router.
func evaluateGuard(route *Route, sig *signal.Signal) (ok bool, err error) {
	if route.Guard == nil {
		return true, nil
	}
	defer func() {
		if p := recover(); p != nil {
			ok = false
			err = sigerr.Routing("guard for pattern %q panicked: %v", route.Pattern, p)
		}
	}()
	return route.Guard(sig), nil
}

// sortRoutes orders matched routes by the composite key from §4.3.4:
// priority descending, specificity descending, insertion index
// ascending. The index comparison alone would already make this stable,
// but SliceStable costs nothing extra and documents the intent.
func sortRoutes(routes []*Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if c := compareSpecificity(a.compiled.specificity, b.compiled.specificity); c != 0 {
			return c > 0
		}
		return a.insertionIndex < b.insertionIndex
	})
}

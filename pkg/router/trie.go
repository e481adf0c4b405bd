package router

import "reflect"

// node is one trie position. Children are partitioned into three buckets
// as specified: literals keyed by exact segment string, a dedicated slot
// for "*", and a dedicated slot for "**". Terminal nodes (reached exactly
// when a pattern is fully consumed) carry the Routes registered there, in
// insertion order.
type node struct {
	literal map[string]*node
	single  *node
	multi   *node
	routes  []*Route
}

func newNode() *node {
	return &node{}
}

// clone returns a shallow copy of n: a new literal map referencing the
// same child pointers, and the same single/multi pointers and routes
// slice. Callers that descend further replace the specific child they
// mutate, giving the trie copy-on-write semantics — add/remove share
// structure with the previous Router value everywhere off the insertion
// or removal path.
func (n *node) clone() *node {
	if n == nil {
		return newNode()
	}
	c := &node{single: n.single, multi: n.multi}
	if len(n.literal) > 0 {
		c.literal = make(map[string]*node, len(n.literal))
		for k, v := range n.literal {
			c.literal[k] = v
		}
	}
	if len(n.routes) > 0 {
		c.routes = append([]*Route(nil), n.routes...)
	}
	return c
}

// insert walks (or creates, copy-on-write) the path described by segs and
// appends route at the terminal node.
func insert(root *node, segs []segment, route *Route) *node {
	n := root.clone()
	if len(segs) == 0 {
		n.routes = append(n.routes, route)
		return n
	}

	head, rest := segs[0], segs[1:]
	switch head.kind {
	case segLiteral:
		if n.literal == nil {
			n.literal = make(map[string]*node)
		}
		child := n.literal[head.literal]
		n.literal[head.literal] = insert(child, rest, route)
	case segSingle:
		n.single = insert(n.single, rest, route)
	case segMulti:
		n.multi = insert(n.multi, rest, route)
	}
	return n
}

// removeAt walks the path described by segs and filters the terminal
// node's routes. If handler is non-nil, only routes with a matching
// handler are removed; otherwise every route registered at that exact
// pattern is removed, per the reference "remove all" behavior.
func removeAt(root *node, segs []segment, handler Handler) *node {
	if root == nil {
		return nil
	}
	n := root.clone()

	if len(segs) == 0 {
		if handler == nil {
			n.routes = nil
		} else {
			filtered := n.routes[:0:0]
			for _, r := range n.routes {
				if !sameHandler(r.Handler, handler) {
					filtered = append(filtered, r)
				}
			}
			n.routes = filtered
		}
		return n
	}

	head, rest := segs[0], segs[1:]
	switch head.kind {
	case segLiteral:
		if n.literal == nil {
			return n
		}
		child, ok := n.literal[head.literal]
		if !ok {
			return n
		}
		n.literal = cloneLiteralMap(n.literal)
		n.literal[head.literal] = removeAt(child, rest, handler)
	case segSingle:
		n.single = removeAt(n.single, rest, handler)
	case segMulti:
		n.multi = removeAt(n.multi, rest, handler)
	}
	return n
}

func cloneLiteralMap(m map[string]*node) map[string]*node {
	c := make(map[string]*node, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// sameHandler compares handlers by value equality on their concrete type.
// Instructions, Dispatches, and DispatchGroups are plain data, so == and
// slice/map-aware comparison covers the equality a caller expects from
// "remove this exact handler at this pattern". Instruction.Args values
// are compared with reflect.DeepEqual rather than == since a caller may
// put a non-comparable value (slice, map) in Args, which would panic the
// plain interface comparison operator.
func sameHandler(a, b Handler) bool {
	switch av := a.(type) {
	case Instruction:
		bv, ok := b.(Instruction)
		if !ok || av.Action != bv.Action || len(av.Args) != len(bv.Args) {
			return false
		}
		for k, v := range av.Args {
			if !reflect.DeepEqual(bv.Args[k], v) {
				return false
			}
		}
		return true
	case Dispatch:
		bv, ok := b.(Dispatch)
		return ok && av.Target.Tag == bv.Target.Tag && reflect.DeepEqual(av.Target.Options, bv.Target.Options)
	case DispatchGroup:
		bv, ok := b.(DispatchGroup)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if av.Items[i].Tag != bv.Items[i].Tag || !reflect.DeepEqual(av.Items[i].Options, bv.Items[i].Options) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

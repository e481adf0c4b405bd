package router

// Router is an immutable, value-typed binding of type patterns to
// handlers. Add and Remove never mutate the receiver; they return a new
// Router sharing trie structure with the original wherever the edit
// didn't touch it. Route never mutates anything and needs no
// synchronization against concurrent Route calls on the same value.
type Router struct {
	root *node
	seq  int64
}

// New compiles specs into a fresh Router. Each spec's insertion index is
// assigned in argument order.
func New(specs ...RouteSpec) (*Router, error) {
	return (&Router{root: newNode()}).Add(specs...)
}

// Add compiles and inserts specs, returning a new Router. The receiver
// is left unchanged. All specs in one call either all succeed or none
// are applied.
func (r *Router) Add(specs ...RouteSpec) (*Router, error) {
	root, seq := r.root, r.seq
	for _, spec := range specs {
		route, err := compileRoute(spec, seq)
		if err != nil {
			return nil, err
		}
		root = insert(root, route.compiled.segments, route)
		seq++
	}
	return &Router{root: root, seq: seq}, nil
}

// Remove deletes routes at pattern, returning a new Router. When handler
// is nil, every route registered at that exact pattern is removed;
// otherwise only the route(s) whose handler equals handler are removed.
// A pattern with no registered routes, or a pattern that fails to
// compile, is a no-op: Remove never fails.
func (r *Router) Remove(pattern string, handler Handler) *Router {
	p, err := compilePattern(pattern)
	if err != nil {
		return r
	}
	return &Router{root: removeAt(r.root, p.segments, handler), seq: r.seq}
}

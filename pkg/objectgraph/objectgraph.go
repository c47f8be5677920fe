package objectgraph

import (
	"reflect"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bramp/objectgraph/pkg/errors"
	"github.com/bramp/objectgraph/pkg/observability"
)

// Visitor is called once for each object reached during a traversal.
type Visitor interface {
	// Visit receives a non-nil object and the non-nil type it was reached
	// through. For objects held in interface-typed fields, declared is the
	// interface type rather than obj's own type.
	//
	// Returning true stops the traversal immediately.
	Visit(obj any, declared reflect.Type) (stop bool)
}

// VisitorFunc adapts a function to the [Visitor] interface.
type VisitorFunc func(obj any, declared reflect.Type) bool

// Visit calls f(obj, declared).
func (f VisitorFunc) Visit(obj any, declared reflect.Type) bool { return f(obj, declared) }

// Edge is a reference between two objects, identified by visit index.
// The root has index 0.
type Edge struct {
	From  int
	To    int
	Label string // field name, "[i]" for elements, "[k]" for map values
}

// EdgeVisitor is a [Visitor] that also observes references.
//
// VisitEdge is called for every reference found while descending into the
// object with index From, including references to objects discovered earlier.
// The object at To may not have been visited yet when the edge is reported.
type EdgeVisitor interface {
	Visitor
	VisitEdge(e Edge)
}

// Options configures a traversal.
// The zero value excludes static and transient fields and excludes no types.
type Options struct {
	IncludeStatic    bool
	IncludeTransient bool

	// ExcludedTypes are skipped entirely, along with anything that
	// implements or embeds them.
	ExcludedTypes []reflect.Type

	// Introspector lists struct fields. Nil uses DefaultIntrospector.
	Introspector Introspector

	// Logger receives debug output. Nil uses log.Default().
	Logger *log.Logger
}

// Validate reports configuration mistakes.
// A nil excluded type is rejected with an INVALID_CONFIG error.
func (o Options) Validate() error {
	for i, t := range o.ExcludedTypes {
		if t == nil {
			return errors.New(errors.ErrCodeInvalidConfig, "excluded type at index %d is nil", i)
		}
	}
	return nil
}

// Stats summarizes a finished traversal.
type Stats struct {
	Visited    int  // Visitor calls made
	Discovered int  // Objects enqueued, visited or not
	Stopped    bool // The visitor ended the traversal early
}

// Graph traverses object graphs with a fixed visitor and configuration.
// The discovered set and frontier are reset by every call to Traverse.
type Graph struct {
	visitor  Visitor
	edges    EdgeVisitor
	opts     Options
	fields   Introspector
	excluded *typeSet
	logger   *log.Logger

	reg   registry
	queue frontier
}

// New creates a Graph that reports to v.
// It returns an INVALID_CONFIG error if v is nil or opts is invalid.
func New(v Visitor, opts Options) (*Graph, error) {
	if v == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "visitor cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		visitor:  v,
		opts:     opts,
		fields:   opts.Introspector,
		excluded: newTypeSet(opts.ExcludedTypes),
		logger:   opts.Logger,
	}
	if ev, ok := v.(EdgeVisitor); ok {
		g.edges = ev
	}
	if g.fields == nil {
		g.fields = DefaultIntrospector
	}
	if g.logger == nil {
		g.logger = log.Default()
	}
	return g, nil
}

// Traverse is shorthand for New followed by Graph.Traverse.
func Traverse(root any, v Visitor, opts Options) (Stats, error) {
	g, err := New(v, opts)
	if err != nil {
		return Stats{}, err
	}
	return g.Traverse(root), nil
}

// Traverse visits every object reachable from root in breadth-first order.
// The root is reported under its own type. A nil root, or a nil pointer,
// map, slice or func, visits nothing.
func (g *Graph) Traverse(root any) Stats {
	g.reg.reset()
	g.queue.reset()

	if root == nil {
		return Stats{}
	}

	rv := reflect.ValueOf(root)
	name := rv.Type().String()
	hooks := observability.Traversal()
	hooks.OnTraverseStart(name)
	start := time.Now()

	g.discover(noParent, rv, rv.Type(), "")
	stats := g.drain()

	elapsed := time.Since(start)
	hooks.OnTraverseComplete(name, stats.Visited, stats.Stopped, elapsed)
	g.logger.Debug("traversal complete",
		"root", name,
		"visited", stats.Visited,
		"discovered", stats.Discovered,
		"stopped", stats.Stopped,
		"elapsed", elapsed.Round(time.Microsecond))

	return stats
}

func (g *Graph) drain() Stats {
	var stats Stats
	for {
		n, ok := g.queue.pop()
		if !ok {
			break
		}

		stats.Visited++
		if g.visitor.Visit(n.value.Interface(), n.declared) {
			stats.Stopped = true
			break
		}
		g.descend(n)
	}
	stats.Discovered = g.reg.count
	return stats
}

// noParent marks the root, which has no incoming edge.
const noParent = -1

// discover registers v and enqueues it if it has not been seen before.
// A nil declared type means v is reported under its own runtime type.
func (g *Graph) discover(parent int, v reflect.Value, declared reflect.Type, label string) {
	v = concrete(v)
	if isNull(v) {
		return
	}
	if !v.CanInterface() {
		g.logger.Debug("skipping inaccessible value", "type", v.Type(), "label", label)
		return
	}
	if g.excluded.matches(v.Type()) {
		return
	}
	if declared == nil {
		declared = v.Type()
	}

	seq, fresh := g.reg.register(v)
	if fresh {
		g.queue.push(node{seq: seq, value: v, declared: declared})
	}
	if g.edges != nil && parent != noParent {
		g.edges.VisitEdge(Edge{From: parent, To: seq, Label: label})
	}
}

// concrete unwraps interfaces. It returns the zero Value for a nil interface.
func concrete(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// isNull reports whether v is absent or a nil reference.
func isNull(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}

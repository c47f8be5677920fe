package report

import (
	"fmt"
	"reflect"
	"slices"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bramp/objectgraph/pkg/objectgraph"
)

// maxValueLen bounds the length of recorded primitive values.
const maxValueLen = 64

// Recorder builds a Report from a traversal.
// A Recorder records a single traversal and is not safe for concurrent use.
type Recorder struct {
	limit  int
	report Report
	depth  map[int]int
}

var _ objectgraph.EdgeVisitor = (*Recorder)(nil)

// NewRecorder creates a recorder that stops the traversal after limit
// visits. A limit of zero or less records everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{
		limit:  limit,
		report: Report{ID: uuid.NewString()},
		depth:  make(map[int]int),
	}
}

// Visit records obj as the next node.
func (r *Recorder) Visit(obj any, declared reflect.Type) bool {
	idx := len(r.report.Nodes)
	typ := reflect.TypeOf(obj).String()
	if idx == 0 {
		r.report.Root = typ
	}

	kind := objectgraph.KindOf(obj)
	r.report.Nodes = append(r.report.Nodes, Node{
		Index:    idx,
		Depth:    r.depth[idx],
		Type:     typ,
		Declared: declared.String(),
		Kind:     kind.String(),
		Value:    summarize(obj, kind),
	})

	if r.limit > 0 && len(r.report.Nodes) >= r.limit {
		r.report.Stopped = true
		return true
	}
	return false
}

// VisitEdge records a reference. The first reference to a node fixes its
// depth, since it comes from the node that discovered it.
func (r *Recorder) VisitEdge(e objectgraph.Edge) {
	if _, ok := r.depth[e.To]; !ok && e.To != 0 {
		r.depth[e.To] = r.depth[e.From] + 1
	}
	r.report.Edges = append(r.report.Edges, Edge{From: e.From, To: e.To, Label: e.Label})
}

// Report returns the recorded report. Edges to nodes that were discovered
// but never visited are dropped.
func (r *Recorder) Report() *Report {
	out := r.report
	out.Nodes = slices.Clone(r.report.Nodes)
	out.Edges = slices.DeleteFunc(slices.Clone(r.report.Edges), func(e Edge) bool {
		return e.To >= len(out.Nodes)
	})
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	return &out
}

// summarize renders primitive values for display.
func summarize(obj any, kind objectgraph.Kind) string {
	if kind != objectgraph.KindPrimitive {
		return ""
	}

	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ""
	case reflect.Pointer:
		v = v.Elem()
	}

	var s string
	if v.Kind() == reflect.String {
		s = fmt.Sprintf("%q", v.String())
	} else {
		s = fmt.Sprint(v)
	}
	return truncate(s, maxValueLen)
}

// truncate shortens s to at most n bytes, ending in "...". It never splits
// a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := n - len("...")
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "..."
}

// Build traverses root and returns its report, stopping after limit nodes
// when limit is positive.
func Build(root any, opts objectgraph.Options, limit int) (*Report, error) {
	rec := NewRecorder(limit)
	if _, err := objectgraph.Traverse(root, rec, opts); err != nil {
		return nil, err
	}
	return rec.Report(), nil
}

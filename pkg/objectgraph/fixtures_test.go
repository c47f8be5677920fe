package objectgraph

import (
	"iter"
	"reflect"
	"testing"
)

// =============================================================================
// Fixtures
// =============================================================================

type leaf struct {
	name string
}

type fieldFixture struct {
	private   *leaf
	Public    *leaf
	Nil       *leaf
	Transient *leaf `objectgraph:"transient"`
	Skipped   *leaf `objectgraph:"-"`
}

var staticLeaf = &leaf{name: "static"}

func newFieldFixture() *fieldFixture {
	return &fieldFixture{
		private:   &leaf{name: "private"},
		Public:    &leaf{name: "public"},
		Transient: &leaf{name: "transient"},
		Skipped:   &leaf{name: "skipped"},
	}
}

// staticIntrospector returns an introspector with staticLeaf registered as a
// static field of fieldFixture.
func staticIntrospector(t *testing.T) *ReflectIntrospector {
	t.Helper()
	in := NewReflectIntrospector()
	if err := in.RegisterStatic(reflect.TypeFor[fieldFixture](), "staticLeaf", &staticLeaf); err != nil {
		t.Fatalf("RegisterStatic: %v", err)
	}
	return in
}

type loop struct {
	child *loop
}

type Root struct{ ID int }
type Child struct{ Root }
type ChildChild struct{ Child }

type classFixture struct {
	R  *Root
	C  *Child
	CC *ChildChild

	// The same objects again, behind fields of a broader type.
	R1  any
	C1  any
	CC1 any
}

func newClassFixture() *classFixture {
	f := &classFixture{
		R:  &Root{ID: 1},
		C:  &Child{Root{ID: 2}},
		CC: &ChildChild{Child{Root{ID: 3}}},
	}
	f.R1, f.C1, f.CC1 = f.R, f.C, f.CC
	return f
}

// list is an Iterable container.
type list struct {
	items []any
}

func (l *list) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, it := range l.items {
			if !yield(it) {
				return
			}
		}
	}
}

// =============================================================================
// Recording visitor
// =============================================================================

type recorder struct {
	t         *testing.T
	objs      []any
	types     []reflect.Type
	edges     []Edge
	stopAfter int
}

func newRecorder(t *testing.T) *recorder {
	return &recorder{t: t}
}

func (r *recorder) Visit(obj any, declared reflect.Type) bool {
	if obj == nil {
		r.t.Fatal("Visit called with nil object")
	}
	if declared == nil {
		r.t.Fatal("Visit called with nil declared type")
	}
	if p := reflect.ValueOf(obj); p.Kind() == reflect.Pointer && r.index(obj) >= 0 {
		r.t.Fatalf("object %p visited twice", obj)
	}

	r.objs = append(r.objs, obj)
	r.types = append(r.types, declared)
	return r.stopAfter > 0 && len(r.objs) >= r.stopAfter
}

func (r *recorder) VisitEdge(e Edge) {
	r.edges = append(r.edges, e)
}

// index returns the visit index of the pointer p, or -1.
func (r *recorder) index(p any) int {
	pv := reflect.ValueOf(p)
	for i, o := range r.objs {
		ov := reflect.ValueOf(o)
		if ov.Kind() == reflect.Pointer && ov.Type() == pv.Type() && ov.Pointer() == pv.Pointer() {
			return i
		}
	}
	return -1
}

func (r *recorder) contains(p any) bool { return r.index(p) >= 0 }

// values returns visited objects of type T.
func values[T any](r *recorder) []T {
	var out []T
	for _, o := range r.objs {
		if v, ok := o.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func traverse(t *testing.T, root any, opts Options) (*recorder, Stats) {
	t.Helper()
	r := newRecorder(t)
	stats, err := Traverse(root, r, opts)
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	return r, stats
}

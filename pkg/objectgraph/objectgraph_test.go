package objectgraph

import (
	"reflect"
	"slices"
	"testing"

	"github.com/bramp/objectgraph/pkg/errors"
)

func TestTraverse_DefaultFieldFilter(t *testing.T) {
	f := newFieldFixture()
	r, _ := traverse(t, f, Options{Introspector: staticIntrospector(t)})

	if r.index(f) != 0 {
		t.Errorf("root visited at %d, want 0", r.index(f))
	}
	for _, want := range []*leaf{f.private, f.Public} {
		if !r.contains(want) {
			t.Errorf("field value %q not visited", want.name)
		}
	}
	for _, skip := range []*leaf{f.Transient, f.Skipped, staticLeaf} {
		if r.contains(skip) {
			t.Errorf("field value %q visited with default options", skip.name)
		}
	}
}

func TestTraverse_IncludeStaticAndTransient(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		visited []string
		skipped []string
	}{
		{
			name:    "static only",
			opts:    Options{IncludeStatic: true},
			visited: []string{"private", "public", "static"},
			skipped: []string{"transient", "skipped"},
		},
		{
			name:    "transient only",
			opts:    Options{IncludeTransient: true},
			visited: []string{"private", "public", "transient", "skipped"},
			skipped: []string{"static"},
		},
		{
			name:    "both",
			opts:    Options{IncludeStatic: true, IncludeTransient: true},
			visited: []string{"private", "public", "transient", "skipped", "static"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFieldFixture()
			tt.opts.Introspector = staticIntrospector(t)
			r, _ := traverse(t, f, tt.opts)

			var names []string
			for _, l := range values[*leaf](r) {
				names = append(names, l.name)
			}
			for _, want := range tt.visited {
				if !slices.Contains(names, want) {
					t.Errorf("visited %v, missing %q", names, want)
				}
			}
			for _, skip := range tt.skipped {
				if slices.Contains(names, skip) {
					t.Errorf("visited %v, should not contain %q", names, skip)
				}
			}
		})
	}
}

func TestTraverse_Cycle(t *testing.T) {
	a := &loop{}
	b := &loop{child: a}
	a.child = b

	r, stats := traverse(t, a, Options{})

	if len(r.objs) != 2 {
		t.Fatalf("visited %d objects, want 2", len(r.objs))
	}
	if !r.contains(a) || !r.contains(b) {
		t.Error("both cycle members should be visited")
	}
	if stats.Visited != 2 || stats.Discovered != 2 || stats.Stopped {
		t.Errorf("stats = %+v", stats)
	}
}

func TestTraverse_SelfReference(t *testing.T) {
	a := &loop{}
	a.child = a

	r, _ := traverse(t, a, Options{})
	if len(r.objs) != 1 {
		t.Errorf("visited %d objects, want 1", len(r.objs))
	}
}

func TestTraverse_SharedObjectVisitedOnce(t *testing.T) {
	shared := &leaf{name: "shared"}
	root := &struct {
		A, B *leaf
		C    any
		D    []*leaf
	}{A: shared, B: shared, C: shared, D: []*leaf{shared, shared}}

	r, _ := traverse(t, root, Options{})

	count := 0
	for _, l := range values[*leaf](r) {
		if l == shared {
			count++
		}
	}
	if count != 1 {
		t.Errorf("shared object visited %d times, want 1", count)
	}
}

func TestTraverse_EqualButDistinctObjects(t *testing.T) {
	root := &struct{ A, B *leaf }{A: &leaf{name: "x"}, B: &leaf{name: "x"}}

	r, _ := traverse(t, root, Options{})
	if !r.contains(root.A) || !r.contains(root.B) {
		t.Error("structurally equal objects should both be visited")
	}
}

func TestTraverse_BreadthFirst(t *testing.T) {
	type tail struct{ id int }
	type mid struct{ child *tail }
	root := &struct{ F1, F2 *mid }{
		F1: &mid{child: &tail{id: 1}},
		F2: &mid{child: &tail{id: 2}},
	}

	r, _ := traverse(t, root, Options{})

	m1, m2 := r.index(root.F1), r.index(root.F2)
	t1, t2 := r.index(root.F1.child), r.index(root.F2.child)
	if m1 < 0 || m2 < 0 || t1 < 0 || t2 < 0 {
		t.Fatalf("missing objects: indexes %d %d %d %d", m1, m2, t1, t2)
	}
	if max(m1, m2) > min(t1, t2) {
		t.Errorf("grandchild visited before child: mids at %d,%d, tails at %d,%d", m1, m2, t1, t2)
	}
}

func TestTraverse_Arrays(t *testing.T) {
	a, b, c := &leaf{name: "a"}, &leaf{name: "b"}, &leaf{name: "c"}
	root := &struct {
		Fixed [3]*leaf
		Slice []*leaf
	}{
		Fixed: [3]*leaf{a, nil, b},
		Slice: []*leaf{c, nil},
	}

	r, _ := traverse(t, root, Options{})

	for _, l := range []*leaf{a, b, c} {
		if !r.contains(l) {
			t.Errorf("array element %q not visited", l.name)
		}
	}
	if got := len(values[[3]*leaf](r)); got != 1 {
		t.Errorf("fixed array visited %d times, want 1", got)
	}
	if got := len(values[[]*leaf](r)); got != 1 {
		t.Errorf("slice visited %d times, want 1", got)
	}

	i := r.index(a)
	if want := reflect.TypeFor[*leaf](); r.types[i] != want {
		t.Errorf("array element declared as %v, want %v", r.types[i], want)
	}
}

func TestTraverse_SliceRoot(t *testing.T) {
	r, stats := traverse(t, []int{4, 5, 6}, Options{})

	got := values[int](r)
	if !slices.Equal(got, []int{4, 5, 6}) {
		t.Errorf("visited ints %v, want [4 5 6]", got)
	}
	if stats.Visited != 4 {
		t.Errorf("Visited = %d, want 4", stats.Visited)
	}
}

func TestTraverse_Iterable(t *testing.T) {
	root := &list{items: []any{4, 5, nil, 6}}

	r, _ := traverse(t, root, Options{})

	got := values[int](r)
	if !slices.Equal(got, []int{4, 5, 6}) {
		t.Errorf("visited ints %v, want [4 5 6]", got)
	}
	for i, o := range r.objs {
		if _, ok := o.(int); ok && r.types[i] != reflect.TypeFor[int]() {
			t.Errorf("element %v declared as %v, want int", o, r.types[i])
		}
	}
}

func TestTraverse_IterableUsesRuntimeType(t *testing.T) {
	l := &leaf{name: "inside"}
	root := &struct{ Items *list }{Items: &list{items: []any{l}}}

	r, _ := traverse(t, root, Options{})

	i := r.index(l)
	if i < 0 {
		t.Fatal("container element not visited")
	}
	if want := reflect.TypeFor[*leaf](); r.types[i] != want {
		t.Errorf("element declared as %v, want %v", r.types[i], want)
	}
}

func TestTraverse_IterableHeldByValue(t *testing.T) {
	l := &leaf{name: "inside"}
	root := &struct{ Items list }{Items: list{items: []any{l}}}

	r, _ := traverse(t, root, Options{})

	i := r.index(l)
	if i < 0 {
		t.Fatal("container element not visited")
	}
	if want := reflect.TypeFor[*leaf](); r.types[i] != want {
		t.Errorf("element declared as %v, want %v", r.types[i], want)
	}
	if got := values[[]any](r); len(got) != 0 {
		t.Errorf("container internals visited: %v", got)
	}
	if got := values[list](r); len(got) != 1 {
		t.Errorf("container visited %d times, want 1", len(got))
	}
}

func TestTraverse_Map(t *testing.T) {
	x, y := &leaf{name: "x"}, &leaf{name: "y"}
	root := map[string]*leaf{"b": y, "a": x, "nil": nil}

	r, _ := traverse(t, root, Options{})

	if !r.contains(x) || !r.contains(y) {
		t.Fatal("map values not visited")
	}
	if r.index(x) > r.index(y) {
		t.Error("map entries should be visited in key order")
	}
	keys := values[string](r)
	if !slices.Contains(keys, "a") || !slices.Contains(keys, "nil") {
		t.Errorf("map keys %v not visited", keys)
	}
}

func TestTraverse_ExcludedTypesCovariance(t *testing.T) {
	tests := []struct {
		name     string
		excluded []reflect.Type
		wantR    bool
		wantC    bool
		wantCC   bool
	}{
		{"none", nil, true, true, true},
		{"root", []reflect.Type{reflect.TypeFor[Root]()}, false, false, false},
		{"child", []reflect.Type{reflect.TypeFor[Child]()}, true, false, false},
		{"grandchild", []reflect.Type{reflect.TypeFor[ChildChild]()}, true, true, false},
		{"pointer to root", []reflect.Type{reflect.TypeFor[*Root]()}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newClassFixture()
			r, _ := traverse(t, f, Options{ExcludedTypes: tt.excluded})

			if got := r.contains(f.R); got != tt.wantR {
				t.Errorf("Root visited = %v, want %v", got, tt.wantR)
			}
			if got := r.contains(f.C); got != tt.wantC {
				t.Errorf("Child visited = %v, want %v", got, tt.wantC)
			}
			if got := r.contains(f.CC); got != tt.wantCC {
				t.Errorf("ChildChild visited = %v, want %v", got, tt.wantCC)
			}
		})
	}
}

func TestTraverse_ExcludedRoot(t *testing.T) {
	r, stats := traverse(t, &Child{}, Options{ExcludedTypes: []reflect.Type{reflect.TypeFor[Root]()}})
	if len(r.objs) != 0 || stats.Discovered != 0 {
		t.Errorf("excluded root visited: %v", r.objs)
	}
}

func TestTraverse_ExcludedInterface(t *testing.T) {
	root := &struct {
		Err  error
		Leaf *leaf
	}{Err: errors.New(errors.ErrCodeInternal, "boom"), Leaf: &leaf{}}

	r, _ := traverse(t, root, Options{ExcludedTypes: []reflect.Type{reflect.TypeFor[error]()}})

	if r.contains(root.Err) {
		t.Error("value implementing an excluded interface was visited")
	}
	if !r.contains(root.Leaf) {
		t.Error("unrelated field was skipped")
	}
}

func TestTraverse_EmbeddedFieldsFlattened(t *testing.T) {
	cc := &ChildChild{Child{Root{ID: 42}}}
	r, _ := traverse(t, cc, Options{})

	if got := values[int](r); !slices.Equal(got, []int{42}) {
		t.Errorf("visited ints %v, want [42]", got)
	}
	if got := len(values[Root](r)) + len(values[Child](r)); got != 0 {
		t.Errorf("embedded structs visited as separate objects: %d", got)
	}
}

func TestTraverse_DeclaredTypes(t *testing.T) {
	l := &leaf{name: "l"}
	root := &struct {
		Ptr   *leaf
		Iface any
		Num   int
	}{Ptr: l, Iface: "text", Num: 7}

	r, _ := traverse(t, root, Options{})

	if i := r.index(l); r.types[i] != reflect.TypeFor[*leaf]() {
		t.Errorf("pointer field declared as %v", r.types[i])
	}
	for i, o := range r.objs {
		switch o {
		case "text":
			if r.types[i] != reflect.TypeFor[any]() {
				t.Errorf("interface field declared as %v, want interface {}", r.types[i])
			}
		case 7:
			if r.types[i] != reflect.TypeFor[int]() {
				t.Errorf("int field declared as %v", r.types[i])
			}
		}
	}
	if r.types[0] != reflect.TypeOf(root) {
		t.Errorf("root declared as %v, want %v", r.types[0], reflect.TypeOf(root))
	}
}

func TestTraverse_ValueRootUnexportedFields(t *testing.T) {
	l := &leaf{name: "hidden"}
	root := struct{ hidden *leaf }{hidden: l}

	r, _ := traverse(t, root, Options{})
	if !r.contains(l) {
		t.Error("unexported field of a value root not visited")
	}
}

func TestTraverse_NilRoot(t *testing.T) {
	tests := []struct {
		name string
		root any
	}{
		{"untyped nil", nil},
		{"nil pointer", (*leaf)(nil)},
		{"nil map", map[string]int(nil)},
		{"nil slice", []int(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, stats := traverse(t, tt.root, Options{})
			if len(r.objs) != 0 || stats != (Stats{}) {
				t.Errorf("nil root visited %d objects, stats %+v", len(r.objs), stats)
			}
		})
	}
}

func TestTraverse_EarlyTermination(t *testing.T) {
	root := &struct{ A, B, C, D *leaf }{&leaf{"a"}, &leaf{"b"}, &leaf{"c"}, &leaf{"d"}}

	r := newRecorder(t)
	r.stopAfter = 2
	stats, err := Traverse(root, r, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if len(r.objs) != 2 {
		t.Errorf("visitor called %d times, want 2", len(r.objs))
	}
	if !stats.Stopped || stats.Visited != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestTraverse_Edges(t *testing.T) {
	a := &loop{}
	b := &loop{child: a}
	a.child = b

	r, _ := traverse(t, a, Options{})

	want := []Edge{
		{From: 0, To: 1, Label: "child"},
		{From: 1, To: 0, Label: "child"},
	}
	if !slices.Equal(r.edges, want) {
		t.Errorf("edges = %v, want %v", r.edges, want)
	}
}

func TestGraph_ReuseResetsState(t *testing.T) {
	a := &loop{}
	a.child = &loop{child: a}

	r := newRecorder(t)
	g, err := New(r, Options{})
	if err != nil {
		t.Fatal(err)
	}

	first := g.Traverse(a)
	r.objs, r.types = nil, nil
	second := g.Traverse(a)

	if first != second {
		t.Errorf("second traversal %+v differs from first %+v", second, first)
	}
	if len(r.objs) != 2 {
		t.Errorf("second traversal visited %d objects, want 2", len(r.objs))
	}
}

func TestTraverse_UnreadableFieldSkipped(t *testing.T) {
	type pair struct{ A, B *leaf }
	in := NewReflectIntrospector()
	err := in.Describe(reflect.TypeFor[pair](),
		Field{
			Name: "A",
			Type: reflect.TypeFor[*leaf](),
			Get: func(reflect.Value) (reflect.Value, error) {
				return reflect.Value{}, errors.New(errors.ErrCodeAccessDenied, "denied")
			},
		},
		Field{
			Name: "B",
			Type: reflect.TypeFor[*leaf](),
			Get: func(obj reflect.Value) (reflect.Value, error) {
				return obj.Field(1), nil
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	p := &pair{A: &leaf{"a"}, B: &leaf{"b"}}
	r, _ := traverse(t, p, Options{Introspector: in})

	if r.contains(p.A) {
		t.Error("denied field was visited")
	}
	if !r.contains(p.B) {
		t.Error("traversal did not continue past the denied field")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New(nil visitor) error = %v, want INVALID_CONFIG", err)
	}

	opts := Options{ExcludedTypes: []reflect.Type{reflect.TypeFor[Root](), nil}}
	_, err := New(VisitorFunc(func(any, reflect.Type) bool { return false }), opts)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New(nil excluded type) error = %v, want INVALID_CONFIG", err)
	}

	if _, err := Traverse(&leaf{}, nil, Options{}); err == nil {
		t.Error("Traverse(nil visitor) should fail")
	}
}

func TestVisitorFunc(t *testing.T) {
	var seen []any
	v := VisitorFunc(func(obj any, _ reflect.Type) bool {
		seen = append(seen, obj)
		return false
	})

	if _, err := Traverse(&loop{}, v, Options{}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 {
		t.Errorf("VisitorFunc called %d times, want 1", len(seen))
	}
}

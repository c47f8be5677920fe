package objectgraph

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
)

// Kind is the descent strategy used for an object.
type Kind uint8

const (
	// KindPrimitive values have no children: numbers, strings, bools,
	// funcs, channels and nil references.
	KindPrimitive Kind = iota
	// KindArray values are arrays and slices.
	KindArray
	// KindIterable values are maps and implementations of Iterable.
	KindIterable
	// KindComposite values are structs.
	KindComposite
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindIterable:
		return "iterable"
	case KindComposite:
		return "composite"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Iterable is implemented by containers that enumerate their own elements.
// Elements are reported under their runtime type.
type Iterable interface {
	All() iter.Seq[any]
}

var iterableType = reflect.TypeFor[Iterable]()

// KindOf returns the descent kind of obj.
func KindOf(obj any) Kind {
	k, _ := classify(reflect.ValueOf(obj))
	return k
}

// classify returns v's kind and the value its children are read from.
// Pointers and interfaces are followed to the value they refer to.
func classify(v reflect.Value) (Kind, reflect.Value) {
	for v.IsValid() {
		switch v.Kind() {
		case reflect.Pointer, reflect.Interface:
			if v.IsNil() {
				return KindPrimitive, v
			}
		}
		if v.CanInterface() && v.Type().Implements(iterableType) {
			return KindIterable, v
		}
		if v.CanAddr() && v.CanInterface() && reflect.PointerTo(v.Type()).Implements(iterableType) {
			return KindIterable, v.Addr()
		}

		switch v.Kind() {
		case reflect.Pointer, reflect.Interface:
			v = v.Elem()
		case reflect.Array, reflect.Slice:
			return KindArray, v
		case reflect.Map:
			return KindIterable, v
		case reflect.Struct:
			return KindComposite, v
		default:
			return KindPrimitive, v
		}
	}
	return KindPrimitive, v
}

// descend discovers the children of a visited node.
func (g *Graph) descend(n node) {
	kind, v := classify(n.value)
	switch kind {
	case KindArray:
		g.descendArray(n.seq, v)
	case KindIterable:
		g.descendIterable(n.seq, v)
	case KindComposite:
		g.descendComposite(n.seq, v)
	}
}

func (g *Graph) descendArray(parent int, v reflect.Value) {
	elem := v.Type().Elem()
	for i := range v.Len() {
		g.discover(parent, v.Index(i), elem, indexLabel(i))
	}
}

func (g *Graph) descendIterable(parent int, v reflect.Value) {
	if it, ok := v.Interface().(Iterable); ok {
		i := 0
		for elem := range it.All() {
			g.discover(parent, reflect.ValueOf(elem), nil, indexLabel(i))
			i++
		}
		return
	}

	for _, k := range sortedKeys(v) {
		g.discover(parent, k, nil, fmt.Sprintf("key(%v)", k))
		g.discover(parent, v.MapIndex(k), nil, fmt.Sprintf("[%v]", k))
	}
}

func (g *Graph) descendComposite(parent int, v reflect.Value) {
	v = addressable(v)
	for _, f := range g.fields.Fields(v.Type()) {
		if !g.eligible(f) {
			continue
		}
		val, err := f.Get(v)
		if err != nil {
			g.logger.Debug("skipping unreadable field", "type", v.Type(), "field", f.Name, "err", err)
			continue
		}
		g.discover(parent, val, f.Type, f.Name)
	}
}

// addressable returns v, or an addressable copy of v so that its unexported
// fields can be read. Pointers inside the copy still refer to the originals.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() || !v.CanInterface() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// sortedKeys returns the keys of map m in a deterministic order.
func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	slices.SortStableFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b reflect.Value) int {
	a, b = concrete(a), concrete(b)
	if a.Kind() != b.Kind() {
		return cmp.Compare(a.Kind(), b.Kind())
	}

	switch a.Kind() {
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case a.Bool():
			return 1
		}
		return -1
	case reflect.Invalid:
		return 0
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func indexLabel(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

package objectgraph

import "reflect"

// eligible applies the field filter before a field's value is read.
// Runtime types of the values read are checked again in discover.
func (g *Graph) eligible(f Field) bool {
	if f.Static && !g.opts.IncludeStatic {
		return false
	}
	if f.Transient && !g.opts.IncludeTransient {
		return false
	}
	if f.Type != nil && g.excluded.matches(f.Type) {
		return false
	}
	return true
}

// typeSet is a set of excluded types with memoized membership.
type typeSet struct {
	types []reflect.Type
	memo  map[reflect.Type]bool
}

func newTypeSet(types []reflect.Type) *typeSet {
	return &typeSet{
		types: types,
		memo:  make(map[reflect.Type]bool),
	}
}

// matches reports whether t is, implements, or embeds any type in the set.
func (s *typeSet) matches(t reflect.Type) bool {
	if len(s.types) == 0 {
		return false
	}
	if m, ok := s.memo[t]; ok {
		return m
	}

	m := false
	for _, e := range s.types {
		if IsSubtype(t, e) {
			m = true
			break
		}
	}
	s.memo[t] = m
	return m
}

// IsSubtype reports whether t can be used where e is expected:
//   - t is e
//   - e is an interface implemented by t or *t
//   - t embeds e, directly or through other embedded structs
//
// Pointer indirection is ignored, so *T is a subtype of T and the reverse.
func IsSubtype(t, e reflect.Type) bool {
	return isSubtype(t, e, nil)
}

func isSubtype(t, e reflect.Type, seen map[reflect.Type]bool) bool {
	if t == e {
		return true
	}
	if e.Kind() == reflect.Interface {
		if t.Implements(e) {
			return true
		}
		return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(e)
	}

	t, e = indirect(t), indirect(e)
	if t == e {
		return true
	}
	if t.Kind() != reflect.Struct || seen[t] {
		return false
	}

	if seen == nil {
		seen = make(map[reflect.Type]bool)
	}
	seen[t] = true
	for i := range t.NumField() {
		if sf := t.Field(i); sf.Anonymous && isSubtype(sf.Type, e, seen) {
			return true
		}
	}
	return false
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

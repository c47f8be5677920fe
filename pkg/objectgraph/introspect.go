package objectgraph

import (
	"reflect"
	"slices"
	"strings"
	"sync"
	"unsafe"

	"github.com/bramp/objectgraph/pkg/errors"
)

// TagName is the struct tag key read by ReflectIntrospector.
// `objectgraph:"transient"` and `objectgraph:"-"` mark a field transient.
const TagName = "objectgraph"

// Field describes one field of a composite type.
type Field struct {
	Name      string
	Type      reflect.Type // declared type
	Static    bool
	Transient bool

	// Get reads the field from obj, an addressable value of the owning type.
	// An error means the field is unreadable; the traversal skips it.
	Get func(obj reflect.Value) (reflect.Value, error)
}

// Introspector lists the fields of composite types.
// Implementations must be safe for concurrent use if shared between Graphs.
type Introspector interface {
	Fields(t reflect.Type) []Field
}

// DefaultIntrospector is used when Options.Introspector is nil.
var DefaultIntrospector = NewReflectIntrospector()

// RegisterStatic attaches a static field to owner on DefaultIntrospector.
func RegisterStatic(owner reflect.Type, name string, ptr any) error {
	return DefaultIntrospector.RegisterStatic(owner, name, ptr)
}

// ReflectIntrospector lists struct fields using reflection.
//
// Field lists are computed once per type and cached. Unexported fields are
// read through their address, so the owning value must be addressable;
// fields of values that are not are reported as ACCESS_DENIED.
type ReflectIntrospector struct {
	mu        sync.RWMutex
	cache     map[reflect.Type][]Field
	described map[reflect.Type][]Field
	statics   map[reflect.Type][]Field
}

// NewReflectIntrospector creates an introspector with no registrations.
func NewReflectIntrospector() *ReflectIntrospector {
	return &ReflectIntrospector{
		cache:     make(map[reflect.Type][]Field),
		described: make(map[reflect.Type][]Field),
		statics:   make(map[reflect.Type][]Field),
	}
}

// Describe replaces reflection for t with a hand-written field list.
// Static fields registered for t are still appended.
func (r *ReflectIntrospector) Describe(t reflect.Type, fields ...Field) error {
	if t == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "described type cannot be nil")
	}
	for _, f := range fields {
		if f.Type == nil || f.Get == nil {
			return errors.New(errors.ErrCodeInvalidConfig, "field %s of %s needs a type and a getter", f.Name, t)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.described[t] = slices.Clone(fields)
	clear(r.cache)
	return nil
}

// RegisterStatic attaches the variable ptr points to as a static field of
// owner and of every type that embeds owner.
func (r *ReflectIntrospector) RegisterStatic(owner reflect.Type, name string, ptr any) error {
	if owner == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "static owner type cannot be nil")
	}
	pv := reflect.ValueOf(ptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		return errors.New(errors.ErrCodeInvalidConfig, "static %s.%s must be a non-nil pointer, got %T", owner, name, ptr)
	}

	target := pv.Elem()
	f := Field{
		Name:   name,
		Type:   target.Type(),
		Static: true,
		Get: func(reflect.Value) (reflect.Value, error) {
			return target, nil
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.statics[owner] = append(r.statics[owner], f)
	clear(r.cache)
	return nil
}

// Fields returns the fields of t: its own fields, then those of embedded
// structs, then static fields of t and its embedded structs.
func (r *ReflectIntrospector) Fields(t reflect.Type) []Field {
	r.mu.RLock()
	fs, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return fs
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if fs, ok := r.cache[t]; ok {
		return fs
	}

	if d, ok := r.described[t]; ok {
		fs = slices.Clone(d)
	} else if t.Kind() == reflect.Struct {
		fs = structFields(t, nil, "", false)
	}
	for _, owner := range lineage(t) {
		fs = append(fs, r.statics[owner]...)
	}

	r.cache[t] = fs
	return fs
}

// structFields lists the fields of t. index is the path from the outermost
// struct and prefix the qualified name of the embedding field.
func structFields(t reflect.Type, index []int, prefix string, transient bool) []Field {
	var own, inherited []Field
	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.Name == "_" {
			continue
		}

		path := append(slices.Clip(index), i)
		name := prefix + sf.Name
		isTransient := transient || hasTransientTag(sf.Tag)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			inherited = append(inherited, structFields(sf.Type, path, name+".", isTransient)...)
			continue
		}

		own = append(own, Field{
			Name:      name,
			Type:      sf.Type,
			Transient: isTransient,
			Get:       fieldGetter(path, name),
		})
	}
	return append(own, inherited...)
}

func hasTransientTag(tag reflect.StructTag) bool {
	v, ok := tag.Lookup(TagName)
	if !ok {
		return false
	}
	for _, opt := range strings.Split(v, ",") {
		if opt == "-" || opt == "transient" {
			return true
		}
	}
	return false
}

// fieldGetter reads the field at index, bypassing export rules through the
// field's address.
func fieldGetter(index []int, name string) func(reflect.Value) (reflect.Value, error) {
	return func(obj reflect.Value) (reflect.Value, error) {
		v := obj
		for _, i := range index {
			v = v.Field(i)
			if v.CanInterface() {
				continue
			}
			if !v.CanAddr() {
				return reflect.Value{}, errors.New(errors.ErrCodeAccessDenied, "field %s of %s is not addressable", name, obj.Type())
			}
			v = reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
		}
		return v, nil
	}
}

// lineage returns t followed by every struct type it embeds by value.
func lineage(t reflect.Type) []reflect.Type {
	types := []reflect.Type{t}
	if t.Kind() != reflect.Struct {
		return types
	}
	for i := range t.NumField() {
		if sf := t.Field(i); sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			types = append(types, lineage(sf.Type)...)
		}
	}
	return types
}

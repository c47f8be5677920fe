// Package objectgraph walks an in-memory object graph breadth first.
//
// Starting from a root value, every reachable object is passed to a [Visitor]
// exactly once, together with the static type it was reached through. The
// walk is read-only and synchronous: [Graph.Traverse] returns once the
// frontier is empty or the visitor asks to stop.
//
// # Identity
//
// Objects are tracked by identity, never by value equality. Two structurally
// equal values at different addresses are both visited; the same value reached
// along several paths is visited once. Identity is defined as:
//
//   - Pointers: the pointee's address and type, so a pointer and the
//     addressable value it points at are the same object
//   - Maps and channels: their runtime pointer
//   - Non-empty slices: data pointer, type and length
//   - Any other addressable value: its address and type
//
// Values without an address (copies held in interfaces or map entries, funcs)
// have no identity. They are visited every time they are reached, and since
// they cannot refer back to themselves without a pointer they never form a
// cycle.
//
// # Descent
//
// After an object is visited its children are discovered according to its
// [Kind]:
//
//	KindPrimitive   no children
//	KindArray       arrays and slices, element by element
//	KindIterable    maps (key then value, keys sorted) and [Iterable] values
//	KindComposite   structs, field by field
//
// Pointers are followed to their pointee before classification. Array
// elements are reported under the array's element type; container elements
// under their own runtime type; struct fields under the field's declared type.
//
// # Fields
//
// Fields come from an [Introspector]. The default [ReflectIntrospector] lists
// every field of a struct, exported or not, with fields of embedded structs
// flattened after the struct's own fields (embedding plays the role of
// inheritance). Two field modifiers are recognized:
//
//   - Static: package-level variables attached to a type with [RegisterStatic]
//   - Transient: fields tagged `objectgraph:"transient"` or `objectgraph:"-"`
//
// Both are skipped unless [Options] includes them.
//
// # Exclusion
//
// [Options.ExcludedTypes] removes objects from the walk entirely. A type is
// excluded when it is an excluded type, implements an excluded interface, or
// embeds an excluded struct, ignoring pointer indirection. See [IsSubtype].
//
// # Concurrency
//
// A [Graph] holds per-traversal state and must not be used by several
// goroutines at once. Create one Graph per goroutine instead.
package objectgraph

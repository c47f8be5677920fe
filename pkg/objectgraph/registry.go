package objectgraph

import "reflect"

// identity is the key objects are tracked by.
// Pointers to distinct zero-size values may share an address and therefore
// an identity; the runtime makes no promise that they differ.
type identity struct {
	addr uintptr
	typ  reflect.Type
	size int
}

// identityOf returns v's identity, or false if v has none.
func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Pointer:
		return identity{addr: v.Pointer(), typ: v.Type().Elem()}, true
	case reflect.Map, reflect.Chan:
		return identity{addr: v.Pointer(), typ: v.Type()}, true
	case reflect.Slice:
		if v.Len() == 0 {
			return identity{}, false
		}
		return identity{addr: v.Pointer(), typ: v.Type(), size: v.Len()}, true
	case reflect.Func, reflect.UnsafePointer:
		return identity{}, false
	}
	if v.CanAddr() {
		return identity{addr: v.UnsafeAddr(), typ: v.Type()}, true
	}
	return identity{}, false
}

// registry is the discovered set. Entries map an identity to the object's
// discovery sequence number and are never removed during a traversal.
type registry struct {
	seen  map[identity]int
	count int
}

func (r *registry) reset() {
	if r.seen == nil {
		r.seen = make(map[identity]int)
	} else {
		clear(r.seen)
	}
	r.count = 0
}

// register records v and reports whether it was seen for the first time.
// seq is v's discovery sequence number either way. Callers must reject nil
// values before registering.
func (r *registry) register(v reflect.Value) (seq int, fresh bool) {
	id, ok := identityOf(v)
	if ok {
		if seq, seen := r.seen[id]; seen {
			return seq, false
		}
	}

	seq = r.count
	r.count++
	if ok {
		r.seen[id] = seq
	}
	return seq, true
}

// node is a discovered object waiting to be visited.
type node struct {
	seq      int
	value    reflect.Value
	declared reflect.Type
}

// frontier is a FIFO queue of nodes backed by a slice.
type frontier struct {
	items []node
	head  int
}

// compactThreshold is the number of consumed slots that triggers compaction.
const compactThreshold = 1024

func (f *frontier) push(n node) {
	if f.head >= compactThreshold && f.head > len(f.items)/2 {
		live := copy(f.items, f.items[f.head:])
		clear(f.items[live:])
		f.items = f.items[:live]
		f.head = 0
	}
	f.items = append(f.items, n)
}

func (f *frontier) pop() (node, bool) {
	if f.head == len(f.items) {
		return node{}, false
	}
	n := f.items[f.head]
	f.items[f.head] = node{}
	f.head++
	return n, true
}

func (f *frontier) len() int { return len(f.items) - f.head }

func (f *frontier) reset() {
	clear(f.items)
	f.items = f.items[:0]
	f.head = 0
}

package pigeon

import "slices"

// Key names one attribute. Keys are opaque; only equality matters.
type Key string

// Value is the payload stored under a Key. The engine never inspects it.
type Value = any

// Attributes is the mutable Key to Value bag threaded through one execution.
type Attributes map[Key]Value

// Clone returns a shallow copy of the attributes. A nil receiver yields an
// empty, non-nil map.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Has reports whether key is present, even when its value is nil.
func (a Attributes) Has(key Key) bool {
	_, ok := a[key]
	return ok
}

// Keys returns the keys in sorted order.
func (a Attributes) Keys() []Key {
	keys := make([]Key, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Keys converts string names into Keys.
func Keys(names ...string) []Key {
	keys := make([]Key, len(names))
	for i, n := range names {
		keys[i] = Key(n)
	}
	return keys
}

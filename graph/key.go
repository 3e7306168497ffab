package graph

import (
	"reflect"
	"sort"
)

// Key identifies an entry in a Graph by type.
type Key struct {
	typ reflect.Type
}

// KeyFor returns the key for the static type T.
func KeyFor[T any]() Key {
	return Key{typ: reflect.TypeFor[T]()}
}

// KeyOf returns the key for the dynamic type of v.
func KeyOf(v any) Key {
	return Key{typ: reflect.TypeOf(v)}
}

// Type returns the underlying reflect.Type.
func (k Key) Type() reflect.Type { return k.typ }

// IsZero reports whether the key was never set.
func (k Key) IsZero() bool { return k.typ == nil }

func (k Key) String() string {
	if k.typ == nil {
		return "<nil>"
	}
	return k.typ.String()
}

// KeySet is an unordered set of keys.
type KeySet map[Key]struct{}

// NewKeySet returns a set holding keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts k and reports whether it was absent.
func (s KeySet) Add(k Key) bool {
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}

// Has reports whether k is in the set.
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the keys ordered by name.
func (s KeySet) Sorted() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}

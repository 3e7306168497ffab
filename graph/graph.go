package graph

// Graph maps type keys to type-erased values.
type Graph struct {
	entries map[Key]any
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{entries: make(map[Key]any)}
}

// Insert stores v under key unless an entry already exists, and returns the
// stored value. The first registration wins.
func (g *Graph) Insert(key Key, v any) any {
	if existing, ok := g.entries[key]; ok {
		return existing
	}
	g.entries[key] = v
	return v
}

// Lookup returns the value stored under key.
func (g *Graph) Lookup(key Key) (any, bool) {
	if g == nil {
		return nil, false
	}
	v, ok := g.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (g *Graph) Has(key Key) bool {
	_, ok := g.Lookup(key)
	return ok
}

// Len returns the number of entries.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.entries)
}

// Keys returns all keys sorted by type name.
func (g *Graph) Keys() []Key {
	if g == nil {
		return nil
	}
	keys := make([]Key, 0, len(g.entries))
	for k := range g.entries {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Each calls fn for every entry in key order.
func (g *Graph) Each(fn func(Key, any)) {
	for _, k := range g.Keys() {
		fn(k, g.entries[k])
	}
}

// FilterBy returns a new graph holding only the entries whose keys are in
// set. Values are shared with g; the maps are independent.
func (g *Graph) FilterBy(set KeySet) *Graph {
	out := New()
	if g == nil {
		return out
	}
	for k := range set {
		if v, ok := g.entries[k]; ok {
			out.entries[k] = v
		}
	}
	return out
}

// Provide stores v under the key of T unless present and returns the stored
// value.
func Provide[T any](g *Graph, v T) T {
	stored := g.Insert(KeyFor[T](), v)
	if t, ok := stored.(T); ok {
		return t
	}
	return v
}

// Get returns the value stored for T. It reports false when the entry is
// absent or does not hold a T.
func Get[T any](g *Graph) (T, bool) {
	var zero T
	v, ok := g.Lookup(KeyFor[T]())
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Contains reports whether an entry exists for T.
func Contains[T any](g *Graph) bool {
	return g.Has(KeyFor[T]())
}

// SearchKey returns the first value stored under key across graphs, in order.
// Nil graphs are skipped.
func SearchKey(key Key, graphs ...*Graph) (any, bool) {
	for _, g := range graphs {
		if v, ok := g.Lookup(key); ok {
			return v, true
		}
	}
	return nil, false
}

// SearchAll returns the first T found across graphs, in order.
func SearchAll[T any](graphs ...*Graph) (T, bool) {
	var zero T
	v, ok := SearchKey(KeyFor[T](), graphs...)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

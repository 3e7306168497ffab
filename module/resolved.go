package module

import (
	"github.com/kbukum/modkit/graph"
)

// Resolved is a built module. It is immutable once Build returns.
type Resolved struct {
	name        string
	key         graph.Key
	graph       *graph.Graph
	imports     []*Resolved
	exports     *graph.Graph
	controllers []activation
	activated   graph.KeySet
}

// activation is a controller the module registers with Configure. global
// marks an instance taken from the global graph, which any number of
// modules may activate.
type activation struct {
	key    graph.Key
	inst   any
	global bool
}

// Name returns the type name of the factory that produced the module.
func (r *Resolved) Name() string { return r.name }

// Key returns the factory key.
func (r *Resolved) Key() graph.Key { return r.key }

// Graph returns the module's own graph.
func (r *Resolved) Graph() *graph.Graph { return r.graph }

// Exports returns the graph visible to importers.
func (r *Resolved) Exports() *graph.Graph { return r.exports }

// Imports returns the resolved imports in declaration order.
func (r *Resolved) Imports() []*Resolved {
	return append([]*Resolved(nil), r.imports...)
}

// Controllers returns the controllers this module registers, in
// declaration order. A controller taken from an import that already
// activated it is left to that import.
func (r *Resolved) Controllers() []any {
	out := make([]any, 0, len(r.controllers))
	for _, a := range r.controllers {
		out = append(out, a.inst)
	}
	return out
}

// Get returns the T held in the module's own graph.
func Get[T any](r *Resolved) (T, bool) {
	return graph.Get[T](r.graph)
}

// Exported returns the T held in the module's export graph.
func Exported[T any](r *Resolved) (T, bool) {
	return graph.Get[T](r.exports)
}

// Walk calls fn for root and every module reachable through imports, each
// distinct module once, in pre-order. Walk stops at the first error.
func Walk(root *Resolved, fn func(*Resolved) error) error {
	seen := make(map[*Resolved]struct{})
	var visit func(*Resolved) error
	visit = func(m *Resolved) error {
		if _, ok := seen[m]; ok {
			return nil
		}
		seen[m] = struct{}{}
		if err := fn(m); err != nil {
			return err
		}
		for _, imp := range m.imports {
			if err := visit(imp); err != nil {
				return err
			}
		}
		return nil
	}
	if root == nil {
		return nil
	}
	return visit(root)
}

// Info summarizes a resolved module.
type Info struct {
	Name        string   `json:"name"`
	Imports     []string `json:"imports,omitempty"`
	Entries     int      `json:"entries"`
	Exports     []string `json:"exports,omitempty"`
	Controllers int      `json:"controllers"`
}

// Describe returns an Info for every module reachable from root.
func Describe(root *Resolved) []Info {
	var out []Info
	_ = Walk(root, func(m *Resolved) error {
		info := Info{
			Name:        m.name,
			Entries:     m.graph.Len(),
			Controllers: len(m.controllers),
		}
		for _, imp := range m.imports {
			info.Imports = append(info.Imports, imp.name)
		}
		for _, k := range m.exports.Keys() {
			info.Exports = append(info.Exports, k.String())
		}
		out = append(out, info)
		return nil
	})
	return out
}

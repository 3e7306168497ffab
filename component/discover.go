package component

import (
	"reflect"

	"github.com/kbukum/modkit/graph"
	"github.com/kbukum/modkit/module"
)

// Discover returns the components held in the graphs of every module
// reachable from root. Imports come before their importers so that a
// dependency is started before the modules that use it. A pointer held by
// several graphs is returned once. Other values are returned wherever they
// are found.
func Discover(root *module.Resolved) []Component {
	var out []Component
	seen := make(map[any]struct{})
	visited := make(map[*module.Resolved]struct{})

	var visit func(m *module.Resolved)
	visit = func(m *module.Resolved) {
		if _, ok := visited[m]; ok {
			return
		}
		visited[m] = struct{}{}
		for _, imp := range m.Imports() {
			visit(imp)
		}
		m.Graph().Each(func(_ graph.Key, v any) {
			c, ok := v.(Component)
			if !ok {
				return
			}
			if id, ok := identity(c); ok {
				if _, dup := seen[id]; dup {
					return
				}
				seen[id] = struct{}{}
			}
			out = append(out, c)
		})
	}
	if root != nil {
		visit(root)
	}
	return out
}

// FromGraph returns the components held directly in g, in key order.
func FromGraph(g *graph.Graph) []Component {
	var out []Component
	g.Each(func(_ graph.Key, v any) {
		if c, ok := v.(Component); ok {
			out = append(out, c)
		}
	})
	return out
}

// identity returns a map key for c when c is a non-nil pointer to a
// non-zero-size value. Pointers to zero-size values may share an address.
func identity(c Component) (any, bool) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Type().Elem().Size() == 0 {
		return nil, false
	}
	return c, true
}

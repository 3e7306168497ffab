package module

import (
	"fmt"
	"reflect"

	"github.com/kbukum/modkit/graph"
)

// Factory produces the declaration of a module. The dynamic type of the
// factory identifies the module for deduplication.
type Factory interface {
	Module() *Module
}

// ValueSpec registers a plain value under its static type.
type ValueSpec struct {
	key   graph.Key
	value any
}

// Value returns a spec that stores v under the key of T.
func Value[T any](v T) ValueSpec {
	return ValueSpec{key: graph.KeyFor[T](), value: v}
}

// Key returns the type key the value is stored under.
func (s ValueSpec) Key() graph.Key { return s.key }

// ProviderSpec registers a type constructed through graph.Resolve.
type ProviderSpec struct {
	key     graph.Key
	resolve func(*graph.Resolver) (any, error)
}

// Provider returns a spec that resolves *T.
func Provider[T any, PT graph.Injectable[T]]() ProviderSpec {
	return ProviderSpec{
		key: graph.KeyFor[PT](),
		resolve: func(r *graph.Resolver) (any, error) {
			return graph.Resolve[T, PT](r)
		},
	}
}

// Key returns the type key of the provided value.
func (s ProviderSpec) Key() graph.Key { return s.key }

// ControllerSpec activates a controller. Controllers resolve like providers
// and are additionally collected for Configure.
type ControllerSpec struct {
	ProviderSpec
}

// Controller returns a spec that resolves and activates *T.
func Controller[T any, PT graph.Injectable[T]]() ControllerSpec {
	return ControllerSpec{ProviderSpec: Provider[T, PT]()}
}

// Module is the declaration of one module. It is built once by a Context.
type Module struct {
	imports     []Factory
	values      []ValueSpec
	providers   []ProviderSpec
	controllers []ControllerSpec
	exports     []graph.Key

	exportSet  graph.KeySet
	entities   graph.KeySet
	duplicates []graph.Key
	errs       []error
}

// New creates an empty module declaration.
func New() *Module {
	return &Module{
		exportSet: graph.NewKeySet(),
		entities:  graph.NewKeySet(),
	}
}

// Failed returns a module whose build fails with err. Factories use it to
// report construction errors from Module.
func Failed(err error) *Module {
	m := New()
	if err == nil {
		err = fmt.Errorf("module failed without an error")
	}
	m.errs = append(m.errs, err)
	return m
}

// Import adds modules whose exports become visible to this one.
func (m *Module) Import(factories ...Factory) *Module {
	for _, f := range factories {
		if isNil(f) {
			m.errs = append(m.errs, fmt.Errorf("nil import"))
			continue
		}
		m.track(graph.KeyOf(f))
		m.imports = append(m.imports, f)
	}
	return m
}

// Value registers plain values. They are stored as given and never injected.
func (m *Module) Value(specs ...ValueSpec) *Module {
	for _, s := range specs {
		if isNil(s.value) {
			m.errs = append(m.errs, fmt.Errorf("nil value for %s", s.key))
			continue
		}
		m.track(s.key)
		m.values = append(m.values, s)
	}
	return m
}

// Provide registers providers.
func (m *Module) Provide(specs ...ProviderSpec) *Module {
	for _, s := range specs {
		if s.resolve == nil {
			m.errs = append(m.errs, fmt.Errorf("empty provider spec"))
			continue
		}
		m.track(s.key)
		m.providers = append(m.providers, s)
	}
	return m
}

// Controller registers controllers.
func (m *Module) Controller(specs ...ControllerSpec) *Module {
	for _, s := range specs {
		if s.resolve == nil {
			m.errs = append(m.errs, fmt.Errorf("empty controller spec"))
			continue
		}
		m.track(s.key)
		m.controllers = append(m.controllers, s)
	}
	return m
}

// Export makes the given types visible to importers.
func (m *Module) Export(keys ...graph.Key) *Module {
	for _, k := range keys {
		if m.exportSet.Add(k) {
			m.exports = append(m.exports, k)
		}
	}
	return m
}

// ExportValue exports the dynamic type of v, typically a typed nil pointer.
func (m *Module) ExportValue(v any) *Module {
	if v == nil {
		m.errs = append(m.errs, fmt.Errorf("nil export"))
		return m
	}
	return m.Export(graph.KeyOf(v))
}

// Entities returns every key declared by the module.
func (m *Module) Entities() graph.KeySet {
	out := graph.NewKeySet()
	for k := range m.entities {
		out.Add(k)
	}
	return out
}

func (m *Module) track(k graph.Key) {
	if !m.entities.Add(k) {
		m.duplicates = append(m.duplicates, k)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

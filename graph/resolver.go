package graph

import (
	"fmt"
	"reflect"

	"github.com/kbukum/modkit/errors"
)

// Injected is implemented by types that can construct themselves from a
// graph. Inject is called on a freshly allocated zero value and must fill
// its dependencies through r.
type Injected interface {
	Inject(r *Resolver) error
}

// Injectable constrains PT to be *T implementing Injected. It lets callers
// write Resolve[BookService] and have *BookService inferred.
type Injectable[T any] interface {
	*T
	Injected
}

// Resolver gives an Inject method write access to the local graph and
// read access to the fallback graphs, searched in order after the local one.
type Resolver struct {
	local     *Graph
	fallbacks []*Graph
	requester string
}

// NewResolver creates a resolver over local with the given fallbacks.
func NewResolver(local *Graph, fallbacks ...*Graph) *Resolver {
	return &Resolver{local: local, fallbacks: fallbacks}
}

// For returns a resolver over the same graphs that attributes faults to
// requester.
func (r *Resolver) For(requester string) *Resolver {
	return &Resolver{local: r.local, fallbacks: r.fallbacks, requester: requester}
}

// Local returns the graph that resolved providers are inserted into.
func (r *Resolver) Local() *Graph { return r.local }

// Fallbacks returns the read-only graphs consulted after the local one.
func (r *Resolver) Fallbacks() []*Graph { return r.fallbacks }

// Requester names the type currently being injected, if any.
func (r *Resolver) Requester() string { return r.requester }

// Lookup searches the local graph and then the fallbacks.
func (r *Resolver) Lookup(key Key) (any, bool) {
	if v, ok := r.local.Lookup(key); ok {
		return v, true
	}
	return SearchKey(key, r.fallbacks...)
}

// Fill sets each pointer target from the graphs by the target's type. It
// assigns nothing unless every target resolves.
func (r *Resolver) Fill(ptrs ...any) error {
	targets := make([]reflect.Value, len(ptrs))
	values := make([]reflect.Value, len(ptrs))
	for i, p := range ptrs {
		rv := reflect.ValueOf(p)
		if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
			return errors.InvalidModule(r.requester, fmt.Sprintf("fill target %d is %T, want a non-nil pointer", i, p))
		}
		elem := rv.Elem()
		key := Key{typ: elem.Type()}
		v, ok := r.Lookup(key)
		if !ok {
			return errors.Unresolved(key.String(), r.requester)
		}
		vv := reflect.ValueOf(v)
		if !vv.IsValid() || !vv.Type().AssignableTo(elem.Type()) {
			return errors.Unresolved(key.String(), r.requester)
		}
		targets[i] = elem
		values[i] = vv
	}
	for i := range targets {
		targets[i].Set(values[i])
	}
	return nil
}

// Require returns the T visible to r or an unresolved fault.
func Require[T any](r *Resolver) (T, error) {
	key := KeyFor[T]()
	v, ok := r.Lookup(key)
	if t, isT := v.(T); ok && isT {
		return t, nil
	}
	var zero T
	return zero, errors.Unresolved(key.String(), r.requester)
}

// Optional returns the T visible to r, if any.
func Optional[T any](r *Resolver) (T, bool) {
	v, ok := r.Lookup(KeyFor[T]())
	if t, isT := v.(T); ok && isT {
		return t, true
	}
	var zero T
	return zero, false
}

// Resolve returns the shared *T visible to r, constructing and inserting it
// into the local graph when neither the local graph nor a fallback holds
// one. A failed Inject leaves nothing behind for *T.
func Resolve[T any, PT Injectable[T]](r *Resolver) (PT, error) {
	key := KeyFor[PT]()
	if v, ok := Get[PT](r.local); ok {
		return v, nil
	}
	if v, ok := SearchAll[PT](r.fallbacks...); ok {
		return v, nil
	}
	inst := PT(new(T))
	if err := inst.Inject(r.For(key.String())); err != nil {
		return nil, err
	}
	return Provide(r.local, inst), nil
}

package graph

import (
	"net/http"

	"github.com/kbukum/modkit/errors"
)

// Value wraps a plain value so it can be registered and looked up under a
// distinct type. It cannot be constructed by injection and must be
// registered directly.
type Value[T any] struct {
	v T
}

// NewValue wraps v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{v: v}
}

// Get returns the wrapped value.
func (w *Value[T]) Get() T { return w.v }

// Inject always fails: a Value exists only if it was registered.
func (w *Value[T]) Inject(r *Resolver) error {
	name := KeyFor[*Value[T]]().String()
	err := errors.New(errors.ErrCodeUnresolved, "not provided: "+name, http.StatusInternalServerError).
		WithDetail("type", name)
	if req := r.Requester(); req != "" {
		err = err.WithDetail("requester", req)
	}
	return err
}

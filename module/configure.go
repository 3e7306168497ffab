package module

import (
	"fmt"
	"reflect"

	"github.com/kbukum/modkit/errors"
	"github.com/kbukum/modkit/graph"
)

// Registrar is implemented by controllers that attach themselves to a host
// of type H, such as a router.
type Registrar[H any] interface {
	Register(host H)
}

// Configure registers every controller reachable from root with host. Each
// module's own controllers come before those of its imports. A controller
// is registered by the module that activated it, and one taken from the
// global graph is registered once. Nothing is registered if any controller
// does not implement Registrar[H].
func Configure[H any](root *Resolved, host H) (int, error) {
	shared := graph.NewKeySet()
	var regs []Registrar[H]
	err := Walk(root, func(m *Resolved) error {
		for _, a := range m.controllers {
			if a.global && !shared.Add(a.key) {
				continue
			}
			reg, ok := a.inst.(Registrar[H])
			if !ok {
				return errors.Unregistrable(fmt.Sprintf("%T", a.inst), reflect.TypeFor[H]().String()).
					WithDetail("module", m.name)
			}
			regs = append(regs, reg)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, reg := range regs {
		reg.Register(host)
	}
	return len(regs), nil
}

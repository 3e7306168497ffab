package module

import (
	"fmt"
	"time"

	"github.com/kbukum/modkit/errors"
	"github.com/kbukum/modkit/graph"
	"github.com/kbukum/modkit/logger"
)

// Build resolves the module produced by f, building its imports first.
// A factory type already built by this context returns the cached module.
func (c *Context) Build(f Factory) (*Resolved, error) {
	if isNil(f) {
		return nil, errors.InvalidModule("<nil>", "nil factory")
	}
	key := graph.KeyOf(f)
	name := key.String()

	if r, ok := c.built[key]; ok {
		c.log.Debug("module reused", logger.Fields(logger.FieldModule, name))
		return r, nil
	}
	if c.building[key] {
		return nil, errors.ImportCycle(c.cyclePath(name))
	}

	c.building[key] = true
	c.stack = append(c.stack, name)
	defer func() {
		delete(c.building, key)
		c.stack = c.stack[:len(c.stack)-1]
	}()

	start := time.Now()
	m := f.Module()
	if m == nil {
		return nil, errors.InvalidModule(name, "Module returned nil")
	}
	r, err := c.build(key, name, m)
	if err != nil {
		return nil, err
	}

	c.built[key] = r
	c.order = append(c.order, r)
	c.log.Debug("module built", logger.Fields(
		logger.FieldModule, name,
		"entries", r.graph.Len(),
		"exports", r.exports.Len(),
		"controllers", len(r.controllers),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return r, nil
}

// MustBuild is like Build but panics on error.
func (c *Context) MustBuild(f Factory) *Resolved {
	r, err := c.Build(f)
	if err != nil {
		panic(fmt.Sprintf("module: %v", err))
	}
	return r
}

func (c *Context) build(key graph.Key, name string, m *Module) (*Resolved, error) {
	if len(m.errs) > 0 {
		return nil, errors.InvalidModule(name, m.errs[0].Error()).WithCause(m.errs[0])
	}
	for _, k := range m.duplicates {
		c.log.Debug("duplicate declaration ignored", logger.Fields(logger.FieldModule, name, logger.FieldType, k.String()))
	}

	r := &Resolved{name: name, key: key, graph: graph.New()}

	c.phase(name, "imports", len(m.imports))
	for _, f := range m.imports {
		imp, err := c.Build(f)
		if err != nil {
			return nil, err
		}
		r.imports = append(r.imports, imp)
	}

	fallbacks := make([]*graph.Graph, 0, len(r.imports)+1)
	for _, imp := range r.imports {
		fallbacks = append(fallbacks, imp.exports)
	}
	fallbacks = append(fallbacks, c.global)
	res := graph.NewResolver(r.graph, fallbacks...).For(name)

	c.phase(name, "values", len(m.values))
	for _, v := range m.values {
		r.graph.Insert(v.key, v.value)
	}

	c.phase(name, "providers", len(m.providers))
	for _, p := range m.providers {
		if _, err := p.resolve(res); err != nil {
			return nil, err
		}
	}

	c.phase(name, "controllers", len(m.controllers))
	r.activated = graph.NewKeySet()
	for _, ctl := range m.controllers {
		if !r.activated.Add(ctl.key) {
			continue
		}
		register, global := c.controllerSource(r, ctl.key)
		inst, err := ctl.resolve(res)
		if err != nil {
			return nil, err
		}
		if register {
			r.controllers = append(r.controllers, activation{key: ctl.key, inst: inst, global: global})
		}
	}

	c.phase(name, "exports", len(m.exports))
	for _, k := range m.exports {
		if !m.entities.Has(k) {
			c.log.Warn("exported type is not declared by module", logger.Fields(logger.FieldModule, name, logger.FieldType, k.String()))
		}
	}
	r.exports = r.graph.FilterBy(m.exportSet)
	return r, nil
}

// controllerSource reports whether r registers the controller at key, and
// whether the instance comes from the global graph. It is called before the
// controller resolves so that an instance built here is told apart from one
// found in an import. An import that activated the controller itself keeps
// the registration.
func (c *Context) controllerSource(r *Resolved, key graph.Key) (register, global bool) {
	if r.graph.Has(key) {
		return true, false
	}
	for _, imp := range r.imports {
		if imp.exports.Has(key) {
			return !imp.activated.Has(key), false
		}
	}
	return true, c.global.Has(key)
}

func (c *Context) phase(name, phase string, n int) {
	c.log.Debug("module phase", logger.Fields(logger.FieldModule, name, logger.FieldPhase, phase, logger.FieldCount, n))
}

func (c *Context) cyclePath(name string) []string {
	for i, s := range c.stack {
		if s == name {
			path := append([]string(nil), c.stack[i:]...)
			return append(path, name)
		}
	}
	return []string{name, name}
}

package module

import (
	"github.com/kbukum/modkit/graph"
	"github.com/kbukum/modkit/logger"
)

// Context carries the state of one build pass: the global graph and the
// memo table of modules already built. It is not safe for concurrent use.
type Context struct {
	global   *graph.Graph
	built    map[graph.Key]*Resolved
	order    []*Resolved
	building map[graph.Key]bool
	stack    []string
	log      *logger.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// NewContext creates a build context over global. A nil global is treated as
// empty. The logger defaults to a *logger.Logger found in global, then to the
// global logger.
func NewContext(global *graph.Graph, opts ...Option) *Context {
	if global == nil {
		global = graph.New()
	}
	c := &Context{
		global:   global,
		built:    make(map[graph.Key]*Resolved),
		building: make(map[graph.Key]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		if l, ok := graph.Get[*logger.Logger](global); ok {
			c.log = l
		} else {
			c.log = logger.GetGlobalLogger()
		}
	}
	c.log = c.log.WithComponent("module")
	return c
}

// Global returns the global graph.
func (c *Context) Global() *graph.Graph { return c.global }

// Built returns every module built so far, in completion order.
func (c *Context) Built() []*Resolved {
	return append([]*Resolved(nil), c.order...)
}

// Lookup returns the module built for the factory type of f, if any.
func (c *Context) Lookup(f Factory) (*Resolved, bool) {
	if isNil(f) {
		return nil, false
	}
	r, ok := c.built[graph.KeyOf(f)]
	return r, ok
}

// Build builds f in a fresh context over global.
func Build(global *graph.Graph, f Factory, opts ...Option) (*Resolved, error) {
	return NewContext(global, opts...).Build(f)
}

// MustBuild is like Build but panics on error.
func MustBuild(global *graph.Graph, f Factory, opts ...Option) *Resolved {
	return NewContext(global, opts...).MustBuild(f)
}

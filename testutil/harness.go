package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/config"
	"github.com/kbukum/modkit/graph"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
)

// Harness builds module trees for a single test.
type Harness struct {
	t      testing.TB
	ctx    context.Context
	log    *logger.Logger
	global *graph.Graph
	build  *module.Context
}

// New returns a harness whose global graph holds a discarding logger.
func New(t testing.TB) *Harness {
	t.Helper()
	log := logger.Nop()
	g := graph.New()
	graph.Provide(g, log)
	return &Harness{t: t, ctx: context.Background(), log: log, global: g}
}

// WithContext sets the context used to start and stop components.
func (h *Harness) WithContext(ctx context.Context) *Harness {
	h.ctx = ctx
	return h
}

// WithProps seeds *config.Props over values, keyed SECTION__PROPERTY.
func (h *Harness) WithProps(values map[string]string) *Harness {
	h.t.Helper()
	return Provide(h, config.PropsFrom(values))
}

// Global returns the global graph of the harness.
func (h *Harness) Global() *graph.Graph { return h.global }

// Provide seeds v into the global graph of h. It fails the test when a
// module has already been built.
func Provide[T any](h *Harness, v T) *Harness {
	h.t.Helper()
	if h.build != nil {
		h.t.Fatalf("testutil: global graph seeded after the first build")
	}
	graph.Provide(h.global, v)
	return h
}

func (h *Harness) moduleContext() *module.Context {
	if h.build == nil {
		if !graph.Contains[*config.Props](h.global) {
			graph.Provide(h.global, config.PropsFrom(nil))
		}
		h.build = module.NewContext(h.global, module.WithLogger(h.log))
	}
	return h.build
}

// Build resolves f and fails the test on error. Builds within one harness
// share a module context, so a factory is built at most once.
func (h *Harness) Build(f module.Factory) *module.Resolved {
	h.t.Helper()
	r, err := h.moduleContext().Build(f)
	if err != nil {
		h.t.Fatalf("build %s: %v", graph.KeyOf(f), err)
	}
	return r
}

// BuildErr resolves f and returns the error, failing the test when the
// build succeeds.
func (h *Harness) BuildErr(f module.Factory) error {
	h.t.Helper()
	_, err := h.moduleContext().Build(f)
	if err == nil {
		h.t.Fatalf("build %s: expected an error", graph.KeyOf(f))
	}
	return err
}

// Start starts the components found in root and stops them when the test
// ends. It returns the started components in start order.
func (h *Harness) Start(root *module.Resolved) []component.Component {
	h.t.Helper()
	comps := component.Discover(root)
	registry := component.NewRegistry()
	for _, c := range comps {
		if err := registry.Register(c); err != nil {
			h.t.Fatalf("register %s: %v", c.Name(), err)
		}
	}
	if err := registry.StartAll(h.ctx); err != nil {
		_ = registry.StopAll(h.ctx)
		h.t.Fatalf("start components: %v", err)
	}
	h.t.Cleanup(func() {
		if err := registry.StopAll(h.ctx); err != nil {
			h.t.Errorf("stop components: %v", err)
		}
	})
	return comps
}

// MustGet returns the T held in the graph of r or fails the test.
func MustGet[T any](t testing.TB, r *module.Resolved) T {
	t.Helper()
	v, ok := module.Get[T](r)
	if !ok {
		t.Fatalf("%s does not hold %s", r.Name(), graph.KeyFor[T]())
	}
	return v
}

// MustExport returns the T exported by r or fails the test.
func MustExport[T any](t testing.TB, r *module.Resolved) T {
	t.Helper()
	v, ok := module.Exported[T](r)
	if !ok {
		t.Fatalf("%s does not export %s", r.Name(), graph.KeyFor[T]())
	}
	return v
}

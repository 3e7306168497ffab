package bootstrap

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/graph"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
	"github.com/kbukum/modkit/observability"
)

// Build resolves root against the global graph with a fresh module context,
// registers the components found in the resolved graphs and attaches every
// controller to the HTTP server. The build runs inside a module.build span.
func (a *App[C]) Build(ctx context.Context, root module.Factory) (*module.Resolved, error) {
	if a.Root != nil {
		return nil, fmt.Errorf("application already built %s", a.Root.Name())
	}
	name := graph.KeyOf(root).String()

	ctx, op := observability.StartOperation(ctx, observability.SpanModuleBuild, name)
	mctx := module.NewContext(a.Global, module.WithLogger(a.Logger))
	resolved, err := mctx.Build(root)
	op.SetAttributes(attribute.Int("modkit.modules", len(mctx.Built())))
	op.End(err)
	if err != nil {
		a.Logger.Error("Module build failed", logger.Fields(logger.FieldModule, name, logger.FieldError, err.Error()))
		return nil, err
	}

	for _, c := range component.Discover(resolved) {
		if err := a.Components.Register(c); err != nil {
			return nil, err
		}
	}

	_, cop := observability.StartOperation(ctx, observability.SpanControllers, resolved.Name())
	n, err := a.Server.RegisterControllers(resolved)
	cop.SetAttributes(attribute.Int("modkit.controllers", n))
	cop.End(err)
	if err != nil {
		return nil, err
	}

	infos := module.Describe(resolved)
	a.Summary.TrackModules(infos)
	a.Root = resolved

	a.Logger.Info("Modules built", logger.Fields(
		logger.FieldModule, resolved.Name(),
		"modules", len(infos),
		"controllers", n,
		logger.FieldDuration, op.Duration().Milliseconds(),
	))
	return resolved, nil
}

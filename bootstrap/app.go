package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/config"
	"github.com/kbukum/modkit/graph"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
	"github.com/kbukum/modkit/observability"
	"github.com/kbukum/modkit/server"
)

// App runs a module tree with uniform lifecycle management.
// The type parameter C is the config type, which must satisfy the Config interface.
// Any struct embedding config.ServiceConfig automatically satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    svc, _ := module.Get[*BookService](a.Root)
//	    return svc.Warm(ctx)
//	})
//	app.Run(context.Background(), AppModule{})
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	// Global is the graph every module falls back to. It holds the logger,
	// the config, the *config.ServiceConfig and the *config.Props.
	Global     *graph.Graph
	Components *component.Registry
	Server     *server.Server
	Logger     *logger.Logger
	Summary    *Summary
	// Root is the resolved root module, set by Build.
	Root *module.Resolved

	serverComponent *server.ServerComponent
	tracing         *observability.TracerConfig
	tracer          *sdktrace.TracerProvider
	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, initializes the logger and
// seeds the global graph.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Global:          graph.New(),
		Components:      component.NewRegistry(),
		tracing:         o.tracing,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	var srvCfg server.Config
	if o.server != nil {
		srvCfg = *o.server
	} else {
		srvCfg.ApplyDefaults()
	}
	if err := srvCfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	app.Server = server.New(srvCfg, app.Logger)
	app.Server.ApplyDefaults(base.Name, app.Components.HealthAll)
	app.serverComponent = server.NewComponent(app.Server)

	props := o.props
	if props == nil {
		props = config.NewProps()
	}
	graph.Provide(app.Global, app.Logger)
	graph.Provide(app.Global, cfg)
	graph.Provide(app.Global, base)
	graph.Provide(app.Global, props)

	app.Summary = NewSummary(base.Name, base.Version)
	if o.summaryOut != nil {
		app.Summary.SetOutput(o.summaryOut)
	}
	return app, nil
}

// ProvideGlobal adds v to the global graph of app. It must be called before
// the root module is built; the first value provided for a type wins.
func ProvideGlobal[T any, C Config](app *App[C], v T) error {
	if app.Root != nil {
		return fmt.Errorf("global graph is sealed: %s already built", app.Root.Name())
	}
	graph.Provide(app.Global, v)
	return nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback that runs after components are started.
// The resolved root is available as app.Root.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	results := a.Components.HealthAll(ctx)
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the full lifecycle of a long-running service: build root,
// start components and the HTTP server, run hooks, block until a signal or
// ctx is done, then shut down gracefully.
func (a *App[C]) Run(ctx context.Context, root module.Factory) error {
	if err := a.prepare(ctx, root); err != nil {
		return err
	}
	if err := a.Components.Register(a.serverComponent); err != nil {
		return err
	}
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal", logger.Fields("addr", a.Server.Addr()))
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the same bootstrap lifecycle as Run
// but without binding the HTTP server. The task context is canceled on
// SIGINT or SIGTERM. root may be nil for tasks that need no modules.
//
// Example:
//
//	app.RunTask(ctx, ImportModule{}, func(ctx context.Context) error {
//	    importer, _ := module.Get[*Importer](app.Root)
//	    return importer.Run(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, root module.Factory, task func(ctx context.Context) error) error {
	if err := a.prepare(ctx, root); err != nil {
		return err
	}
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// Handler builds root, starts its components and returns the server handler
// with every controller registered, without binding a port. Call Shutdown
// when done.
func (a *App[C]) Handler(ctx context.Context, root module.Factory) (http.Handler, error) {
	if err := a.prepare(ctx, root); err != nil {
		return nil, err
	}
	if err := a.startup(ctx); err != nil {
		a.abort()
		return nil, err
	}
	return a.Server.Handler(), nil
}

// prepare installs the tracer and builds root.
func (a *App[C]) prepare(ctx context.Context, root module.Factory) error {
	if a.tracing != nil && a.tracing.Enabled && a.tracer == nil {
		cfg := *a.tracing
		if cfg.ServiceName == "" {
			cfg.ServiceName = a.Name
		}
		cfg.ApplyDefaults()
		tp, err := observability.InitTracer(ctx, cfg)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		a.tracer = tp
	}
	if root == nil || a.Root != nil {
		return nil
	}
	if _, err := a.Build(ctx, root); err != nil {
		return fmt.Errorf("module build failed: %w", err)
	}
	return nil
}

// startup performs the initialization sequence shared by Run, RunTask and Handler.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))

	if err := a.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// initialize starts all registered components.
func (a *App[C]) initialize(ctx context.Context) error {
	ctx, op := observability.StartOperation(ctx, observability.SpanComponentsStart, a.Name)
	err := a.Components.StartAll(ctx)
	op.End(err)
	if err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	return nil
}

// DisplaySummary renders the startup summary with live health and routes.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Components, a.serverComponent)
}

// configure runs registered configuration callbacks.
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Running configuration callbacks", logger.Fields(logger.FieldCount, len(a.onConfigure)))
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle,
// e.g. after Handler.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// abort releases started components after a failed startup.
func (a *App[C]) abort() {
	if err := a.stop(); err != nil {
		a.Logger.Warn("Cleanup after failed startup reported errors", logger.Fields(logger.FieldError, err.Error()))
	}
}

// stop gracefully shuts down all components within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	ctx, op := observability.StartOperation(ctx, observability.SpanComponentsStop, a.Name)
	err := a.Components.StopAll(ctx)
	op.End(err)
	if err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
		a.tracer = nil
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}

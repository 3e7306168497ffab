// Package observability provides OpenTelemetry tracing for module builds and
// application lifecycle operations.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("books"))
//	defer tp.Shutdown(ctx)
//
//	ctx, op := observability.StartOperation(ctx, observability.SpanModuleBuild, "AppModule")
//	root, err := buildCtx.Build(AppModule{})
//	op.End(err)
//
// Without InitTracer the global no-op provider is used and spans cost nothing.
package observability

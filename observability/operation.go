package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/modkit/errors"
)

// Status values recorded by Operation.End.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Operation is a traced unit of work such as building a module tree.
type Operation struct {
	Name  string
	Start time.Time
	span  trace.Span
}

// StartOperation starts a span named spanName tagged with the operation name.
func StartOperation(ctx context.Context, spanName, operation string) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, spanName, trace.WithAttributes(
		attribute.String(AttrOperationName, operation),
	))
	return ctx, &Operation{Name: operation, Start: time.Now(), span: span}
}

// Span returns the underlying span.
func (o *Operation) Span() trace.Span { return o.span }

// SetAttributes adds attributes to the span.
func (o *Operation) SetAttributes(kv ...attribute.KeyValue) {
	o.span.SetAttributes(kv...)
}

// End records the outcome and ends the span. AppError codes are recorded
// as an attribute so build faults can be filtered by kind.
func (o *Operation) End(err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		if appErr, ok := errors.AsAppError(err); ok {
			o.span.SetAttributes(attribute.String(AttrErrorCode, string(appErr.Code)))
		}
	}
	o.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, o.Duration().Milliseconds()),
	)
	o.span.End()
}

// Duration returns the elapsed time since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.Start)
}

package observability

import (
	"context"
	stderrors "errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/modkit/errors"
)

// recordSpans installs an in-memory provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp, err := NewTracerProvider(DefaultTracerConfig("test"), sdktrace.WithSyncer(exporter))
	if err != nil {
		t.Fatalf("NewTracerProvider() error = %v", err)
	}
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("books")

	if cfg.ServiceName != "books" {
		t.Errorf("ServiceName = %q, want books", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 || !cfg.Insecure || cfg.Enabled {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestTracerConfig_Validate(t *testing.T) {
	tests := []struct {
		rate    float64
		wantErr bool
	}{
		{0, false},
		{0.25, false},
		{1, false},
		{-0.1, true},
		{1.5, true},
	}
	for _, tt := range tests {
		cfg := TracerConfig{SampleRate: tt.rate}
		if err := cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(rate=%v) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
		}
	}
}

func TestNewTracerProvider_Resource(t *testing.T) {
	cfg := DefaultTracerConfig("books")
	cfg.Environment = "test"

	res, err := newResource(cfg)
	if err != nil {
		t.Fatalf("newResource() error = %v", err)
	}
	attrs := res.Attributes()
	if v, ok := attrValue(attrs, "service.name"); !ok || v.AsString() != "books" {
		t.Errorf("service.name = %v", v)
	}
	if v, ok := attrValue(attrs, AttrEnvironment); !ok || v.AsString() != "test" {
		t.Errorf("%s = %v", AttrEnvironment, v)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestStartSpan(t *testing.T) {
	exporter := recordSpans(t)

	ctx, span := StartSpan(context.Background(), "unit")
	SetSpanAttribute(ctx, "count", 3)
	SetSpanAttribute(ctx, "names", []string{"a", "b"})
	SetSpanAttribute(ctx, "ignored", struct{}{})
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if v, ok := attrValue(spans[0].Attributes, "count"); !ok || v.AsInt64() != 3 {
		t.Errorf("count = %v", v)
	}
	if _, ok := attrValue(spans[0].Attributes, "ignored"); ok {
		t.Error("unsupported attribute types must be skipped")
	}
}

func TestSetSpanError(t *testing.T) {
	exporter := recordSpans(t)

	ctx, span := StartSpan(context.Background(), "failing")
	SetSpanError(ctx, nil)
	SetSpanError(ctx, stderrors.New("boom"))
	span.End()

	s := exporter.GetSpans()[0]
	if s.Status.Code != codes.Error || s.Status.Description != "boom" {
		t.Errorf("status = %+v", s.Status)
	}
	if len(s.Events) != 1 {
		t.Errorf("events = %d, want 1 exception event", len(s.Events))
	}
}

func TestSetSpanError_NoSpan(t *testing.T) {
	SetSpanError(context.Background(), stderrors.New("ignored"))
	SetSpanAttribute(context.Background(), "k", "v")
}

func TestOperation_End(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
		wantCode   string
	}{
		{"success", nil, StatusOK, ""},
		{"plain error", stderrors.New("boom"), StatusError, ""},
		{"build fault", errors.ImportCycle([]string{"a", "b", "a"}), StatusError, string(errors.ErrCodeImportCycle)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := recordSpans(t)

			_, op := StartOperation(context.Background(), SpanModuleBuild, "AppModule")
			op.End(tt.err)

			spans := exporter.GetSpans()
			if len(spans) != 1 {
				t.Fatalf("got %d spans, want 1", len(spans))
			}
			s := spans[0]
			if s.Name != SpanModuleBuild {
				t.Errorf("span name = %q", s.Name)
			}
			if v, _ := attrValue(s.Attributes, AttrOperationName); v.AsString() != "AppModule" {
				t.Errorf("operation = %q", v.AsString())
			}
			if v, _ := attrValue(s.Attributes, AttrStatus); v.AsString() != tt.wantStatus {
				t.Errorf("status = %q, want %q", v.AsString(), tt.wantStatus)
			}
			v, ok := attrValue(s.Attributes, AttrErrorCode)
			if tt.wantCode == "" && ok {
				t.Errorf("unexpected error code %q", v.AsString())
			}
			if tt.wantCode != "" && v.AsString() != tt.wantCode {
				t.Errorf("error code = %q, want %q", v.AsString(), tt.wantCode)
			}
		})
	}
}

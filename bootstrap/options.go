package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/modkit/config"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/observability"
	"github.com/kbukum/modkit/server"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	server          *server.Config
	tracing         *observability.TracerConfig
	props           *config.Props
	summaryOut      io.Writer
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithServer sets the HTTP server configuration. It is used as given, so
// call ApplyDefaults first when only some fields are set.
func WithServer(cfg server.Config) Option {
	return func(o *appOptions) {
		o.server = &cfg
	}
}

// WithTracing enables span export when cfg.Enabled is set.
func WithTracing(cfg observability.TracerConfig) Option {
	return func(o *appOptions) {
		o.tracing = &cfg
	}
}

// WithProps sets the properties seeded into the global graph. The process
// environment is used by default.
func WithProps(p *config.Props) Option {
	return func(o *appOptions) {
		o.props = p
	}
}

// WithSummaryOutput redirects the startup summary. Pass io.Discard to
// silence it.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) {
		o.summaryOut = w
	}
}

package database

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/kbukum/modkit/config"
	"github.com/kbukum/modkit/database/migration"
	"github.com/kbukum/modkit/graph"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
)

// Option configures NewModule.
type Option func(*moduleOptions)

type moduleOptions struct {
	log        *logger.Logger
	ctx        context.Context
	migrations fs.FS
	path       string
	driver     migration.DriverFunc
}

// WithLogger sets the logger used by the pool and its GORM logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *moduleOptions) { o.log = l }
}

// WithContext bounds connection attempts and migrations.
func WithContext(ctx context.Context) Option {
	return func(o *moduleOptions) { o.ctx = ctx }
}

// WithMigrations applies the migrations under path in fsys once the pool is open.
func WithMigrations(fsys fs.FS, path string) Option {
	return func(o *moduleOptions) {
		o.migrations = fsys
		o.path = path
	}
}

// WithMigrationDriver overrides the migrate driver. SQLite is the default.
func WithMigrationDriver(fn migration.DriverFunc) Option {
	return func(o *moduleOptions) { o.driver = fn }
}

// NewModule opens the pool, applies migrations and returns a module that
// provides and exports *DB. Failures are reported through module.Failed so
// the build stops with the cause.
//
// The pool is opened when the factory runs, before the rest of the build.
// If a later module fails, the pool is never discovered as a component and
// stays open until the process exits. Callers that recover from a failed
// build should open the pool themselves with Open and pass it in through
// module.Value.
func NewModule(cfg Config, opts ...Option) *module.Module {
	o := moduleOptions{ctx: context.Background(), driver: migration.SQLite}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger().WithComponent(componentName)
	}

	db, err := OpenWithMigrations(o.ctx, cfg, o.log, o.migrations, o.path, o.driver)
	if err != nil {
		return module.Failed(err)
	}

	return module.New().
		Value(module.Value(db)).
		Export(graph.KeyFor[*DB]())
}

// FromProps reads the configuration with ConfigFromProps and calls NewModule.
func FromProps(p *config.Props, opts ...Option) *module.Module {
	cfg, err := ConfigFromProps(p)
	if err != nil {
		return module.Failed(err)
	}
	return NewModule(cfg, opts...)
}

// OpenWithMigrations opens the pool and applies migrations from fsys when it
// is non-nil. The pool is closed again if migrations fail.
func OpenWithMigrations(ctx context.Context, cfg Config, log *logger.Logger, fsys fs.FS, path string, driver migration.DriverFunc) (*DB, error) {
	db, err := Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if fsys == nil {
		return db, nil
	}

	if err := migration.Up(db.GormDB, fsys, path, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	version, _, err := migration.Version(db.GormDB, fsys, path, driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read migration version: %w", err)
	}
	db.log.Info("Migrations applied", logger.Fields("version", version))
	return db, nil
}

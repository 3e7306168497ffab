package database

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"testing/fstest"

	"gorm.io/gorm"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/config"
	"github.com/kbukum/modkit/database/migration"
	"github.com/kbukum/modkit/errors"
	"github.com/kbukum/modkit/graph"
	"github.com/kbukum/modkit/logger"
	"github.com/kbukum/modkit/module"
)

var testMigrations = fstest.MapFS{
	"migrations/1_create_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY AUTOINCREMENT, body TEXT NOT NULL);")},
	"migrations/1_create_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
	"migrations/2_add_title.up.sql":      {Data: []byte("ALTER TABLE notes ADD COLUMN title TEXT NOT NULL DEFAULT '';")},
	"migrations/2_add_title.down.sql":    {Data: []byte("ALTER TABLE notes DROP COLUMN title;")},
}

var brokenMigrations = fstest.MapFS{
	"migrations/1_broken.up.sql":   {Data: []byte("CREATE TABLE (;")},
	"migrations/1_broken.down.sql": {Data: []byte("SELECT 1;")},
}

func memoryConfig() Config {
	return Config{DSN: ":memory:", MaxRetries: 1, LogLevel: "silent"}
}

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), memoryConfig(), logger.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestConfigFromProps(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]string
		wantErr  errors.ErrorCode
		wantPool int
		wantIdle int
	}{
		{
			name:    "missing connection url",
			values:  map[string]string{},
			wantErr: errors.ErrCodeMissingField,
		},
		{
			name:     "default pool size",
			values:   map[string]string{"DATABASE__CONNECTION_URL": "books.db"},
			wantPool: DefaultMaxPoolSize,
			wantIdle: 5,
		},
		{
			name: "explicit pool size",
			values: map[string]string{
				"DATABASE__CONNECTION_URL": "books.db",
				"DATABASE__MAX_POOL_SIZE":  "3",
			},
			wantPool: 3,
			wantIdle: 3,
		},
		{
			name: "unparseable pool size falls back",
			values: map[string]string{
				"DATABASE__CONNECTION_URL": "books.db",
				"DATABASE__MAX_POOL_SIZE":  "many",
			},
			wantPool: DefaultMaxPoolSize,
			wantIdle: 5,
		},
		{
			name: "in-memory pins one connection",
			values: map[string]string{
				"DATABASE__CONNECTION_URL": ":memory:",
				"DATABASE__MAX_POOL_SIZE":  "8",
			},
			wantPool: 1,
			wantIdle: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ConfigFromProps(config.PropsFrom(tt.values))
			if tt.wantErr != "" {
				if !errors.HasCode(err, tt.wantErr) {
					t.Fatalf("error = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.MaxOpenConns != tt.wantPool {
				t.Errorf("MaxOpenConns = %d, want %d", cfg.MaxOpenConns, tt.wantPool)
			}
			if cfg.MaxIdleConns != tt.wantIdle {
				t.Errorf("MaxIdleConns = %d, want %d", cfg.MaxIdleConns, tt.wantIdle)
			}
		})
	}
}

func TestConfigFromProps_Environment(t *testing.T) {
	t.Setenv("DATABASE__CONNECTION_URL", "file:env.db")
	t.Setenv("DATABASE__LOG_LEVEL", "info")

	cfg, err := ConfigFromProps(config.NewProps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DSN != "file:env.db" || cfg.LogLevel != "info" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := Config{DSN: "books.db"}
		c.ApplyDefaults()
		return c
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty dsn", func(c *Config) { c.DSN = "" }, true},
		{"idle above open", func(c *Config) { c.MaxIdleConns = c.MaxOpenConns + 1 }, true},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, true},
		{"bad lifetime", func(c *Config) { c.ConnMaxLifetime = "forever" }, true},
		{"bad slow threshold", func(c *Config) { c.SlowQueryThreshold = "slow" }, true},
		{"idle time optional", func(c *Config) { c.ConnMaxIdleTime = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen_Lifecycle(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	var _ component.Component = db
	if db.Name() != "database" {
		t.Errorf("Name() = %q", db.Name())
	}
	if err := db.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if h := db.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health() = %+v, want healthy", h)
	}
	if d := db.Describe(); !strings.Contains(d.Details, "in-memory") || d.Type != "database" {
		t.Errorf("Describe() = %+v", d)
	}

	if err := db.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if h := db.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health() after stop = %+v, want unhealthy", h)
	}
}

func TestOpen_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Open(ctx, memoryConfig(), logger.Nop()); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), Config{}, logger.Nop())
	if !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Fatalf("error = %v, want MISSING_FIELD", err)
	}
}

func TestWithTransaction(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	if err := db.WithContext(ctx).Exec("CREATE TABLE items (name TEXT)").Error; err != nil {
		t.Fatal(err)
	}

	boom := errors.Validation("boom")
	err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO items (name) VALUES ('a')").Error; err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("error = %v, want %v", err, boom)
	}

	if err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO items (name) VALUES ('b')").Error
	}); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.WithContext(ctx).Table("items").Count(&count)
	if count != 1 {
		t.Errorf("rows = %d, want 1 after rollback and commit", count)
	}
}

func TestMigrations(t *testing.T) {
	db := openMemory(t)

	if err := migration.Up(db.GormDB, testMigrations, "migrations", migration.SQLite); err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	if err := migration.Up(db.GormDB, testMigrations, "migrations", migration.SQLite); err != nil {
		t.Fatalf("second Up() error = %v", err)
	}
	if v, dirty, err := migration.Version(db.GormDB, testMigrations, "migrations", migration.SQLite); err != nil || v != 2 || dirty {
		t.Fatalf("Version() = %d, %v, %v; want 2, false, nil", v, dirty, err)
	}

	if err := migration.Steps(db.GormDB, testMigrations, "migrations", -1, migration.SQLite); err != nil {
		t.Fatalf("Steps(-1) error = %v", err)
	}
	if v, _, _ := migration.Version(db.GormDB, testMigrations, "migrations", nil); v != 1 {
		t.Errorf("Version() after step down = %d, want 1", v)
	}

	if err := migration.Down(db.GormDB, testMigrations, "migrations", nil); err != nil {
		t.Fatalf("Down() error = %v", err)
	}
	if v, _, err := migration.Version(db.GormDB, testMigrations, "migrations", nil); err != nil || v != 0 {
		t.Errorf("Version() after down = %d, %v; want 0, nil", v, err)
	}
}

type notesStore struct{}

func (notesStore) Module() *module.Module {
	return NewModule(memoryConfig(), WithLogger(logger.Nop()), WithMigrations(testMigrations, "migrations"))
}

type brokenStore struct{}

func (brokenStore) Module() *module.Module {
	return NewModule(memoryConfig(), WithLogger(logger.Nop()), WithMigrations(brokenMigrations, "migrations"))
}

type propsStore struct{ props *config.Props }

func (s propsStore) Module() *module.Module {
	return FromProps(s.props, WithLogger(logger.Nop()))
}

func TestNewModule_ExportsMigratedPool(t *testing.T) {
	root, err := module.Build(graph.New(), notesStore{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	db, ok := module.Exported[*DB](root)
	if !ok {
		t.Fatal("*DB is not exported")
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := db.WithContext(ctx).Exec("INSERT INTO notes (body, title) VALUES ('x', 'y')").Error; err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}

	comps := component.Discover(root)
	if len(comps) != 1 || comps[0] != component.Component(db) {
		t.Errorf("Discover() = %v, want the pool", comps)
	}
}

func TestNewModule_Failures(t *testing.T) {
	tests := []struct {
		name      string
		factory   module.Factory
		wantCause errors.ErrorCode
	}{
		{"broken migration", brokenStore{}, ""},
		{"missing connection url", propsStore{props: config.PropsFrom(nil)}, errors.ErrCodeMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := module.Build(graph.New(), tt.factory)
			if !errors.HasCode(err, errors.ErrCodeInvalidModule) {
				t.Fatalf("error = %v, want INVALID_MODULE", err)
			}
			if tt.wantCause != "" && !errors.HasCode(err, tt.wantCause) {
				t.Errorf("error = %v, want cause %s", err, tt.wantCause)
			}
		})
	}
}

type callerPool struct{ db *DB }

func (s callerPool) Module() *module.Module {
	return module.New().
		Import(propsStore{props: config.PropsFrom(nil)}).
		Value(module.Value(s.db)).
		Export(graph.KeyFor[*DB]())
}

func TestNewModule_CallerClosesPoolAfterFailedBuild(t *testing.T) {
	db, err := Open(context.Background(), memoryConfig(), logger.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := module.Build(graph.New(), callerPool{db: db}); err == nil {
		t.Fatal("Build() succeeded, want the import to fail")
	}
	if h := db.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Fatalf("pool should still be open after the failed build, got %+v", h)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if h := db.Health(context.Background()); h.Message != "closed" {
		t.Errorf("Health() after Close = %+v, want closed", h)
	}
}

func TestFromDatabase(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"not found", gorm.ErrRecordNotFound, errors.ErrCodeNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, errors.ErrCodeAlreadyExists},
		{"unique constraint", stderrors.New("UNIQUE constraint failed: books.title"), errors.ErrCodeAlreadyExists},
		{"busy", stderrors.New("database is locked"), errors.ErrCodeServiceUnavailable},
		{"other", stderrors.New("disk I/O error"), errors.ErrCodeDatabaseError},
		{"already mapped", errors.InvalidInput("id", "bad"), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromDatabase(tt.err, "book"); got.Code != tt.want {
				t.Errorf("FromDatabase() code = %s, want %s", got.Code, tt.want)
			}
		})
	}
	if FromDatabase(nil, "book") != nil {
		t.Error("FromDatabase(nil) should be nil")
	}
}

func TestGormLogger_SlowAndFailedQueries(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)
	cfg := memoryConfig()
	cfg.LogLevel = "warn"

	db, err := Open(context.Background(), cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_ = db.WithContext(context.Background()).Exec("SELECT * FROM missing_table").Error
	out := buf.String()
	if !strings.Contains(out, "Query failed") || !strings.Contains(out, "missing_table") {
		t.Errorf("expected failed query log, got %s", out)
	}
	if strings.Contains(out, `"message":"Query"`) {
		t.Errorf("warn level must not log successful queries: %s", out)
	}
}

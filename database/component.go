package database

import (
	"context"
	"fmt"

	"github.com/kbukum/modkit/component"
)

const componentName = "database"

var (
	_ component.Component   = (*DB)(nil)
	_ component.Describable = (*DB)(nil)
)

// Name returns the component name.
func (d *DB) Name() string { return componentName }

// Start verifies the pool opened by the module is reachable.
func (d *DB) Start(ctx context.Context) error {
	if err := d.PingContext(ctx); err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	return nil
}

// Stop closes the pool.
func (d *DB) Stop(_ context.Context) error {
	return d.Close()
}

// Health pings the database and reports pool usage.
func (d *DB) Health(ctx context.Context) component.Health {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "closed"}
	}

	sqlDB, err := d.GormDB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return component.Health{
			Name:    componentName,
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	stats := sqlDB.Stats()
	return component.Health{
		Name:    componentName,
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("open=%d in_use=%d idle=%d", stats.OpenConnections, stats.InUse, stats.Idle),
	}
}

// Describe returns infrastructure summary info for the bootstrap display.
func (d *DB) Describe() component.Description {
	details := fmt.Sprintf("sqlite pool=%d/%d", d.cfg.MaxOpenConns, d.cfg.MaxIdleConns)
	if d.cfg.InMemory() {
		details += " in-memory"
	}
	return component.Description{
		Name:    "Database",
		Type:    componentName,
		Details: details,
	}
}

// Package database provides a GORM connection pool that is exposed to
// modules as a plain value.
//
// NewModule opens the pool when the module factory runs, optionally applies
// embedded migrations, and provides and exports *DB. Any module importing it
// can require *DB from its providers:
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	type StoreModule struct{}
//
//	func (StoreModule) Module() *module.Module {
//	    return database.FromProps(config.NewProps(),
//	        database.WithMigrations(migrations, "migrations"))
//	}
//
// *DB implements component.Component, so the bootstrap discovers it in the
// resolved graph, pings it on start and closes it on shutdown.
package database

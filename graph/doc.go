// Package graph provides the type-indexed singleton store that modules build
// into, together with the Injected capability used to construct providers.
//
// A Graph holds at most one value per type. The first insertion for a type
// wins and later insertions are ignored, which makes provisioning
// idempotent across modules that share imports.
//
//	g := graph.New()
//	graph.Provide(g, cfg)
//	cfg2, ok := graph.Get[*Config](g)
//
// Providers describe their dependencies in an Inject method and pull them
// through a Resolver:
//
//	type BookService struct {
//	    db  *database.DB
//	    log *logger.Logger
//	}
//
//	func (s *BookService) Inject(r *graph.Resolver) error {
//	    return r.Fill(&s.db, &s.log)
//	}
//
// A graph is written during a single build pass and is read-only afterwards.
// It is not safe for concurrent writes.
package graph

// Package logger provides structured logging on top of zerolog.
//
// The bootstrap seeds a *Logger into the global graph, so any provider can
// depend on it:
//
//	func (s *BookService) Inject(r *graph.Resolver) error {
//	    return r.Fill(&s.db, &s.log)
//	}
//
// Fields are passed as maps:
//
//	log.Info("module built", logger.Fields("module", name, "providers", n))
package logger

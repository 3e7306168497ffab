// Package server hosts controllers on a Gin engine served over HTTP/1.1 and
// h2c.
//
// Controllers are activated by modules and attach their routes through
// module.Configure:
//
//	func (c *BookController) Register(r gin.IRouter) {
//	    g := r.Group("/book")
//	    g.GET("", c.list)
//	}
//
//	srv := server.New(cfg, log)
//	srv.ApplyDefaults("books", registry.HealthAll)
//	n, err := srv.RegisterControllers(root)
//
// Middleware (server/middleware) wraps the whole handler: recovery, request
// id, CORS and request logging. /health reports component health
// (server/endpoint).
package server

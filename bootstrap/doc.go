// Package bootstrap runs a module tree as an application.
//
// An App seeds the global graph with the logger, the typed config and the
// environment properties, builds the root module, starts every component
// found in the resolved graphs, registers controllers on the HTTP server and
// handles graceful shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(context.Background(), AppModule{}); err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use Handler to get the fully wired http.Handler without binding a port.
package bootstrap

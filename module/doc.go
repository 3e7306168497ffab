// Package module composes graphs into a tree of modules.
//
// A module declares what it imports, which plain values and providers it
// registers, which controllers it activates and which types it exports:
//
//	type BookModule struct{}
//
//	func (BookModule) Module() *module.Module {
//	    return module.New().
//	        Import(SqliteModule{}).
//	        Provide(module.Provider[BookService]()).
//	        Controller(module.Controller[BookController]()).
//	        Export(graph.KeyFor[*BookService]())
//	}
//
// A Context builds a root factory recursively. Every factory type is built
// at most once per Context, so a module imported along several paths is
// shared. Providers are looked up in the local graph first, then in the
// export graphs of the imports in declaration order, and finally in the
// global graph.
//
// After the build, Configure attaches every controller to a host that the
// controller knows how to register with.
package module

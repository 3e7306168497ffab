// Package component defines lifecycle-managed infrastructure such as the
// HTTP server and the database pool.
//
// A Component is started after the module tree is built and stopped in
// reverse order on shutdown. Providers that implement Component are found
// in the built module graphs by Discover, so a module only has to provide
// the value for it to be managed.
package component

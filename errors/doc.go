// Package errors provides the structured error type shared by the module
// runtime and the HTTP layer. Build faults (unresolved dependencies, import
// cycles, invalid declarations) and request errors use the same AppError so
// that bootstrap can log them and the server can render them uniformly.
package errors

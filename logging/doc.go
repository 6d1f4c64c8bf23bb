// Package logging provides a minimal logging interface and adapters for intentmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the router, dispatcher and handlers use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - RouterLogger with request/component scoping and routing helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	router, err := intentmesh.New(reg, func(o *intentmesh.Options) { o.Logger = logger })
package logging

package core

import "context"

// Handler executes the sub-query of one domain. Implementations may be pure
// computations or calls to external capabilities; both report problems by
// returning an error, never by panicking.
type Handler interface {
	Handle(ctx context.Context, params Params) (string, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, params Params) (string, error)

// Handle calls f(ctx, params).
func (f HandlerFunc) Handle(ctx context.Context, params Params) (string, error) {
	return f(ctx, params)
}

// Describer is optionally implemented by handlers to expose a short
// human-readable description (used by listings and model prompts).
type Describer interface {
	Description() string
}

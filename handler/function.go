package handler

import (
	"context"
	"time"

	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/logging"
)

// FunctionHandler is a generic adapter that exposes a plain Go function as a
// domain handler.
//
// Errors are normalized so callers receive *core.HandlerError with a
// consistent code:
//
//	*core.HandlerError (returned directly) -> forwarded unchanged
//	other error                            -> *core.HandlerError{Code: "EXECUTION_ERROR"}
//
// A FunctionHandler has no mutable state after construction and is safe for
// concurrent use.
type FunctionHandler struct {
	name        string
	description string
	fn          func(ctx context.Context, params core.Params) (string, error)
	logger      logging.Logger
}

// FunctionOptions configures a FunctionHandler.
type FunctionOptions struct {
	Logger logging.Logger
}

// NewFunctionHandler wraps fn.
//
// Example:
//
//	echo := NewFunctionHandler("echo", "Repeats the query", func(_ context.Context, p core.Params) (string, error) {
//	  return p.Query, nil
//	})
func NewFunctionHandler(
	name, description string,
	fn func(ctx context.Context, params core.Params) (string, error),
	optFns ...func(o *FunctionOptions),
) *FunctionHandler {
	opts := FunctionOptions{}
	for _, o := range optFns {
		o(&opts)
	}
	return &FunctionHandler{
		name:        name,
		description: description,
		fn:          fn,
		logger:      logging.OrNoOp(opts.Logger),
	}
}

// Name returns the handler name.
func (h *FunctionHandler) Name() string { return h.name }

// Description implements core.Describer.
func (h *FunctionHandler) Description() string { return h.description }

// Handle implements core.Handler.
//
// Logging Fields:
//
//	handler: handler name
//	duration_ms: execution time in milliseconds
func (h *FunctionHandler) Handle(ctx context.Context, params core.Params) (string, error) {
	start := time.Now()
	h.logger.Debug("handler.function.start", "handler", h.name)

	out, err := h.fn(ctx, params)
	if err != nil {
		if herr, ok := err.(*core.HandlerError); ok { // already typed, just log and forward
			h.logger.Error("handler.function.error", "handler", h.name, "error", herr.Message)
			return "", herr
		}

		h.logger.Error("handler.function.error", "handler", h.name, "error", err.Error())
		return "", &core.HandlerError{
			Code:    "EXECUTION_ERROR",
			Message: err.Error(),
			Cause:   err,
		}
	}

	h.logger.Info("handler.function.success", "handler", h.name, "duration_ms", time.Since(start).Milliseconds())
	return out, nil
}

package core

import (
	"context"
	"time"

	"github.com/hupe1980/intentmesh/logging"
)

// RequestContext carries the typed, request-scoped state threaded from the
// classifier through the dispatcher to the aggregator. It aggregates:
//   - The ambient cancellation Context
//   - The immutable Request
//   - The IntentRecord produced by classification
//   - A Logger scoped to the request
//
// A RequestContext is created per inbound request and discarded once the
// FinalResponse is returned; nothing in it is shared across requests.
type RequestContext struct {
	Context   context.Context
	Request   Request
	Intent    IntentRecord
	Logger    logging.Logger
	StartedAt time.Time
}

// NewRequestContext constructs a RequestContext with an empty intent.
func NewRequestContext(ctx context.Context, req Request, logger logging.Logger) *RequestContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &RequestContext{
		Context:   ctx,
		Request:   req,
		Intent:    NewIntentRecord(),
		Logger:    logging.OrNoOp(logger),
		StartedAt: time.Now(),
	}
}

// Done mirrors context.Context's Done.
func (rc *RequestContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RequestContext) Err() error { return rc.Context.Err() }

// Elapsed returns the time spent on the request so far.
func (rc *RequestContext) Elapsed() time.Duration { return time.Since(rc.StartedAt) }

// WithTimeout returns a shallow copy whose Context is bounded by d. A zero or
// negative d only adds cancellation. The caller must invoke the CancelFunc.
func (rc *RequestContext) WithTimeout(d time.Duration) (*RequestContext, context.CancelFunc) {
	clone := *rc
	var cancel context.CancelFunc
	if d > 0 {
		clone.Context, cancel = context.WithTimeout(rc.Context, d)
	} else {
		clone.Context, cancel = context.WithCancel(rc.Context)
	}
	return &clone, cancel
}

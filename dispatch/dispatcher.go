// Package dispatch fans an intent record out to the registered domain
// handlers and collects one partial result per domain.
//
// Dispatcher executes handlers either one after another (sequential, the
// default) or concurrently (parallel). In both modes the output order is the
// intent record order and a single per-request timeout bounds the whole
// dispatch phase. Handler errors, panics, missing handlers and timeouts are
// turned into failed partial results; dispatch itself never fails.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/logging"
)

// Mode selects how handlers are executed.
type Mode string

// Supported dispatch modes.
const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// Resolver looks up the handler for a domain. The registry satisfies it.
type Resolver interface {
	Resolve(d core.Domain) (core.Handler, error)
}

// Options configures a Dispatcher.
type Options struct {
	Mode Mode
	// Timeout bounds the whole dispatch phase of one request. Zero disables it.
	Timeout time.Duration
	// MaxConcurrency limits concurrently running handlers in parallel mode.
	// Zero or less means unlimited.
	MaxConcurrency int
}

// Stats is a snapshot of the dispatcher counters.
type Stats struct {
	Dispatched int64 `json:"dispatched"`
	Succeeded  int64 `json:"succeeded"`
	Failed     int64 `json:"failed"`
	TimedOut   int64 `json:"timed_out"`
	NotFound   int64 `json:"not_found"`
}

// Dispatcher invokes domain handlers. It is safe for concurrent use.
type Dispatcher struct {
	opts Options

	dispatched atomic.Int64
	succeeded  atomic.Int64
	failed     atomic.Int64
	timedOut   atomic.Int64
	notFound   atomic.Int64
}

// New creates a Dispatcher. Without options it runs sequentially with no timeout.
func New(optFns ...func(o *Options)) *Dispatcher {
	opts := Options{Mode: ModeSequential}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Mode == "" {
		opts.Mode = ModeSequential
	}
	return &Dispatcher{opts: opts}
}

// Options returns the effective configuration.
func (d *Dispatcher) Options() Options { return d.opts }

// Dispatch runs the handler of every domain in rc.Intent and returns one
// result per domain in intent order.
func (d *Dispatcher) Dispatch(rc *core.RequestContext, reg Resolver) []core.PartialResult {
	domains := rc.Intent.Domains
	results := make([]core.PartialResult, len(domains))
	if len(domains) == 0 {
		return results
	}

	bounded, cancel := rc.WithTimeout(d.opts.Timeout)
	defer cancel()

	start := time.Now()
	if d.opts.Mode == ModeParallel {
		d.runParallel(bounded, reg, results)
	} else {
		d.runSequential(bounded, reg, results)
	}

	failures := 0
	for _, r := range results {
		if !r.OK() {
			failures++
		}
	}
	logging.Events(rc.Logger).LogDispatch(string(d.opts.Mode), len(domains), failures, time.Since(start))
	return results
}

// runSequential executes handlers in intent order. Once the deadline passes,
// the remaining domains are recorded as timed out without being started.
func (d *Dispatcher) runSequential(rc *core.RequestContext, reg Resolver, results []core.PartialResult) {
	for i, dom := range rc.Intent.Domains {
		results[i] = d.runOne(rc, reg, dom)
	}
}

// runParallel launches every handler concurrently. Each goroutine owns its
// slot in results, so no further synchronisation is needed.
func (d *Dispatcher) runParallel(rc *core.RequestContext, reg Resolver, results []core.PartialResult) {
	var g errgroup.Group
	if d.opts.MaxConcurrency > 0 {
		g.SetLimit(d.opts.MaxConcurrency)
	}
	for i, dom := range rc.Intent.Domains {
		i, dom := i, dom
		g.Go(func() error {
			results[i] = d.runOne(rc, reg, dom)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) runOne(rc *core.RequestContext, reg Resolver, dom core.Domain) core.PartialResult {
	d.dispatched.Inc()
	start := time.Now()
	res := core.PartialResult{Domain: dom}

	if err := rc.Err(); err != nil {
		res.Err = contextFailure(dom, err)
	} else if h, err := reg.Resolve(dom); err != nil {
		res.Err = err
	} else {
		rc.Logger.Debug("dispatch.handler.start", "domain", string(dom), "request_id", rc.Request.ID)
		res.Payload, res.Err = invoke(rc.Context, h, dom, rc.Intent.ParamsFor(dom))
	}
	res.Duration = time.Since(start)
	if res.Err != nil {
		res.Payload = ""
	}

	d.record(res)
	logging.Events(rc.Logger).LogHandlerCall(string(dom), res.Duration, res.Err)
	return res
}

type outcome struct {
	payload string
	err     error
}

// invoke runs h in its own goroutine so that a handler ignoring cancellation
// cannot hold the dispatch past the deadline. The buffered channel lets such
// a handler finish later without blocking.
func invoke(ctx context.Context, h core.Handler, dom core.Domain, params core.Params) (string, error) {
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: &core.HandlerError{
					Domain:  dom,
					Code:    "PANIC",
					Message: fmt.Sprintf("handler panicked: %v", r),
				}}
			}
		}()
		payload, err := h.Handle(ctx, params)
		ch <- outcome{payload: payload, err: err}
	}()

	select {
	case o := <-ch:
		return normalize(ctx, dom, o)
	case <-ctx.Done():
		return "", contextFailure(dom, ctx.Err())
	}
}

func normalize(ctx context.Context, dom core.Domain, o outcome) (string, error) {
	if o.err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(o.err, ctxErr) {
			return "", contextFailure(dom, ctxErr)
		}
		if he, ok := o.err.(*core.HandlerError); ok && he.Domain == "" {
			cp := *he
			cp.Domain = dom
			return "", &cp
		}
		return "", o.err
	}
	if o.payload == "" {
		return "", &core.HandlerError{Domain: dom, Code: "EMPTY_PAYLOAD", Message: "handler returned an empty payload"}
	}
	return o.payload, nil
}

// contextFailure maps a finished context to a failure. An expired deadline
// becomes core.ErrTimeout; cancellation by the caller is kept as is.
func contextFailure(dom core.Domain, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("domain %s: %w", dom, core.ErrTimeout)
	}
	return fmt.Errorf("domain %s: %w", dom, err)
}

func (d *Dispatcher) record(res core.PartialResult) {
	switch res.Kind() {
	case core.FailureNone:
		d.succeeded.Inc()
	case core.FailureTimeout:
		d.timedOut.Inc()
		d.failed.Inc()
	case core.FailureNotFound:
		d.notFound.Inc()
		d.failed.Inc()
	default:
		d.failed.Inc()
	}
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Dispatched: d.dispatched.Load(),
		Succeeded:  d.succeeded.Load(),
		Failed:     d.failed.Load(),
		TimedOut:   d.timedOut.Load(),
		NotFound:   d.notFound.Load(),
	}
}

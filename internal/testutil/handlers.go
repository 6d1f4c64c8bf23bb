package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/intentmesh/core"
)

// Static returns a handler that always answers text.
func Static(text string) core.Handler {
	return core.HandlerFunc(func(context.Context, core.Params) (string, error) { return text, nil })
}

// Failing returns a handler that always fails with err.
func Failing(err error) core.Handler {
	return core.HandlerFunc(func(context.Context, core.Params) (string, error) { return "", err })
}

// Panicking returns a handler that panics with v.
func Panicking(v any) core.Handler {
	return core.HandlerFunc(func(context.Context, core.Params) (string, error) { panic(v) })
}

// Slow returns a handler that answers text after d, or fails with the
// context error if ctx ends first.
func Slow(d time.Duration, text string) core.Handler {
	return core.HandlerFunc(func(ctx context.Context, _ core.Params) (string, error) {
		select {
		case <-time.After(d):
			return text, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
}

// Stubborn returns a handler that ignores cancellation and answers after d.
func Stubborn(d time.Duration, text string) core.Handler {
	return core.HandlerFunc(func(context.Context, core.Params) (string, error) {
		time.Sleep(d)
		return text, nil
	})
}

// Recorder wraps a handler and records every invocation.
type Recorder struct {
	Next core.Handler

	mu     sync.Mutex
	calls  []core.Params
	active int
	peak   int
}

// NewRecorder wraps next.
func NewRecorder(next core.Handler) *Recorder { return &Recorder{Next: next} }

// Handle implements core.Handler.
func (r *Recorder) Handle(ctx context.Context, p core.Params) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, p)
	r.active++
	if r.active > r.peak {
		r.peak = r.active
	}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
	}()
	return r.Next.Handle(ctx, p)
}

// Calls returns a copy of the recorded parameters.
func (r *Recorder) Calls() []core.Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Params, len(r.calls))
	copy(out, r.calls)
	return out
}

// Peak returns the maximum number of concurrent invocations observed.
func (r *Recorder) Peak() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak
}

// Gauge tracks concurrent invocations across any number of handlers.
type Gauge struct {
	mu     sync.Mutex
	active int
	peak   int
}

// Track wraps next so that its invocations are counted by g.
func (g *Gauge) Track(next core.Handler) core.Handler {
	return core.HandlerFunc(func(ctx context.Context, p core.Params) (string, error) {
		g.mu.Lock()
		g.active++
		if g.active > g.peak {
			g.peak = g.active
		}
		g.mu.Unlock()

		defer func() {
			g.mu.Lock()
			g.active--
			g.mu.Unlock()
		}()
		return next.Handle(ctx, p)
	})
}

// Peak returns the maximum number of concurrent invocations observed.
func (g *Gauge) Peak() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.peak
}

package testutil

import (
	"errors"
	"time"

	"github.com/hupe1980/intentmesh/core"
)

// IntentBuilder provides a fluent helper for constructing intent records in tests.
// Example:
//
//	rec := NewIntentBuilder().Domain(core.DomainMath).Weather("Paris").Build()
//
// Domains appear in the order they are added.
type IntentBuilder struct {
	rec core.IntentRecord
}

// NewIntentBuilder creates an empty builder.
func NewIntentBuilder() *IntentBuilder { return &IntentBuilder{rec: core.NewIntentRecord()} }

// Domain appends a domain with empty parameters (chainable).
func (b *IntentBuilder) Domain(d core.Domain) *IntentBuilder {
	b.rec.Add(d, core.Params{})
	return b
}

// WithParams appends a domain with explicit parameters (chainable).
func (b *IntentBuilder) WithParams(d core.Domain, p core.Params) *IntentBuilder {
	b.rec.Add(d, p)
	return b
}

// Weather appends the weather domain with the given locations (chainable).
func (b *IntentBuilder) Weather(locations ...string) *IntentBuilder {
	return b.WithParams(core.DomainWeather, core.Params{Locations: locations})
}

// Math appends the math domain with the given operations (chainable).
func (b *IntentBuilder) Math(ops ...core.Operation) *IntentBuilder {
	return b.WithParams(core.DomainMath, core.Params{Operations: ops})
}

// Build returns the constructed record.
func (b *IntentBuilder) Build() core.IntentRecord { return b.rec }

// ResultBuilder accumulates partial results in order.
type ResultBuilder struct {
	results []core.PartialResult
}

// NewResultBuilder creates an empty builder.
func NewResultBuilder() *ResultBuilder { return &ResultBuilder{} }

// OK appends a successful result (chainable).
func (b *ResultBuilder) OK(d core.Domain, payload string) *ResultBuilder {
	b.results = append(b.results, core.PartialResult{Domain: d, Payload: payload, Duration: time.Millisecond})
	return b
}

// Fail appends a failed result (chainable). A nil err becomes a generic handler error.
func (b *ResultBuilder) Fail(d core.Domain, err error) *ResultBuilder {
	if err == nil {
		err = errors.New("handler failed")
	}
	b.results = append(b.results, core.PartialResult{Domain: d, Err: err, Duration: time.Millisecond})
	return b
}

// Raw appends a result verbatim, even a malformed one (chainable).
func (b *ResultBuilder) Raw(r core.PartialResult) *ResultBuilder {
	b.results = append(b.results, r)
	return b
}

// Build returns the accumulated results.
func (b *ResultBuilder) Build() []core.PartialResult { return b.results }

// Package classify turns free-text requests into intent records: the ordered
// set of domains a request touches plus best-effort parameters per domain.
//
// Two implementations share the Classifier contract. KeywordClassifier is
// deterministic and rule driven. ModelClassifier asks a language model for
// the domain list and falls back to the keyword rules whenever the model
// fails or answers nonsense.
package classify

import (
	"context"

	"github.com/hupe1980/intentmesh/core"
)

// Classifier maps a request to an intent record. Classification never fails;
// a request no rule understands yields an empty record.
type Classifier interface {
	Classify(ctx context.Context, req core.Request) core.IntentRecord
}

// Known reports which domains have a registered handler. The registry
// satisfies it.
type Known interface {
	Has(d core.Domain) bool
}

// describer is optionally implemented by Known sets to enrich model prompts.
type describer interface {
	Describe(d core.Domain) string
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, req core.Request) core.IntentRecord

// Classify calls f(ctx, req).
func (f ClassifierFunc) Classify(ctx context.Context, req core.Request) core.IntentRecord {
	return f(ctx, req)
}

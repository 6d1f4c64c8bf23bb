package core

import "time"

// PartialResult is the outcome of one domain's handler: exactly one of
// Payload (success) or Err (failure) is set.
type PartialResult struct {
	Domain   Domain
	Payload  string
	Err      error
	Duration time.Duration
}

// OK reports whether the handler succeeded.
func (p PartialResult) OK() bool { return p.Err == nil }

// Kind returns the failure kind, FailureNone on success.
func (p PartialResult) Kind() FailureKind { return FailureKindOf(p.Err) }

// Outcome is the terminal state of a request.
type Outcome string

// Terminal outcomes.
const (
	OutcomeAnswered      Outcome = "answered"
	OutcomeFallback      Outcome = "fallback"
	OutcomeNotUnderstood Outcome = "not_understood"
)

// FinalResponse is the user facing answer assembled from partial results.
type FinalResponse struct {
	RequestID string
	Text      string
	Outcome   Outcome
	Results   []PartialResult
}

// Failures returns the failed partial results in order.
func (f FinalResponse) Failures() []PartialResult {
	var out []PartialResult
	for _, r := range f.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

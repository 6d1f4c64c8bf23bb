// Package core provides the foundational domain types and interfaces shared by
// the intentmesh components. It defines:
//
//   - Request (immutable inbound text with an identifier)
//   - Domain, Params, Operation and IntentRecord (classifier output)
//   - Handler (the per-domain capability contract)
//   - PartialResult and FinalResponse (dispatcher and aggregator output)
//   - RequestContext (typed, request-scoped execution state)
//   - the failure taxonomy (ErrHandlerNotFound, ErrTimeout, HandlerError)
//
// Everything except handlers is constructed fresh per request. The package
// keeps implementation concerns (matching, dispatch strategy, formatting) out
// of scope so components can be swapped independently.
package core

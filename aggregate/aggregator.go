// Package aggregate merges the partial results of one request into the
// single response shown to the user.
package aggregate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/internal/util"
)

// ErrMalformedResults is returned for a result sequence that violates the
// dispatcher contract: an empty domain, a result carrying both or neither of
// payload and error, or a domain reported twice.
var ErrMalformedResults = errors.New("malformed results")

// Fixed user facing texts.
const (
	FallbackText      = "I couldn't find specific information to answer your query."
	NotUnderstoodText = "Sorry, I didn't understand your request."
)

// DefaultLabels returns the built-in labels of the known domains.
func DefaultLabels() map[core.Domain]string {
	return map[core.Domain]string{
		core.DomainMath:     "Mathematical result",
		core.DomainWeather:  "Weather information",
		core.DomainDateTime: "Date and time",
		core.DomainResearch: "Research findings",
	}
}

// Options configures an Aggregator.
type Options struct {
	// Labels override or extend DefaultLabels.
	Labels    map[core.Domain]string
	Separator string
}

// Aggregator assembles final responses. It holds no per-request state.
type Aggregator struct {
	labels    map[core.Domain]string
	separator string
}

// New creates an Aggregator.
func New(optFns ...func(o *Options)) *Aggregator {
	opts := Options{Separator: "\n\n"}
	for _, fn := range optFns {
		fn(&opts)
	}
	labels := DefaultLabels()
	for d, l := range opts.Labels {
		if l != "" {
			labels[d] = l
		}
	}
	return &Aggregator{labels: labels, separator: opts.Separator}
}

// Label returns the prefix used for domain d.
func (a *Aggregator) Label(d core.Domain) string {
	if l, ok := a.labels[d]; ok {
		return l
	}
	return util.Title(string(d)) + " result"
}

// Aggregate joins successful payloads in result order, each prefixed with
// its domain label. Without successes it answers with the fallback text, or
// the not-understood text when there are no results at all.
func (a *Aggregator) Aggregate(results []core.PartialResult) (core.FinalResponse, error) {
	if err := validate(results); err != nil {
		return core.FinalResponse{}, err
	}

	resp := core.FinalResponse{Results: results}
	if len(results) == 0 {
		resp.Text = NotUnderstoodText
		resp.Outcome = core.OutcomeNotUnderstood
		return resp, nil
	}

	var parts []string
	for _, r := range results {
		if r.OK() {
			parts = append(parts, a.Label(r.Domain)+": "+r.Payload)
		}
	}
	if len(parts) == 0 {
		resp.Text = FallbackText
		resp.Outcome = core.OutcomeFallback
		return resp, nil
	}

	resp.Text = strings.Join(parts, a.separator)
	resp.Outcome = core.OutcomeAnswered
	return resp, nil
}

func validate(results []core.PartialResult) error {
	seen := make(map[core.Domain]bool, len(results))
	for i, r := range results {
		switch {
		case r.Domain == "":
			return fmt.Errorf("result %d: empty domain: %w", i, ErrMalformedResults)
		case r.Payload != "" && r.Err != nil:
			return fmt.Errorf("result %d (%s): both payload and error: %w", i, r.Domain, ErrMalformedResults)
		case r.Payload == "" && r.Err == nil:
			return fmt.Errorf("result %d (%s): neither payload nor error: %w", i, r.Domain, ErrMalformedResults)
		case seen[r.Domain]:
			return fmt.Errorf("result %d (%s): duplicate domain: %w", i, r.Domain, ErrMalformedResults)
		}
		seen[r.Domain] = true
	}
	return nil
}

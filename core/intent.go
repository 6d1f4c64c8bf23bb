package core

import (
	"strconv"
	"strings"
)

// Operator is an arithmetic operator understood by the math domain.
type Operator string

// Supported operators.
const (
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
)

// Operation is one arithmetic step extracted from a request. A chained
// operation has no left operand of its own; it applies Right to the running
// result of the preceding operation ("Then add 3").
type Operation struct {
	Operator Operator
	Left     float64
	Right    float64
	Chained  bool
}

// String renders the operation compactly: "10-5" or "+3".
func (o Operation) String() string {
	if o.Chained {
		return string(o.Operator) + FormatNumber(o.Right)
	}
	return FormatNumber(o.Left) + string(o.Operator) + FormatNumber(o.Right)
}

// FormatNumber renders a float with the minimal number of digits ("8", "2.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Params is the best-effort parameter bundle extracted for one domain.
// Only the fields relevant to a domain are populated.
type Params struct {
	// Query is the domain's sub-query; the full request text unless narrowed.
	Query      string
	Numbers    []float64
	Locations  []string
	Operations []Operation
	// Fields lists requested facets, e.g. "day" or "month" for datetime.
	Fields []string
}

// IntentRecord is the classifier output: the domains implicated by a request
// in the order they were first detected, plus per-domain parameters.
type IntentRecord struct {
	Domains []Domain
	Params  map[Domain]Params
	// Dropped lists domains that matched but are not registered.
	Dropped []Domain
}

// NewIntentRecord returns an empty record.
func NewIntentRecord() IntentRecord {
	return IntentRecord{Params: map[Domain]Params{}}
}

// Add appends a domain with its parameters. A domain already present is left
// untouched and Add reports false.
func (r *IntentRecord) Add(d Domain, p Params) bool {
	if r.Params == nil {
		r.Params = map[Domain]Params{}
	}
	if _, ok := r.Params[d]; ok {
		return false
	}
	r.Domains = append(r.Domains, d)
	r.Params[d] = p
	return true
}

// Drop records a matched but unregistered domain.
func (r *IntentRecord) Drop(d Domain) {
	for _, x := range r.Dropped {
		if x == d {
			return
		}
	}
	r.Dropped = append(r.Dropped, d)
}

// Empty reports whether no domain was implicated.
func (r IntentRecord) Empty() bool { return len(r.Domains) == 0 }

// Has reports whether d is part of the record.
func (r IntentRecord) Has(d Domain) bool {
	_, ok := r.Params[d]
	return ok
}

// ParamsFor returns the parameters extracted for d.
func (r IntentRecord) ParamsFor(d Domain) Params { return r.Params[d] }

// String renders the record as "math,weather" for logs.
func (r IntentRecord) String() string {
	return strings.Join(DomainStrings(r.Domains), ",")
}

// DomainStrings converts domains to plain strings.
func DomainStrings(ds []Domain) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}

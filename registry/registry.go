// Package registry implements the capability registry: a static mapping from
// domain tag to the handler able to execute requests in that domain.
//
// A Registry is populated once at startup and then sealed. After Seal it is
// read-only, so concurrent Resolve calls need no locking.
package registry

import (
	"errors"
	"fmt"

	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/logging"
)

var (
	// ErrSealed is returned when registering into a sealed registry.
	ErrSealed = errors.New("registry is sealed")
	// ErrDuplicateDomain is returned in strict mode when a domain is registered twice.
	ErrDuplicateDomain = errors.New("domain already registered")
	// ErrInvalidEntry is returned for an empty domain or nil handler.
	ErrInvalidEntry = errors.New("invalid registry entry")
)

// Options configures a Registry.
type Options struct {
	// StrictDuplicates rejects a second registration of the same domain
	// instead of silently replacing the handler.
	StrictDuplicates bool
	// Logger receives duplicate-registration diagnostics.
	Logger logging.Logger
}

// Registry maps domains to handlers. It is not safe for concurrent
// registration; register from a single goroutine, then Seal.
type Registry struct {
	handlers map[core.Domain]core.Handler
	order    []core.Domain
	sealed   bool
	opts     Options
}

// New creates an empty, unsealed Registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Registry{
		handlers: map[core.Domain]core.Handler{},
		opts:     opts,
	}
}

// Register binds handler h to domain d. By default a duplicate domain replaces
// the previous handler (last write wins) and keeps its original position in
// Domains(); with StrictDuplicates it fails with ErrDuplicateDomain.
func (r *Registry) Register(d core.Domain, h core.Handler) error {
	if r.sealed {
		return fmt.Errorf("register %q: %w", d, ErrSealed)
	}
	if d == "" {
		return fmt.Errorf("empty domain: %w", ErrInvalidEntry)
	}
	if h == nil {
		return fmt.Errorf("nil handler for domain %q: %w", d, ErrInvalidEntry)
	}
	if _, exists := r.handlers[d]; exists {
		if r.opts.StrictDuplicates {
			return fmt.Errorf("register %q: %w", d, ErrDuplicateDomain)
		}
		r.opts.Logger.Warn("registry.duplicate_domain", "domain", string(d))
		r.handlers[d] = h
		return nil
	}
	r.handlers[d] = h
	r.order = append(r.order, d)
	return nil
}

// Seal makes the registry read-only. It returns r for chaining.
func (r *Registry) Seal() *Registry {
	r.sealed = true
	return r
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool { return r.sealed }

// Resolve returns the handler for d or an error wrapping core.ErrHandlerNotFound.
func (r *Registry) Resolve(d core.Domain) (core.Handler, error) {
	h, ok := r.handlers[d]
	if !ok {
		return nil, fmt.Errorf("domain %q: %w", d, core.ErrHandlerNotFound)
	}
	return h, nil
}

// Has reports whether a handler is registered for d.
func (r *Registry) Has(d core.Domain) bool {
	_, ok := r.handlers[d]
	return ok
}

// Domains returns the registered domains in registration order.
func (r *Registry) Domains() []core.Domain {
	out := make([]core.Domain, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered domains.
func (r *Registry) Len() int { return len(r.order) }

// Describe returns the handler description for d when the handler implements
// core.Describer, else an empty string.
func (r *Registry) Describe(d core.Domain) string {
	if desc, ok := r.handlers[d].(core.Describer); ok {
		return desc.Description()
	}
	return ""
}

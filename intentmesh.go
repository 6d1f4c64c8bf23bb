// Package intentmesh routes free-text requests to domain handlers and merges
// their answers into one response.
//
// A request flows through four stages:
//  1. Classification: a classify.Classifier finds the domains the text
//     touches (math, weather, ...) and extracts per-domain parameters
//  2. Resolution: a sealed registry.Registry maps each domain to its handler
//  3. Dispatch: dispatch.Dispatcher runs the handlers, sequentially or in
//     parallel, bounded by a per-request timeout
//  4. Aggregation: aggregate.Aggregator joins labeled payloads in order
//
// Handler failures never abort a request; they are reported per domain in
// FinalResponse.Results while the remaining domains are still answered.
package intentmesh

import (
	"context"
	"fmt"

	"github.com/hupe1980/intentmesh/aggregate"
	"github.com/hupe1980/intentmesh/classify"
	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/dispatch"
	"github.com/hupe1980/intentmesh/handler"
	"github.com/hupe1980/intentmesh/logging"
	"github.com/hupe1980/intentmesh/model"
	"github.com/hupe1980/intentmesh/registry"
)

// Options configures a Router.
type Options struct {
	// Classifier defaults to the built-in keyword rules filtered by the registry.
	Classifier classify.Classifier
	Dispatch   dispatch.Options
	// Labels override the aggregator's domain labels.
	Labels map[core.Domain]string
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Router is the high-level façade wiring classifier, registry, dispatcher
// and aggregator. It is safe for concurrent use.
type Router struct {
	registry   *registry.Registry
	classifier classify.Classifier
	dispatcher *dispatch.Dispatcher
	aggregator *aggregate.Aggregator
	logger     logging.Logger
}

// New creates a Router over reg. The registry is sealed; registering further
// handlers afterwards fails with registry.ErrSealed.
func New(reg *registry.Registry, optFns ...func(o *Options)) (*Router, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	if reg == nil {
		return nil, fmt.Errorf("nil registry")
	}
	reg.Seal()

	if opts.Classifier == nil {
		kc, err := classify.NewKeywordClassifier(classify.DefaultRules(classify.DefaultGazetteer), func(o *classify.KeywordOptions) {
			o.Known = reg
			o.Logger = opts.Logger
		})
		if err != nil {
			return nil, fmt.Errorf("build default classifier: %w", err)
		}
		opts.Classifier = kc
	}

	return &Router{
		registry:   reg,
		classifier: opts.Classifier,
		dispatcher: dispatch.New(func(o *dispatch.Options) { *o = opts.Dispatch }),
		aggregator: aggregate.New(func(o *aggregate.Options) { o.Labels = opts.Labels }),
		logger:     opts.Logger,
	}, nil
}

// NewDefault creates a Router with the built-in math, weather and datetime
// handlers. When m is not nil a research agent backed by m is registered too.
func NewDefault(m model.Model, optFns ...func(o *Options)) (*Router, error) {
	reg := registry.New()
	if err := RegisterDefaults(reg, m); err != nil {
		return nil, err
	}
	return New(reg, optFns...)
}

// RegisterDefaults registers the built-in handlers into reg.
func RegisterDefaults(reg *registry.Registry, m model.Model) error {
	handlers := map[core.Domain]core.Handler{
		core.DomainMath:     handler.NewCalculator(),
		core.DomainWeather:  handler.NewWeather(handler.NewMapStore(handler.DefaultTable())),
		core.DomainDateTime: handler.NewDateTime(),
	}
	order := []core.Domain{core.DomainMath, core.DomainWeather, core.DomainDateTime}
	if m != nil {
		handlers[core.DomainResearch] = handler.NewAgent(string(core.DomainResearch), m)
		order = append(order, core.DomainResearch)
	}
	for _, d := range order {
		if err := reg.Register(d, handlers[d]); err != nil {
			return err
		}
	}
	return nil
}

// Handle classifies text, dispatches the implicated domains and aggregates
// the answers. The only error returned is aggregate.ErrMalformedResults;
// handler problems are reported inside the response.
func (r *Router) Handle(ctx context.Context, text string) (core.FinalResponse, error) {
	return r.HandleRequest(ctx, core.NewRequest(text))
}

// HandleRequest is Handle for a prebuilt request.
func (r *Router) HandleRequest(ctx context.Context, req core.Request) (core.FinalResponse, error) {
	logger := r.requestLogger(req.ID)
	rc := core.NewRequestContext(ctx, req, logger)

	rc.Intent = r.classifier.Classify(rc.Context, req)
	logging.Events(logger).LogClassification(core.DomainStrings(rc.Intent.Domains), core.DomainStrings(rc.Intent.Dropped))

	results := r.dispatcher.Dispatch(rc, r.registry)

	resp, err := r.aggregator.Aggregate(results)
	if err != nil {
		logger.Error("aggregate.failed", "error", err.Error())
		return core.FinalResponse{}, fmt.Errorf("request %s: %w", req.ID, err)
	}
	resp.RequestID = req.ID

	logger.Debug("request.done", "outcome", string(resp.Outcome), "duration", rc.Elapsed())
	return resp, nil
}

func (r *Router) requestLogger(id string) logging.Logger {
	if rl, ok := r.logger.(*logging.RouterLogger); ok {
		return rl.WithRequest(id)
	}
	return r.logger
}

// Classify exposes the classification stage alone.
func (r *Router) Classify(ctx context.Context, text string) core.IntentRecord {
	return r.classifier.Classify(ctx, core.NewRequest(text))
}

// Domains lists the registered domains in registration order.
func (r *Router) Domains() []core.Domain { return r.registry.Domains() }

// Describe returns the description of the handler for d, if it has one.
func (r *Router) Describe(d core.Domain) string { return r.registry.Describe(d) }

// Label returns the label prefixed to answers of domain d.
func (r *Router) Label(d core.Domain) string { return r.aggregator.Label(d) }

// Stats returns the dispatcher counters.
func (r *Router) Stats() dispatch.Stats { return r.dispatcher.Stats() }

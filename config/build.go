package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/intentmesh"
	"github.com/hupe1980/intentmesh/classify"
	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/dispatch"
	"github.com/hupe1980/intentmesh/handler"
	"github.com/hupe1980/intentmesh/handler/sqlite"
	"github.com/hupe1980/intentmesh/internal/util"
	"github.com/hupe1980/intentmesh/logging"
	"github.com/hupe1980/intentmesh/model"
	"github.com/hupe1980/intentmesh/model/anthropic"
	"github.com/hupe1980/intentmesh/model/openai"
	"github.com/hupe1980/intentmesh/registry"
)

// Runtime is a fully wired router plus the resources it owns.
type Runtime struct {
	Router *intentmesh.Router
	// Model is nil when no provider is configured.
	Model model.Model

	closers []io.Closer
}

// Close releases owned resources such as the SQLite weather store.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewLogger builds the configured logger writing to w (stderr when nil).
func NewLogger(cfg LoggingConfig, w io.Writer) *logging.RouterLogger {
	if w == nil {
		w = os.Stderr
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.Level),
		Format:    cfg.Format,
		Output:    w,
		Component: "intentmesh",
	})
}

// Build wires registry, handlers, classifier and router from cfg.
func Build(cfg *Config, logger logging.Logger) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logging.OrNoOp(logger)
	rt := &Runtime{}

	m, err := NewModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	if m != nil && cfg.Model.MaxCalls > 0 {
		m = model.NewLimitedModel(m, cfg.Model.MaxCalls)
	}
	rt.Model = m

	store, gazetteer, err := buildWeatherStore(cfg.Weather, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	reg := registry.New(func(o *registry.Options) {
		o.StrictDuplicates = cfg.Registry.StrictDuplicates
		o.Logger = logger
	})
	if err := registerHandlers(reg, cfg, store, m, logger); err != nil {
		rt.Close()
		return nil, err
	}

	kc, err := classify.NewKeywordClassifier(buildRules(cfg.Domains, gazetteer), func(o *classify.KeywordOptions) {
		o.Known = reg
		o.Logger = logger
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	var classifier classify.Classifier = kc
	if cfg.Model.Classify && m != nil {
		classifier = classify.NewModelClassifier(m, kc)
	}

	labels := map[core.Domain]string{}
	for _, d := range cfg.Domains {
		if d.Label != "" {
			labels[core.Domain(d.Name)] = d.Label
		}
	}

	router, err := intentmesh.New(reg, func(o *intentmesh.Options) {
		o.Classifier = classifier
		o.Dispatch = dispatch.Options{
			Mode:           dispatch.Mode(cfg.Dispatch.Mode),
			Timeout:        cfg.Dispatch.Timeout,
			MaxConcurrency: cfg.Dispatch.MaxConcurrency,
		}
		o.Labels = labels
		o.Logger = logger
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Router = router
	return rt, nil
}

// NewModel creates the configured model runtime, nil for provider "none".
func NewModel(cfg ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.APIKey = cfg.APIKey
			o.Temperature = cfg.Temperature
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.APIKey = cfg.APIKey
			o.Temperature = cfg.Temperature
		}), nil
	case "mock":
		name := cfg.Name
		if name == "" {
			name = "mock"
		}
		return model.NewMockModel(name), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// buildWeatherStore merges the built-in table with cfg.Table and returns the
// store plus the gazetteer of known cities.
func buildWeatherStore(cfg WeatherConfig, rt *Runtime) (handler.Store, classify.Gazetteer, error) {
	table := handler.DefaultTable()
	for city, report := range cfg.Table {
		table[city] = report
	}
	gazetteer := make(classify.Gazetteer, 0, len(table))
	for city := range table {
		gazetteer = append(gazetteer, city)
	}

	if cfg.SQLitePath == "" {
		return handler.NewMapStore(table), gazetteer, nil
	}

	s, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open weather store: %w", err)
	}
	rt.closers = append(rt.closers, s)
	if err := s.Seed(context.Background(), table); err != nil {
		return nil, nil, fmt.Errorf("seed weather store: %w", err)
	}
	// Cities stored by earlier runs are known too.
	cities, err := s.Cities(context.Background())
	if err != nil {
		return nil, nil, err
	}
	return s, append(gazetteer, cities...), nil
}

type entry struct {
	domain core.Domain
	h      core.Handler
}

func registerHandlers(reg *registry.Registry, cfg *Config, store handler.Store, m model.Model, logger logging.Logger) error {
	disabled := map[core.Domain]bool{}
	for _, d := range cfg.Domains {
		if d.Disabled {
			disabled[core.Domain(d.Name)] = true
		}
	}

	builtins := []entry{
		{core.DomainMath, handler.NewCalculator()},
		{core.DomainWeather, handler.NewWeather(store, func(o *handler.WeatherOptions) {
			o.DefaultLocation = cfg.Weather.DefaultLocation
			o.DefaultReport = cfg.Weather.DefaultReport
		})},
		{core.DomainDateTime, handler.NewDateTime()},
	}
	if m != nil {
		builtins = append(builtins, entry{core.DomainResearch, handler.NewAgent(string(core.DomainResearch), m, func(o *handler.AgentOptions) {
			if cfg.Model.ResearchPrompt != "" {
				o.Instructions = cfg.Model.ResearchPrompt
			}
		})})
	}
	for _, b := range builtins {
		if disabled[b.domain] {
			continue
		}
		if err := reg.Register(b.domain, b.h); err != nil {
			return err
		}
	}

	for _, d := range cfg.Domains {
		if d.Reply == "" || d.Disabled {
			continue
		}
		if err := reg.Register(core.Domain(d.Name), replyHandler(d, logger)); err != nil {
			return err
		}
	}
	return nil
}

// replyHandler answers a configured domain with its rendered reply template.
func replyHandler(d DomainConfig, logger logging.Logger) core.Handler {
	reply := d.Reply
	return handler.NewFunctionHandler(d.Name, "Configured reply for "+d.Name,
		func(_ context.Context, p core.Params) (string, error) {
			return util.RenderTemplate(reply, map[string]any{"query": p.Query})
		},
		func(o *handler.FunctionOptions) { o.Logger = logger },
	)
}

// buildRules starts from the built-in rules, applies overrides by name and
// appends new domains in declaration order.
func buildRules(domains []DomainConfig, gazetteer classify.Gazetteer) []classify.Rule {
	rules := classify.DefaultRules(gazetteer)
	index := map[core.Domain]int{}
	for i, r := range rules {
		index[r.Domain] = i
	}

	for _, d := range domains {
		name := core.Domain(d.Name)
		i, builtin := index[name]
		if !builtin {
			if len(d.Triggers) > 0 || len(d.Patterns) > 0 {
				index[name] = len(rules)
				rules = append(rules, classify.Rule{Domain: name, Triggers: d.Triggers, Patterns: d.Patterns})
			}
			continue
		}
		if len(d.Triggers) > 0 {
			rules[i].Triggers = d.Triggers
		}
		if len(d.Patterns) > 0 {
			rules[i].Patterns = d.Patterns
		}
	}
	return rules
}

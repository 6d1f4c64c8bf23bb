package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/internal/util"
	"github.com/hupe1980/intentmesh/model"
)

// DefaultClassifyPrompt instructs the model to answer with a JSON domain list.
const DefaultClassifyPrompt = `You route user requests to capability domains.
Available domains:
{{range .domains}}- {{.Name}}{{if .Description}}: {{.Description}}{{end}}
{{end}}
Answer with a single JSON object of the form {"domains": ["<domain>", ...]} listing every
domain the request needs, in the order they appear in the request. Use only the domain
names above. Answer {"domains": []} if none applies.`

// ModelOptions configures a ModelClassifier.
type ModelOptions struct {
	// Prompt is a text/template rendered with "domains" (Name, Description).
	Prompt string
}

// ModelClassifier delegates the domain decision to a language model and uses
// the keyword rules' extractors for parameters.
type ModelClassifier struct {
	model    model.Model
	fallback *KeywordClassifier
	opts     ModelOptions
}

// NewModelClassifier wraps fallback, which also supplies the candidate
// domains, the Known filter and the extractors.
func NewModelClassifier(m model.Model, fallback *KeywordClassifier, optFns ...func(o *ModelOptions)) *ModelClassifier {
	opts := ModelOptions{Prompt: DefaultClassifyPrompt}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelClassifier{model: m, fallback: fallback, opts: opts}
}

type domainInfo struct {
	Name        string
	Description string
}

type modelAnswer struct {
	Domains []string `json:"domains"`
}

// Classify implements Classifier.
func (c *ModelClassifier) Classify(ctx context.Context, req core.Request) core.IntentRecord {
	if req.Blank() {
		return core.NewIntentRecord()
	}
	logger := c.fallback.Logger()

	candidates := c.candidates()
	prompt, err := util.RenderTemplate(c.opts.Prompt, map[string]any{"domains": candidates})
	if err != nil {
		logger.Warn("classify.model.fallback", "reason", "prompt", "error", err)
		return c.fallback.Classify(ctx, req)
	}

	resp, err := c.model.Generate(ctx, model.NewRequest(prompt, req.Text))
	if err != nil {
		logger.Warn("classify.model.fallback", "reason", "generate", "error", err)
		return c.fallback.Classify(ctx, req)
	}

	answer, err := parseAnswer(resp.Text)
	if err != nil {
		logger.Warn("classify.model.fallback", "reason", "parse", "error", err)
		return c.fallback.Classify(ctx, req)
	}

	allowed := map[core.Domain]bool{}
	for _, d := range candidates {
		allowed[core.Domain(d.Name)] = true
	}
	known := c.fallback.Known()

	rec := core.NewIntentRecord()
	for _, name := range answer.Domains {
		d := core.Domain(strings.ToLower(strings.TrimSpace(name)))
		if d == "" || rec.Has(d) {
			continue
		}
		if !allowed[d] || (known != nil && !known.Has(d)) {
			rec.Drop(d)
			logger.Warn("classify.domain_dropped", "domain", string(d), "request_id", req.ID)
			continue
		}
		rec.Add(d, c.fallback.Extract(d, req.Text))
	}
	return rec
}

// candidates lists the rule domains that pass the Known filter.
func (c *ModelClassifier) candidates() []domainInfo {
	known := c.fallback.Known()
	desc, _ := known.(describer)

	var out []domainInfo
	for _, d := range c.fallback.Domains() {
		if known != nil && !known.Has(d) {
			continue
		}
		info := domainInfo{Name: string(d)}
		if desc != nil {
			info.Description = desc.Describe(d)
		}
		out = append(out, info)
	}
	return out
}

// parseAnswer extracts the first JSON object from text, tolerating prose or
// code fences around it.
func parseAnswer(text string) (modelAnswer, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return modelAnswer{}, fmt.Errorf("no JSON object in model answer")
	}
	var a modelAnswer
	if err := json.Unmarshal([]byte(text[start:end+1]), &a); err != nil {
		return modelAnswer{}, fmt.Errorf("decode model answer: %w", err)
	}
	if a.Domains == nil {
		return modelAnswer{}, fmt.Errorf("model answer lacks domains")
	}
	return a, nil
}

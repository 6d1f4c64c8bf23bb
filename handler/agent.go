package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/internal/util"
	"github.com/hupe1980/intentmesh/model"
)

// DefaultResearchPrompt is the system prompt of the research agent.
const DefaultResearchPrompt = `You are a research assistant. Answer the user's question
concisely and factually in a few sentences. Today is {{.today}}.
If you do not know the answer, say so instead of guessing.`

// AgentOptions configures an Agent handler.
type AgentOptions struct {
	// Instructions is a text/template system prompt. It is rendered with
	// "query", "locations", "numbers", "fields" and "today".
	Instructions string
	Description  string
	Clock        func() time.Time
}

// Agent exposes a language model as a domain handler: the domain sub-query
// becomes the user message, the rendered instructions the system prompt.
type Agent struct {
	name  string
	model model.Model
	opts  AgentOptions
}

// NewAgent creates an Agent handler named name backed by m.
func NewAgent(name string, m model.Model, optFns ...func(o *AgentOptions)) *Agent {
	opts := AgentOptions{
		Instructions: DefaultResearchPrompt,
		Description:  "Answers open questions with a language model",
		Clock:        time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{name: name, model: m, opts: opts}
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// Description implements core.Describer.
func (a *Agent) Description() string { return a.opts.Description }

// Handle implements core.Handler.
func (a *Agent) Handle(ctx context.Context, params core.Params) (string, error) {
	instructions, err := util.RenderTemplate(a.opts.Instructions, map[string]any{
		"query":     params.Query,
		"locations": params.Locations,
		"numbers":   params.Numbers,
		"fields":    params.Fields,
		"today":     a.opts.Clock().Format("2006-01-02"),
	})
	if err != nil {
		return "", &core.HandlerError{Code: "PROMPT_ERROR", Message: fmt.Sprintf("agent %s: %v", a.name, err), Cause: err}
	}

	resp, err := a.model.Generate(ctx, model.NewRequest(instructions, params.Query))
	if err != nil {
		return "", &core.HandlerError{Code: "MODEL_ERROR", Message: fmt.Sprintf("agent %s: %v", a.name, err), Cause: err}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", core.NewHandlerError("EMPTY_RESPONSE", fmt.Sprintf("agent %s returned no text", a.name))
	}
	return text, nil
}

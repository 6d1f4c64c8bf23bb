package intentmesh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/intentmesh/aggregate"
	"github.com/hupe1980/intentmesh/classify"
	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/dispatch"
	"github.com/hupe1980/intentmesh/handler"
	"github.com/hupe1980/intentmesh/internal/testutil"
	"github.com/hupe1980/intentmesh/model"
	"github.com/hupe1980/intentmesh/registry"
)

func newDefault(t *testing.T, optFns ...func(o *Options)) *Router {
	t.Helper()
	r, err := NewDefault(nil, optFns...)
	require.NoError(t, err)
	return r
}

func TestRouter_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		outcome core.Outcome
	}{
		{
			"math and weather in order",
			"Add 2 and 3 and tell me the weather in Paris",
			"Mathematical result: 5\n\nWeather information: Weather in Paris: Temperature: 20°C, Cloudy",
			core.OutcomeAnswered,
		},
		{"chained arithmetic", "What is 10 - 5? Then add 3.", "Mathematical result: 8", core.OutcomeAnswered},
		{"stored city", "weather in Tokyo", "Weather information: Weather in Tokyo: Temperature: 25°C, Clear skies", core.OutcomeAnswered},
		{
			"unknown city",
			"weather in Nowhereville",
			"Weather information: Weather in Nowhereville: Temperature: 25°C, Partly cloudy (default)",
			core.OutcomeAnswered,
		},
		{
			"division by zero keeps weather",
			"Divide 10 by 0 and what's the weather in London",
			"Weather information: Weather in London: Temperature: 18°C, Rainy",
			core.OutcomeAnswered,
		},
		{"only failures", "what is 4 / 0", aggregate.FallbackText, core.OutcomeFallback},
		{"no trigger", "hello there", aggregate.NotUnderstoodText, core.OutcomeNotUnderstood},
		{"blank", "   ", aggregate.NotUnderstoodText, core.OutcomeNotUnderstood},
	}

	for _, mode := range []dispatch.Mode{dispatch.ModeSequential, dispatch.ModeParallel} {
		r := newDefault(t, func(o *Options) { o.Dispatch.Mode = mode })
		for _, tt := range tests {
			t.Run(string(mode)+"/"+tt.name, func(t *testing.T) {
				resp, err := r.Handle(context.Background(), tt.text)
				require.NoError(t, err)
				assert.Equal(t, tt.want, resp.Text)
				assert.Equal(t, tt.outcome, resp.Outcome)
				assert.NotEmpty(t, resp.RequestID)
			})
		}
	}
}

func TestRouter_DivisionByZeroReportsFailure(t *testing.T) {
	resp, err := newDefault(t).Handle(context.Background(), "Divide 10 by 0 and what's the weather in London")
	require.NoError(t, err)

	failures := resp.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, core.DomainMath, failures[0].Domain)
	var he *core.HandlerError
	require.ErrorAs(t, failures[0].Err, &he)
	assert.Equal(t, "DIVISION_BY_ZERO", he.Code)
}

func TestRouter_SingleDomainInvokesSingleHandler(t *testing.T) {
	math := testutil.NewRecorder(handler.NewCalculator())
	weather := testutil.NewRecorder(testutil.Static("sunny"))
	reg := registry.New()
	require.NoError(t, reg.Register(core.DomainMath, math))
	require.NoError(t, reg.Register(core.DomainWeather, weather))

	r, err := New(reg)
	require.NoError(t, err)

	resp, err := r.Handle(context.Background(), "multiply 6 by 7")
	require.NoError(t, err)
	assert.Equal(t, "Mathematical result: 42", resp.Text)
	assert.Len(t, math.Calls(), 1)
	assert.Empty(t, weather.Calls())
}

func TestRouter_UnregisteredDomainIsDropped(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(core.DomainMath, handler.NewCalculator()))
	r, err := New(reg)
	require.NoError(t, err)

	rec := r.Classify(context.Background(), "weather in Tokyo")
	assert.True(t, rec.Empty())
	assert.Equal(t, []core.Domain{core.DomainWeather}, rec.Dropped)

	resp, err := r.Handle(context.Background(), "weather in Tokyo")
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeNotUnderstood, resp.Outcome)
}

func TestRouter_Timeout(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(core.DomainMath, handler.NewCalculator()))
	require.NoError(t, reg.Register(core.DomainDateTime, testutil.Slow(time.Second, "too late")))

	r, err := New(reg, func(o *Options) {
		o.Dispatch = dispatch.Options{Mode: dispatch.ModeParallel, Timeout: 30 * time.Millisecond}
	})
	require.NoError(t, err)

	resp, err := r.Handle(context.Background(), "add 1 and 1, and what day is it?")
	require.NoError(t, err)
	assert.Equal(t, "Mathematical result: 2", resp.Text)
	require.Len(t, resp.Failures(), 1)
	assert.Equal(t, core.FailureTimeout, resp.Failures()[0].Kind())
	assert.Equal(t, int64(1), r.Stats().TimedOut)
}

func TestRouter_ResearchAgent(t *testing.T) {
	m := model.NewMockModel("research")
	m.AddResponse("Who is Ada Lovelace?", "An English mathematician.")
	r, err := NewDefault(m)
	require.NoError(t, err)

	assert.Contains(t, r.Domains(), core.DomainResearch)
	resp, err := r.Handle(context.Background(), "Who is Ada Lovelace?")
	require.NoError(t, err)
	assert.Equal(t, "Research findings: An English mathematician.", resp.Text)
}

func TestRouter_ModelClassifier(t *testing.T) {
	reg := registry.New()
	require.NoError(t, RegisterDefaults(reg, nil))
	kc := classify.MustKeywordClassifier(classify.DefaultRules(classify.DefaultGazetteer), func(o *classify.KeywordOptions) {
		o.Known = reg
	})
	m := model.NewMockModel("router")
	m.AddResponse("how warm is it in Berlin right now", `{"domains": ["weather"]}`)

	r, err := New(reg, func(o *Options) { o.Classifier = classify.NewModelClassifier(m, kc) })
	require.NoError(t, err)

	resp, err := r.Handle(context.Background(), "how warm is it in Berlin right now")
	require.NoError(t, err)
	assert.Equal(t, "Weather information: Weather in Berlin: Temperature: 19°C, Overcast", resp.Text)
}

func TestRouter_SealsRegistryAndListsDomains(t *testing.T) {
	reg := registry.New()
	require.NoError(t, RegisterDefaults(reg, nil))
	r, err := New(reg, func(o *Options) { o.Labels = map[core.Domain]string{core.DomainMath: "Math"} })
	require.NoError(t, err)

	assert.ErrorIs(t, reg.Register("stocks", testutil.Static("up")), registry.ErrSealed)
	assert.Equal(t, []core.Domain{core.DomainMath, core.DomainWeather, core.DomainDateTime}, r.Domains())
	assert.NotEmpty(t, r.Describe(core.DomainWeather))
	assert.Equal(t, "Math", r.Label(core.DomainMath))

	_, err = New(nil)
	assert.Error(t, err)
}

func TestRouter_Idempotent(t *testing.T) {
	r := newDefault(t, func(o *Options) { o.Dispatch.Mode = dispatch.ModeParallel })
	first, err := r.Handle(context.Background(), "Add 2 and 3 and tell me the weather in Paris")
	require.NoError(t, err)
	second, err := r.Handle(context.Background(), "Add 2 and 3 and tell me the weather in Paris")
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

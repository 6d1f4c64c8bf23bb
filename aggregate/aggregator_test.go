package aggregate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/internal/testutil"
)

func TestAggregate_JoinsLabeledPayloadsInOrder(t *testing.T) {
	results := testutil.NewResultBuilder().
		OK(core.DomainMath, "5").
		OK(core.DomainWeather, "Weather in Paris: Temperature: 20°C, Cloudy").
		Build()

	resp, err := New().Aggregate(results)
	require.NoError(t, err)
	assert.Equal(t, "Mathematical result: 5\n\nWeather information: Weather in Paris: Temperature: 20°C, Cloudy", resp.Text)
	assert.Equal(t, core.OutcomeAnswered, resp.Outcome)
	assert.Len(t, resp.Results, 2)
}

func TestAggregate_SkipsFailures(t *testing.T) {
	results := testutil.NewResultBuilder().
		Fail(core.DomainMath, core.NewHandlerError("DIVISION_BY_ZERO", "division by zero")).
		OK(core.DomainWeather, "Weather in Tokyo: Temperature: 25°C, Clear skies").
		Build()

	resp, err := New().Aggregate(results)
	require.NoError(t, err)
	assert.Equal(t, "Weather information: Weather in Tokyo: Temperature: 25°C, Clear skies", resp.Text)
	require.Len(t, resp.Failures(), 1)
	assert.Equal(t, core.DomainMath, resp.Failures()[0].Domain)
}

func TestAggregate_Fallbacks(t *testing.T) {
	resp, err := New().Aggregate(testutil.NewResultBuilder().Fail(core.DomainMath, core.ErrTimeout).Build())
	require.NoError(t, err)
	assert.Equal(t, FallbackText, resp.Text)
	assert.Equal(t, core.OutcomeFallback, resp.Outcome)

	resp, err = New().Aggregate(nil)
	require.NoError(t, err)
	assert.Equal(t, NotUnderstoodText, resp.Text)
	assert.Equal(t, core.OutcomeNotUnderstood, resp.Outcome)
}

func TestAggregate_Labels(t *testing.T) {
	a := New(func(o *Options) {
		o.Labels = map[core.Domain]string{core.DomainMath: "Math", "stocks": "Market data"}
		o.Separator = "\n"
	})
	assert.Equal(t, "Math", a.Label(core.DomainMath))
	assert.Equal(t, "Market data", a.Label("stocks"))
	assert.Equal(t, "Weather information", a.Label(core.DomainWeather))
	assert.Equal(t, "Translation result", a.Label("translation"))

	resp, err := a.Aggregate(testutil.NewResultBuilder().OK(core.DomainMath, "1").OK("shipping", "2 days").Build())
	require.NoError(t, err)
	assert.Equal(t, "Math: 1\nShipping result: 2 days", resp.Text)
}

func TestAggregate_MalformedResults(t *testing.T) {
	tests := []struct {
		name    string
		results []core.PartialResult
	}{
		{"empty domain", testutil.NewResultBuilder().OK("", "x").Build()},
		{"both payload and error", testutil.NewResultBuilder().
			Raw(core.PartialResult{Domain: core.DomainMath, Payload: "5", Err: errors.New("boom")}).Build()},
		{"neither payload nor error", testutil.NewResultBuilder().Raw(core.PartialResult{Domain: core.DomainMath}).Build()},
		{"duplicate domain", testutil.NewResultBuilder().OK(core.DomainMath, "1").Fail(core.DomainMath, nil).Build()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Aggregate(tt.results)
			assert.ErrorIs(t, err, ErrMalformedResults)
		})
	}
}

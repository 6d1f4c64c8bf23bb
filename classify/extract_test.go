package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/intentmesh/core"
)

func TestExtractNumbers(t *testing.T) {
	assert.Equal(t, []float64{3.5, 10}, ExtractNumbers("3.5 apples and 10 pears"))
	assert.Nil(t, ExtractNumbers("no digits"))
}

func TestExtractOperations(t *testing.T) {
	bin := func(op core.Operator, l, r float64) core.Operation {
		return core.Operation{Operator: op, Left: l, Right: r}
	}
	chained := func(op core.Operator, r float64) core.Operation {
		return core.Operation{Operator: op, Right: r, Chained: true}
	}

	tests := []struct {
		text string
		want []core.Operation
	}{
		{"10 - 5", []core.Operation{bin(core.OpSubtract, 10, 5)}},
		{"3*4", []core.Operation{bin(core.OpMultiply, 3, 4)}},
		{"3 plus 4", []core.Operation{bin(core.OpAdd, 3, 4)}},
		{"100 divided by 25", []core.Operation{bin(core.OpDivide, 100, 25)}},
		{"add 2 and 3", []core.Operation{bin(core.OpAdd, 2, 3)}},
		{"Multiply 4 by 5", []core.Operation{bin(core.OpMultiply, 4, 5)}},
		{"subtract 3 from 10", []core.Operation{bin(core.OpSubtract, 10, 3)}},
		{"the sum of 2 and 3", []core.Operation{bin(core.OpAdd, 2, 3)}},
		{"What is 10 - 5? Then add 3.", []core.Operation{bin(core.OpSubtract, 10, 5), chained(core.OpAdd, 3)}},
		{"6 times 7, then divide it by 2", []core.Operation{bin(core.OpMultiply, 6, 7), chained(core.OpDivide, 2)}},
		{"no math here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractOperations(tt.text))
		})
	}
}

func TestLocationExtractor(t *testing.T) {
	extract := LocationExtractor(DefaultGazetteer)

	tests := []struct {
		text string
		want []string
	}{
		{"weather in New York today", []string{"New York"}},
		{"weather in Nowhereville", []string{"Nowhereville"}},
		{"forecast for me in tokyo", []string{"Tokyo"}},
		{"Is it hot in Paris or London?", []string{"Paris", "London"}},
		{"temperature of the Sahara", nil},
		{"what's the weather like", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p := extract(tt.text)
			assert.Equal(t, tt.want, p.Locations)
			assert.Equal(t, tt.text, p.Query)
		})
	}
}

func TestExtractDateFields(t *testing.T) {
	assert.Equal(t, []string{"day", "month"}, ExtractDateFields("What day and month is it?"))
	assert.Equal(t, []string{"day"}, ExtractDateFields("which weekday is it today"))
	assert.Equal(t, []string{"date"}, ExtractDateFields("calendar please"))
	assert.Equal(t, []string{"time", "date"}, ExtractDateFields("time and date, and the time again"))
}

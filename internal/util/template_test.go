package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		state map[string]any
		want  string
	}{
		{"no markers", "plain prompt", nil, "plain prompt"},
		{"variable", "Answer about {{.topic}}.", map[string]any{"topic": "Go"}, "Answer about Go."},
		{"default", "Hello {{default \"there\" .name}}", map[string]any{}, "Hello there"},
		{"join", "Domains: {{join \", \" .domains}}", map[string]any{"domains": []string{"math", "weather"}}, "Domains: math, weather"},
		{"no escaping", "{{.q}}", map[string]any{"q": "a < b & c"}, "a < b & c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderTemplate(tt.text, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{.broken", nil)
	assert.Error(t, err)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "New York", Title("new york"))
	assert.Equal(t, "Datetime", Title("DATETIME"))
	assert.Equal(t, "", Title("  "))
}

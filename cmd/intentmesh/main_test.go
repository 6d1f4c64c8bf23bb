package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAsk(t *testing.T) {
	for _, mode := range [][]string{nil, {"--parallel"}} {
		args := append([]string{"ask"}, mode...)
		args = append(args, "Add 2 and 3 and tell me the weather in Paris")

		out, err := run(t, "", args...)
		require.NoError(t, err)
		assert.Equal(t, "Mathematical result: 5\n\nWeather information: Weather in Paris: Temperature: 20°C, Cloudy\n", out)
	}
}

func TestAskJoinsArgs(t *testing.T) {
	out, err := run(t, "", "ask", "what", "is", "4", "*", "5")
	require.NoError(t, err)
	assert.Equal(t, "Mathematical result: 20\n", out)
}

func TestAskDetails(t *testing.T) {
	out, err := run(t, "", "ask", "--details", "Divide 10 by 0 and what's the weather in London")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Weather information: Weather in London:"))
	assert.Contains(t, out, "(answered)")
	assert.Contains(t, out, "✗ math: handler_failure")
	assert.Contains(t, out, "✓ weather in ")
}

func TestAskRequiresText(t *testing.T) {
	_, err := run(t, "", "ask")
	require.Error(t, err)
}

func TestAskInvalidFlagConfig(t *testing.T) {
	_, err := run(t, "", "--log-level", "loud", "ask", "hello")
	require.Error(t, err)
}

func TestRepl(t *testing.T) {
	out, err := run(t, "what is 6 / 2\n\nhello there\nquit\nwhat is 1 + 1\n", "repl")
	require.NoError(t, err)

	assert.Contains(t, out, "domains: math, weather, datetime")
	assert.Contains(t, out, "Mathematical result: 3\n")
	assert.Contains(t, out, "Sorry, I didn't understand your request.")
	assert.NotContains(t, out, "Mathematical result: 2", "input after quit is ignored")
}

func TestReplEOF(t *testing.T) {
	out, err := run(t, "what is 6 - 2", "repl")
	require.NoError(t, err)
	assert.Contains(t, out, "Mathematical result: 4\n")
}

func TestDomains(t *testing.T) {
	out, err := run(t, "", "domains")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "DOMAIN")
	assert.True(t, strings.HasPrefix(lines[1], "math"))
	assert.Contains(t, lines[1], "Mathematical result")
	assert.True(t, strings.HasPrefix(lines[2], "weather"))
	assert.True(t, strings.HasPrefix(lines[3], "datetime"))
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intentmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  provider: mock\n  api_key: sk-secret\n"), 0o644))

	out, err := run(t, "", "--config", path, "--parallel", "--timeout", "3s", "config")
	require.NoError(t, err)

	assert.Contains(t, out, "mode: parallel")
	assert.Contains(t, out, "timeout: 3s")
	assert.Contains(t, out, "provider: mock")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "sk-secret")
}

func TestConfigPath(t *testing.T) {
	out, err := run(t, "", "config", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), filepath.Join("intentmesh", "intentmesh.yaml")))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "intentmesh version dev\n", out)
}
